package meshing

import (
	"lodterrain/internal/profiling"
	"lodterrain/internal/world"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultTransitionWidth is the depth, in cells, of the transition band on
// a face that borders a coarser chunk.
const DefaultTransitionWidth = 0.5

// Mesher extracts chunk surfaces. The zero value uses
// DefaultTransitionWidth.
type Mesher struct {
	TransitionWidth float32
}

// Build extracts the surface of a chunk with the default mesher.
func Build(grid *world.DensityGrid, cells int, mask world.FaceMask) *MeshBuffer {
	return Mesher{}.Build(grid, cells, mask)
}

// Build extracts the surface of a chunk. grid must be laid out as
// world.ChunkGridSpec describes for the same cell count. Faces set in mask
// get transition cells and push their full-resolution vertices inward.
func (m Mesher) Build(grid *world.DensityGrid, cells int, mask world.FaceMask) *MeshBuffer {
	defer profiling.Track("meshing.Build")()

	width := m.TransitionWidth
	if width <= 0 {
		width = DefaultTransitionWidth
	}
	e := &extraction{
		grid:  grid,
		cells: cells,
		mask:  mask,
		width: width,
		step:  float32(grid.Step),
		out:   &MeshBuffer{},
		index: make(map[mgl32.Vec3]uint32),
	}
	e.regularCells()
	for _, f := range world.Faces {
		if mask.Has(f) {
			e.transitionCells(f)
		}
	}
	return e.out
}

// lattice is a point in chunk cell coordinates, [0, cells] on each axis.
type lattice [3]int

func (p lattice) less(q lattice) bool {
	for i := 0; i < 3; i++ {
		if p[i] != q[i] {
			return p[i] < q[i]
		}
	}
	return false
}

// vertexKind separates vertices on the full-resolution lattice from those
// on the half-resolution face of a transition cell. Only the former are
// pushed back from flagged faces.
type vertexKind uint8

const (
	fullRes vertexKind = iota
	halfRes
)

type extraction struct {
	grid  *world.DensityGrid
	cells int
	mask  world.FaceMask
	width float32
	step  float32
	out   *MeshBuffer
	index map[mgl32.Vec3]uint32
	slots [16]uint32
}

func (e *extraction) density(p lattice) float32 {
	return e.grid.At(p[0]+1, p[1]+1, p[2]+1)
}

// gradient is the central difference at a lattice point. It points toward
// increasing density, i.e. out of the surface.
func (e *extraction) gradient(p lattice) mgl32.Vec3 {
	g := e.grid
	x, y, z := p[0]+1, p[1]+1, p[2]+1
	return mgl32.Vec3{
		(g.At(x+1, y, z) - g.At(x-1, y, z)) * 0.5,
		(g.At(x, y+1, z) - g.At(x, y-1, z)) * 0.5,
		(g.At(x, y, z+1) - g.At(x, y, z-1)) * 0.5,
	}
}

func (e *extraction) worldPos(p lattice) mgl32.Vec3 {
	w := e.grid.WorldPoint(p[0]+1, p[1]+1, p[2]+1)
	return mgl32.Vec3{float32(w[0]), float32(w[1]), float32(w[2])}
}

func normalize(v mgl32.Vec3) mgl32.Vec3 {
	l := math32.Sqrt(v.Dot(v))
	if l == 0 {
		return v
	}
	return v.Mul(1 / l)
}

func (e *extraction) regularCells() {
	c := e.cells
	var corner [8]lattice
	for x := 0; x < c; x++ {
		for y := 0; y < c; y++ {
			for z := 0; z < c; z++ {
				code := 0
				for i := range corner {
					corner[i] = lattice{x + i&1, y + i>>1&1, z + i>>2&1}
					if e.density(corner[i]) < 0 {
						code |= 1 << i
					}
				}
				if code == 0 || code == 255 {
					continue
				}
				data, edges, flip := regularTable.lookup(code)
				for i, ec := range edges {
					a, b := ec.corners()
					e.slots[i] = e.vertex(corner[a], corner[b], fullRes)
				}
				e.emit(data, flip)
			}
		}
	}
}

// transitionCells covers face f with (cells/2)^2 transition cells. Sample k
// of a cell sits at (i0+k%3, j0+k/3) in the face's tangent axes. The cell
// geometry is right-handed with its half-resolution side pointing out of
// the chunk, which holds for positive faces; negative faces mirror it and
// reverse the winding.
func (e *extraction) transitionCells(f world.Face) {
	a := f.Axis()
	b, c := (a+1)%3, (a+2)%3
	plane := 0
	if f.Positive() {
		plane = e.cells
	}
	mirror := !f.Positive()

	var pts [13]lattice
	for i0 := 0; i0 < e.cells; i0 += 2 {
		for j0 := 0; j0 < e.cells; j0 += 2 {
			code := 0
			for k := 0; k < 9; k++ {
				var p lattice
				p[a] = plane
				p[b] = i0 + k%3
				p[c] = j0 + k/3
				pts[k] = p
				if e.density(p) < 0 {
					code |= 1 << k
				}
			}
			if code == 0 || code == 511 {
				continue
			}
			pts[9], pts[10], pts[11], pts[12] = pts[0], pts[2], pts[6], pts[8]

			data, edges, flip := transitionTable.lookup(code)
			for i, ec := range edges {
				p, q := ec.corners()
				kind := fullRes
				if p >= 9 {
					kind = halfRes
				}
				e.slots[i] = e.vertex(pts[p], pts[q], kind)
			}
			e.emit(data, flip != mirror)
		}
	}
}

func (e *extraction) emit(data cellData, reverse bool) {
	for t := 0; t+2 < len(data.indices); t += 3 {
		i0 := e.slots[data.indices[t]]
		i1 := e.slots[data.indices[t+1]]
		i2 := e.slots[data.indices[t+2]]
		if i0 == i1 || i1 == i2 || i0 == i2 {
			continue
		}
		if reverse {
			i1, i2 = i2, i1
		}
		e.out.Indices = append(e.out.Indices, i0, i1, i2)
	}
}

// vertex places the surface crossing on edge p-q and returns its welded
// index. The edge is always walked from its lower lattice point so both
// cells sharing it, in this chunk or a neighbour, compute the same bits.
func (e *extraction) vertex(p, q lattice, kind vertexKind) uint32 {
	if q.less(p) {
		p, q = q, p
	}
	dp, dq := e.density(p), e.density(q)
	t := dp / (dp - dq)

	wp, wq := e.worldPos(p), e.worldPos(q)
	pos := mgl32.Vec3{
		wp[0] + t*(wq[0]-wp[0]),
		wp[1] + t*(wq[1]-wp[1]),
		wp[2] + t*(wq[2]-wp[2]),
	}
	n := normalize(e.gradient(p).Mul(1 - t).Add(e.gradient(q).Mul(t)))

	if kind == fullRes && e.mask != 0 {
		local := mgl32.Vec3{
			float32(p[0]) + t*float32(q[0]-p[0]),
			float32(p[1]) + t*float32(q[1]-p[1]),
			float32(p[2]) + t*float32(q[2]-p[2]),
		}
		if d, ok := e.pushBack(local, n); ok {
			pos = pos.Add(d)
		}
	}

	if i, ok := e.index[pos]; ok {
		return i
	}
	i := uint32(len(e.out.Vertices))
	e.out.Vertices = append(e.out.Vertices, pos)
	e.out.Normals = append(e.out.Normals, n)
	e.index[pos] = i
	return i
}

// pushBack returns the world offset for a full-resolution vertex within one
// cell of a flagged face: (1-u)*w from a min face or (cells-1-u)*w from a max
// face, per axis, projected onto the plane perpendicular to the normal.
func (e *extraction) pushBack(local, n mgl32.Vec3) (mgl32.Vec3, bool) {
	c := float32(e.cells)
	var d mgl32.Vec3
	moved := false
	for axis := 0; axis < 3; axis++ {
		u := local[axis]
		switch {
		case u < 1 && e.mask.Has(world.Faces[2*axis]):
			d[axis] = (1 - u) * e.width
			moved = true
		case u > c-1 && e.mask.Has(world.Faces[2*axis+1]):
			d[axis] = (c - 1 - u) * e.width
			moved = true
		}
	}
	if !moved || e.onCoarseCorner(local) {
		return mgl32.Vec3{}, false
	}
	d = d.Sub(n.Mul(n.Dot(d)))
	return d.Mul(e.step), true
}

// onCoarseCorner reports whether local is a half-resolution lattice point
// on a flagged face; those positions are shared with the coarse neighbour.
func (e *extraction) onCoarseCorner(local mgl32.Vec3) bool {
	for axis := 0; axis < 3; axis++ {
		if local[axis] != math32.Floor(local[axis]) || int(local[axis])%2 != 0 {
			return false
		}
	}
	c := float32(e.cells)
	for axis := 0; axis < 3; axis++ {
		if local[axis] == 0 && e.mask.Has(world.Faces[2*axis]) {
			return true
		}
		if local[axis] == c && e.mask.Has(world.Faces[2*axis+1]) {
			return true
		}
	}
	return false
}
