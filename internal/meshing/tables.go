package meshing

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// The regular and transition cell tables are generated once at package init
// by polygonising each cell's boundary. Every case gets the list of cell
// edges its vertices sit on; cases that triangulate those vertices the same
// way share a class. A class reached through reversed winding is stored once
// and tagged with classFlip.

// edgeCode packs the two corner indices of a cell edge, the lower index in
// the high nibble.
type edgeCode uint8

func makeEdge(a, b int) edgeCode {
	if a > b {
		a, b = b, a
	}
	return edgeCode(a<<4 | b)
}

func (e edgeCode) corners() (int, int) {
	return int(e >> 4), int(e & 0x0F)
}

// cellClass indexes cellTable.data; classFlip marks reversed winding.
type cellClass uint16

const classFlip cellClass = 0x8000

func (c cellClass) index() int    { return int(c &^ classFlip) }
func (c cellClass) flipped() bool { return c&classFlip != 0 }

// cellData is one triangulation shape: triangles index the case's vertex
// list.
type cellData struct {
	vertexCount int
	indices     []uint8
}

func (c cellData) triangleCount() int { return len(c.indices) / 3 }

type cellTable struct {
	class    []cellClass
	data     []cellData
	vertices [][]edgeCode
}

func (t *cellTable) lookup(code int) (cellData, []edgeCode, bool) {
	c := t.class[code]
	return t.data[c.index()], t.vertices[code], c.flipped()
}

var (
	regularTable    = buildCellTable(regularCell(), 8)
	transitionTable = buildCellTable(transitionCell(), 9)
)

// cellShape is the abstract geometry of a cell: corner positions, boundary
// faces as corner cycles, and for each corner the sample whose sign it takes.
type cellShape struct {
	corners []mgl32.Vec3
	faces   [][]int
	alias   []int
}

// Regular cell corner i sits at (i&1, (i>>1)&1, (i>>2)&1).
func regularCell() cellShape {
	s := cellShape{alias: []int{0, 1, 2, 3, 4, 5, 6, 7}}
	for i := 0; i < 8; i++ {
		s.corners = append(s.corners, mgl32.Vec3{float32(i & 1), float32(i >> 1 & 1), float32(i >> 2 & 1)})
	}
	s.faces = [][]int{
		{0, 2, 6, 4}, {1, 3, 7, 5},
		{0, 1, 5, 4}, {2, 3, 7, 6},
		{0, 1, 3, 2}, {4, 5, 7, 6},
	}
	s.orient()
	return s
}

// Transition cell samples 0-8 form the full-resolution 3x3 face at z=0
// (sample k at (k%3, k/3)). Samples 9-12 are the half-resolution face at z=1
// and take the signs of corners 0, 2, 6 and 8. The half-resolution side
// faces the coarser neighbour.
func transitionCell() cellShape {
	s := cellShape{alias: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 0, 2, 6, 8}}
	for k := 0; k < 9; k++ {
		s.corners = append(s.corners, mgl32.Vec3{float32(k % 3), float32(k / 3), 0})
	}
	s.corners = append(s.corners,
		mgl32.Vec3{0, 0, 1}, mgl32.Vec3{2, 0, 1},
		mgl32.Vec3{0, 2, 1}, mgl32.Vec3{2, 2, 1},
	)
	s.faces = [][]int{
		{0, 1, 4, 3}, {1, 2, 5, 4}, {3, 4, 7, 6}, {4, 5, 8, 7},
		{9, 10, 12, 11},
		{0, 1, 2, 10, 9},
		{6, 7, 8, 12, 11},
		{0, 3, 6, 11, 9},
		{2, 5, 8, 12, 10},
	}
	s.orient()
	return s
}

// orient reverses faces as needed so every corner cycle runs
// counter-clockwise seen from outside the cell.
func (s *cellShape) orient() {
	var centroid mgl32.Vec3
	for _, c := range s.corners {
		centroid = centroid.Add(c)
	}
	centroid = centroid.Mul(1 / float32(len(s.corners)))

	for fi, face := range s.faces {
		var n, fc mgl32.Vec3
		for k, a := range face {
			b := face[(k+1)%len(face)]
			n = n.Add(s.corners[a].Cross(s.corners[b]))
			fc = fc.Add(s.corners[a])
		}
		fc = fc.Mul(1 / float32(len(face)))
		if n.Dot(fc.Sub(centroid)) < 0 {
			rev := make([]int, len(face))
			for k := range face {
				rev[k] = face[len(face)-1-k]
			}
			s.faces[fi] = rev
		}
	}
}

// polygonize triangulates one case. On each face, walking the outward CCW
// cycle, a crossing into the inside region is joined to the next crossing
// back out. That keeps separate inside corners apart on ambiguous faces, and
// since neighbouring cells walk a shared face in opposite directions they
// pick the same segments. The segments close into loops around the inside
// region, which are fanned so triangles face the outside.
func (s *cellShape) polygonize(code int) ([]edgeCode, []uint8) {
	inside := func(corner int) bool {
		return code>>s.alias[corner]&1 != 0
	}
	type crossing struct {
		edge  edgeCode
		enter bool
	}

	next := make(map[edgeCode]edgeCode)
	for _, face := range s.faces {
		var xs []crossing
		for k, a := range face {
			b := face[(k+1)%len(face)]
			if inside(a) == inside(b) {
				continue
			}
			xs = append(xs, crossing{edge: makeEdge(a, b), enter: inside(b)})
		}
		for k, x := range xs {
			if x.enter {
				next[x.edge] = xs[(k+1)%len(xs)].edge
			}
		}
	}
	if len(next) == 0 {
		return nil, nil
	}

	starts := make([]edgeCode, 0, len(next))
	for e := range next {
		starts = append(starts, e)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	var (
		edges   []edgeCode
		indices []uint8
	)
	slot := make(map[edgeCode]uint8)
	visited := make(map[edgeCode]bool)
	for _, start := range starts {
		if visited[start] {
			continue
		}
		var loop []uint8
		for e := start; !visited[e]; e = next[e] {
			visited[e] = true
			i, ok := slot[e]
			if !ok {
				i = uint8(len(edges))
				slot[e] = i
				edges = append(edges, e)
			}
			loop = append(loop, i)
		}
		for k := 1; k+1 < len(loop); k++ {
			indices = append(indices, loop[0], loop[k], loop[k+1])
		}
	}
	return edges, indices
}

func buildCellTable(s cellShape, bits int) *cellTable {
	n := 1 << bits
	t := &cellTable{
		class:    make([]cellClass, n),
		vertices: make([][]edgeCode, n),
	}
	seen := make(map[string]cellClass)
	for code := 0; code < n; code++ {
		edges, indices := s.polygonize(code)
		t.vertices[code] = edges

		key := fmt.Sprint(len(edges), indices)
		if c, ok := seen[key]; ok {
			t.class[code] = c
			continue
		}
		rev := make([]uint8, len(indices))
		for i := 0; i+2 < len(indices); i += 3 {
			rev[i], rev[i+1], rev[i+2] = indices[i], indices[i+2], indices[i+1]
		}
		if c, ok := seen[fmt.Sprint(len(edges), rev)]; ok && len(indices) > 0 {
			t.class[code] = c | classFlip
			continue
		}
		c := cellClass(len(t.data))
		t.data = append(t.data, cellData{vertexCount: len(edges), indices: indices})
		seen[key] = c
		t.class[code] = c
	}
	return t
}
