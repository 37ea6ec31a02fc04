package world

import (
	"fmt"
	"math/bits"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Bound is an axis-aligned cube on the integer world lattice. Its size is a
// power-of-two multiple of the base chunk size and determines the LOD.
type Bound struct {
	Center [3]int
	Size   int
}

// BoundFromMin builds a bound from its min corner.
func BoundFromMin(lo [3]int, size int) Bound {
	h := size / 2
	return Bound{Center: [3]int{lo[0] + h, lo[1] + h, lo[2] + h}, Size: size}
}

// Min returns the min corner.
func (b Bound) Min() [3]int {
	h := b.Size / 2
	return [3]int{b.Center[0] - h, b.Center[1] - h, b.Center[2] - h}
}

// Max returns the max corner.
func (b Bound) Max() [3]int {
	h := b.Size / 2
	return [3]int{b.Center[0] + h, b.Center[1] + h, b.Center[2] + h}
}

// LOD returns log2(Size/base); 0 is full detail.
func (b Bound) LOD(base int) int {
	if base <= 0 || b.Size <= base {
		return 0
	}
	return bits.Len(uint(b.Size/base)) - 1
}

// Contains reports whether p lies in [min, max) on every axis.
func (b Bound) Contains(p mgl32.Vec3) bool {
	lo, hi := b.Min(), b.Max()
	for i := 0; i < 3; i++ {
		if p[i] < float32(lo[i]) || p[i] >= float32(hi[i]) {
			return false
		}
	}
	return true
}

// Distance returns the Chebyshev distance from p to the cube, zero inside.
func (b Bound) Distance(p mgl32.Vec3) float32 {
	lo, hi := b.Min(), b.Max()
	var d float32
	for i := 0; i < 3; i++ {
		d = math32.Max(d, float32(lo[i])-p[i])
		d = math32.Max(d, p[i]-float32(hi[i]))
	}
	return d
}

// Octant returns child i; bit 0 selects +x, bit 1 +y, bit 2 +z.
func (b Bound) Octant(i int) Bound {
	q := b.Size / 4
	c := b.Center
	for axis := 0; axis < 3; axis++ {
		if i&(1<<axis) != 0 {
			c[axis] += q
		} else {
			c[axis] -= q
		}
	}
	return Bound{Center: c, Size: b.Size / 2}
}

// Touches reports whether two bounds share part of a face.
func (b Bound) Touches(o Bound) bool {
	blo, bhi := b.Min(), b.Max()
	olo, ohi := o.Min(), o.Max()
	contact := 0
	for i := 0; i < 3; i++ {
		lo := max(blo[i], olo[i])
		hi := min(bhi[i], ohi[i])
		switch {
		case lo > hi:
			return false
		case lo == hi:
			contact++
		}
	}
	return contact == 1
}

// CenterVec returns the center as a float vector.
func (b Bound) CenterVec() mgl32.Vec3 {
	return mgl32.Vec3{float32(b.Center[0]), float32(b.Center[1]), float32(b.Center[2])}
}

func (b Bound) String() string {
	return fmt.Sprintf("bound(%d,%d,%d size=%d)", b.Center[0], b.Center[1], b.Center[2], b.Size)
}

// Face names one side of a cube.
type Face uint8

const (
	NegX Face = iota
	PosX
	NegY
	PosY
	NegZ
	PosZ
	faceCount
)

// Faces lists every face in mask bit order.
var Faces = [faceCount]Face{NegX, PosX, NegY, PosY, NegZ, PosZ}

// Axis returns 0, 1 or 2.
func (f Face) Axis() int { return int(f) / 2 }

// Positive reports whether the face looks along +axis.
func (f Face) Positive() bool { return f&1 == 1 }

func (f Face) String() string {
	return [...]string{"-x", "+x", "-y", "+y", "-z", "+z"}[f]
}

// FaceMask has one bit per Face; a set bit marks a face bordering a coarser
// neighbour.
type FaceMask uint8

// Has reports whether f is set.
func (m FaceMask) Has(f Face) bool { return m&(1<<f) != 0 }

// With returns m with f set.
func (m FaceMask) With(f Face) FaceMask { return m | 1<<f }

func (m FaceMask) String() string {
	if m == 0 {
		return "none"
	}
	s := ""
	for _, f := range Faces {
		if m.Has(f) {
			if s != "" {
				s += "|"
			}
			s += f.String()
		}
	}
	return s
}
