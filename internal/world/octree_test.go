package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func volume(b Bound) int64 {
	s := int64(b.Size)
	return s * s * s
}

func overlaps(a, b Bound) bool {
	alo, ahi := a.Min(), a.Max()
	blo, bhi := b.Min(), b.Max()
	for i := 0; i < 3; i++ {
		if max(alo[i], blo[i]) >= min(ahi[i], bhi[i]) {
			return false
		}
	}
	return true
}

func inside(inner, outer Bound) bool {
	ilo, ihi := inner.Min(), inner.Max()
	olo, ohi := outer.Min(), outer.Max()
	for i := 0; i < 3; i++ {
		if ilo[i] < olo[i] || ihi[i] > ohi[i] {
			return false
		}
	}
	return true
}

var viewers = []mgl32.Vec3{
	{0, 0, 0},
	{7.5, -3.25, 100.1},
	{-250, 40, 13},
	{31.9, 32, -0.01},
}

// TestOctreeTiling verifies leaves cover the root exactly with no overlaps.
func TestOctreeTiling(t *testing.T) {
	for _, v := range viewers {
		o := BuildOctree(v, 16, 16)
		root := o.Root()
		var sum int64
		leaves := o.Leaves()
		for i, a := range leaves {
			if !inside(a, root) {
				t.Fatalf("viewer %v: leaf %v outside root %v", v, a, root)
			}
			sum += volume(a)
			for _, b := range leaves[i+1:] {
				if overlaps(a, b) {
					t.Fatalf("viewer %v: leaves %v and %v overlap", v, a, b)
				}
			}
		}
		if sum != volume(root) {
			t.Errorf("viewer %v: leaf volume %d, root volume %d", v, sum, volume(root))
		}
		if !root.Contains(v) {
			t.Errorf("viewer %v not inside root %v", v, root)
		}
	}
}

// TestOctreeBalance verifies touching leaves differ by at most one doubling.
func TestOctreeBalance(t *testing.T) {
	for _, v := range viewers {
		leaves := BuildOctree(v, 16, 16).Leaves()
		for i, a := range leaves {
			for _, b := range leaves[i+1:] {
				if !a.Touches(b) {
					continue
				}
				if a.Size > 2*b.Size || b.Size > 2*a.Size {
					t.Fatalf("viewer %v: %v touches %v", v, a, b)
				}
			}
		}
	}
}

// TestOctreeLODGrowsWithDistance verifies detail falls off away from the viewer.
func TestOctreeLODGrowsWithDistance(t *testing.T) {
	for _, v := range viewers {
		o := BuildOctree(v, 16, 32)
		leaf, ok := o.LeafAt(v)
		if !ok {
			t.Fatalf("viewer %v has no leaf", v)
		}
		if leaf.Size != 16 {
			t.Errorf("viewer leaf size got %d, want 16", leaf.Size)
		}
		sizes := map[int]bool{}
		for _, b := range o.Leaves() {
			sizes[b.Size] = true
			d := b.Distance(v)
			if b.Size > 16 && d <= float32(b.Size) {
				t.Errorf("leaf %v at distance %v should have been split", b, d)
			}
			if b.Size < o.Root().Size && d > 3*float32(b.Size) {
				t.Errorf("leaf %v at distance %v is finer than needed", b, d)
			}
		}
		if len(sizes) < 3 {
			t.Errorf("viewer %v: expected several LODs, got sizes %v", v, sizes)
		}
	}
}

// TestOctreeEndToEnd covers viewer at origin with multiplier 4.
func TestOctreeEndToEnd(t *testing.T) {
	o := BuildOctree(mgl32.Vec3{}, 16, 4)
	root := o.Root()
	if root.Size != 64 {
		t.Fatalf("root size got %d, want 64", root.Size)
	}
	if root.Center != [3]int{0, 0, 0} {
		t.Errorf("root center got %v, want origin", root.Center)
	}
	for _, b := range o.Leaves() {
		if b.Size != 16 {
			t.Errorf("leaf %v: all leaves touch the viewer's octants and should be base size", b)
		}
		if LODForDistance([]float64{50, 100, 200}, float64(b.Distance(mgl32.Vec3{}))) != 0 {
			t.Errorf("leaf %v should be within the first threshold", b)
		}
	}
	if len(o.Leaves()) != 64 {
		t.Errorf("leaf count got %d, want 64", len(o.Leaves()))
	}
}

// TestLeafAt verifies point queries and misses.
func TestLeafAt(t *testing.T) {
	o := BuildOctree(mgl32.Vec3{}, 16, 16)
	for _, b := range o.Leaves() {
		got, ok := o.LeafAt(b.CenterVec())
		if !ok || got != b {
			t.Fatalf("LeafAt(%v) got %v ok=%v, want %v", b.CenterVec(), got, ok, b)
		}
		lo := b.Min()
		got, _ = o.LeafAt(mgl32.Vec3{float32(lo[0]), float32(lo[1]), float32(lo[2])})
		if got != b {
			t.Fatalf("min corner of %v resolved to %v", b, got)
		}
	}
	if _, ok := o.LeafAt(mgl32.Vec3{1000, 0, 0}); ok {
		t.Errorf("point outside root should miss")
	}
	// max face is exclusive
	hi := o.Root().Max()
	if _, ok := o.LeafAt(mgl32.Vec3{float32(hi[0]), 0, 0}); ok {
		t.Errorf("root max face should be exclusive")
	}
}

// TestTransitionMaskMatchesNeighbours verifies a face bit is set iff the
// neighbouring leaf is strictly larger.
func TestTransitionMaskMatchesNeighbours(t *testing.T) {
	o := BuildOctree(mgl32.Vec3{}, 16, 16)

	fine := BoundFromMin([3]int{48, 0, 0}, 16)
	if got, _ := o.LeafAt(fine.CenterVec()); got != fine {
		t.Fatalf("expected %v to be a leaf, got %v", fine, got)
	}
	if m := o.TransitionMask(fine); !m.Has(PosX) || m.Has(NegX) {
		t.Errorf("mask of %v got %v, want +x only", fine, m)
	}
	inner := BoundFromMin([3]int{0, 0, 0}, 16)
	if m := o.TransitionMask(inner); m != 0 {
		t.Errorf("mask of %v got %v, want none", inner, m)
	}

	transitions := 0
	for _, b := range o.Leaves() {
		m := o.TransitionMask(b)
		for _, f := range Faces {
			p := b.CenterVec()
			if f.Positive() {
				p[f.Axis()] += float32(b.Size)
			} else {
				p[f.Axis()] -= float32(b.Size)
			}
			nb, ok := o.LeafAt(p)
			want := ok && nb.Size > b.Size
			if m.Has(f) != want {
				t.Fatalf("leaf %v face %v: bit %v, neighbour %v ok=%v", b, f, m.Has(f), nb, ok)
			}
			if want {
				transitions++
				if nb.Size != 2*b.Size {
					t.Errorf("leaf %v face %v: neighbour %v more than one LOD coarser", b, f, nb)
				}
			}
		}
	}
	if transitions == 0 {
		t.Errorf("expected some transition faces")
	}
}

// TestBoundHelpers covers LOD, containment and octants.
func TestBoundHelpers(t *testing.T) {
	b := Bound{Center: [3]int{32, 32, 32}, Size: 64}
	if got := b.LOD(16); got != 2 {
		t.Errorf("LOD got %d, want 2", got)
	}
	if !b.Contains(mgl32.Vec3{0, 0, 0}) || b.Contains(mgl32.Vec3{64, 0, 0}) {
		t.Errorf("containment should be half-open")
	}
	var sum int64
	for i := 0; i < 8; i++ {
		c := b.Octant(i)
		if c.Size != 32 || !inside(c, b) {
			t.Fatalf("octant %d = %v", i, c)
		}
		sum += volume(c)
	}
	if sum != volume(b) {
		t.Errorf("octants do not tile parent")
	}
	if got := b.Distance(mgl32.Vec3{70, 10, -3}); got != 6 {
		t.Errorf("distance got %v, want 6", got)
	}
	if !b.Touches(BoundFromMin([3]int{64, 0, 0}, 32)) {
		t.Errorf("face neighbour should touch")
	}
	if b.Touches(BoundFromMin([3]int{64, 64, 0}, 32)) {
		t.Errorf("edge neighbour should not count as touching")
	}
	if m := FaceMask(0).With(PosX).With(NegZ); m.String() != "+x|-z" {
		t.Errorf("mask string got %q", m.String())
	}
}

func BenchmarkBuildOctree(b *testing.B) {
	v := mgl32.Vec3{12.5, 3, -40}
	for i := 0; i < b.N; i++ {
		BuildOctree(v, 16, 64)
	}
}
