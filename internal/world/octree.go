package world

import (
	"math"

	"lodterrain/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

// Octree partitions the region around a viewer into chunk bounds. Nodes
// close to the viewer are split until they reach the base chunk size, so
// leaf size grows with distance. A tree is built once and never mutated;
// moving the viewer means building a new one.
type Octree struct {
	root   octreeNode
	base   int
	viewer mgl32.Vec3
	leaves []Bound
}

type octreeNode struct {
	bound    Bound
	children *[8]octreeNode
}

// BuildOctree builds the partition for a viewer. The root edge is
// base*multiplier; multiplier must be a power of two.
func BuildOctree(viewer mgl32.Vec3, base, multiplier int) *Octree {
	defer profiling.Track("world.BuildOctree")()
	if base < 2 {
		base = 2
	}
	if multiplier < 1 {
		multiplier = 1
	}
	size := base * multiplier

	var lo [3]int
	half := float64(multiplier) / 2
	for i := 0; i < 3; i++ {
		lo[i] = int(math.Floor(float64(viewer[i])/float64(base)+0.5-half)) * base
	}

	o := &Octree{
		root:   octreeNode{bound: BoundFromMin(lo, size)},
		base:   base,
		viewer: viewer,
	}
	o.split(&o.root)
	return o
}

// A node splits when it is larger than a base chunk and the viewer is
// within one node edge of it (Chebyshev distance). Neighbouring leaves can
// then differ by at most one doubling.
func (o *Octree) split(n *octreeNode) {
	if n.bound.Size <= o.base || n.bound.Distance(o.viewer) > float32(n.bound.Size) {
		o.leaves = append(o.leaves, n.bound)
		return
	}
	n.children = new([8]octreeNode)
	for i := range n.children {
		n.children[i].bound = n.bound.Octant(i)
		o.split(&n.children[i])
	}
}

// Root returns the root bound.
func (o *Octree) Root() Bound { return o.root.bound }

// Viewer returns the position the tree was built around.
func (o *Octree) Viewer() mgl32.Vec3 { return o.viewer }

// Leaves returns the leaf bounds in depth-first order. The slice is shared;
// callers must not modify it.
func (o *Octree) Leaves() []Bound { return o.leaves }

// LeafAt returns the leaf containing p, or false when p is outside the root.
func (o *Octree) LeafAt(p mgl32.Vec3) (Bound, bool) {
	n := &o.root
	if !n.bound.Contains(p) {
		return Bound{}, false
	}
	for n.children != nil {
		i := 0
		for axis := 0; axis < 3; axis++ {
			if p[axis] >= float32(n.bound.Center[axis]) {
				i |= 1 << axis
			}
		}
		n = &n.children[i]
	}
	return n.bound, true
}

// TransitionMask flags the faces of b whose neighbouring leaf is strictly
// larger than b. Neighbours outside the root count as not coarser.
func (o *Octree) TransitionMask(b Bound) FaceMask {
	var mask FaceMask
	c := b.CenterVec()
	for _, f := range Faces {
		p := c
		if f.Positive() {
			p[f.Axis()] += float32(b.Size)
		} else {
			p[f.Axis()] -= float32(b.Size)
		}
		nb, ok := o.LeafAt(p)
		if ok && nb.Size > b.Size {
			mask = mask.With(f)
		}
	}
	return mask
}

// LODForDistance returns the index of the first threshold >= d, or
// len(thresholds) when d is beyond the last one.
func LODForDistance(thresholds []float64, d float64) int {
	for i, t := range thresholds {
		if d <= t {
			return i
		}
	}
	return len(thresholds)
}
