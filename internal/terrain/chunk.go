package terrain

import (
	"lodterrain/internal/meshing"
	"lodterrain/internal/world"

	"github.com/google/uuid"
)

// ChunkState is the build and display state of a chunk.
type ChunkState int

const (
	// Unrequested chunks exist in the cache but have not been dispatched.
	Unrequested ChunkState = iota
	// Generating chunks are on a worker. Failed builds stay here.
	Generating
	Visible
	Hidden
)

func (s ChunkState) String() string {
	switch s {
	case Unrequested:
		return "unrequested"
	case Generating:
		return "generating"
	case Visible:
		return "visible"
	case Hidden:
		return "hidden"
	}
	return "unknown"
}

// Built reports whether the chunk has a mesh.
func (s ChunkState) Built() bool {
	return s == Visible || s == Hidden
}

// Chunk is one cached octree leaf. Its bound and transition mask never
// change; a chunk is built at most once.
type Chunk struct {
	ID    uuid.UUID
	Bound world.Bound
	LOD   int
	Mask  world.FaceMask
	State ChunkState

	Grid        *world.DensityGrid
	Mesh        *meshing.MeshBuffer
	HasCollider bool

	// wanted is true while the bound is a current leaf (or was requested
	// explicitly since the last rebuild).
	wanted bool
	// pinned chunks stay queued across octree rebuilds.
	pinned         bool
	queued         bool
	dispatchedTick int
	builds         int
}

// NewChunk creates an unrequested chunk for bound b. base is the bound
// size at LOD 0.
func NewChunk(b world.Bound, base int, mask world.FaceMask) *Chunk {
	return &Chunk{
		ID:    uuid.Must(uuid.NewV7()),
		Bound: b,
		LOD:   b.LOD(base),
		Mask:  mask,
		State: Unrequested,
	}
}

// Builds returns how many results have been applied to the chunk.
func (c *Chunk) Builds() int { return c.builds }

func (c *Chunk) job() meshing.BuildJob {
	return meshing.BuildJob{ID: c.ID, Bound: c.Bound, Mask: c.Mask}
}
