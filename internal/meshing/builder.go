package meshing

import (
	"time"

	"lodterrain/internal/profiling"
	"lodterrain/internal/world"

	"github.com/google/uuid"
)

// BuildJob is the immutable snapshot a worker needs to build one chunk.
type BuildJob struct {
	ID    uuid.UUID
	Bound world.Bound
	Mask  world.FaceMask
}

// BuildResult is handed from a worker back to the owner. The grid and mesh
// belong to the receiver.
type BuildResult struct {
	ID      uuid.UUID
	Bound   world.Bound
	Grid    *world.DensityGrid
	Mesh    *MeshBuffer
	Elapsed time.Duration
	Err     error
}

// ChunkBuilder runs density generation then surface extraction for a chunk.
type ChunkBuilder struct {
	field  *world.DensityField
	mesher Mesher
	cells  int
}

// NewChunkBuilder returns a builder producing cells^3 cells per chunk.
func NewChunkBuilder(field *world.DensityField, cells int, mesher Mesher) *ChunkBuilder {
	return &ChunkBuilder{field: field, mesher: mesher, cells: cells}
}

// Build generates the chunk described by job. It only reads shared state
// and is safe to call from any goroutine.
func (b *ChunkBuilder) Build(job BuildJob) BuildResult {
	defer profiling.Track("meshing.ChunkBuilder.Build")()
	start := time.Now()
	grid := b.field.Generate(world.ChunkGridSpec(job.Bound, b.cells))
	mesh := b.mesher.Build(grid, b.cells, job.Mask)
	return BuildResult{
		ID:      job.ID,
		Bound:   job.Bound,
		Grid:    grid,
		Mesh:    mesh,
		Elapsed: time.Since(start),
	}
}
