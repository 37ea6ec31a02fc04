package terrain

import (
	"lodterrain/internal/meshing"
	"lodterrain/internal/world"

	"github.com/google/uuid"
)

// Renderer owns the drawable side of chunks. All calls come from the
// goroutine that drives Tick. Objects start hidden.
type Renderer interface {
	CreateObject(id uuid.UUID, bound world.Bound, scale float32)
	AssignMesh(id uuid.UUID, mesh *meshing.MeshBuffer)
	SetVisible(id uuid.UUID, visible bool)
	AssignCollider(id uuid.UUID, mesh *meshing.MeshBuffer)
}

// Dispatcher runs build batches off the ticking goroutine and reports them
// through the streamer's completions. Dispatch returns false when the batch
// was not accepted.
type Dispatcher interface {
	Dispatch(b meshing.Batch) bool
}

// NopRenderer discards every call.
type NopRenderer struct{}

func (NopRenderer) CreateObject(uuid.UUID, world.Bound, float32)  {}
func (NopRenderer) AssignMesh(uuid.UUID, *meshing.MeshBuffer)     {}
func (NopRenderer) SetVisible(uuid.UUID, bool)                    {}
func (NopRenderer) AssignCollider(uuid.UUID, *meshing.MeshBuffer) {}
