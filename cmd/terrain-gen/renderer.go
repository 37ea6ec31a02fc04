package main

import (
	"lodterrain/internal/meshing"
	"lodterrain/internal/world"

	"github.com/google/uuid"
)

// countingRenderer stands in for a GPU in headless runs.
type countingRenderer struct {
	objects   int
	meshes    int
	triangles int
	visible   map[uuid.UUID]bool
	colliders int
}

func (r *countingRenderer) CreateObject(uuid.UUID, world.Bound, float32) {
	r.objects++
}

func (r *countingRenderer) AssignMesh(_ uuid.UUID, mesh *meshing.MeshBuffer) {
	r.meshes++
	r.triangles += mesh.TriangleCount()
}

func (r *countingRenderer) SetVisible(id uuid.UUID, visible bool) {
	if r.visible == nil {
		r.visible = make(map[uuid.UUID]bool)
	}
	r.visible[id] = visible
}

func (r *countingRenderer) AssignCollider(uuid.UUID, *meshing.MeshBuffer) {
	r.colliders++
}

func (r *countingRenderer) drawn() int {
	n := 0
	for _, v := range r.visible {
		if v {
			n++
		}
	}
	return n
}
