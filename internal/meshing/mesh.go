package meshing

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// MeshBuffer is one chunk's triangle mesh. Positions are on the world
// lattice (the renderer applies the world scale), so neighbouring chunks
// produce bit-identical positions on shared boundaries.
type MeshBuffer struct {
	Vertices []mgl32.Vec3
	Normals  []mgl32.Vec3
	Indices  []uint32
}

// VertexCount returns the number of vertices.
func (m *MeshBuffer) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *MeshBuffer) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *MeshBuffer) IsEmpty() bool {
	return len(m.Indices) == 0
}

// Validate checks the index buffer: whole triangles, indices in range,
// three distinct corners per triangle, one normal per vertex.
func (m *MeshBuffer) Validate() error {
	if len(m.Normals) != len(m.Vertices) {
		return errors.Errorf("mesh has %d vertices but %d normals", len(m.Vertices), len(m.Normals))
	}
	if len(m.Indices)%3 != 0 {
		return errors.Errorf("index count %d is not a multiple of 3", len(m.Indices))
	}
	n := uint32(len(m.Vertices))
	for t := 0; t < len(m.Indices); t += 3 {
		a, b, c := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		if a >= n || b >= n || c >= n {
			return errors.Errorf("triangle %d references vertex outside [0,%d): %d %d %d", t/3, n, a, b, c)
		}
		if a == b || b == c || a == c {
			return errors.Errorf("triangle %d is degenerate: %d %d %d", t/3, a, b, c)
		}
	}
	return nil
}

// Bounds returns the axis-aligned box around all vertices.
func (m *MeshBuffer) Bounds() (lo, hi mgl32.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], v[i])
			hi[i] = max(hi[i], v[i])
		}
	}
	return lo, hi
}

// Interleaved returns x,y,z,nx,ny,nz per vertex for GPU upload.
func (m *MeshBuffer) Interleaved() []float32 {
	out := make([]float32, 0, len(m.Vertices)*VertexStride)
	for i, v := range m.Vertices {
		n := m.Normals[i]
		out = append(out, v[0], v[1], v[2], n[0], n[1], n[2])
	}
	return out
}

// VertexStride is the number of floats per interleaved vertex.
const VertexStride = 6
