package graphics

import (
	_ "embed"

	"lodterrain/internal/meshing"
	"lodterrain/internal/profiling"
	"lodterrain/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/gopxl/mainthread/v2"
)

var (
	//go:embed shaders/terrain.vert
	terrainVertShader string
	//go:embed shaders/terrain.frag
	terrainFragShader string
)

var (
	colliderTint = mgl32.Vec3{1.0, 0.85, 0.85}
	plainTint    = mgl32.Vec3{1, 1, 1}
)

type chunkObject struct {
	model   mgl32.Mat4
	vao     uint32
	vbo     uint32
	ebo     uint32
	count   int32
	visible bool
	// lo and hi are the world-space box used for frustum culling.
	lo, hi mgl32.Vec3
	lod    int
	// collider is the triangle count of the assigned collision mesh.
	collider int
}

// TerrainRenderer draws chunk meshes. Its streamer-facing methods may be
// called from any goroutine: GL work is marshalled onto the main thread.
// Render itself must already run there.
type TerrainRenderer struct {
	shader  *Shader
	bounds  *boundsOutline
	objects map[uuid.UUID]*chunkObject
	drawn   int

	LightDir    mgl32.Vec3
	FogDistance float32
	// ShowColliders tints chunks that carry a collision mesh.
	ShowColliders bool
	// ShowBounds outlines every drawn chunk, colored by LOD.
	ShowBounds bool
	// BaseSize is the full-detail chunk edge in lattice units.
	BaseSize int
}

// NewTerrainRenderer compiles the terrain shader on the main thread.
func NewTerrainRenderer() (*TerrainRenderer, error) {
	r := &TerrainRenderer{
		objects:     make(map[uuid.UUID]*chunkObject),
		LightDir:    mgl32.Vec3{-0.4, -1, -0.3},
		FogDistance: 400,
		BaseSize:    16,
	}
	err := mainthread.CallErr(func() error {
		var err error
		r.shader, err = NewShader(terrainVertShader, terrainFragShader)
		if err != nil {
			return err
		}
		r.bounds, err = newBoundsOutline()
		return err
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// CreateObject registers a hidden, empty renderable for a chunk. Mesh
// vertices are already in lattice space, so the model matrix only scales.
func (r *TerrainRenderer) CreateObject(id uuid.UUID, b world.Bound, scale float32) {
	lo, hi := b.Min(), b.Max()
	r.objects[id] = &chunkObject{
		lod:   b.LOD(r.BaseSize),
		model: mgl32.Scale3D(scale, scale, scale),
		lo:    mgl32.Vec3{float32(lo[0]), float32(lo[1]), float32(lo[2])}.Mul(scale),
		hi:    mgl32.Vec3{float32(hi[0]), float32(hi[1]), float32(hi[2])}.Mul(scale),
	}
}

// AssignMesh uploads mesh as the object's geometry.
func (r *TerrainRenderer) AssignMesh(id uuid.UUID, mesh *meshing.MeshBuffer) {
	obj, ok := r.objects[id]
	if !ok || mesh.IsEmpty() {
		return
	}
	data := mesh.Interleaved()
	indices := mesh.Indices
	mainthread.Call(func() {
		defer profiling.Track("graphics.TerrainRenderer.upload")()
		if obj.vao == 0 {
			gl.GenVertexArrays(1, &obj.vao)
			gl.GenBuffers(1, &obj.vbo)
			gl.GenBuffers(1, &obj.ebo)
		}
		gl.BindVertexArray(obj.vao)

		gl.BindBuffer(gl.ARRAY_BUFFER, obj.vbo)
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, obj.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

		stride := int32(meshing.VertexStride * 4)
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)

		gl.BindVertexArray(0)
	})
	obj.count = int32(len(indices))
}

// SetVisible toggles drawing of an object.
func (r *TerrainRenderer) SetVisible(id uuid.UUID, visible bool) {
	if obj, ok := r.objects[id]; ok {
		obj.visible = visible
	}
}

// AssignCollider records the collision mesh. There is no physics in the
// viewer; colliders are only visualised.
func (r *TerrainRenderer) AssignCollider(id uuid.UUID, mesh *meshing.MeshBuffer) {
	if obj, ok := r.objects[id]; ok {
		obj.collider = mesh.TriangleCount()
	}
}

// Render draws every visible object. Call on the main thread.
func (r *TerrainRenderer) Render(cam *Camera, wireframe bool) {
	defer profiling.Track("graphics.TerrainRenderer.Render")()
	view := cam.GetViewMatrix()
	proj := cam.GetProjectionMatrix()

	frustum := NewFrustum(proj.Mul4(view))
	r.drawn = 0

	r.shader.Use()
	r.shader.SetMatrix4("view", &view)
	r.shader.SetMatrix4("proj", &proj)
	r.shader.SetVector3("lightDir", r.LightDir)
	r.shader.SetVector3("viewPos", cam.Position)
	r.shader.SetFloat("fogDistance", r.FogDistance)

	if wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	for _, obj := range r.objects {
		if !obj.visible || obj.count == 0 {
			continue
		}
		if !frustum.IntersectsAABB(obj.lo, obj.hi) {
			continue
		}
		r.drawn++
		tint := plainTint
		if r.ShowColliders && obj.collider > 0 {
			tint = colliderTint
		}
		r.shader.SetVector3("tint", tint)
		r.shader.SetMatrix4("model", &obj.model)
		gl.BindVertexArray(obj.vao)
		gl.DrawElementsWithOffset(gl.TRIANGLES, obj.count, gl.UNSIGNED_INT, 0)
	}

	if r.ShowBounds {
		r.bounds.begin(&view, &proj)
		for _, obj := range r.objects {
			if obj.visible && frustum.IntersectsAABB(obj.lo, obj.hi) {
				r.bounds.draw(obj.lo, obj.hi, lodColor(obj.lod))
			}
		}
	}
	gl.BindVertexArray(0)
}

// Drawn returns how many objects survived culling in the last Render.
func (r *TerrainRenderer) Drawn() int {
	return r.drawn
}

// Counts returns the number of objects, visible objects and colliders.
func (r *TerrainRenderer) Counts() (objects, visible, colliders int) {
	for _, obj := range r.objects {
		objects++
		if obj.visible {
			visible++
		}
		if obj.collider > 0 {
			colliders++
		}
	}
	return objects, visible, colliders
}

// Dispose cleans up OpenGL resources
func (r *TerrainRenderer) Dispose() {
	mainthread.Call(func() {
		for _, obj := range r.objects {
			if obj.vao != 0 {
				gl.DeleteVertexArrays(1, &obj.vao)
				gl.DeleteBuffers(1, &obj.vbo)
				gl.DeleteBuffers(1, &obj.ebo)
			}
		}
		r.shader.Delete()
		r.bounds.dispose()
	})
	r.objects = make(map[uuid.UUID]*chunkObject)
}
