package graphics

import (
	_ "embed"

	"lodterrain/internal/profiling"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	//go:embed shaders/bounds.vert
	boundsVertShader string
	//go:embed shaders/bounds.frag
	boundsFragShader string
)

// lodColors cycles by detail level, finest first.
var lodColors = []mgl32.Vec3{
	{0.1, 0.9, 0.2},
	{0.95, 0.85, 0.1},
	{0.95, 0.45, 0.1},
	{0.9, 0.1, 0.1},
	{0.6, 0.1, 0.8},
}

// lodColor returns the outline color for a chunk of the given LOD.
func lodColor(lod int) mgl32.Vec3 {
	if lod < 0 {
		lod = 0
	}
	return lodColors[lod%len(lodColors)]
}

// boundsOutline draws unit-cube edges scaled onto chunk boxes.
type boundsOutline struct {
	shader *Shader
	vao    uint32
	vbo    uint32
}

// newBoundsOutline must run on the main thread.
func newBoundsOutline() (*boundsOutline, error) {
	shader, err := NewShader(boundsVertShader, boundsFragShader)
	if err != nil {
		return nil, err
	}
	b := &boundsOutline{shader: shader}

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)
	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)

	vertices := []float32{
		// Bottom face
		0, 0, 0, 1, 0, 0,
		1, 0, 0, 1, 0, 1,
		1, 0, 1, 0, 0, 1,
		0, 0, 1, 0, 0, 0,

		// Top face
		0, 1, 0, 1, 1, 0,
		1, 1, 0, 1, 1, 1,
		1, 1, 1, 0, 1, 1,
		0, 1, 1, 0, 1, 0,

		// Connecting edges
		0, 0, 0, 0, 1, 0,
		1, 0, 0, 1, 1, 0,
		1, 0, 1, 1, 1, 1,
		0, 0, 1, 0, 1, 1,
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.BindVertexArray(0)
	return b, nil
}

func (b *boundsOutline) begin(view, proj *mgl32.Mat4) {
	b.shader.Use()
	b.shader.SetMatrix4("view", view)
	b.shader.SetMatrix4("proj", proj)
	gl.BindVertexArray(b.vao)
	gl.LineWidth(1.0)
}

// draw outlines the box [lo, hi] shrunk slightly so shared faces of
// neighbours stay distinguishable.
func (b *boundsOutline) draw(lo, hi mgl32.Vec3, color mgl32.Vec3) {
	defer profiling.Track("graphics.boundsOutline.draw")()
	size := hi.Sub(lo).Mul(0.995)
	model := mgl32.Translate3D(lo.X(), lo.Y(), lo.Z()).Mul4(mgl32.Scale3D(size.X(), size.Y(), size.Z()))
	b.shader.SetMatrix4("model", &model)
	b.shader.SetVector3("color", color)
	gl.DrawArrays(gl.LINES, 0, 24) // 24 vertices for cube wireframe
}

func (b *boundsOutline) dispose() {
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
	}
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
	}
	b.shader.Delete()
}
