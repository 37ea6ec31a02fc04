package graphics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// TestCameraDefaultsLookAlongNegZ verifies the initial yaw faces -z.
func TestCameraDefaultsLookAlongNegZ(t *testing.T) {
	c := NewCamera(900, 600)
	if !c.Front().ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5) {
		t.Fatalf("front got %v, want (0,0,-1)", c.Front())
	}
	if !c.Right().ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-5) {
		t.Fatalf("right got %v, want (1,0,0)", c.Right())
	}
	if c.AspectRatio != 1.5 {
		t.Errorf("aspect got %v, want 1.5", c.AspectRatio)
	}
	c.SetViewport(0, 0)
	if c.AspectRatio != 1.5 {
		t.Errorf("zero viewport changed aspect to %v", c.AspectRatio)
	}
}

// TestCameraPitchClamped verifies pitch never passes straight up or down.
func TestCameraPitchClamped(t *testing.T) {
	c := NewCamera(100, 100)
	c.Look(0, -10000)
	if c.Pitch != 89 {
		t.Errorf("pitch got %v, want 89", c.Pitch)
	}
	c.Look(0, 10000)
	if c.Pitch != -89 {
		t.Errorf("pitch got %v, want -89", c.Pitch)
	}
}

// TestCameraMove verifies movement covers exactly the requested distance.
func TestCameraMove(t *testing.T) {
	c := NewCamera(100, 100)
	c.Move(1, 1, 0, 10)
	if l := c.Position.Len(); l < 9.999 || l > 10.001 {
		t.Errorf("diagonal move covered %v, want 10", l)
	}
	c.Position = mgl32.Vec3{}
	c.Move(0, 0, 1, 3)
	if !c.Position.ApproxEqual(mgl32.Vec3{0, 3, 0}) {
		t.Errorf("vertical move got %v", c.Position)
	}
	c.Move(0, 0, 0, 5)
	if !c.Position.ApproxEqual(mgl32.Vec3{0, 3, 0}) {
		t.Errorf("zero move changed position to %v", c.Position)
	}
}

// TestViewMatrixMapsFrontToNegZ verifies a point ahead lands on the view
// axis.
func TestViewMatrixMapsFrontToNegZ(t *testing.T) {
	c := NewCamera(100, 100)
	c.Position = mgl32.Vec3{5, 2, 1}
	c.Look(137, -45)
	ahead := c.Position.Add(c.Front().Mul(4))
	v := c.GetViewMatrix().Mul4x1(ahead.Vec4(1)).Vec3()
	if !v.ApproxEqualThreshold(mgl32.Vec3{0, 0, -4}, 1e-4) {
		t.Errorf("view space point got %v, want (0,0,-4)", v)
	}
}
