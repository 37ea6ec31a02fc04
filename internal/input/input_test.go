package input

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// TestKeyEdges verifies held state and single-frame press edges.
func TestKeyEdges(t *testing.T) {
	im := NewInputManager()
	im.HandleKeyEvent(glfw.KeyW, glfw.Press)
	if !im.IsActive(ActionMoveForward) || !im.JustPressed(ActionMoveForward) {
		t.Fatalf("W press not registered")
	}
	im.HandleKeyEvent(glfw.KeyW, glfw.Repeat)
	im.PostUpdate()
	if !im.IsActive(ActionMoveForward) {
		t.Errorf("W should still be held")
	}
	if im.JustPressed(ActionMoveForward) {
		t.Errorf("press edge should clear after PostUpdate")
	}
	im.HandleKeyEvent(glfw.KeyW, glfw.Release)
	if im.IsActive(ActionMoveForward) {
		t.Errorf("W should be released")
	}
}

// TestAxis verifies opposing actions cancel out.
func TestAxis(t *testing.T) {
	im := NewInputManager()
	im.HandleKeyEvent(glfw.KeyA, glfw.Press)
	if v := im.Axis(ActionMoveRight, ActionMoveLeft); v != -1 {
		t.Errorf("axis got %v, want -1", v)
	}
	im.HandleKeyEvent(glfw.KeyRight, glfw.Press)
	if v := im.Axis(ActionMoveRight, ActionMoveLeft); v != 0 {
		t.Errorf("axis got %v, want 0", v)
	}
}

// TestMouseDelta verifies motion accumulates and the first event is only a
// reference point.
func TestMouseDelta(t *testing.T) {
	im := NewInputManager()
	im.HandleCursorEvent(100, 100)
	im.HandleCursorEvent(110, 95)
	im.HandleCursorEvent(112, 90)
	dx, dy := im.MouseDelta()
	if dx != 12 || dy != -10 {
		t.Errorf("delta got (%v,%v), want (12,-10)", dx, dy)
	}
	if dx, dy := im.MouseDelta(); dx != 0 || dy != 0 {
		t.Errorf("delta should clear, got (%v,%v)", dx, dy)
	}
	im.ResetCursor()
	im.HandleCursorEvent(500, 500)
	if dx, dy := im.MouseDelta(); dx != 0 || dy != 0 {
		t.Errorf("reset should swallow the jump, got (%v,%v)", dx, dy)
	}
}

func TestUnboundKeyIgnored(t *testing.T) {
	im := NewInputManager()
	im.UnbindKey(glfw.KeyF)
	im.HandleKeyEvent(glfw.KeyF, glfw.Press)
	if im.IsActive(ActionToggleWireframe) {
		t.Errorf("unbound key changed state")
	}
	im.BindKey(glfw.KeyF, ActionCount)
	im.HandleKeyEvent(glfw.KeyF, glfw.Press)
	if im.IsActive(ActionCount) {
		t.Errorf("out of range action should never be active")
	}
}
