package game

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// SetupInputHandlers installs window callbacks. Callbacks run on the main
// thread during PollEvents, so they only touch the input manager and GL.
func SetupInputHandlers(app *App) {
	window := app.window
	app.inputManager.SetCallbacks(window)

	window.SetFocusCallback(func(w *glfw.Window, focused bool) {
		app.focused.Store(focused)
	})

	// Framebuffer size callback
	window.SetFramebufferSizeCallback(func(w *glfw.Window, fbWidth, fbHeight int) {
		gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
		app.viewport.Store([2]int32{int32(fbWidth), int32(fbHeight)})
	})
}
