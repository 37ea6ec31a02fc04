package game

import (
	"log"
	"sync/atomic"
	"time"

	"lodterrain/internal/config"
	"lodterrain/internal/graphics"
	"lodterrain/internal/input"
	"lodterrain/internal/profiling"
	"lodterrain/internal/terrain"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gopxl/mainthread/v2"
)

var _ terrain.Renderer = (*graphics.TerrainRenderer)(nil)

// App is the interactive viewer. Run drives it from a goroutine other than
// the main thread; every window and GL call is marshalled with mainthread.
type App struct {
	window       *glfw.Window
	inputManager *input.InputManager
	camera       *graphics.Camera
	renderer     *graphics.TerrainRenderer
	streamer     *terrain.Streamer

	focused  atomic.Bool
	viewport atomic.Value // [2]int32 framebuffer size
	released bool

	showProfiling bool
	pacer         *FramePacer
	lastTime      time.Time
	frames        int
	lastFPSCheck  time.Time
}

// NewApp builds the viewer around an open window. The camera starts above
// the configured ground level.
func NewApp(window *glfw.Window, cfg config.Config) (*App, error) {
	r, err := graphics.NewTerrainRenderer()
	if err != nil {
		return nil, err
	}
	r.FogDistance = float32(cfg.MaxViewDistance())
	r.BaseSize = cfg.Mesh.ChunkSize

	var width, height int
	mainthread.Call(func() {
		width, height = window.GetFramebufferSize()
	})
	cam := graphics.NewCamera(width, height)
	cam.FarPlane = float32(cfg.MaxViewDistance()) * 1.5
	cam.Position[1] = float32((cfg.Noise.GroundLevel + 8) * cfg.Mesh.WorldScale)

	a := &App{
		window:       window,
		inputManager: input.NewInputManager(),
		camera:       cam,
		renderer:     r,
		streamer:     terrain.New(cfg, r),
		pacer:        NewFramePacer(),
		lastTime:     time.Now(),
		lastFPSCheck: time.Now(),
	}
	a.focused.Store(true)
	a.viewport.Store([2]int32{int32(width), int32(height)})
	a.streamer.Subscribe(func(e terrain.Event) {
		if e.Kind == terrain.BuildFailed {
			log.Printf("[viewer] %v", e)
		}
	})
	mainthread.Call(func() { SetupInputHandlers(a) })
	return a, nil
}

// Run loops until the window is closed or quit is pressed.
func (a *App) Run() {
	defer a.shutdown()
	for !a.shouldClose() {
		a.tick()
	}
}

func (a *App) shouldClose() bool {
	var done bool
	mainthread.Call(func() { done = a.window.ShouldClose() })
	return done
}

func (a *App) tick() {
	profiling.ResetFrame()
	startTick := time.Now() // Measure pure processing time
	dt := startTick.Sub(a.lastTime)
	a.lastTime = startTick

	mainthread.Call(glfw.PollEvents)

	a.handleActions()
	a.updateCamera(dt)
	a.streamer.Tick(dt, a.camera.Position)

	vp := a.viewport.Load().([2]int32)
	a.camera.SetViewport(int(vp[0]), int(vp[1]))
	wireframe := config.GetWireframe()
	mainthread.Call(func() {
		gl.ClearColor(0.62, 0.75, 0.90, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		a.renderer.Render(a.camera, wireframe)
		a.window.SwapBuffers()
	})

	// Check if frame took too long
	processingDuration := time.Since(startTick)
	if a.showProfiling && processingDuration > 16*time.Millisecond {
		log.Printf("[viewer] slow frame: %v. Top tasks: %s", processingDuration, profiling.TopN(5))
	}
	a.countFrame()

	a.inputManager.PostUpdate() // Clear "JustPressed" flags
	a.pacer.Pace(!a.focused.Load())
}

func (a *App) handleActions() {
	im := a.inputManager
	if im.JustPressed(input.ActionQuit) {
		mainthread.Call(func() { a.window.SetShouldClose(true) })
	}
	if im.JustPressed(input.ActionToggleWireframe) {
		config.ToggleWireframe()
	}
	if im.JustPressed(input.ActionToggleColliders) {
		a.renderer.ShowColliders = !a.renderer.ShowColliders
	}
	if im.JustPressed(input.ActionToggleBounds) {
		a.renderer.ShowBounds = !a.renderer.ShowBounds
	}
	if im.JustPressed(input.ActionToggleProfiling) {
		a.showProfiling = !a.showProfiling
	}
	if im.JustPressed(input.ActionSpeedUp) {
		config.SetMoveSpeed(config.GetMoveSpeed() * 2)
	}
	if im.JustPressed(input.ActionSpeedDown) {
		config.SetMoveSpeed(config.GetMoveSpeed() / 2)
	}
	if im.JustPressed(input.ActionReleaseMouse) {
		a.released = !a.released
		mode := glfw.CursorDisabled
		if a.released {
			mode = glfw.CursorNormal
		}
		mainthread.Call(func() { a.window.SetInputMode(glfw.CursorMode, mode) })
		im.ResetCursor()
	}
}

func (a *App) updateCamera(dt time.Duration) {
	im := a.inputManager
	dx, dy := im.MouseDelta()
	if !a.released {
		a.camera.Look(dx, dy)
	}

	speed := config.GetMoveSpeed()
	if im.IsActive(input.ActionFast) {
		speed *= 4
	}
	a.camera.Move(
		im.Axis(input.ActionMoveForward, input.ActionMoveBackward),
		im.Axis(input.ActionMoveRight, input.ActionMoveLeft),
		im.Axis(input.ActionMoveUp, input.ActionMoveDown),
		speed*float32(dt.Seconds()),
	)
}

func (a *App) countFrame() {
	a.frames++
	if time.Since(a.lastFPSCheck) < time.Second {
		return
	}
	st := a.streamer.Stats()
	objects, visible, colliders := a.renderer.Counts()
	log.Printf("[viewer] fps=%d pos=%.1f,%.1f,%.1f chunks=%d visible=%d queued=%d generating=%d objects=%d shown=%d drawn=%d colliders=%d late=%d bands=%v",
		a.frames, a.camera.Position[0], a.camera.Position[1], a.camera.Position[2],
		st.Chunks, st.Visible, st.Queued, st.Generating, objects, visible, a.renderer.Drawn(), colliders, a.pacer.Late(), st.Bands)
	if err := a.streamer.CheckStalls(); err != nil {
		log.Printf("[viewer] %v", err)
	}
	a.frames = 0
	a.lastFPSCheck = time.Now()
}

func (a *App) shutdown() {
	a.streamer.Shutdown()
	a.renderer.Dispose()
}
