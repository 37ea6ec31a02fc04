package config

import "sync"

// ViewerSettings holds settings the demo viewer can change while running.
type ViewerSettings struct {
	mu        sync.RWMutex
	fpsLimit  int
	wireframe bool
	moveSpeed float32
}

var globalViewerSettings = &ViewerSettings{
	fpsLimit:  120,
	moveSpeed: 20,
}

// GetFPSLimit returns the frame cap; 0 means uncapped.
func GetFPSLimit() int {
	globalViewerSettings.mu.RLock()
	defer globalViewerSettings.mu.RUnlock()
	return globalViewerSettings.fpsLimit
}

// SetFPSLimit sets the frame cap.
func SetFPSLimit(limit int) {
	globalViewerSettings.mu.Lock()
	defer globalViewerSettings.mu.Unlock()

	if limit < 0 {
		limit = 0
	}
	if limit > 1000 {
		limit = 1000
	}

	globalViewerSettings.fpsLimit = limit
}

// GetWireframe reports whether chunk meshes are drawn as lines.
func GetWireframe() bool {
	globalViewerSettings.mu.RLock()
	defer globalViewerSettings.mu.RUnlock()
	return globalViewerSettings.wireframe
}

// ToggleWireframe flips wireframe mode and returns the new value.
func ToggleWireframe() bool {
	globalViewerSettings.mu.Lock()
	defer globalViewerSettings.mu.Unlock()
	globalViewerSettings.wireframe = !globalViewerSettings.wireframe
	return globalViewerSettings.wireframe
}

// GetMoveSpeed returns the fly camera speed in world units per second.
func GetMoveSpeed() float32 {
	globalViewerSettings.mu.RLock()
	defer globalViewerSettings.mu.RUnlock()
	return globalViewerSettings.moveSpeed
}

// SetMoveSpeed sets the fly camera speed.
func SetMoveSpeed(speed float32) {
	globalViewerSettings.mu.Lock()
	defer globalViewerSettings.mu.Unlock()

	if speed < 1 {
		speed = 1
	}
	if speed > 500 {
		speed = 500
	}

	globalViewerSettings.moveSpeed = speed
}
