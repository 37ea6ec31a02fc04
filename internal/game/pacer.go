package game

import (
	"time"

	"lodterrain/internal/config"
)

// idleFPS caps the loop while the window is unfocused.
const idleFPS = 30

// frameInterval returns the frame period for an FPS limit. Zero means
// unlimited, which idle windows never are.
func frameInterval(limit int, idle bool) time.Duration {
	if idle && (limit <= 0 || limit > idleFPS) {
		limit = idleFPS
	}
	if limit <= 0 {
		return 0
	}
	return time.Second / time.Duration(limit)
}

// FramePacer spaces frames to the configured FPS limit. A frame that runs
// past its slot is counted as late and the schedule restarts from now
// rather than bursting to catch up.
type FramePacer struct {
	deadline time.Time
	late     int

	now   func() time.Time
	sleep func(time.Duration)
}

// NewFramePacer returns a pacer on the wall clock.
func NewFramePacer() *FramePacer {
	return &FramePacer{now: time.Now, sleep: time.Sleep}
}

// Pace blocks until the current frame slot ends. It returns false when the
// frame finished late.
func (p *FramePacer) Pace(idle bool) bool {
	period := frameInterval(config.GetFPSLimit(), idle)
	if period == 0 {
		p.deadline = time.Time{}
		return true
	}
	now := p.now()
	if p.deadline.IsZero() {
		p.deadline = now
	}
	p.deadline = p.deadline.Add(period)

	if wait := p.deadline.Sub(now); wait > 0 {
		p.sleep(wait)
		return true
	}
	p.late++
	if now.Sub(p.deadline) > period {
		p.deadline = now
	}
	return false
}

// Late returns how many frames overran their slot.
func (p *FramePacer) Late() int { return p.late }
