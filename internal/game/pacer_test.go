package game

import (
	"testing"
	"time"

	"lodterrain/internal/config"
)

type fakeClock struct {
	t     time.Time
	slept []time.Duration
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.t = c.t.Add(d)
}

func newTestPacer(c *fakeClock) *FramePacer {
	return &FramePacer{now: c.now, sleep: c.sleep}
}

func TestFrameInterval(t *testing.T) {
	cases := []struct {
		limit int
		idle  bool
		want  time.Duration
	}{
		{0, false, 0},
		{50, false, 20 * time.Millisecond},
		{0, true, time.Second / idleFPS},
		{144, true, time.Second / idleFPS},
		{10, true, 100 * time.Millisecond},
	}
	for _, tc := range cases {
		if got := frameInterval(tc.limit, tc.idle); got != tc.want {
			t.Errorf("frameInterval(%d, %v) got %v, want %v", tc.limit, tc.idle, got, tc.want)
		}
	}
}

// TestPacerSleepsToSlot verifies fast frames sleep out the rest of their
// slot and keep a steady schedule.
func TestPacerSleepsToSlot(t *testing.T) {
	old := config.GetFPSLimit()
	defer config.SetFPSLimit(old)
	config.SetFPSLimit(50)

	c := &fakeClock{t: time.Unix(100, 0)}
	p := newTestPacer(c)
	if !p.Pace(false) {
		t.Fatalf("first frame reported late")
	}
	c.t = c.t.Add(5 * time.Millisecond) // work
	if !p.Pace(false) {
		t.Fatalf("fast frame reported late")
	}
	want := []time.Duration{20 * time.Millisecond, 15 * time.Millisecond}
	if len(c.slept) != 2 || c.slept[0] != want[0] || c.slept[1] != want[1] {
		t.Errorf("slept %v, want %v", c.slept, want)
	}
	if p.Late() != 0 {
		t.Errorf("late got %d, want 0", p.Late())
	}
}

// TestPacerResyncsAfterHitch verifies a long frame is counted and the next
// frame gets a full slot instead of a catch-up burst.
func TestPacerResyncsAfterHitch(t *testing.T) {
	old := config.GetFPSLimit()
	defer config.SetFPSLimit(old)
	config.SetFPSLimit(50)

	c := &fakeClock{t: time.Unix(100, 0)}
	p := newTestPacer(c)
	p.Pace(false)
	c.t = c.t.Add(70 * time.Millisecond)
	if p.Pace(false) {
		t.Fatalf("hitch frame not reported late")
	}
	if p.Late() != 1 {
		t.Errorf("late got %d, want 1", p.Late())
	}
	n := len(c.slept)
	p.Pace(false)
	if len(c.slept) != n+1 || c.slept[n] != 20*time.Millisecond {
		t.Errorf("after hitch slept %v, want a full 20ms slot", c.slept[n:])
	}
}

// TestPacerUnlimited verifies an unlimited, focused loop never sleeps.
func TestPacerUnlimited(t *testing.T) {
	old := config.GetFPSLimit()
	defer config.SetFPSLimit(old)
	config.SetFPSLimit(0)

	c := &fakeClock{t: time.Unix(100, 0)}
	p := newTestPacer(c)
	for i := 0; i < 3; i++ {
		p.Pace(false)
	}
	if len(c.slept) != 0 {
		t.Errorf("unlimited pacer slept %v", c.slept)
	}
	p.Pace(true)
	if len(c.slept) != 1 {
		t.Errorf("idle pacer should sleep once, slept %v", c.slept)
	}
}
