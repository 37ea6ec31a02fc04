package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Per-frame CPU accounting. Workers and the tick goroutine both record here,
// so every access goes through mu.

type entry struct {
	total time.Duration
	calls int
}

var (
	mu     sync.Mutex
	frame  = make(map[string]entry)
	totals = make(map[string]entry)
)

// Track returns a stop function that records the elapsed time under name.
// Usage: defer profiling.Track("terrain.Streamer.Tick")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		e := frame[name]
		e.total += d
		e.calls++
		frame[name] = e
		t := totals[name]
		t.total += d
		t.calls++
		totals[name] = t
		mu.Unlock()
	}
}

// ResetFrame clears the per-frame totals. Call at the start of each tick.
func ResetFrame() {
	mu.Lock()
	clear(frame)
	mu.Unlock()
}

// ResetAll clears per-frame and cumulative totals.
func ResetAll() {
	mu.Lock()
	clear(frame)
	clear(totals)
	mu.Unlock()
}

// Snapshot returns a copy of the current per-frame durations.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(frame))
	for k, v := range frame {
		out[k] = v.total
	}
	return out
}

// Calls returns how many times name was recorded since the last ResetAll.
func Calls(name string) int {
	mu.Lock()
	defer mu.Unlock()
	return totals[name].calls
}

// TopN formats the n most expensive entries of the current frame.
// Example: "terrain.Streamer.Tick:4.2ms, meshing.Build:2.1ms"
func TopN(n int) string {
	return format(Snapshot(), n, false)
}

// TopNTotal is TopN over the cumulative totals, with call counts.
func TopNTotal(n int) string {
	mu.Lock()
	ss := make(map[string]time.Duration, len(totals))
	for k, v := range totals {
		ss[k] = v.total
	}
	mu.Unlock()
	return format(ss, n, true)
}

func format(ss map[string]time.Duration, n int, withCalls bool) string {
	type pair struct {
		name string
		dur  time.Duration
	}
	list := make([]pair, 0, len(ss))
	for k, v := range ss {
		list = append(list, pair{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].dur != list[j].dur {
			return list[i].dur > list[j].dur
		}
		return list[i].name < list[j].name
	})
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ms := float64(list[i].dur.Microseconds()) / 1000.0
		s := fmt.Sprintf("%s:%.1fms", list[i].name, ms)
		if withCalls {
			s += fmt.Sprintf("(x%d)", Calls(list[i].name))
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}
