package terrain

import (
	"fmt"

	"lodterrain/internal/world"

	"github.com/google/uuid"
)

// EventKind identifies a streamer state transition.
type EventKind int

const (
	OctreeRebuilt EventKind = iota
	ChunkCreated
	BatchDispatched
	ChunkBuilt
	ChunkShown
	ChunkHidden
	ColliderAssigned
	BuildFailed
)

var eventNames = [...]string{
	OctreeRebuilt:    "octree-rebuilt",
	ChunkCreated:     "chunk-created",
	BatchDispatched:  "batch-dispatched",
	ChunkBuilt:       "chunk-built",
	ChunkShown:       "chunk-shown",
	ChunkHidden:      "chunk-hidden",
	ColliderAssigned: "collider-assigned",
	BuildFailed:      "build-failed",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event records one transition produced by a tick. Chunk and Bound are set
// for per-chunk events; Batch and Count for BatchDispatched; Count is the
// leaf count for OctreeRebuilt.
type Event struct {
	Kind  EventKind
	Chunk uuid.UUID
	Bound world.Bound
	Batch int
	Count int
	Err   error
}

func (e Event) String() string {
	switch e.Kind {
	case OctreeRebuilt:
		return fmt.Sprintf("%v leaves=%d", e.Kind, e.Count)
	case BatchDispatched:
		return fmt.Sprintf("%v seq=%d chunks=%d", e.Kind, e.Batch, e.Count)
	case BuildFailed:
		return fmt.Sprintf("%v %v: %v", e.Kind, e.Bound, e.Err)
	}
	return fmt.Sprintf("%v %v", e.Kind, e.Bound)
}

// Observer receives every event after a tick has finished mutating state.
type Observer func(Event)

// Subscribe registers o. Observers run on the ticking goroutine in
// registration order.
func (s *Streamer) Subscribe(o Observer) {
	s.observers = append(s.observers, o)
}

func (s *Streamer) notify(events []Event) {
	for _, e := range events {
		for _, o := range s.observers {
			o(e)
		}
	}
}
