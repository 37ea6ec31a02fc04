package terrain

import (
	"log"
	"sort"
	"strings"
	"time"

	"lodterrain/internal/config"
	"lodterrain/internal/meshing"
	"lodterrain/internal/profiling"
	"lodterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Stats is a snapshot of streamer counters.
type Stats struct {
	Ticks      int
	Elapsed    time.Duration
	Rebuilds   int
	Leaves     int
	Chunks     int
	Queued     int
	Generating int
	Visible    int
	Hidden     int
	Batches    int
	Built      int
	Failed     int
	Colliders  int
	// Added is how many chunks the last rebuild put in the cache.
	Added int
	// Stalls counts stall episodes; one is logged when it starts.
	Stalls int
	// Bands counts visible chunks per LOD threshold band, nearest first.
	Bands []int
}

// Streamer keeps the chunk cache in step with the viewer. It is driven by
// Tick from a single goroutine; only builds run elsewhere.
type Streamer struct {
	cfg         config.Config
	cells       int
	scale       float32
	renderer    Renderer
	dispatcher  Dispatcher
	completions meshing.Completions
	pool        *meshing.WorkerPool

	store     *ChunkStore
	octree    *world.Octree
	queue     []*Chunk
	observers []Observer

	tick        int
	batchSeq    int
	generating  int
	stallLogged bool
	stats       Stats
}

// NoiseSettings converts the noise section of a config.
func NoiseSettings(c config.NoiseConfig) world.NoiseSettings {
	return world.NoiseSettings{
		Seed:          c.Seed,
		Scale:         c.Scale,
		Octaves:       c.Octaves,
		Persistence:   c.Persistence,
		Lacunarity:    c.Lacunarity,
		Offset:        mgl64.Vec3(c.Offset),
		GroundLevel:   c.GroundLevel,
		HeightFalloff: c.HeightFalloff,
		Quantize:      c.Quantize,
	}
}

// New creates a streamer that builds on its own worker pool.
func New(cfg config.Config, r Renderer) *Streamer {
	field := world.NewDensityField(NoiseSettings(cfg.Noise))
	mesher := meshing.Mesher{TransitionWidth: float32(cfg.Mesh.TransitionWidth)}
	builder := meshing.NewChunkBuilder(field, cfg.Mesh.ChunkSize, mesher)
	queue := meshing.NewCompletionQueue()
	pool := meshing.NewWorkerPool(builder, queue)

	s := NewStreamer(cfg, r, pool, queue)
	s.pool = pool
	return s
}

// NewStreamer creates a streamer around explicit collaborators. Results
// pushed to completions by the dispatcher are applied on the next Tick.
func NewStreamer(cfg config.Config, r Renderer, d Dispatcher, completions meshing.Completions) *Streamer {
	if r == nil {
		r = NopRenderer{}
	}
	return &Streamer{
		cfg:         cfg,
		cells:       cfg.Mesh.ChunkSize,
		scale:       float32(cfg.Mesh.WorldScale),
		renderer:    r,
		dispatcher:  d,
		completions: completions,
		store:       NewChunkStore(),
	}
}

// Tick advances the streamer by one frame. viewer is in world units.
func (s *Streamer) Tick(dt time.Duration, viewer mgl32.Vec3) []Event {
	defer profiling.Track("terrain.Streamer.Tick")()
	s.stats.Elapsed += dt

	var events []Event
	lat := viewer.Mul(1 / s.scale)
	if s.octree == nil || float64(lat.Sub(s.octree.Viewer()).Len()*s.scale) > s.cfg.Streaming.ViewerMoveThreshold {
		events = s.rebuild(lat, events)
	}
	events = s.pump(events)
	events = s.assignColliders(lat, events)
	s.reportStalls()

	s.notify(events)
	return events
}

// reportStalls logs once when chunks start stalling and rearms after the
// stall clears.
func (s *Streamer) reportStalls() {
	if s.generating == 0 {
		s.stallLogged = false
		return
	}
	err := s.CheckStalls()
	switch {
	case err == nil:
		s.stallLogged = false
	case !s.stallLogged:
		log.Printf("[terrain] %v", err)
		s.stallLogged = true
		s.stats.Stalls++
	}
}

// culled reports whether b lies beyond the last LOD threshold.
func (s *Streamer) culled(b world.Bound, lat mgl32.Vec3) bool {
	th := s.cfg.Mesh.LODThresholds
	return world.LODForDistance(th, float64(b.Distance(lat)*s.scale)) == len(th)
}

// Pump dispatches queued builds and applies finished ones without looking
// at the viewer.
func (s *Streamer) Pump() []Event {
	events := s.pump(nil)
	s.notify(events)
	return events
}

func (s *Streamer) pump(events []Event) []Event {
	s.tick++
	s.stats.Ticks++
	events = s.dispatch(events)
	return s.drain(events)
}

// Enqueue requests builds for explicit bounds, e.g. to pre-warm the cache.
// Requested chunks stay queued across rebuilds and are shown once built
// unless a later rebuild drops them from the leaf set.
func (s *Streamer) Enqueue(bounds ...world.Bound) {
	for _, b := range bounds {
		c, _ := s.store.GetChunk(b, func() *Chunk { return s.newChunk(b) })
		c.pinned = true
		c.wanted = true
		if c.State == Hidden {
			c.State = Visible
			s.renderer.SetVisible(c.ID, true)
		}
		if c.State == Unrequested && !c.queued {
			c.queued = true
			s.queue = append(s.queue, c)
		}
	}
}

func (s *Streamer) newChunk(b world.Bound) *Chunk {
	var mask world.FaceMask
	if s.octree != nil {
		mask = s.octree.TransitionMask(b)
	}
	return NewChunk(b, s.cells, mask)
}

func (s *Streamer) rebuild(lat mgl32.Vec3, events []Event) []Event {
	defer profiling.Track("terrain.Streamer.rebuild")()
	s.octree = world.BuildOctree(lat, s.cells, s.cfg.Streaming.RenderDistance)
	s.stats.Rebuilds++
	before := s.store.GetModCount()
	defer func() { s.stats.Added = int(s.store.GetModCount() - before) }()

	var leaves []world.Bound
	wanted := make(map[world.Bound]bool)
	for _, b := range s.octree.Leaves() {
		if s.culled(b, lat) {
			continue
		}
		leaves = append(leaves, b)
		wanted[b] = true
	}
	s.stats.Leaves = len(leaves)
	events = append(events, Event{Kind: OctreeRebuilt, Count: len(leaves)})

	for _, c := range s.store.GetAllChunks() {
		if wanted[c.Bound] || !c.wanted {
			continue
		}
		c.wanted = false
		if c.State == Visible {
			c.State = Hidden
			s.renderer.SetVisible(c.ID, false)
			events = append(events, Event{Kind: ChunkHidden, Chunk: c.ID, Bound: c.Bound})
		}
	}

	for _, b := range leaves {
		c, created := s.store.GetChunk(b, func() *Chunk { return s.newChunk(b) })
		c.wanted = true
		if created {
			events = append(events, Event{Kind: ChunkCreated, Chunk: c.ID, Bound: b})
			continue
		}
		if c.State == Hidden {
			c.State = Visible
			s.renderer.SetVisible(c.ID, true)
			events = append(events, Event{Kind: ChunkShown, Chunk: c.ID, Bound: b})
		}
	}

	// Requeue from scratch: wanted or pinned chunks not yet dispatched,
	// closest first.
	for _, c := range s.queue {
		c.queued = false
	}
	s.queue = s.queue[:0]
	for _, c := range s.store.GetAllChunks() {
		if c.State == Unrequested && (c.wanted || c.pinned) {
			c.queued = true
			s.queue = append(s.queue, c)
		}
	}
	sort.SliceStable(s.queue, func(i, j int) bool {
		return s.queue[i].Bound.Distance(lat) < s.queue[j].Bound.Distance(lat)
	})
	return events
}

func (s *Streamer) dispatch(events []Event) []Event {
	per := s.cfg.Streaming.ChunksPerBatch
	for n := 0; n < s.cfg.Streaming.BatchesPerTick && len(s.queue) > 0; n++ {
		k := min(per, len(s.queue))
		batch := meshing.Batch{Seq: s.batchSeq, Jobs: make([]meshing.BuildJob, k)}
		for i, c := range s.queue[:k] {
			batch.Jobs[i] = c.job()
			c.State = Generating
			c.dispatchedTick = s.tick
		}
		if !s.dispatcher.Dispatch(batch) {
			for _, c := range s.queue[:k] {
				c.State = Unrequested
			}
			log.Printf("[terrain] batch %d rejected, %d chunks stay queued", batch.Seq, len(s.queue))
			break
		}
		// Renderables exist only for chunks that will get a mesh.
		for _, c := range s.queue[:k] {
			c.queued = false
			s.renderer.CreateObject(c.ID, c.Bound, s.scale)
		}
		s.queue = s.queue[k:]
		s.generating += k
		s.batchSeq++
		s.stats.Batches++
		events = append(events, Event{Kind: BatchDispatched, Batch: batch.Seq, Count: k})
	}
	return events
}

func (s *Streamer) drain(events []Event) []Event {
	for _, r := range s.completions.Drain() {
		c, ok := s.store.ByID(r.ID)
		if !ok {
			log.Printf("[terrain] dropping result for unknown chunk %v", r.Bound)
			continue
		}
		if c.State != Generating {
			log.Printf("[terrain] dropping duplicate result for %v (%v)", c.Bound, c.State)
			continue
		}
		if r.Err != nil {
			s.stats.Failed++
			log.Printf("[terrain] build %v failed: %v", c.Bound, r.Err)
			events = append(events, Event{Kind: BuildFailed, Chunk: c.ID, Bound: c.Bound, Err: r.Err})
			continue
		}

		c.Grid = r.Grid
		c.Mesh = r.Mesh
		c.builds++
		s.generating--
		s.stats.Built++
		s.renderer.AssignMesh(c.ID, r.Mesh)
		events = append(events, Event{Kind: ChunkBuilt, Chunk: c.ID, Bound: c.Bound})

		if c.wanted {
			c.State = Visible
			s.renderer.SetVisible(c.ID, true)
			events = append(events, Event{Kind: ChunkShown, Chunk: c.ID, Bound: c.Bound})
		} else {
			c.State = Hidden
		}
	}
	return events
}

// Colliders go to visible chunks at or below the collider LOD whose bound
// is within collider_distance base chunks of the viewer.
func (s *Streamer) assignColliders(lat mgl32.Vec3, events []Event) []Event {
	limit := float32(s.cfg.Streaming.ColliderDistance) * float32(s.cells)
	var near []*Chunk
	for _, c := range s.store.GetAllChunks() {
		if c.State != Visible || c.HasCollider || c.LOD > s.cfg.Mesh.ColliderLOD {
			continue
		}
		if c.Mesh.IsEmpty() || c.Bound.Distance(lat) > limit {
			continue
		}
		near = append(near, c)
	}
	sort.SliceStable(near, func(i, j int) bool {
		return near[i].Bound.Distance(lat) < near[j].Bound.Distance(lat)
	})
	for _, c := range near {
		c.HasCollider = true
		s.stats.Colliders++
		s.renderer.AssignCollider(c.ID, c.Mesh)
		events = append(events, Event{Kind: ColliderAssigned, Chunk: c.ID, Bound: c.Bound})
	}
	return events
}

// CheckStalls returns an error naming every chunk that has been generating
// for more than stall_ticks ticks.
func (s *Streamer) CheckStalls() error {
	var stalled []string
	for _, c := range s.store.GetAllChunks() {
		if c.State == Generating && s.tick-c.dispatchedTick > s.cfg.Streaming.StallTicks {
			stalled = append(stalled, c.Bound.String())
		}
	}
	if len(stalled) == 0 {
		return nil
	}
	return errors.Errorf("%d chunks generating for more than %d ticks: %s",
		len(stalled), s.cfg.Streaming.StallTicks, strings.Join(stalled, ", "))
}

// Chunk returns the cached chunk for b.
func (s *Streamer) Chunk(b world.Bound) (*Chunk, bool) {
	c, _ := s.store.GetChunk(b, nil)
	return c, c != nil
}

// Chunks returns every cached chunk ordered by bound.
func (s *Streamer) Chunks() []*Chunk {
	return s.store.GetAllChunks()
}

// Pending returns the number of chunks waiting to be dispatched.
func (s *Streamer) Pending() int {
	return len(s.queue)
}

// Idle reports whether nothing is queued or generating.
func (s *Streamer) Idle() bool {
	return len(s.queue) == 0 && s.generating == 0
}

// Octree returns the current partition, or nil before the first Tick.
func (s *Streamer) Octree() *world.Octree {
	return s.octree
}

// Stats returns a snapshot of the counters.
func (s *Streamer) Stats() Stats {
	st := s.stats
	st.Chunks = s.store.Len()
	st.Queued = len(s.queue)
	st.Generating = s.generating
	st.Bands = make([]int, len(s.cfg.Mesh.LODThresholds))
	for _, c := range s.store.GetAllChunks() {
		switch c.State {
		case Visible:
			st.Visible++
			if s.octree != nil {
				d := float64(c.Bound.Distance(s.octree.Viewer()) * s.scale)
				if i := world.LODForDistance(s.cfg.Mesh.LODThresholds, d); i < len(st.Bands) {
					st.Bands[i]++
				}
			}
		case Hidden:
			st.Hidden++
		}
	}
	return st
}

// Shutdown waits for in-flight builds when the streamer owns its pool.
func (s *Streamer) Shutdown() {
	if s.pool != nil {
		s.pool.Shutdown()
	}
}
