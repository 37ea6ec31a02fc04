package terrain

import (
	"sort"
	"sync"

	"lodterrain/internal/world"

	"github.com/google/uuid"
)

// ChunkStore caches chunks by bound. Chunks are never evicted.
type ChunkStore struct {
	chunks   map[world.Bound]*Chunk
	byID     map[uuid.UUID]*Chunk
	mu       sync.RWMutex
	modCount uint64 // Increases on every add
}

// NewChunkStore creates an empty store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[world.Bound]*Chunk),
		byID:   make(map[uuid.UUID]*Chunk),
	}
}

// GetChunk returns the chunk for b. If it doesn't exist and create is
// non-nil, create builds it and the result is stored.
func (cs *ChunkStore) GetChunk(b world.Bound, create func() *Chunk) (*Chunk, bool) {
	cs.mu.RLock()
	c, ok := cs.chunks[b]
	cs.mu.RUnlock()
	if ok || create == nil {
		return c, false
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if existing, ok := cs.chunks[b]; ok {
		return existing, false
	}
	c = create()
	cs.chunks[b] = c
	cs.byID[c.ID] = c
	cs.modCount++
	return c, true
}

// ByID returns the chunk with the given renderable id.
func (cs *ChunkStore) ByID(id uuid.UUID) (*Chunk, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	c, ok := cs.byID[id]
	return c, ok
}

// GetAllChunks returns every cached chunk ordered by bound.
func (cs *ChunkStore) GetAllChunks() []*Chunk {
	cs.mu.RLock()
	out := make([]*Chunk, 0, len(cs.chunks))
	for _, c := range cs.chunks {
		out = append(out, c)
	}
	cs.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return boundLess(out[i].Bound, out[j].Bound) })
	return out
}

// Len returns the number of cached chunks.
func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// GetModCount returns the current modification count of the chunk map.
func (cs *ChunkStore) GetModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}

func boundLess(a, b world.Bound) bool {
	if a.Size != b.Size {
		return a.Size < b.Size
	}
	for i := 0; i < 3; i++ {
		if a.Center[i] != b.Center[i] {
			return a.Center[i] < b.Center[i]
		}
	}
	return false
}
