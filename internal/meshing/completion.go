package meshing

import "sync"

// Completions carries finished builds from workers to the owning goroutine.
// Push may be called from any goroutine; Drain only from the owner.
type Completions interface {
	Push(BuildResult)
	Drain() []BuildResult
}

// CompletionQueue is a mutex-guarded multi-producer, single-consumer queue.
type CompletionQueue struct {
	mu    sync.Mutex
	items []BuildResult
}

// NewCompletionQueue creates an empty queue.
func NewCompletionQueue() *CompletionQueue {
	return &CompletionQueue{}
}

// Push appends a result.
func (q *CompletionQueue) Push(r BuildResult) {
	q.mu.Lock()
	q.items = append(q.items, r)
	q.mu.Unlock()
}

// Drain removes and returns everything queued so far, in push order.
func (q *CompletionQueue) Drain() []BuildResult {
	q.mu.Lock()
	out := q.items
	q.items = nil
	q.mu.Unlock()
	return out
}

// Len returns the number of queued results.
func (q *CompletionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
