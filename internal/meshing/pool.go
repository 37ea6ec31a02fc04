package meshing

import (
	"context"
	"sync"
	"sync/atomic"

	"lodterrain/internal/profiling"

	"github.com/pkg/errors"
)

// Batch is a group of chunks built back to back on one worker goroutine.
type Batch struct {
	Seq  int
	Jobs []BuildJob
}

// WorkerPool runs each dispatched batch on its own short-lived goroutine and
// pushes every result to the completion queue. There is no cancellation: a
// dispatched batch always runs to the end.
type WorkerPool struct {
	builder     *ChunkBuilder
	completions Completions
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	inFlight    atomic.Int64
	dispatched  atomic.Int64
}

// NewWorkerPool creates a pool that builds with builder and reports to
// completions.
func NewWorkerPool(builder *ChunkBuilder, completions Completions) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		builder:     builder,
		completions: completions,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Dispatch starts a worker for the batch. It returns false once the pool
// has been shut down.
func (p *WorkerPool) Dispatch(b Batch) bool {
	if p.ctx.Err() != nil {
		return false
	}
	p.wg.Add(1)
	p.inFlight.Add(1)
	p.dispatched.Add(1)
	go p.worker(b)
	return true
}

func (p *WorkerPool) worker(b Batch) {
	defer p.wg.Done()
	defer p.inFlight.Add(-1)
	defer profiling.Track("meshing.WorkerPool.batch")()

	for _, job := range b.Jobs {
		p.completions.Push(p.build(job))
	}
}

// build turns a panic into a failed result so nothing unwinds past the
// worker.
func (p *WorkerPool) build(job BuildJob) (res BuildResult) {
	defer func() {
		if r := recover(); r != nil {
			res = BuildResult{
				ID:    job.ID,
				Bound: job.Bound,
				Err:   errors.Errorf("build %v: %v", job.Bound, r),
			}
		}
	}()
	return p.builder.Build(job)
}

// Shutdown rejects further batches and waits for running ones to finish.
func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

// InFlight returns the number of batches still running.
func (p *WorkerPool) InFlight() int {
	return int(p.inFlight.Load())
}

// Dispatched returns the number of batches accepted so far.
func (p *WorkerPool) Dispatched() int {
	return int(p.dispatched.Load())
}
