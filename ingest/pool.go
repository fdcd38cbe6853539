// Package ingest drives documents from files, URLs and chat transcripts
// through the normalize/validate funnel into the knowledge store, under
// per-lane concurrency and rate limits.
package ingest

import (
	"context"
	"log/slog"
	"sync"
)

// Job is one unit of lane work. The context is the pool's base context,
// cancelled on shutdown.
type Job func(ctx context.Context)

// Pool is a bounded worker lane with two intake modes: Submit applies
// backpressure and is the default, Enqueue drops on a full queue for
// lanes whose policy is to shed load. The queue channel is never
// closed, so a job running during shutdown can safely attempt another
// submission; it is refused, not panicked on.
type Pool struct {
	name      string
	queue     chan Job
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	logger    *slog.Logger
}

func NewPool(name string, workers, queueSize int, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		name:   name,
		queue:  make(chan Job, queueSize),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}

	return p
}

// Submit hands a job to the lane, blocking until a queue slot frees.
// It reports false only when the pool is shutting down.
func (p *Pool) Submit(job Job) bool {
	select {
	case <-p.done:
		return false
	default:
	}

	select {
	case p.queue <- job:
		return true
	case <-p.done:
		return false
	}
}

// Enqueue submits a job without blocking, reporting false when the lane
// is saturated and the job was dropped, or when the pool is shutting
// down.
func (p *Pool) Enqueue(job Job) bool {
	select {
	case <-p.done:
		return false
	default:
	}

	select {
	case p.queue <- job:
		return true
	case <-p.done:
		return false
	default:
		p.logger.Warn("lane queue full, job dropped", "lane", p.name)
		return false
	}
}

// Close stops intake, lets queued jobs drain, then cancels the lane
// context. Safe to call more than once.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
	})
	p.wg.Wait()

	// A submission racing Close may land after the workers exited;
	// finish whatever is left before cancelling.
	for {
		select {
		case job := <-p.queue:
			job(p.ctx)
		default:
			p.cancel()
			return
		}
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.queue:
			job(p.ctx)
		case <-p.done:
			for {
				select {
				case job := <-p.queue:
					job(p.ctx)
				default:
					return
				}
			}
		}
	}
}
