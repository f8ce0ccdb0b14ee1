// Package dispatch executes blocking units of work on a bounded pool of
// worker goroutines. Request handlers submit store calls through the pool
// instead of running them inline, which caps the number of concurrently
// executing database operations and queues the rest.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ErrPoolClosed is returned when work is submitted after Close.
var ErrPoolClosed = errors.New("dispatch: pool is closed")

const (
	DefaultWorkers   = 4
	DefaultQueueSize = 32
)

type job func()

// Pool runs submitted jobs on a fixed set of worker goroutines fed from
// a bounded channel. Once every worker is busy and the channel is full,
// submission blocks the calling goroutine until a slot frees; the pool
// itself never grows.
type Pool struct {
	jobs    chan job
	workers int
	logger  zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool creates a pool with the given worker count and queue capacity.
// Non-positive values fall back to the package defaults.
func NewPool(workers, queueSize int, logger zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	return &Pool{
		jobs:    make(chan job, queueSize),
		workers: workers,
		logger:  logger.With().Str("component", "dispatch").Logger(),
	}
}

// Start launches the worker goroutines. Call exactly once, before any Do.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	p.logger.Info().
		Int("workers", p.workers).
		Int("queue_size", cap(p.jobs)).
		Msg("dispatch pool started")
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		j()
	}
}

// Close stops accepting new work, waits for every already accepted job
// to finish, and stops the workers. Safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	close(p.jobs)
	p.wg.Wait()

	p.logger.Info().Msg("dispatch pool stopped")
}

// submit enqueues a job, blocking while the queue is full. It returns
// ctx.Err() if the caller gives up before a slot frees, or ErrPoolClosed
// after Close. An accepted job is guaranteed to run.
func (p *Pool) submit(ctx context.Context, j job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.jobs <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type result[T any] struct {
	value T
	err   error
}

// Do submits fn to the pool and blocks the calling goroutine until fn
// has completed or ctx is done.
//
// fn receives a context derived from ctx with cancellation stripped: an
// abandoned call keeps running on its worker and its result is
// discarded, it is never interrupted mid-operation. Errors returned by
// fn come back to the caller unchanged: the pool does not retry and
// does not reclassify failures. A panic inside fn is recovered and
// returned as an error so a misbehaving job cannot take a worker down.
func Do[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	// Buffered so the worker can always deliver, even when the caller
	// has already gone away.
	res := make(chan result[T], 1)
	jobCtx := context.WithoutCancel(ctx)

	err := p.submit(ctx, func() {
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error().Interface("panic_value", r).Msg("recovered panic in dispatched job")
				res <- result[T]{err: fmt.Errorf("dispatch: job panicked: %v", r)}
			}
		}()

		value, err := fn(jobCtx)
		res <- result[T]{value: value, err: err}
	})
	if err != nil {
		return zero, err
	}

	select {
	case r := <-res:
		return r.value, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
