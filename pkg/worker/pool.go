// Package worker provides a bounded goroutine pool for fire-and-forget work.
// Request handlers never spawn naked goroutines; they submit to a Pool so
// background work is bounded, panics are recovered and shutdown can drain it.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/ghuser/medtrace/pkg/logger"
)

// ErrPoolFull is returned by a non-blocking pool when every worker is busy.
var ErrPoolFull = errors.New("worker pool is full")

// ErrPoolClosed is returned when submitting to a released pool.
var ErrPoolClosed = errors.New("worker pool is closed")

const shutdownTimeout = 30 * time.Second

// Task is a context-aware unit of work.
type Task func(ctx context.Context)

// Config controls pool sizing.
type Config struct {
	Name string
	Size int
	// Nonblocking makes Submit fail fast with ErrPoolFull instead of waiting
	// for a free worker.
	Nonblocking bool
	IdleExpiry  time.Duration
}

// Pool wraps ants.Pool with context-aware submission.
type Pool struct {
	pool *ants.Pool
	name string
	log  logger.Logger

	// serviceCtx outlives requests; it is cancelled on Shutdown.
	serviceCtx    context.Context
	serviceCancel context.CancelFunc
}

// Stats is a point-in-time view of pool usage.
type Stats struct {
	Running int `json:"running"`
	Free    int `json:"free"`
	Cap     int `json:"cap"`
}

// New creates a pool bound to the lifetime of ctx.
func New(ctx context.Context, cfg Config, log logger.Logger) (*Pool, error) {
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("worker: pool %q size must be positive", cfg.Name)
	}
	if cfg.IdleExpiry <= 0 {
		cfg.IdleExpiry = 10 * time.Second
	}

	serviceCtx, serviceCancel := context.WithCancel(ctx)
	p := &Pool{
		name:          cfg.Name,
		log:           log.With("pool", cfg.Name),
		serviceCtx:    serviceCtx,
		serviceCancel: serviceCancel,
	}

	ap, err := ants.NewPool(cfg.Size,
		ants.WithPanicHandler(p.recoverPanic),
		ants.WithNonblocking(cfg.Nonblocking),
		ants.WithExpiryDuration(cfg.IdleExpiry),
	)
	if err != nil {
		serviceCancel()
		return nil, fmt.Errorf("worker: create pool %q: %w", cfg.Name, err)
	}
	p.pool = ap
	return p, nil
}

// Submit runs task with the caller's ctx. A task whose ctx is cancelled while
// queued is skipped.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.submit(func() {
		if ctx.Err() != nil {
			p.log.DebugContext(ctx, "worker: task skipped, context cancelled", "error", ctx.Err())
			return
		}
		task(ctx)
	})
}

// SubmitDetached runs task with the pool's service context. Use it for work
// that must outlive the request that triggered it, such as audit writes.
//
// An accepted task always runs. If it starts after Shutdown gave up waiting
// its ctx is already cancelled, so it should fail fast and hand its work off.
func (p *Pool) SubmitDetached(task Task) error {
	return p.submit(func() {
		task(p.serviceCtx)
	})
}

// Stats reports current pool usage.
func (p *Pool) Stats() Stats {
	return Stats{Running: p.pool.Running(), Free: p.pool.Free(), Cap: p.pool.Cap()}
}

// Shutdown stops accepting tasks and waits up to shutdownTimeout for the
// accepted ones to finish. Only then is the service context cancelled, so
// detached tasks still running past the deadline see ctx.Done.
func (p *Pool) Shutdown() {
	p.shutdown(shutdownTimeout)
}

func (p *Pool) shutdown(timeout time.Duration) {
	defer p.serviceCancel()
	if p.pool.IsClosed() {
		return
	}
	if err := p.pool.ReleaseTimeout(timeout); err != nil {
		p.log.Warn("worker: pool shutdown timed out", "error", err, "running", p.pool.Running())
	}
}

func (p *Pool) submit(fn func()) error {
	err := p.pool.Submit(fn)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ants.ErrPoolOverload):
		return ErrPoolFull
	case errors.Is(err, ants.ErrPoolClosed):
		return ErrPoolClosed
	default:
		return fmt.Errorf("worker: submit to %q: %w", p.name, err)
	}
}

func (p *Pool) recoverPanic(v any) {
	p.log.Error("worker: panic recovered", "panic", v, "stack", string(debug.Stack()))
}
