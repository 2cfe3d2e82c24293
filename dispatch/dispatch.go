// Package dispatch fans tasks out to a fixed set of workers, deciding each
// task's worker from a phase sample taken at submit time. No shared counter
// and no coordination between submitters and workers: the asynchrony
// between the CPU and the timer is the load balancer.
//
// By default a pool calibrates a CDF router over the live delta
// distribution at construction, so the spread stays near uniform even on
// platforms with heavily skewed timing. WithQuickRoute trades that
// calibration pass for hash-based routing.
//
// The submitting goroutine owns the phase sampling: Submit must not be
// called concurrently. Workers share nothing but their inbox channels.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/triphase/phit"
	phiterrors "github.com/triphase/phit/errors"
)

const (
	// DefaultQueueDepth is the per-worker inbox buffer.
	DefaultQueueDepth = 64

	// DefaultCalibrationSamples is the size of the routing calibration draw
	// taken by NewPool. It costs a few milliseconds at construction.
	DefaultCalibrationSamples = 20000
)

// Task is one unit of work. The context is the pool's: it cancels when the
// pool's parent context cancels or when another task has already failed.
type Task func(ctx context.Context) error

// Option configures a pool.
type Option func(*config)

type config struct {
	queueDepth   int
	quick        bool
	calibSamples int
	samplerOpts  []phit.Option
}

func defaultPoolConfig() *config {
	return &config{
		queueDepth:   DefaultQueueDepth,
		calibSamples: DefaultCalibrationSamples,
	}
}

// WithQueueDepth sets the per-worker inbox buffer. Submit blocks when the
// routed worker's inbox is full. Non-positive values fall back to
// DefaultQueueDepth.
func WithQueueDepth(n int) Option {
	return func(c *config) {
		c.queueDepth = n
	}
}

// WithQuickRoute routes by hashed compound sample instead of a calibrated
// CDF table. Construction skips the calibration draw; routing inherits the
// residual bias of hash uniformity under timing skew.
func WithQuickRoute() Option {
	return func(c *config) {
		c.quick = true
	}
}

// WithCalibrationSamples sets the size of the calibration draw. Ignored
// under WithQuickRoute. Non-positive values fall back to
// DefaultCalibrationSamples.
func WithCalibrationSamples(n int) Option {
	return func(c *config) {
		c.calibSamples = n
	}
}

// WithSamplerOptions forwards options to the pool's internal sampler and
// router, the hook for injecting synthetic clocks and workloads in tests.
func WithSamplerOptions(opts ...phit.Option) Option {
	return func(c *config) {
		c.samplerOpts = append(c.samplerOpts, opts...)
	}
}

// Pool routes submitted tasks onto per-worker inboxes.
type Pool struct {
	route   func() int
	inboxes []chan Task
	counts  []atomic.Uint64

	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// NewPool starts workers goroutines and, unless WithQuickRoute is given,
// calibrates a router over them. ctx bounds the lifetime of all workers.
//
// A calibration draw whose overflow exceeds the router's tolerance is
// accepted: the table is installed regardless, and for load spreading the
// residual last-slot bias is a quality loss rather than a failure.
func NewPool(ctx context.Context, workers int, opts ...Option) (*Pool, error) {
	if workers < 1 {
		return nil, phiterrors.ErrNoWorkers
	}
	c := defaultPoolConfig()
	for _, opt := range opts {
		opt(c)
	}
	if c.queueDepth <= 0 {
		c.queueDepth = DefaultQueueDepth
	}
	if c.calibSamples <= 0 {
		c.calibSamples = DefaultCalibrationSamples
	}

	var route func() int
	if c.quick {
		s := phit.NewSampler(c.samplerOpts...)
		route = func() int { return s.QuickRoute(workers) }
	} else {
		r, err := phit.NewRouter(c.samplerOpts...)
		if err != nil {
			return nil, err
		}
		if _, err := r.Calibrate(workers, c.calibSamples); err != nil &&
			!errors.Is(err, phiterrors.ErrDomainOverflow) {
			return nil, err
		}
		route = r.RouteSample
	}

	// Explicit cancel under the errgroup so Close can release the context
	// after the workers drain.
	wrapped, cancel := context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(wrapped)

	p := &Pool{
		route:   route,
		inboxes: make([]chan Task, workers),
		counts:  make([]atomic.Uint64, workers),
		group:   group,
		ctx:     gctx,
		cancel:  cancel,
	}
	for i := range p.inboxes {
		p.inboxes[i] = make(chan Task, c.queueDepth)
	}
	for i := range p.inboxes {
		p.group.Go(p.workerLoop(i))
	}
	return p, nil
}

func (p *Pool) workerLoop(id int) func() error {
	return func() error {
		for task := range p.inboxes[id] {
			select {
			case <-p.ctx.Done():
				return p.ctx.Err()
			default:
			}
			if err := task(p.ctx); err != nil {
				return fmt.Errorf("worker %d: %w", id, err)
			}
		}
		return nil
	}
}

// Submit routes one task by phase sample and enqueues it on the chosen
// worker's inbox, blocking while that inbox is full. It fails once the pool
// is closed, the parent context is done, or a worker has already failed.
// Submit must only be called from one goroutine.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return phiterrors.ErrNilTask
	}
	if p.closed {
		return phiterrors.ErrPoolClosed
	}
	w := p.route()
	select {
	case p.inboxes[w] <- task:
		p.counts[w].Add(1)
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// Counts returns how many tasks have been routed to each worker.
func (p *Pool) Counts() []uint64 {
	out := make([]uint64, len(p.counts))
	for i := range p.counts {
		out[i] = p.counts[i].Load()
	}
	return out
}

// Close stops intake, lets the workers drain their inboxes and returns the
// first worker error. After a task failure the pool context is cancelled
// and still-queued tasks are abandoned. A second Close reports
// ErrPoolClosed.
func (p *Pool) Close() error {
	if p.closed {
		return phiterrors.ErrPoolClosed
	}
	p.closed = true
	for _, inbox := range p.inboxes {
		close(inbox)
	}
	err := p.group.Wait()
	p.cancel()
	return err
}
