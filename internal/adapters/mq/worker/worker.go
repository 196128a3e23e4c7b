// Package worker runs independent jobs on a fixed pool of goroutines fed by
// a bounded queue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/itbasis/go-clock"

	"github.com/okian/hoopsrank/internal/adapters/mq/queue"
	"github.com/okian/hoopsrank/pkg/logger"
	"github.com/okian/hoopsrank/pkg/metrics"
)

// Job is one unit of work. Done, when set, receives the result of Run.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
	Done func(err error)
}

// Queue is where workers read jobs from.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// InMemoryWorker runs jobs from a queue until it is shut down.
type InMemoryWorker struct {
	queue  Queue
	name   string
	clock  clock.Clock
	logger logger.Logger

	shutdown chan struct{}
	done     chan struct{}
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(q Queue, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		name:     "worker",
		clock:    clock.New(),
		logger:   logger.Nop(),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run processes jobs until ctx is done, Shutdown is called, or the queue
// closes.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// Shutdown stops the worker and waits for the current job to finish.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, job Job) {
	start := w.clock.Now()
	err := runJob(ctx, job)
	metrics.RecordWorkerJob(float64(w.clock.Now().Sub(start).Microseconds()) / 1000)
	if err != nil {
		w.logger.Error(ctx, "job failed", logger.String("job", job.Name), logger.Error(err))
	}
	if job.Done != nil {
		job.Done(err)
	}
}

func runJob(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name, r)
		}
	}()
	return job.Run(ctx)
}

// Pool manages a fixed set of workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   queue.Queue[Job]
	logger  logger.Logger

	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewPool creates a pool of workerCount workers over q. A count below one
// uses one worker per CPU.
func NewPool(workerCount int, q queue.Queue[Job], opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	base := &InMemoryWorker{logger: logger.Nop()}
	for _, opt := range opts {
		opt(base)
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  base.logger.Named("pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(q, append(opts, WithName("worker-"+strconv.Itoa(i)))...)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start launches every worker. Later calls do nothing.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		for _, w := range p.workers {
			go w.Run(ctx)
		}
		p.started.Store(true)
		p.logger.Debug(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
	})
}

// Do queues jobs and waits for all of them. It returns the first job error
// in submission order. When the queue refuses a job, the jobs already queued
// are awaited and ErrQueueFull or ErrStopped is returned.
func (p *Pool) Do(ctx context.Context, jobs []Job) error {
	if !p.started.Load() {
		return ErrNotStarted
	}
	errs := make([]error, len(jobs))
	var wg sync.WaitGroup
	var refused error
	for i, job := range jobs {
		wg.Add(1)
		inner := job.Done
		job.Done = func(err error) {
			errs[i] = err
			if inner != nil {
				inner(err)
			}
			wg.Done()
		}
		if !p.queue.Enqueue(ctx, job) {
			wg.Done()
			switch {
			case p.queue.IsClosed():
				refused = ErrStopped
			case ctx.Err() != nil:
				refused = ctx.Err()
			default:
				refused = fmt.Errorf("%w: %d of %d jobs queued", ErrQueueFull, i, len(jobs))
			}
			break
		}
	}

	waited := make(chan struct{})
	go func() {
		wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-ctx.Done():
		return ctx.Err()
	}
	if refused != nil {
		return refused
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Shutdown closes the queue and waits for the workers to drain it. Jobs of
// a pool that was never started complete with ErrStopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	var errs []error
	p.stopOnce.Do(func() {
		if err := p.queue.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
		if !p.started.Load() {
			for job := range p.queue.Dequeue(ctx) {
				if job.Done != nil {
					job.Done(ErrStopped)
				}
			}
			return
		}
		for i, w := range p.workers {
			select {
			case <-w.done:
			case <-ctx.Done():
				p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
				errs = append(errs, fmt.Errorf("worker %d: %w", i, ctx.Err()))
			}
		}
	})
	return errors.Join(errs...)
}
