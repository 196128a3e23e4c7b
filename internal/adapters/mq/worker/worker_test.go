package worker_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/hoopsrank/internal/adapters/mq/queue"
	"github.com/okian/hoopsrank/internal/adapters/mq/worker"
	"github.com/okian/hoopsrank/pkg/logger"
)

func newPool(workers, capacity int, opts ...worker.Option) (*worker.Pool, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	q := queue.NewInMemoryQueue[worker.Job](queue.WithCapacity(capacity))
	p := worker.NewPool(workers, q, opts...)
	p.Start(ctx)
	return p, cancel
}

func TestPoolDo(t *testing.T) {
	convey.Convey("Given a started pool of four workers", t, func() {
		p, cancel := newPool(4, 64)
		defer cancel()
		ctx := context.Background()

		convey.So(p.Size(), convey.ShouldEqual, 4)

		convey.Convey("When a batch of jobs is run", func() {
			results := make([]int, 20)
			jobs := make([]worker.Job, len(results))
			for i := range jobs {
				jobs[i] = worker.Job{Name: "square", Run: func(context.Context) error {
					results[i] = i * i
					return nil
				}}
			}
			err := p.Do(ctx, jobs)

			convey.Convey("Then every result is written in place", func() {
				convey.So(err, convey.ShouldBeNil)
				for i, r := range results {
					convey.So(r, convey.ShouldEqual, i*i)
				}
			})
		})

		convey.Convey("When jobs fail", func() {
			errFirst, errSecond := errors.New("first"), errors.New("second")
			var done atomic.Int32
			jobs := []worker.Job{
				{Name: "ok", Run: func(context.Context) error { return nil }},
				{Name: "a", Run: func(context.Context) error { return errFirst }},
				{Name: "b", Run: func(context.Context) error { return errSecond }, Done: func(error) { done.Add(1) }},
			}
			err := p.Do(ctx, jobs)

			convey.Convey("Then the first failure in submission order is returned", func() {
				convey.So(errors.Is(err, errFirst), convey.ShouldBeTrue)
				convey.So(done.Load(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a job panics", func() {
			err := p.Do(ctx, []worker.Job{{Name: "boom", Run: func(context.Context) error { panic("boom") }}})

			convey.Convey("Then the panic becomes an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "boom")
			})
		})
	})

	convey.Convey("Given a pool that was never started", t, func() {
		q := queue.NewInMemoryQueue[worker.Job]()
		p := worker.NewPool(2, q)

		convey.Convey("Then Do refuses work", func() {
			err := p.Do(context.Background(), []worker.Job{{Run: func(context.Context) error { return nil }}})
			convey.So(errors.Is(err, worker.ErrNotStarted), convey.ShouldBeTrue)
		})

		convey.Convey("Then Shutdown completes queued jobs with ErrStopped", func() {
			var got error
			convey.So(q.Enqueue(context.Background(), worker.Job{
				Run:  func(context.Context) error { return nil },
				Done: func(err error) { got = err },
			}), convey.ShouldBeTrue)
			convey.So(p.Shutdown(context.Background()), convey.ShouldBeNil)
			convey.So(errors.Is(got, worker.ErrStopped), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a pool whose queue cannot hold the batch", t, func() {
		block := make(chan struct{})
		p, cancel := newPool(1, 1)
		defer cancel()

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Do(context.Background(), []worker.Job{{Run: func(context.Context) error { <-block; return nil }}})
		}()
		time.Sleep(50 * time.Millisecond)

		jobs := make([]worker.Job, 3)
		for i := range jobs {
			jobs[i] = worker.Job{Run: func(context.Context) error { return nil }}
		}
		errc := make(chan error, 1)
		go func() { errc <- p.Do(context.Background(), jobs) }()
		time.Sleep(50 * time.Millisecond)
		close(block)
		wg.Wait()

		convey.Convey("Then the batch is refused as full", func() {
			convey.So(errors.Is(<-errc, worker.ErrQueueFull), convey.ShouldBeTrue)
		})
	})
}

func TestPoolShutdown(t *testing.T) {
	convey.Convey("Given a started pool with queued work", t, func() {
		var buf bytes.Buffer
		p, cancel := newPool(2, 16, worker.WithLogger(logger.New(&buf, slog.LevelDebug)))
		defer cancel()
		ctx := context.Background()

		var ran atomic.Int32
		jobs := make([]worker.Job, 8)
		for i := range jobs {
			jobs[i] = worker.Job{Run: func(context.Context) error { ran.Add(1); return nil }}
		}
		convey.So(p.Do(ctx, jobs), convey.ShouldBeNil)

		convey.Convey("When the pool shuts down", func() {
			sctx, scancel := context.WithTimeout(ctx, time.Second)
			defer scancel()
			convey.So(p.Shutdown(sctx), convey.ShouldBeNil)

			convey.Convey("Then later batches are refused", func() {
				convey.So(ran.Load(), convey.ShouldEqual, 8)
				err := p.Do(ctx, jobs)
				convey.So(errors.Is(err, worker.ErrStopped), convey.ShouldBeTrue)
				convey.So(p.Shutdown(ctx), convey.ShouldBeNil)
			})
		})
	})
}
