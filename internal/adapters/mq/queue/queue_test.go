package queue_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/okian/hoopsrank/internal/adapters/mq/queue"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue with capacity 2", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue[string](queue.WithCapacity(2))

		Convey("When two items are enqueued", func() {
			So(q.Enqueue(ctx, "a"), ShouldBeTrue)
			So(q.Enqueue(ctx, "b"), ShouldBeTrue)

			Convey("Then a third is refused", func() {
				So(q.Enqueue(ctx, "c"), ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})

			Convey("Then they dequeue in order", func() {
				ch := q.Dequeue(ctx)
				So(<-ch, ShouldEqual, "a")
				So(<-ch, ShouldEqual, "b")
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, "a"), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueue fails and queued items still drain", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, "b"), ShouldBeFalse)

				var got []string
				for item := range q.Dequeue(ctx) {
					got = append(got, item)
				}
				So(got, ShouldResemble, []string{"a"})
			})
		})

		Convey("When the dequeue context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			ch := q.Dequeue(cctx)
			cancel()

			Convey("Then the channel closes", func() {
				select {
				case _, ok := <-ch:
					So(ok, ShouldBeFalse)
				case <-time.After(time.Second):
					So("timeout", ShouldBeEmpty)
				}
			})
		})
	})

	Convey("Given concurrent producers", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue[int](queue.WithCapacity(1000))

		var wg sync.WaitGroup
		for p := 0; p < 10; p++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					q.Enqueue(ctx, i)
				}
			}()
		}
		wg.Wait()

		Convey("Then every item is queued", func() {
			So(q.Len(ctx), ShouldEqual, 1000)
		})
	})
}
