package positions_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/hoopsrank/internal/domain/model"
	"github.com/okian/hoopsrank/internal/domain/positions"
	"github.com/okian/hoopsrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFromNBA(t *testing.T) {
	Convey("Given provider positions", t, func() {
		Convey("Then hybrids map to both slots", func() {
			slots, ok := positions.FromNBA("Guard-Forward")
			So(ok, ShouldBeTrue)
			So(slots, ShouldResemble, []string{"SG", "SF"})

			slots, ok = positions.FromNBA(" Center ")
			So(ok, ShouldBeTrue)
			So(slots, ShouldResemble, []string{"C"})
		})

		Convey("Then unknown positions are rejected", func() {
			_, ok := positions.FromNBA("Point Forward")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestCache(t *testing.T) {
	Convey("Given a cache over a counting loader", t, func() {
		ctx := context.Background()
		source := map[model.AthleteID][]string{1: {"SG", "PG", "SG"}}
		cache := positions.NewCache(positions.LoaderFunc(func(context.Context) (map[model.AthleteID][]string, error) {
			return source, nil
		}))

		Convey("When read repeatedly", func() {
			p1, err := cache.Get(ctx, 1)
			So(err, ShouldBeNil)
			_, _ = cache.Get(ctx, 2)

			Convey("Then the loader runs once and positions are sorted", func() {
				So(p1, ShouldResemble, []string{"PG", "SG"})
				So(cache.Loads(), ShouldEqual, 1)
				So(cache.Label(ctx, 1), ShouldEqual, "PG, SG")
				So(cache.Label(ctx, 2), ShouldEqual, positions.Unknown)
			})
		})

		Convey("When invalidated after the source changes", func() {
			_, _ = cache.Get(ctx, 1)
			source = map[model.AthleteID][]string{1: {"C"}}
			cache.Invalidate()

			Convey("Then the next read reloads", func() {
				So(cache.Label(ctx, 1), ShouldEqual, "C")
				So(cache.Loads(), ShouldEqual, 2)
			})
		})

		Convey("When reloaded explicitly", func() {
			source = map[model.AthleteID][]string{3: {"PF"}}
			So(cache.Reload(ctx), ShouldBeNil)

			Convey("Then no lazy load follows", func() {
				So(cache.Label(ctx, 3), ShouldEqual, "PF")
				So(cache.Loads(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a failing loader", t, func() {
		ctx := context.Background()
		boom := errors.New("boom")
		fail := true
		cache := positions.NewCache(positions.LoaderFunc(func(context.Context) (map[model.AthleteID][]string, error) {
			if fail {
				return nil, boom
			}
			return map[model.AthleteID][]string{1: {"C"}}, nil
		}), positions.WithLogger(logger.Nop()))

		Convey("Then lookups surface the error and labels fall back", func() {
			_, err := cache.Get(ctx, 1)
			So(errors.Is(err, boom), ShouldBeTrue)
			So(cache.Label(ctx, 1), ShouldEqual, positions.Unknown)
		})

		Convey("Then the failure is remembered across many lookups", func() {
			for id := model.AthleteID(1); id <= 500; id++ {
				So(cache.Label(ctx, id), ShouldEqual, positions.Unknown)
			}
			So(cache.Loads(), ShouldEqual, 1)
		})

		Convey("When invalidated after the source recovers", func() {
			_ = cache.Label(ctx, 1)
			fail = false
			cache.Invalidate()

			Convey("Then the next lookup loads again", func() {
				So(cache.Label(ctx, 1), ShouldEqual, "C")
				So(cache.Loads(), ShouldEqual, 2)
			})
		})
	})
}
