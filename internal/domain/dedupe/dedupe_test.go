package dedupe_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/okian/hoopsrank/internal/domain/dedupe"
	"github.com/okian/hoopsrank/internal/domain/model"
	"github.com/okian/hoopsrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func key(athlete int64, game string) dedupe.Key {
	return dedupe.Key{AthleteID: model.AthleteID(athlete), GameID: game}
}

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When recording box score keys", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then a new key is not seen and is recorded", func() {
				So(d.SeenAndRecord(ctx, key(1, "g1")), ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("Then a repeated key is seen", func() {
				d.SeenAndRecord(ctx, key(1, "g1"))
				So(d.SeenAndRecord(ctx, key(1, "g1")), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("Then the same game for another athlete is new", func() {
				d.SeenAndRecord(ctx, key(1, "g1"))
				So(d.SeenAndRecord(ctx, key(2, "g1")), ShouldBeFalse)
			})
		})

		Convey("When unrecording keys", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(10))
			d.SeenAndRecord(ctx, key(1, "g1"))
			d.Unrecord(ctx, key(1, "g1"))
			d.Unrecord(ctx, key(9, "missing"))

			Convey("Then the key is accepted again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, key(1, "g1")), ShouldBeFalse)
			})
		})

		Convey("When the bounded deduper is at capacity", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))
			d.SeenAndRecord(ctx, key(1, "g1"))
			d.SeenAndRecord(ctx, key(1, "g2"))
			d.SeenAndRecord(ctx, key(1, "g3"))

			Convey("Then the oldest key is evicted", func() {
				So(d.Size(), ShouldEqual, 2)
				So(d.SeenAndRecord(ctx, key(1, "g3")), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, key(1, "g1")), ShouldBeFalse)
			})
		})
	})

	Convey("Given concurrent recorders", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					d.SeenAndRecord(context.Background(), key(int64(g), fmt.Sprintf("g%d", i)))
				}
			}(g)
		}
		wg.Wait()

		Convey("Then every key is recorded once", func() {
			So(d.Size(), ShouldEqual, 800)
		})
	})
}

func TestRows(t *testing.T) {
	Convey("Given feed rows with a repeated box score", t, func() {
		var buf bytes.Buffer
		rows := []model.AthleteGameRow{
			{AthleteID: 1, GameID: "g1", Matchup: "LAL @ BOS"},
			{AthleteID: 1, GameID: "g1", Matchup: "LAL @ BOS"},
			{AthleteID: 1, GameID: "g2", Matchup: "LAL vs. MIA"},
		}

		kept, dropped := dedupe.Rows(context.Background(), rows, dedupe.NewInMemoryDeduper(), logger.New(&buf, slog.LevelWarn))

		Convey("Then the first occurrence is kept and the repeat is logged", func() {
			So(len(kept), ShouldEqual, 2)
			So(dropped, ShouldEqual, 1)
			So(kept[1].GameID, ShouldEqual, "g2")
			So(buf.String(), ShouldContainSubstring, "duplicate box score")
		})
	})
}
