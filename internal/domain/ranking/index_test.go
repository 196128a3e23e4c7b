package ranking_test

import (
	"errors"
	"math"
	"math/rand"
	"slices"
	"sync"
	"testing"

	"github.com/okian/hoopsrank/internal/domain/model"
	"github.com/okian/hoopsrank/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func present(v float64) ranking.Key { return ranking.Key{Value: v, Present: true} }

func ids(entries []ranking.Entry) []model.AthleteID {
	out := make([]model.AthleteID, len(entries))
	for i, e := range entries {
		out[i] = e.AthleteID
	}
	return out
}

func TestIndex_Ordering(t *testing.T) {
	Convey("Given a descending index with a tie and a missing value", t, func() {
		x := ranking.New(true)
		x.Upsert(3, present(50))
		x.Upsert(1, present(80))
		x.Upsert(2, present(50))
		x.Upsert(4, ranking.Key{})

		Convey("Then the highest value leads and ties break by id", func() {
			top, err := x.TopN(10)
			So(err, ShouldBeNil)
			So(ids(top), ShouldResemble, []model.AthleteID{1, 2, 3, 4})
			So(top[3].Key.Present, ShouldBeFalse)
		})

		Convey("Then Rank agrees with the walk order", func() {
			for e := range x.All() {
				got, err := x.Rank(e.AthleteID)
				So(err, ShouldBeNil)
				So(got.Rank, ShouldEqual, e.Rank)
			}
		})

		Convey("When a value changes", func() {
			x.Upsert(4, present(90))

			Convey("Then the athlete moves", func() {
				e, err := x.Rank(4)
				So(err, ShouldBeNil)
				So(e.Rank, ShouldEqual, 1)
				So(x.Count(), ShouldEqual, 4)
			})
		})

		Convey("When an athlete is removed", func() {
			So(x.Remove(1), ShouldBeTrue)
			So(x.Remove(1), ShouldBeFalse)

			Convey("Then ranks close up", func() {
				e, _ := x.Rank(2)
				So(e.Rank, ShouldEqual, 1)
				_, err := x.Rank(1)
				So(errors.Is(err, ranking.ErrNotFound), ShouldBeTrue)
			})
		})
	})

	Convey("Given an ascending index", t, func() {
		x := ranking.New(false)
		x.Upsert(1, present(80))
		x.Upsert(2, ranking.Key{Value: math.NaN(), Present: true})
		x.Upsert(3, present(10))

		Convey("Then the lowest value leads and missing values still go last", func() {
			top, _ := x.TopN(3)
			So(ids(top), ShouldResemble, []model.AthleteID{3, 1, 2})
		})
	})

	Convey("Given limits", t, func() {
		x := ranking.New(true)
		x.Upsert(1, present(1))

		Convey("Then a non-positive limit is rejected", func() {
			_, err := x.TopN(0)
			So(errors.Is(err, ranking.ErrInvalidLimit), ShouldBeTrue)
		})

		Convey("Then an oversized limit returns every entry", func() {
			top, err := x.TopN(100)
			So(err, ShouldBeNil)
			So(top, ShouldHaveLength, 1)
		})

		Convey("Then stopping the walk early is honoured", func() {
			n := 0
			for range x.All() {
				n++
				break
			}
			So(n, ShouldEqual, 1)
		})
	})
}

func TestIndex_RankCorrectnessUnderStress(t *testing.T) {
	Convey("Given a thousand athletes with random values", t, func() {
		rng := rand.New(rand.NewSource(11))
		x := ranking.New(true)
		values := make(map[model.AthleteID]float64, 1000)
		for i := range 1000 {
			id := model.AthleteID(i + 1)
			values[id] = math.Round(rng.Float64()*100) / 4
			x.Upsert(id, present(values[id]))
		}
		for i := range 200 {
			id := model.AthleteID(rng.Intn(1000) + 1)
			if i%2 == 0 {
				values[id] = rng.Float64() * 25
				x.Upsert(id, present(values[id]))
			}
		}

		Convey("Then the walk matches a plain sort", func() {
			want := make([]model.AthleteID, 0, len(values))
			for id := range values {
				want = append(want, id)
			}
			slices.SortFunc(want, func(a, b model.AthleteID) int {
				if values[a] != values[b] {
					if values[a] > values[b] {
						return -1
					}
					return 1
				}
				return int(a - b)
			})
			var got []model.AthleteID
			for e := range x.All() {
				got = append(got, e.AthleteID)
			}
			So(got, ShouldResemble, want)

			for i, id := range want {
				e, err := x.Rank(id)
				So(err, ShouldBeNil)
				So(e.Rank, ShouldEqual, i+1)
			}
		})
	})

	Convey("Given concurrent writers and readers", t, func() {
		x := ranking.New(true)
		var wg sync.WaitGroup
		for w := range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range 250 {
					id := model.AthleteID(w*250 + i)
					x.Upsert(id, present(float64(i)))
					_, _ = x.Rank(id)
					_, _ = x.TopN(5)
				}
			}()
		}
		wg.Wait()

		Convey("Then every athlete is indexed once", func() {
			So(x.Count(), ShouldEqual, 1000)
			top, _ := x.TopN(1000)
			So(top, ShouldHaveLength, 1000)
			So(top[0].Key.Value, ShouldEqual, 249)
		})
	})
}
