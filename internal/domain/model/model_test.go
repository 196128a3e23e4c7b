package model_test

import (
	"testing"

	"github.com/okian/hoopsrank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTeams(t *testing.T) {
	Convey("Given the NBA directory", t, func() {
		teams := model.NBATeams()

		Convey("Then it holds thirty franchises with distinct ids", func() {
			all := teams.All()
			So(len(all), ShouldEqual, 30)
			ids := map[model.TeamID]bool{}
			for _, tm := range all {
				ids[tm.ID] = true
			}
			So(len(ids), ShouldEqual, 30)
		})

		Convey("Then lookups accept ids, abbreviations and names", func() {
			bos, ok := teams.ByID(1610612738)
			So(ok, ShouldBeTrue)
			So(bos.Abbr, ShouldEqual, "BOS")

			lal, ok := teams.ByAbbr(" lal ")
			So(ok, ShouldBeTrue)
			So(lal.Name, ShouldEqual, "Los Angeles Lakers")

			byName, ok := teams.Resolve("Boston Celtics")
			So(ok, ShouldBeTrue)
			So(byName, ShouldResemble, bos)

			byAbbr, ok := teams.Resolve("BOS")
			So(ok, ShouldBeTrue)
			So(byAbbr, ShouldResemble, bos)
		})

		Convey("Then unknown teams are reported", func() {
			_, ok := teams.Resolve("Seattle SuperSonics")
			So(ok, ShouldBeFalse)
			_, ok = teams.ByID(1)
			So(ok, ShouldBeFalse)
		})

		Convey("Then All returns a copy", func() {
			all := teams.All()
			all[0].Abbr = "XXX"
			_, ok := teams.ByAbbr("ATL")
			So(ok, ShouldBeTrue)
			So(teams.All()[0].Abbr, ShouldEqual, "ATL")
		})
	})
}

func TestTeamAbbreviation(t *testing.T) {
	Convey("Given box score rows", t, func() {
		Convey("Then an explicit team wins over the matchup", func() {
			r := model.AthleteGameRow{TeamAbbr: "gsw", Matchup: "LAL @ BOS"}
			So(r.TeamAbbreviation(), ShouldEqual, "GSW")
		})

		Convey("Then the matchup prefix is used otherwise", func() {
			So(model.AthleteGameRow{Matchup: "LAL @ BOS"}.TeamAbbreviation(), ShouldEqual, "LAL")
			So(model.AthleteGameRow{Matchup: "bos vs. LAL"}.TeamAbbreviation(), ShouldEqual, "BOS")
			So(model.AthleteGameRow{}.TeamAbbreviation(), ShouldEqual, "")
		})
	})

	Convey("Given stats", t, func() {
		So(model.StatFG3M.String(), ShouldEqual, "FG3M")
		So(model.Stat(99).String(), ShouldEqual, "UNKNOWN")
		So(len(model.AllStats()), ShouldEqual, model.NumStats)

		var line model.StatLine
		line[model.StatAST] = 7
		So(line.Get(model.StatAST), ShouldEqual, 7)
	})
}
