package availability_test

import (
	"context"
	"testing"

	"github.com/okian/hoopsrank/internal/domain/availability"
	"github.com/okian/hoopsrank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScorer(t *testing.T) {
	Convey("Given a team that played four games", t, func() {
		teams := model.NBATeams()
		lal, _ := teams.ByAbbr("LAL")
		bos, _ := teams.ByAbbr("BOS")

		rows := []model.AthleteGameRow{
			{AthleteID: 1, GameID: "g1", Matchup: "LAL @ BOS"},
			{AthleteID: 1, GameID: "g2", Matchup: "LAL vs. MIA"},
			{AthleteID: 2, GameID: "g1", Matchup: "LAL @ BOS"},
			{AthleteID: 2, GameID: "g2", Matchup: "LAL vs. MIA"},
			{AthleteID: 2, GameID: "g3", TeamAbbr: "lal", Matchup: "LAL @ DEN"},
			{AthleteID: 2, GameID: "g4", Matchup: "LAL vs. UTA"},
			// duplicate row for the same game counts once
			{AthleteID: 2, GameID: "g4", Matchup: "LAL vs. UTA"},
			{AthleteID: 3, GameID: "g1", Matchup: "BOS vs. LAL"},
			{AthleteID: 9, GameID: "g9", Matchup: "XXX @ BOS"},
		}
		roster := []model.RosterEntry{
			{AthleteID: 1, TeamID: lal.ID},
			{AthleteID: 2, TeamID: lal.ID},
			{AthleteID: 3, TeamID: bos.ID},
			{AthleteID: 4, TeamID: lal.ID},
			{AthleteID: 5},
		}

		res := availability.NewScorer(teams).Score(context.Background(), rows, roster)

		Convey("Then team games count distinct games", func() {
			So(res.TeamGames[lal.ID], ShouldEqual, 4)
			So(res.TeamGames[bos.ID], ShouldEqual, 1)
			So(res.AthleteGames[2], ShouldEqual, 4)
		})

		Convey("Then scores are athlete games over team games", func() {
			So(res.Scores[1], ShouldEqual, 0.5)
			So(res.Scores[2], ShouldEqual, 1)
			So(res.Scores[3], ShouldEqual, 1)
		})

		Convey("Then athletes without rows or without a team score zero", func() {
			So(res.Scores[4], ShouldEqual, 0)
			So(res.Scores[5], ShouldEqual, 0)
			So(res.Scores[9], ShouldEqual, 0)
			So(res.Unmapped, ShouldEqual, 1)
		})

		Convey("Then every score lies in [0, 1]", func() {
			for _, s := range res.Scores {
				So(s, ShouldBeBetweenOrEqual, 0, 1)
			}
		})
	})

	Convey("Given an athlete missing from the roster", t, func() {
		teams := model.NBATeams()
		rows := []model.AthleteGameRow{
			{AthleteID: 7, GameID: "g1", Matchup: "DEN @ UTA"},
			{AthleteID: 8, GameID: "g1", Matchup: "DEN @ UTA"},
			{AthleteID: 8, GameID: "g2", Matchup: "DEN vs. PHX"},
		}
		res := availability.NewScorer(teams).Score(context.Background(), rows, nil)

		Convey("Then the team of the first row is used", func() {
			So(res.Scores[7], ShouldEqual, 0.5)
			So(res.Scores[8], ShouldEqual, 1)
		})
	})
}
