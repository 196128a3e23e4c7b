package blend_test

import (
	"context"
	"testing"

	"github.com/okian/hoopsrank/internal/domain/blend"
	"github.com/okian/hoopsrank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func pts(v float64) model.StatLine {
	var l model.StatLine
	l[model.StatPTS] = v
	return l
}

func TestAggregate(t *testing.T) {
	Convey("Given box scores for a rostered and an unrostered athlete", t, func() {
		teams := model.NBATeams()
		lal, _ := teams.ByAbbr("LAL")
		den, _ := teams.ByAbbr("DEN")
		rows := []model.AthleteGameRow{
			{AthleteID: 2, GameID: "g1", Matchup: "DEN @ LAL", Stats: pts(30)},
			{AthleteID: 1, GameID: "g1", Matchup: "LAL vs. DEN", Stats: pts(10)},
			{AthleteID: 1, GameID: "g2", Matchup: "LAL @ MIA", Stats: pts(20)},
		}
		roster := []model.RosterEntry{{AthleteID: 1, Name: "A. Guard", TeamID: lal.ID}}

		profiles := blend.Aggregate(rows, roster, teams)

		Convey("Then means are taken per athlete in id order", func() {
			So(len(profiles), ShouldEqual, 2)
			So(profiles[0].AthleteID, ShouldEqual, 1)
			So(profiles[0].Name, ShouldEqual, "A. Guard")
			So(profiles[0].Games, ShouldEqual, 2)
			So(profiles[0].Mean.Get(model.StatPTS), ShouldEqual, 15)
		})

		Convey("Then an unrostered athlete takes the team of their rows", func() {
			So(profiles[1].TeamID, ShouldEqual, den.ID)
			So(profiles[1].Name, ShouldEqual, "")
		})
	})
}

func TestBlend(t *testing.T) {
	Convey("Given a blender for an 82 game season", t, func() {
		b := blend.NewBlender()

		Convey("Then the prior weight falls as the team plays", func() {
			So(b.Weight(0), ShouldEqual, 1)
			So(b.Weight(41), ShouldEqual, 0.5)
			So(b.Weight(82), ShouldEqual, 0)
			So(b.Weight(90), ShouldEqual, 0)
		})

		Convey("When both seasons exist for an athlete", func() {
			prior := []model.AthleteProfile{
				{AthleteID: 1, TeamID: 10, Games: 70, Mean: pts(20)},
				{AthleteID: 3, TeamID: 10, Games: 60, Mean: pts(8)},
			}
			current := []model.AthleteProfile{
				{AthleteID: 1, TeamID: 11, Games: 40, Mean: pts(30)},
				{AthleteID: 2, TeamID: 11, Games: 5, Mean: pts(12)},
			}
			out := b.Blend(context.Background(), prior, current, map[model.TeamID]int{10: 80, 11: 41})

			Convey("Then stats mix by the current team's games played", func() {
				So(len(out), ShouldEqual, 3)
				So(out[0].AthleteID, ShouldEqual, 1)
				So(out[0].TeamID, ShouldEqual, 11)
				So(out[0].Mean.Get(model.StatPTS), ShouldEqual, 25)
			})

			Convey("Then single-season athletes are kept as they are", func() {
				So(out[1].Mean.Get(model.StatPTS), ShouldEqual, 12)
				So(out[2].Mean.Get(model.StatPTS), ShouldEqual, 8)
			})
		})

		Convey("When the current team has not played yet", func() {
			out := b.Blend(context.Background(),
				[]model.AthleteProfile{{AthleteID: 1, Mean: pts(20)}},
				[]model.AthleteProfile{{AthleteID: 1, TeamID: 12, Mean: pts(40)}},
				nil)

			Convey("Then the prior season is used in full", func() {
				So(out[0].Mean.Get(model.StatPTS), ShouldEqual, 20)
			})
		})
	})

	Convey("Given a shorter season", t, func() {
		b := blend.NewBlender(blend.WithSeasonGames(10))

		Convey("Then the weight uses that length", func() {
			So(b.Weight(5), ShouldEqual, 0.5)
		})
	})
}
