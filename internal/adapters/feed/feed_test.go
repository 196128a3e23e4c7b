package feed_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/hoopsrank/internal/adapters/feed"
	"github.com/okian/hoopsrank/internal/domain/model"
	"github.com/okian/hoopsrank/internal/domain/positions"
	"github.com/okian/hoopsrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const gameLog = `Player_ID,Game_ID,GAME_DATE,MATCHUP,FGM,FGA,FG3M,FTM,FTA,REB,AST,STL,BLK,TOV,PTS
2544,0022400001,"FEB 12, 2025",LAL @ BOS,10,20,2,4,5,8,9,1,1,3,26
2544,0022400002,2025-02-14,LAL vs. GSW,8,15,1,2,2,6,11,2,0,4,19
oops,0022400003,2025-02-14,LAL vs. GSW,8,15,1,2,2,6,11,2,0,4,19
201939,0022400002,2025-02-14,GSW @ LAL,9,19,5,3,3,4,6,1,0,2,26
`

func TestReadGames(t *testing.T) {
	Convey("Given a game log export with one bad row", t, func() {
		var buf bytes.Buffer
		rows, err := feed.ReadGames(context.Background(), strings.NewReader(gameLog), "current_games",
			feed.WithLogger(logger.New(&buf, slog.LevelDebug)))
		So(err, ShouldBeNil)

		Convey("Then good rows are parsed and the bad one skipped", func() {
			So(len(rows), ShouldEqual, 3)
			So(buf.String(), ShouldContainSubstring, "skipping bad feed row")

			first := rows[0]
			So(first.AthleteID, ShouldEqual, 2544)
			So(first.GameID, ShouldEqual, "0022400001")
			So(first.Date, ShouldEqual, time.Date(2025, 2, 12, 0, 0, 0, 0, time.UTC))
			So(first.TeamAbbreviation(), ShouldEqual, "LAL")
			So(first.Stats.Get(model.StatPTS), ShouldEqual, 26)
			So(first.Stats.Get(model.StatFGA), ShouldEqual, 20)
			So(first.Stats.Get(model.StatTOV), ShouldEqual, 3)
		})
	})

	Convey("Given an export missing a stat column", t, func() {
		_, err := feed.ReadGames(context.Background(),
			strings.NewReader("Player_ID,Game_ID,GAME_DATE,MATCHUP,PTS\n1,2,2025-01-01,A @ B,3\n"), "current_games")

		Convey("Then the source is rejected", func() {
			So(errors.Is(err, feed.ErrMissingColumn), ShouldBeTrue)
		})
	})

	Convey("Given an export with a team column and no matchup", t, func() {
		rows, err := feed.ReadGames(context.Background(), strings.NewReader(
			"PLAYER_ID,GAME_ID,GAME_DATE,TEAM_ABBREVIATION,FGM,FGA,FG3M,FTM,FTA,REB,AST,STL,BLK,TOV,PTS\n"+
				"1,G1,2025-01-01,GSW,1,2,0,0,0,3,4,0,0,1,2\n"), "current_games")

		Convey("Then the team column is enough", func() {
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 1)
			So(rows[0].TeamAbbreviation(), ShouldEqual, "GSW")
		})
	})

	Convey("Given an export with neither a team column nor a matchup", t, func() {
		_, err := feed.ReadGames(context.Background(), strings.NewReader(
			"PLAYER_ID,GAME_ID,GAME_DATE,FGM,FGA,FG3M,FTM,FTA,REB,AST,STL,BLK,TOV,PTS\n"+
				"1,G1,2025-01-01,1,2,0,0,0,3,4,0,0,1,2\n"), "current_games")

		Convey("Then the source is rejected", func() {
			So(errors.Is(err, feed.ErrMissingColumn), ShouldBeTrue)
		})
	})

	Convey("Given rows with non-finite stats", t, func() {
		var buf bytes.Buffer
		rows, err := feed.ReadGames(context.Background(), strings.NewReader(
			"PLAYER_ID,GAME_ID,GAME_DATE,MATCHUP,FGM,FGA,FG3M,FTM,FTA,REB,AST,STL,BLK,TOV,PTS\n"+
				"1,G1,2025-01-01,LAL @ BOS,1,2,0,0,0,3,4,0,0,1,NaN\n"+
				"2,G1,2025-01-01,BOS vs. LAL,1,2,0,0,0,3,4,0,0,Inf,2\n"+
				"3,G1,2025-01-01,BOS vs. LAL,1,2,0,0,0,3,4,0,0,1,2\n"), "current_games",
			feed.WithLogger(logger.New(&buf, slog.LevelDebug)))

		Convey("Then they are skipped as bad rows", func() {
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 1)
			So(rows[0].AthleteID, ShouldEqual, 3)
			So(strings.Count(buf.String(), "skipping bad feed row"), ShouldEqual, 2)
		})
	})

	Convey("Given a file that does not exist", t, func() {
		_, err := feed.ReadGamesFile(context.Background(), filepath.Join(t.TempDir(), "none.csv"), "prior_games")

		Convey("Then the error wraps os.ErrNotExist", func() {
			So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
		})
	})
}

func TestReadRosterAndSchedule(t *testing.T) {
	Convey("Given a roster", t, func() {
		roster, err := feed.ReadRoster(context.Background(), strings.NewReader(
			"PERSON_ID,DISPLAY_FIRST_LAST,TEAM_ID\n2544,LeBron James,1610612747\n1,Free Agent,\n"))
		So(err, ShouldBeNil)

		Convey("Then entries carry names and teams", func() {
			So(roster, ShouldResemble, []model.RosterEntry{
				{AthleteID: 2544, Name: "LeBron James", TeamID: 1610612747},
				{AthleteID: 1, Name: "Free Agent"},
			})
		})
	})

	Convey("Given a schedule", t, func() {
		games, err := feed.ReadSchedule(context.Background(), strings.NewReader(
			"Game Date,Visitor,Home\n\"Tue, Oct 22, 2024\",New York Knicks,Boston Celtics\n2024-10-23,,Lakers\n"))
		So(err, ShouldBeNil)

		Convey("Then complete games are kept verbatim", func() {
			So(games, ShouldResemble, []model.ScheduleGame{{
				Date:    time.Date(2024, 10, 22, 0, 0, 0, 0, time.UTC),
				Home:    "Boston Celtics",
				Visitor: "New York Knicks",
			}})
		})
	})
}

func TestPositionsFile(t *testing.T) {
	Convey("Given a positions file with repeated athletes", t, func() {
		path := filepath.Join(t.TempDir(), "positions.csv")
		So(os.WriteFile(path, []byte("PERSON_ID,DISPLAY_FIRST_LAST,FANTASY_POSITION\n"+
			"1,A,PG\n1,A,SG\n1,A,PG\n2,B,Forward-Center\n3,C,SF/PF\n"), 0o600), ShouldBeNil)

		cache := positions.NewCache(feed.PositionsFile{Path: path})

		Convey("Then slots are grouped per athlete", func() {
			ctx := context.Background()
			So(cache.Label(ctx, 1), ShouldEqual, "PG, SG")
			So(cache.Label(ctx, 2), ShouldEqual, "PF, C")
			So(cache.Label(ctx, 3), ShouldEqual, "SF, PF")
			So(cache.Label(ctx, 4), ShouldEqual, positions.Unknown)
			So(cache.Loads(), ShouldEqual, 1)
		})
	})
}
