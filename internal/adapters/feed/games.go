package feed

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/hoopsrank/internal/domain/model"
)

// Game log columns.
const (
	colPlayerID = "PLAYER_ID"
	colGameID   = "GAME_ID"
	colGameDate = "GAME_DATE"
	colMatchup  = "MATCHUP"
	colTeamAbbr = "TEAM_ABBREVIATION"
)

var statColumns = map[model.Stat]string{ //nolint:gochecknoglobals // fixed header names
	model.StatPTS:  "PTS",
	model.StatREB:  "REB",
	model.StatAST:  "AST",
	model.StatSTL:  "STL",
	model.StatBLK:  "BLK",
	model.StatTOV:  "TOV",
	model.StatFGM:  "FGM",
	model.StatFGA:  "FGA",
	model.StatFTM:  "FTM",
	model.StatFTA:  "FTA",
	model.StatFG3M: "FG3M",
}

func gameColumns() []string {
	cols := []string{colPlayerID, colGameID, colGameDate, colTeamAbbr + "|" + colMatchup}
	for _, s := range model.AllStats() {
		cols = append(cols, statColumns[s])
	}
	return cols
}

// ReadGames parses a game log export. Either TEAM_ABBREVIATION or MATCHUP
// must be present; the team is taken from the matchup only when the
// explicit column is missing.
func ReadGames(ctx context.Context, r io.Reader, source string, opts ...Option) ([]model.AthleteGameRow, error) {
	var rows []model.AthleteGameRow
	_, err := readTable(ctx, r, source, gameColumns(), newSettings(opts), func(rec record) error {
		id, err := rec.int64(colPlayerID)
		if err != nil {
			return err
		}
		gameID := rec.str(colGameID)
		if gameID == "" {
			return fmt.Errorf("%w: empty %s", ErrBadRow, colGameID)
		}
		date, err := rec.date(colGameDate)
		if err != nil {
			return err
		}
		row := model.AthleteGameRow{
			AthleteID: model.AthleteID(id),
			GameID:    gameID,
			TeamAbbr:  rec.str(colTeamAbbr),
			Matchup:   rec.str(colMatchup),
			Date:      date,
		}
		for stat, col := range statColumns {
			v, err := rec.float(col)
			if err != nil {
				return err
			}
			row.Stats[stat] = v
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReadGamesFile opens path and reads it with ReadGames. A missing file is
// reported with os.ErrNotExist so callers can fall back to another season.
func ReadGamesFile(ctx context.Context, path, source string, opts ...Option) ([]model.AthleteGameRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", source, err)
	}
	defer f.Close()
	return ReadGames(ctx, f, source, opts...)
}
