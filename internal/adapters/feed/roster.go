package feed

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/hoopsrank/internal/domain/model"
)

const (
	colPersonID = "PERSON_ID"
	colName     = "DISPLAY_FIRST_LAST"
	colTeamID   = "TEAM_ID"
)

// ReadRoster parses the roster export. A TEAM_ID of 0 or an empty cell
// means the athlete is a free agent.
func ReadRoster(ctx context.Context, r io.Reader, opts ...Option) ([]model.RosterEntry, error) {
	var out []model.RosterEntry
	_, err := readTable(ctx, r, "roster", []string{colPersonID, colName, colTeamID}, newSettings(opts), func(rec record) error {
		id, err := rec.int64(colPersonID)
		if err != nil {
			return err
		}
		var team int64
		if rec.str(colTeamID) != "" {
			if team, err = rec.int64(colTeamID); err != nil {
				return err
			}
		}
		out = append(out, model.RosterEntry{
			AthleteID: model.AthleteID(id),
			Name:      rec.str(colName),
			TeamID:    model.TeamID(team),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadRosterFile opens path and reads it with ReadRoster.
func ReadRosterFile(ctx context.Context, path string, opts ...Option) ([]model.RosterEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()
	return ReadRoster(ctx, f, opts...)
}
