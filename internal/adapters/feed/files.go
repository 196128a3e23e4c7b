package feed

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/okian/hoopsrank/internal/domain/model"
)

// Files reads every source from CSV files. An empty path reads as a missing
// file, reported with fs.ErrNotExist.
type Files struct {
	CurrentGamesPath string
	PriorGamesPath   string
	RosterPath       string
	SchedulePath     string
	Options          []Option
}

func unset(source string) error {
	return fmt.Errorf("%s: no path configured: %w", source, fs.ErrNotExist)
}

// CurrentGames reads the current season game log.
func (f Files) CurrentGames(ctx context.Context) ([]model.AthleteGameRow, error) {
	if strings.TrimSpace(f.CurrentGamesPath) == "" {
		return nil, unset("current_games")
	}
	return ReadGamesFile(ctx, f.CurrentGamesPath, "current_games", f.Options...)
}

// PriorGames reads the prior season game log.
func (f Files) PriorGames(ctx context.Context) ([]model.AthleteGameRow, error) {
	if strings.TrimSpace(f.PriorGamesPath) == "" {
		return nil, unset("prior_games")
	}
	return ReadGamesFile(ctx, f.PriorGamesPath, "prior_games", f.Options...)
}

// Roster reads the roster.
func (f Files) Roster(ctx context.Context) ([]model.RosterEntry, error) {
	if strings.TrimSpace(f.RosterPath) == "" {
		return nil, unset("roster")
	}
	return ReadRosterFile(ctx, f.RosterPath, f.Options...)
}

// Schedule reads the league schedule.
func (f Files) Schedule(ctx context.Context) ([]model.ScheduleGame, error) {
	if strings.TrimSpace(f.SchedulePath) == "" {
		return nil, unset("schedule")
	}
	return ReadScheduleFile(ctx, f.SchedulePath, f.Options...)
}
