package feed

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/hoopsrank/internal/domain/model"
)

const (
	colScheduleDate = "GAME DATE"
	colVisitor      = "VISITOR"
	colHome         = "HOME"
)

// ReadSchedule parses the league schedule. Team cells are kept verbatim;
// the schedule weighter resolves them.
func ReadSchedule(ctx context.Context, r io.Reader, opts ...Option) ([]model.ScheduleGame, error) {
	var out []model.ScheduleGame
	_, err := readTable(ctx, r, "schedule", []string{colScheduleDate, colVisitor, colHome}, newSettings(opts), func(rec record) error {
		date, err := rec.date(colScheduleDate)
		if err != nil {
			return err
		}
		home, visitor := rec.str(colHome), rec.str(colVisitor)
		if home == "" || visitor == "" {
			return fmt.Errorf("%w: missing team", ErrBadRow)
		}
		out = append(out, model.ScheduleGame{Date: date, Home: home, Visitor: visitor})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadScheduleFile opens path and reads it with ReadSchedule.
func ReadScheduleFile(ctx context.Context, path string, opts ...Option) ([]model.ScheduleGame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schedule: %w", err)
	}
	defer f.Close()
	return ReadSchedule(ctx, f, opts...)
}
