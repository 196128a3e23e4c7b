package feed

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/okian/hoopsrank/internal/domain/model"
	"github.com/okian/hoopsrank/internal/domain/positions"
)

const colFantasyPosition = "FANTASY_POSITION"

// ReadPositions parses the fantasy positions export. An athlete may appear
// on several rows; a cell may hold a single slot ("PG"), a comma or slash
// separated list, or a provider position such as "Guard-Forward".
func ReadPositions(ctx context.Context, r io.Reader, opts ...Option) (map[model.AthleteID][]string, error) {
	out := make(map[model.AthleteID][]string)
	_, err := readTable(ctx, r, "positions", []string{colPersonID, colFantasyPosition}, newSettings(opts), func(rec record) error {
		id, err := rec.int64(colPersonID)
		if err != nil {
			return err
		}
		cell := rec.str(colFantasyPosition)
		if cell == "" {
			return fmt.Errorf("%w: empty %s", ErrBadRow, colFantasyPosition)
		}
		slots, ok := positions.FromNBA(cell)
		if !ok {
			slots = strings.FieldsFunc(strings.ToUpper(cell), func(r rune) bool {
				return r == ',' || r == '/' || r == ' '
			})
		}
		aid := model.AthleteID(id)
		for _, s := range slots {
			if !slices.Contains(out[aid], s) {
				out[aid] = append(out[aid], s)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PositionsFile loads positions from a CSV file on every call, so a cache
// reload picks up edits to the file.
type PositionsFile struct {
	Path    string
	Options []Option
}

// LoadPositions implements positions.Loader.
func (p PositionsFile) LoadPositions(ctx context.Context) (map[model.AthleteID][]string, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return nil, fmt.Errorf("open positions: %w", err)
	}
	defer f.Close()
	return ReadPositions(ctx, f, p.Options...)
}

var _ positions.Loader = PositionsFile{}
