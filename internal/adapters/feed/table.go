// Package feed reads the provider's CSV exports: per-game box scores, the
// roster, the league schedule and fantasy positions.
package feed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/okian/hoopsrank/pkg/logger"
	"github.com/okian/hoopsrank/pkg/metrics"
)

// Option configures a reader.
type Option func(*settings)

type settings struct {
	logger logger.Logger
}

// WithLogger sets the logger used for skipped rows.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{logger: logger.Nop()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// record is one data row addressed by header name.
type record struct {
	cols   map[string]int
	fields []string
}

func (r record) has(name string) bool {
	i, ok := r.cols[name]
	return ok && i < len(r.fields)
}

func (r record) str(name string) string {
	if !r.has(name) {
		return ""
	}
	return strings.TrimSpace(r.fields[r.cols[name]])
}

func (r record) int64(name string) (int64, error) {
	v := r.str(name)
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		// Some exports write ids as floats.
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != float64(int64(f)) {
			return 0, fmt.Errorf("%w: %s=%q", ErrBadRow, name, v)
		}
		n = int64(f)
	}
	return n, nil
}

func (r record) float(name string) (float64, error) {
	v := r.str(name)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s=%q", ErrBadRow, name, v)
	}
	return f, nil
}

var dateLayouts = []string{ //nolint:gochecknoglobals // accepted feed date formats
	"2006-01-02",
	"2006-01-02T15:04:05",
	"Jan 02, 2006",
	"Jan 2, 2006",
	"Mon, Jan 2, 2006",
	"Mon Jan 2 2006",
	"01/02/2006",
}

func (r record) date(name string) (time.Time, error) {
	v := r.str(name)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s=%q", ErrBadRow, name, v)
}

// readTable reads a CSV with a header row. Header names are matched
// case-insensitively. A required entry written "A|B" is satisfied by either
// column. fn is called per data row; rows it rejects with
// ErrBadRow are logged and skipped, any other error aborts. The number of
// accepted rows is recorded against source.
func readTable(ctx context.Context, src io.Reader, source string, required []string, s settings, fn func(record) error) (int, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("read %s header: %w", source, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, name := range required {
		if !slices.ContainsFunc(strings.Split(name, "|"), func(alt string) bool {
			_, ok := cols[alt]
			return ok
		}) {
			return 0, fmt.Errorf("%w: %s in %s", ErrMissingColumn, name, source)
		}
	}

	accepted, skipped := 0, 0
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return accepted, err
		}
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped++
				metrics.RecordDataQuality("bad_feed_row")
				s.logger.Warn(ctx, "skipping malformed csv line", logger.String("source", source),
					logger.Int("line", line), logger.Error(err))
				continue
			}
			return accepted, fmt.Errorf("read %s: %w", source, err)
		}
		if err := fn(record{cols: cols, fields: fields}); err != nil {
			if !errors.Is(err, ErrBadRow) {
				return accepted, err
			}
			skipped++
			metrics.RecordDataQuality("bad_feed_row")
			s.logger.Warn(ctx, "skipping bad feed row", logger.String("source", source),
				logger.Int("line", line), logger.Error(err))
			continue
		}
		accepted++
	}
	metrics.RecordFeedRows(source, accepted)
	s.logger.Debug(ctx, "feed loaded", logger.String("source", source),
		logger.Int("rows", accepted), logger.Int("skipped", skipped))
	return accepted, nil
}
