package types

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/hoopsrank/internal/domain/ranking"
	"github.com/okian/hoopsrank/internal/domain/schedule"
	"github.com/okian/hoopsrank/internal/domain/scoring"
)

// ErrUnknownColumn is returned when a column name cannot be parsed.
var ErrUnknownColumn = errors.New("unknown column")

// ColumnKind tells which part of a row a Column reads.
type ColumnKind int

const (
	KindComposite ColumnKind = iota
	KindCategory
	KindWeekly
	KindPunt
)

// Field selects one of the composite ratings.
type Field int

const (
	FieldOverall Field = iota
	FieldAvailability
	FieldCombined
)

var fieldNames = [...]string{"OVERALL", "AVAILABILITY", "COMBINED"}

func (f Field) String() string { return fieldNames[f] }

func (f Field) of(c Composite) float64 {
	switch f {
	case FieldAvailability:
		return c.Availability
	case FieldCombined:
		return c.Combined
	default:
		return c.Overall
	}
}

// Column names one sortable rating column.
type Column struct {
	Kind     ColumnKind
	Field    Field
	Category scoring.Category
	Week     schedule.Week
	Punt     string
}

var weekPattern = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

// ParseColumn accepts OVERALL, AVAILABILITY, COMBINED, a category name, an
// ISO week such as 2025-W07, or a punt key optionally suffixed with
// :AVAILABILITY or :COMBINED.
func ParseColumn(name string) (Column, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	if f, ok := parseField(s); ok {
		return Column{Kind: KindComposite, Field: f}, nil
	}
	if m := weekPattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		number, _ := strconv.Atoi(m[2])
		if number < 1 || number > 53 {
			return Column{}, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
		}
		return Column{Kind: KindWeekly, Week: schedule.Week{Year: year, Number: number}}, nil
	}
	if strings.HasPrefix(s, "PUNT_") {
		key, suffix, _ := strings.Cut(s, ":")
		set, err := scoring.ParsePuntKey(key)
		if err != nil {
			return Column{}, fmt.Errorf("%w: %w", ErrUnknownColumn, err)
		}
		f := FieldOverall
		if suffix != "" {
			var ok bool
			if f, ok = parseField(suffix); !ok {
				return Column{}, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
			}
		}
		return Column{Kind: KindPunt, Punt: set.Key(), Field: f}, nil
	}
	c, err := scoring.ParseCategory(s)
	if err != nil {
		return Column{}, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	return Column{Kind: KindCategory, Category: c}, nil
}

func parseField(s string) (Field, bool) {
	i := slices.Index(fieldNames[:], s)
	return Field(max(i, 0)), i >= 0
}

func (c Column) String() string {
	switch c.Kind {
	case KindCategory:
		return string(c.Category)
	case KindWeekly:
		return c.Week.String()
	case KindPunt:
		if c.Field == FieldOverall {
			return c.Punt
		}
		return c.Punt + ":" + c.Field.String()
	default:
		return c.Field.String()
	}
}

// Value reads the column from a row of s. The second result is false when
// the row has no value, such as an unscheduled week.
func (s *Snapshot) Value(row RankedRow, c Column) (float64, bool) {
	switch c.Kind {
	case KindCategory:
		v, ok := row.Category[c.Category]
		return v, ok
	case KindWeekly:
		i := slices.Index(s.Weeks, c.Week)
		if i < 0 || i >= len(row.Weekly) || !row.Weekly[i].Scheduled {
			return 0, false
		}
		return row.Weekly[i].Rating, true
	case KindPunt:
		p, ok := row.Punts[c.Punt]
		return c.Field.of(p), ok
	default:
		return c.Field.of(row.Composite), true
	}
}

// Index builds the ranking index of column c over the rows accepted by
// keep, or over every row when keep is nil.
func (s *Snapshot) Index(c Column, desc bool, keep func(RankedRow) bool) *ranking.Index {
	x := ranking.New(desc)
	for _, r := range s.Rows {
		if keep != nil && !keep(r) {
			continue
		}
		v, ok := s.Value(r, c)
		x.Upsert(r.AthleteID, ranking.Key{Value: v, Present: ok})
	}
	return x
}

// Sorted returns the rows ordered by column c. Rows without a value go last
// in either direction; ties break by athlete id.
func (s *Snapshot) Sorted(c Column, desc bool) []RankedRow {
	return s.Ranked(s.Index(c, desc, nil), 0)
}

// Ranked returns the first top rows of x, or all of them when top is not
// positive. Athletes x holds that are not in the snapshot are skipped.
func (s *Snapshot) Ranked(x *ranking.Index, top int) []RankedRow {
	if top <= 0 {
		top = x.Count()
	}
	out := make([]RankedRow, 0, min(top, x.Count()))
	for e := range x.All() {
		if len(out) == top {
			break
		}
		if r, ok := s.Row(e.AthleteID); ok {
			out = append(out, r)
		}
	}
	return out
}

// HasColumn reports whether c exists in the snapshot.
func (s *Snapshot) HasColumn(c Column) bool {
	switch c.Kind {
	case KindCategory:
		return slices.Contains(s.Categories, c.Category)
	case KindWeekly:
		return slices.Contains(s.Weeks, c.Week)
	case KindPunt:
		return slices.Contains(s.PuntKeys, c.Punt)
	default:
		return true
	}
}
