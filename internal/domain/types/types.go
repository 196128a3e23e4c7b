// Package types contains the output shapes shared by the service, the CLI
// and the console renderer.
package types

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/okian/hoopsrank/internal/domain/model"
	"github.com/okian/hoopsrank/internal/domain/schedule"
	"github.com/okian/hoopsrank/internal/domain/scoring"
)

// Composite groups the three composite ratings.
type Composite struct {
	Overall      float64 `json:"overall"`
	Availability float64 `json:"availability"`
	Combined     float64 `json:"combined"`
}

// WeeklyValue is one week's rating. Scheduled is false when the athlete's
// team has no schedule entry, in which case Rating is 0 and shown as N/A.
type WeeklyValue struct {
	Rating    float64 `json:"rating"`
	Scheduled bool    `json:"scheduled"`
}

// RankedRow is one athlete of the ranked table.
type RankedRow struct {
	AthleteID  model.AthleteID              `json:"athlete_id"`
	Name       string                       `json:"name"`
	TeamID     model.TeamID                 `json:"team_id"`
	TeamAbbr   string                       `json:"team"`
	Positions  string                       `json:"positions"`
	Games      int                          `json:"games"`
	AvailScore float64                      `json:"availability_score"`
	Category   map[scoring.Category]float64 `json:"categories"`
	Composite
	// Weekly is aligned with Snapshot.Weeks.
	Weekly []WeeklyValue `json:"weekly,omitempty"`
	// Punts is keyed by punt variant key.
	Punts map[string]Composite `json:"punts,omitempty"`
}

// Snapshot is the ranked table produced by one engine run. Rows are ordered
// by athlete id.
type Snapshot struct {
	RunID       uuid.UUID          `json:"run_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Categories  []scoring.Category `json:"categories"`
	Weeks       []schedule.Week    `json:"weeks"`
	PuntKeys    []string           `json:"punt_keys"`
	Rows        []RankedRow        `json:"rows"`

	index map[model.AthleteID]int
}

// NewSnapshot flattens engine ratings into rows.
func NewSnapshot(runID uuid.UUID, at time.Time, r *scoring.Ratings) *Snapshot {
	s := &Snapshot{
		RunID:       runID,
		GeneratedAt: at,
		Categories:  slices.Clone(r.Categories),
		Rows:        make([]RankedRow, len(r.Athletes)),
	}
	for _, w := range r.Weekly {
		s.Weeks = append(s.Weeks, w.Week)
	}
	for _, p := range r.Punts {
		s.PuntKeys = append(s.PuntKeys, p.Set.Key())
	}

	for i, a := range r.Athletes {
		row := RankedRow{
			AthleteID:  a.AthleteID,
			Name:       a.Name,
			TeamID:     a.TeamID,
			Games:      a.Games,
			AvailScore: r.AvailScore[i],
			Category:   make(map[scoring.Category]float64, len(r.Categories)),
			Composite: Composite{
				Overall:      r.Overall[i],
				Availability: r.Availability[i],
				Combined:     r.Combined[i],
			},
		}
		for _, c := range r.Categories {
			row.Category[c] = r.Category[c][i]
		}
		if len(r.Weekly) > 0 {
			row.Weekly = make([]WeeklyValue, len(r.Weekly))
			for j, w := range r.Weekly {
				row.Weekly[j] = WeeklyValue{Rating: w.Values[i], Scheduled: w.Scheduled[i]}
			}
		}
		if len(r.Punts) > 0 {
			row.Punts = make(map[string]Composite, len(r.Punts))
			for _, p := range r.Punts {
				row.Punts[p.Set.Key()] = Composite{
					Overall:      p.Overall[i],
					Availability: p.Availability[i],
					Combined:     p.Combined[i],
				}
			}
		}
		s.Rows[i] = row
	}
	slices.SortFunc(s.Rows, func(a, b RankedRow) int { return cmp.Compare(a.AthleteID, b.AthleteID) })
	s.reindex()
	return s
}

func (s *Snapshot) reindex() {
	s.index = make(map[model.AthleteID]int, len(s.Rows))
	for i, r := range s.Rows {
		s.index[r.AthleteID] = i
	}
}

// Row returns the athlete's row.
func (s *Snapshot) Row(id model.AthleteID) (RankedRow, bool) {
	if s.index == nil {
		s.reindex()
	}
	i, ok := s.index[id]
	if !ok {
		return RankedRow{}, false
	}
	return s.Rows[i], true
}

// Len returns the number of rows.
func (s *Snapshot) Len() int { return len(s.Rows) }

// WeeklyRow is one athlete of the weekly table.
type WeeklyRow struct {
	AthleteID model.AthleteID
	Name      string
	TeamAbbr  string
	Values    []WeeklyValue
}

// WeeklyTable has one column per schedule week.
type WeeklyTable struct {
	Weeks []schedule.Week
	Rows  []WeeklyRow
}

// WeeklyTable projects the snapshot onto its weekly columns.
func (s *Snapshot) WeeklyTable() WeeklyTable {
	t := WeeklyTable{Weeks: slices.Clone(s.Weeks), Rows: make([]WeeklyRow, len(s.Rows))}
	for i, r := range s.Rows {
		t.Rows[i] = WeeklyRow{
			AthleteID: r.AthleteID,
			Name:      r.Name,
			TeamAbbr:  r.TeamAbbr,
			Values:    slices.Clone(r.Weekly),
		}
	}
	return t
}

// TeamAverage is the mean of each rating column over a set of athletes.
type TeamAverage struct {
	Athletes int
	Category map[scoring.Category]float64
	Composite
	// Weekly averages only the scheduled athletes of each week.
	Weekly []float64
	// Orphans counts requested athletes missing from the snapshot.
	Orphans int
}

// TeamAverages averages the rows of ids. Unknown ids are counted as orphans
// and left out of every mean.
func (s *Snapshot) TeamAverages(ids []model.AthleteID) TeamAverage {
	avg := TeamAverage{
		Category: make(map[scoring.Category]float64, len(s.Categories)),
		Weekly:   make([]float64, len(s.Weeks)),
	}
	scheduled := make([]int, len(s.Weeks))
	for _, id := range ids {
		r, ok := s.Row(id)
		if !ok {
			avg.Orphans++
			continue
		}
		avg.Athletes++
		for _, c := range s.Categories {
			avg.Category[c] += r.Category[c]
		}
		avg.Overall += r.Overall
		avg.Availability += r.Availability
		avg.Combined += r.Combined
		for j, w := range r.Weekly {
			if w.Scheduled {
				avg.Weekly[j] += w.Rating
				scheduled[j]++
			}
		}
	}
	if avg.Athletes == 0 {
		return avg
	}
	n := float64(avg.Athletes)
	for c := range avg.Category {
		avg.Category[c] /= n
	}
	avg.Overall /= n
	avg.Availability /= n
	avg.Combined /= n
	for j := range avg.Weekly {
		if scheduled[j] > 0 {
			avg.Weekly[j] /= float64(scheduled[j])
		}
	}
	return avg
}
