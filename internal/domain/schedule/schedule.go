// Package schedule turns a league schedule into per-team games per calendar week.
package schedule

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/okian/hoopsrank/internal/domain/model"
	"github.com/okian/hoopsrank/pkg/logger"
)

// Week is an ISO calendar week.
type Week struct {
	Year   int
	Number int
}

// WeekOf returns the ISO week containing t.
func WeekOf(t time.Time) Week {
	y, n := t.ISOWeek()
	return Week{Year: y, Number: n}
}

func (w Week) String() string { return fmt.Sprintf("%d-W%02d", w.Year, w.Number) }

// Compare orders weeks chronologically.
func (w Week) Compare(o Week) int {
	if w.Year != o.Year {
		return w.Year - o.Year
	}
	return w.Number - o.Number
}

// WeekMap holds games per week for every scheduled team plus the league-wide
// maximum for each week.
type WeekMap struct {
	perTeam map[model.TeamID]map[Week]int
	max     map[Week]int
	weeks   []Week
}

// Weeks returns every scheduled week in chronological order.
func (m *WeekMap) Weeks() []Week { return slices.Clone(m.weeks) }

// HasTeam reports whether the team appears anywhere in the schedule.
func (m *WeekMap) HasTeam(team model.TeamID) bool {
	_, ok := m.perTeam[team]
	return ok
}

// Games returns how many games the team plays in week.
func (m *WeekMap) Games(team model.TeamID, week Week) int { return m.perTeam[team][week] }

// Max returns the most games any team plays in week.
func (m *WeekMap) Max(week Week) int { return m.max[week] }

// Weight is the team's games in week relative to the league maximum. The
// second result is false when the team is not in the schedule.
func (m *WeekMap) Weight(team model.TeamID, week Week) (float64, bool) {
	weeks, ok := m.perTeam[team]
	if !ok {
		return 0, false
	}
	peak := m.max[week]
	if peak == 0 {
		return 0, true
	}
	return float64(weeks[week]) / float64(peak), true
}

// Weighter builds WeekMaps from schedule rows.
type Weighter struct {
	teams  *model.Teams
	logger logger.Logger
}

// Option applies a configuration option to the Weighter.
type Option func(*Weighter)

// WithLogger sets the logger used for unmapped team warnings.
func WithLogger(l logger.Logger) Option {
	return func(w *Weighter) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWeighter creates a Weighter resolving team names through teams.
func NewWeighter(teams *model.Teams, opts ...Option) *Weighter {
	w := &Weighter{teams: teams, logger: logger.Nop()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Build counts games per team per week. Sides whose team cannot be resolved
// are skipped with a warning; the other side of the game still counts.
func (w *Weighter) Build(ctx context.Context, games []model.ScheduleGame) *WeekMap {
	m := &WeekMap{
		perTeam: make(map[model.TeamID]map[Week]int),
		max:     make(map[Week]int),
	}
	unmapped := make(map[string]struct{})
	for _, g := range games {
		week := WeekOf(g.Date)
		for _, side := range [2]string{g.Visitor, g.Home} {
			team, ok := w.teams.Resolve(side)
			if !ok {
				if _, seen := unmapped[side]; !seen {
					unmapped[side] = struct{}{}
					w.logger.Warn(ctx, "unmapped team in schedule", logger.String("team", side))
				}
				continue
			}
			if m.perTeam[team.ID] == nil {
				m.perTeam[team.ID] = make(map[Week]int)
			}
			m.perTeam[team.ID][week]++
			if n := m.perTeam[team.ID][week]; n > m.max[week] {
				m.max[week] = n
			}
		}
	}
	for week := range m.max {
		m.weeks = append(m.weeks, week)
	}
	slices.SortFunc(m.weeks, Week.Compare)
	return m
}
