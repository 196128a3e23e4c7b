// Package output renders snapshots and draft orders for the terminal.
package output

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/okian/hoopsrank/internal/domain/draft"
	"github.com/okian/hoopsrank/internal/domain/model"
	"github.com/okian/hoopsrank/internal/domain/scoring"
	"github.com/okian/hoopsrank/internal/domain/types"
)

// NA is printed for missing ratings.
const NA = "N/A"

var tierColors = map[scoring.Tier]lipgloss.Color{ //nolint:gochecknoglobals // palette
	scoring.TierElite:   lipgloss.Color("10"),
	scoring.TierStrong:  lipgloss.Color("2"),
	scoring.TierGood:    lipgloss.Color("6"),
	scoring.TierNeutral: lipgloss.Color("7"),
	scoring.TierWeak:    lipgloss.Color("3"),
	scoring.TierPoor:    lipgloss.Color("208"),
	scoring.TierBad:     lipgloss.Color("9"),
}

// ConsoleFormatter writes tables to an io.Writer.
type ConsoleFormatter struct {
	w        io.Writer
	colorize bool
	quiet    bool
}

// Option configures a ConsoleFormatter.
type Option func(*ConsoleFormatter)

// WithColor toggles tier colouring.
func WithColor(on bool) Option {
	return func(f *ConsoleFormatter) { f.colorize = on }
}

// WithQuiet suppresses every table.
func WithQuiet(quiet bool) Option {
	return func(f *ConsoleFormatter) { f.quiet = quiet }
}

// NewConsoleFormatter creates a formatter writing to w.
func NewConsoleFormatter(w io.Writer, opts ...Option) *ConsoleFormatter {
	f := &ConsoleFormatter{w: w, colorize: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// grid collects string cells next to the rating each cell shows, NaN for
// cells that are not ratings.
type grid struct {
	headers []string
	cells   [][]string
	values  [][]float64
}

func (g *grid) add(cells []string, values []float64) {
	g.cells = append(g.cells, cells)
	g.values = append(g.values, values)
}

func (f *ConsoleFormatter) render(g *grid) error {
	if f.quiet {
		return nil
	}
	base := lipgloss.NewStyle().Padding(0, 1)
	header := base.Bold(true)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(g.headers...).
		Rows(g.cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if !f.colorize || row < 0 || row >= len(g.values) || col >= len(g.values[row]) {
				return base
			}
			v := g.values[row][col]
			if math.IsNaN(v) {
				return base
			}
			return base.Foreground(tierColors[scoring.Classify(v)])
		})
	_, err := fmt.Fprintln(f.w, t.String())
	return err
}

func rating(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }

func text(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// Ranked renders rows with their category and composite ratings. A non-empty
// punt key adds that variant's composites. A non-nil statuses map adds each
// athlete's status for the team it was read from.
func (f *ConsoleFormatter) Ranked(s *types.Snapshot, rows []types.RankedRow, punt string, statuses map[model.AthleteID]draft.Status) error {
	g := &grid{headers: []string{"#", "Athlete", "Team", "Pos", "GP", "Avail"}}
	if statuses != nil {
		g.headers = append(g.headers, "Status")
	}
	lead := len(g.headers)
	for _, c := range s.Categories {
		g.headers = append(g.headers, string(c))
	}
	g.headers = append(g.headers, "OVR", "AVL", "CMB")
	if punt != "" {
		g.headers = append(g.headers, punt, punt+":AVL", punt+":CMB")
	}

	for i, r := range rows {
		cells := []string{
			strconv.Itoa(i + 1), r.Name, r.TeamAbbr, r.Positions,
			strconv.Itoa(r.Games), strconv.FormatFloat(r.AvailScore, 'f', 2, 64),
		}
		if statuses != nil {
			cells = append(cells, statusOf(statuses, r.AthleteID).Label())
		}
		values := text(lead)
		for _, c := range s.Categories {
			v := r.Category[c]
			cells = append(cells, rating(v))
			values = append(values, v)
		}
		cells = append(cells, rating(r.Overall), rating(r.Availability), rating(r.Combined))
		values = append(values, r.Overall, r.Availability, r.Combined)
		if punt != "" {
			p, ok := r.Punts[punt]
			if ok {
				cells = append(cells, rating(p.Overall), rating(p.Availability), rating(p.Combined))
				values = append(values, p.Overall, p.Availability, p.Combined)
			} else {
				cells = append(cells, NA, NA, NA)
				values = append(values, text(3)...)
			}
		}
		g.add(cells, values)
	}
	return f.render(g)
}

func statusOf(statuses map[model.AthleteID]draft.Status, id model.AthleteID) draft.Status {
	if st, ok := statuses[id]; ok {
		return st
	}
	return draft.StatusAvailable
}

// StatusChange prints one line describing a status update.
func (f *ConsoleFormatter) StatusChange(c draft.StatusChange) error {
	if f.quiet {
		return nil
	}
	_, err := fmt.Fprintf(f.w, "Athlete %d: %s -> %s\n", c.AthleteID, c.Old.Label(), c.New.Label())
	return err
}

// Statuses renders the athletes with a stored status, members first.
func (f *ConsoleFormatter) Statuses(team string, s *types.Snapshot, statuses map[model.AthleteID]draft.Status) error {
	if !f.quiet {
		title := lipgloss.NewStyle().Bold(true).Render("Team: " + team)
		if _, err := fmt.Fprintln(f.w, title); err != nil {
			return err
		}
	}
	ids := slices.Collect(maps.Keys(statuses))
	order := draft.Statuses()
	slices.SortFunc(ids, func(a, b model.AthleteID) int {
		if c := slices.Index(order, statuses[a]) - slices.Index(order, statuses[b]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	g := &grid{headers: []string{"ID", "Athlete", "Team", "Status", "OVR"}}
	for _, id := range ids {
		r, ok := s.Row(id)
		if !ok {
			g.add([]string{strconv.FormatInt(int64(id), 10), "(not ranked)", NA, statuses[id].Label(), NA}, text(5))
			continue
		}
		g.add([]string{strconv.FormatInt(int64(id), 10), r.Name, r.TeamAbbr, statuses[id].Label(), rating(r.Overall)},
			append(text(4), r.Overall))
	}
	return f.render(g)
}

// Weekly renders one column per schedule week. Unscheduled weeks print N/A.
func (f *ConsoleFormatter) Weekly(t types.WeeklyTable, limit int) error {
	g := &grid{headers: []string{"Athlete", "Team"}}
	for _, w := range t.Weeks {
		g.headers = append(g.headers, w.String())
	}
	for i, r := range t.Rows {
		if limit > 0 && i >= limit {
			break
		}
		cells := []string{r.Name, r.TeamAbbr}
		values := text(2)
		for _, v := range r.Values {
			if !v.Scheduled {
				cells = append(cells, NA)
				values = append(values, math.NaN())
				continue
			}
			cells = append(cells, rating(v.Rating))
			values = append(values, v.Rating)
		}
		g.add(cells, values)
	}
	return f.render(g)
}

// DraftOrder renders a team's picks. Orphaned athletes keep their pick but
// show no ratings.
func (f *ConsoleFormatter) DraftOrder(team string, entries []draft.Entry, s *types.Snapshot) error {
	if !f.quiet {
		title := lipgloss.NewStyle().Bold(true).Render("Draft order: " + team)
		if _, err := fmt.Fprintln(f.w, title); err != nil {
			return err
		}
	}
	g := &grid{headers: []string{"Pick", "Athlete", "Team", "Pos", "OVR", "AVL", "CMB"}}
	for _, e := range entries {
		r, ok := s.Row(e.AthleteID)
		if e.Orphan || !ok {
			g.add([]string{strconv.Itoa(e.Number), fmt.Sprintf("#%d (not ranked)", e.AthleteID), NA, NA, NA, NA, NA}, text(7))
			continue
		}
		g.add(
			[]string{strconv.Itoa(e.Number), r.Name, r.TeamAbbr, r.Positions, rating(r.Overall), rating(r.Availability), rating(r.Combined)},
			append(text(4), r.Overall, r.Availability, r.Combined),
		)
	}
	return f.render(g)
}

// TeamAverage renders the averages of a drafted roster.
func (f *ConsoleFormatter) TeamAverage(s *types.Snapshot, avg types.TeamAverage) error {
	g := &grid{headers: []string{"Athletes", "Orphans"}}
	cells := []string{strconv.Itoa(avg.Athletes), strconv.Itoa(avg.Orphans)}
	values := text(2)
	for _, c := range s.Categories {
		g.headers = append(g.headers, string(c))
		cells = append(cells, rating(avg.Category[c]))
		values = append(values, avg.Category[c])
	}
	g.headers = append(g.headers, "OVR", "AVL", "CMB")
	cells = append(cells, rating(avg.Overall), rating(avg.Availability), rating(avg.Combined))
	values = append(values, avg.Overall, avg.Availability, avg.Combined)
	g.add(cells, values)
	return f.render(g)
}

// Variance renders per-category variance.
func (f *ConsoleFormatter) Variance(cats []scoring.Category, v map[scoring.Category]float64) error {
	g := &grid{headers: []string{"Category", "Variance"}}
	for _, c := range cats {
		g.add([]string{string(c), strconv.FormatFloat(v[c], 'f', 2, 64)}, text(2))
	}
	return f.render(g)
}
