package scoring

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/okian/hoopsrank/internal/domain/model"
	"github.com/okian/hoopsrank/internal/domain/schedule"
	"github.com/okian/hoopsrank/pkg/logger"
)

// Input is everything one engine run reads.
type Input struct {
	Profiles []model.AthleteProfile
	// Availability maps athletes to their availability score. Missing
	// athletes score 0.
	Availability map[model.AthleteID]float64
	// Schedule drives weekly ratings. Nil disables them.
	Schedule *schedule.WeekMap
}

// WeeklyRating is one week's rating column.
type WeeklyRating struct {
	Week   schedule.Week
	Values []float64
	// Scheduled is false for athletes whose team is not in the schedule.
	Scheduled []bool
}

// PuntRating holds the composites recomputed without the punted categories.
type PuntRating struct {
	Set          PuntSet
	Overall      []float64
	Availability []float64
	Combined     []float64
}

// Ratings is the column-oriented result of an engine run. Every series is
// indexed like Athletes.
type Ratings struct {
	Athletes     []model.AthleteProfile
	Categories   []Category
	Category     map[Category][]float64
	AvailScore   []float64
	Overall      []float64
	Availability []float64
	Combined     []float64
	Weekly       []WeeklyRating
	Punts        []PuntRating
}

// PuntRunner computes punt variants. Results must come back in the order of
// sets.
type PuntRunner interface {
	RunPunts(ctx context.Context, sets []PuntSet, rate func(context.Context, PuntSet) (PuntRating, error)) ([]PuntRating, error)
}

type sequentialRunner struct{}

func (sequentialRunner) RunPunts(ctx context.Context, sets []PuntSet, rate func(context.Context, PuntSet) (PuntRating, error)) ([]PuntRating, error) {
	out := make([]PuntRating, 0, len(sets))
	for _, set := range sets {
		r, err := rate(ctx, set)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Engine computes category, composite, weekly and punt ratings.
type Engine struct {
	categories  []Category
	puntMaxSize int
	runner      PuntRunner
	logger      logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithCategories restricts the ratable categories. Duplicates are dropped.
func WithCategories(cats []Category) Option {
	return func(e *Engine) {
		seen := make(map[Category]struct{}, len(cats))
		e.categories = e.categories[:0:0]
		for _, c := range cats {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			e.categories = append(e.categories, c)
		}
	}
}

// WithPuntMaxSize sets the largest punt subset, clamped to [0, MaxPuntSize].
func WithPuntMaxSize(n int) Option {
	return func(e *Engine) {
		e.puntMaxSize = max(0, min(n, MaxPuntSize))
	}
}

// WithPuntRunner replaces the sequential punt runner.
func WithPuntRunner(r PuntRunner) Option {
	return func(e *Engine) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine over every category with punts of up to two.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		categories:  DefaultCategories(),
		puntMaxSize: MaxPuntSize,
		runner:      sequentialRunner{},
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Categories returns the categories the engine rates.
func (e *Engine) Categories() []Category { return slices.Clone(e.categories) }

// Rate runs the engine. It fails only when there is nothing to rate.
func (e *Engine) Rate(ctx context.Context, in Input) (*Ratings, error) {
	if len(in.Profiles) == 0 {
		return nil, ErrNoUsableInput
	}
	if len(e.categories) == 0 {
		return nil, ErrNoCategories
	}

	athletes := slices.Clone(in.Profiles)
	slices.SortFunc(athletes, func(a, b model.AthleteProfile) int {
		return cmp.Compare(a.AthleteID, b.AthleteID)
	})

	r := &Ratings{
		Athletes:   athletes,
		Categories: slices.Clone(e.categories),
		Category:   make(map[Category][]float64, len(e.categories)),
		AvailScore: make([]float64, len(athletes)),
	}
	for _, c := range r.Categories {
		r.Category[c] = c.Rate(athletes)
	}
	for i, a := range athletes {
		r.AvailScore[i] = in.Availability[a.AthleteID]
	}
	r.Overall, r.Availability, r.Combined = r.composite(r.Categories)

	if in.Schedule != nil {
		teams := make([]model.TeamID, len(athletes))
		for i, a := range athletes {
			teams[i] = a.TeamID
		}
		for _, week := range in.Schedule.Weeks() {
			values, scheduled := WeekWeighted(r.Overall, teams, in.Schedule, week)
			r.Weekly = append(r.Weekly, WeeklyRating{Week: week, Values: Normalize(values), Scheduled: scheduled})
		}
	}

	sets := e.puntSets(ctx)
	punts, err := e.runner.RunPunts(ctx, sets, func(_ context.Context, set PuntSet) (PuntRating, error) {
		return r.Punt(set)
	})
	if err != nil {
		return nil, fmt.Errorf("compute punt variants: %w", err)
	}
	r.Punts = punts
	return r, nil
}

// puntSets lists the punt subsets to compute, skipping any that would leave
// nothing to rank.
func (e *Engine) puntSets(ctx context.Context) []PuntSet {
	var sets []PuntSet
	for set := range Combinations(e.categories, e.puntMaxSize) {
		if len(set.Remaining(e.categories)) == 0 {
			e.logger.Warn(ctx, "skipping punt combination that removes every category",
				logger.String("variant", set.Key()))
			continue
		}
		sets = append(sets, set)
	}
	return sets
}

// Punt recomputes the composites without the punted categories.
func (r *Ratings) Punt(set PuntSet) (PuntRating, error) {
	remaining := set.Remaining(r.Categories)
	if len(remaining) == 0 {
		return PuntRating{}, fmt.Errorf("%w: %s", ErrNoCategories, set.Key())
	}
	overall, avail, combined := r.composite(remaining)
	return PuntRating{Set: set, Overall: overall, Availability: avail, Combined: combined}, nil
}

func (r *Ratings) composite(cats []Category) (overall, avail, combined []float64) {
	n := len(r.Athletes)
	sum := make([]float64, n)
	for _, c := range cats {
		for i, v := range r.Category[c] {
			sum[i] += v
		}
	}
	overall = Normalize(sum)

	weighted := make([]float64, n)
	for i := range weighted {
		weighted[i] = overall[i] * r.AvailScore[i]
	}
	avail = Normalize(weighted)

	mean := make([]float64, n)
	for i := range mean {
		mean[i] = (overall[i] + avail[i]) / 2
	}
	combined = Normalize(mean)
	return overall, avail, combined
}

// WeekWeighted scales overall by each athlete's team weight for week, before
// re-normalization. Athletes whose team is not scheduled get 0 and false.
func WeekWeighted(overall []float64, teams []model.TeamID, m *schedule.WeekMap, week schedule.Week) ([]float64, []bool) {
	values := make([]float64, len(overall))
	scheduled := make([]bool, len(overall))
	for i := range overall {
		w, ok := m.Weight(teams[i], week)
		if !ok {
			continue
		}
		values[i] = overall[i] * w
		scheduled[i] = true
	}
	return values, scheduled
}
