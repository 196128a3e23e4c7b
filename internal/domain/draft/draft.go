// Package draft maintains a gap-free, uniquely numbered draft order per team.
package draft

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/itbasis/go-clock"

	"github.com/okian/hoopsrank/internal/domain/model"
	"github.com/okian/hoopsrank/pkg/logger"
	"github.com/okian/hoopsrank/pkg/metrics"
)

// Ranked is one athlete of the current rating snapshot.
type Ranked struct {
	AthleteID model.AthleteID
	Overall   float64
}

// Entry is one row of a team's draft order.
type Entry struct {
	Pick
	// Orphan is set when the athlete is no longer in the ranked table.
	Orphan bool
}

// Manager owns every mutation of the draft order.
type Manager struct {
	store  Store
	clock  clock.Clock
	logger logger.Logger
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithClock sets the clock used to time operations.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithLogger sets the manager logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a manager over store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{store: store, clock: clock.New(), logger: logger.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Seed numbers the team's picks 1..N by descending Overall, ties by athlete
// id. It does nothing if the team already has picks and reports whether it
// seeded.
func (m *Manager) Seed(ctx context.Context, team string, ranked []Ranked) (bool, error) {
	if err := validTeam(team); err != nil {
		return false, err
	}
	seeded := false
	err := m.observe(ctx, "seed", func() error {
		return m.store.InTx(ctx, team, func(ctx context.Context, tx Tx) error {
			var err error
			seeded, err = seedTx(ctx, tx, ranked)
			return err
		})
	})
	if err != nil {
		return false, err
	}
	if seeded {
		m.logger.Info(ctx, "seeded draft order", logger.String("team", team), logger.Int("picks", len(ranked)))
	}
	return seeded, nil
}

func seedTx(ctx context.Context, tx Tx, ranked []Ranked) (bool, error) {
	n, err := tx.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	order := slices.Clone(ranked)
	slices.SortFunc(order, func(a, b Ranked) int {
		if c := cmp.Compare(b.Overall, a.Overall); c != 0 {
			return c
		}
		return cmp.Compare(a.AthleteID, b.AthleteID)
	})
	seen := make(map[model.AthleteID]struct{}, len(order))
	number := 0
	for _, r := range order {
		if _, dup := seen[r.AthleteID]; dup {
			continue
		}
		seen[r.AthleteID] = struct{}{}
		number++
		if err := tx.Insert(ctx, Pick{AthleteID: r.AthleteID, Number: number}); err != nil {
			return false, fmt.Errorf("insert pick %d: %w", number, err)
		}
	}
	return number > 0, nil
}

// Move swaps the athlete with the occupant of target. The three writes go
// through the sentinel slot inside one transaction; any failure rolls back
// all of them.
func (m *Manager) Move(ctx context.Context, team string, athlete model.AthleteID, target int) error {
	if err := validTeam(team); err != nil {
		return err
	}
	return m.observe(ctx, "move", func() error {
		return m.store.InTx(ctx, team, func(ctx context.Context, tx Tx) error {
			return moveTx(ctx, tx, athlete, target)
		})
	})
}

func moveTx(ctx context.Context, tx Tx, athlete model.AthleteID, target int) error {
	n, err := tx.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEmptyTeam
	}
	if target < 1 || target > n {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrPositionOutOfRange, target, n)
	}
	subject, ok, err := tx.PickForUpdate(ctx, athlete)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %d", ErrAthleteNotInOrder, athlete)
	}
	if subject.Number == target {
		return nil
	}
	occupant, ok, err := tx.PickAtForUpdate(ctx, target)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: no pick at %d", ErrConstraintViolation, target)
	}

	if err := tx.SetNumber(ctx, occupant.AthleteID, Sentinel); err != nil {
		return fmt.Errorf("vacate pick %d: %w", target, err)
	}
	if err := tx.SetNumber(ctx, subject.AthleteID, target); err != nil {
		return fmt.Errorf("move athlete %d to %d: %w", subject.AthleteID, target, err)
	}
	if err := tx.SetNumber(ctx, occupant.AthleteID, subject.Number); err != nil {
		return fmt.Errorf("move athlete %d to %d: %w", occupant.AthleteID, subject.Number, err)
	}
	return nil
}

// SetFullOrder replaces the team's order with ordered, numbered from 1.
// Athletes not in ranked and repeated ids are skipped. A list that keeps no
// athlete is rejected so a seeded team is never emptied.
func (m *Manager) SetFullOrder(ctx context.Context, team string, ordered []model.AthleteID, ranked []Ranked) ([]Pick, error) {
	if err := validTeam(team); err != nil {
		return nil, err
	}
	known := make(map[model.AthleteID]struct{}, len(ranked))
	for _, r := range ranked {
		known[r.AthleteID] = struct{}{}
	}
	picks := make([]Pick, 0, len(ordered))
	used := make(map[model.AthleteID]struct{}, len(ordered))
	for _, id := range ordered {
		if _, ok := known[id]; !ok {
			m.logger.Warn(ctx, "skipping athlete not in ranked table", logger.String("team", team),
				logger.Int64("athlete_id", int64(id)))
			continue
		}
		if _, dup := used[id]; dup {
			continue
		}
		used[id] = struct{}{}
		picks = append(picks, Pick{AthleteID: id, Number: len(picks) + 1})
	}
	if len(picks) == 0 {
		return nil, m.observe(ctx, "set_full_order", func() error {
			return fmt.Errorf("%w: no ranked athlete in new order", ErrConstraintViolation)
		})
	}

	err := m.observe(ctx, "set_full_order", func() error {
		return m.store.InTx(ctx, team, func(ctx context.Context, tx Tx) error {
			if err := tx.DeleteAll(ctx); err != nil {
				return fmt.Errorf("clear order: %w", err)
			}
			for _, p := range picks {
				if err := tx.Insert(ctx, p); err != nil {
					return fmt.Errorf("insert pick %d: %w", p.Number, err)
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return picks, nil
}

// Order returns the team's order, seeding it first if the team has none.
// Athletes missing from ranked are kept and flagged as orphans.
func (m *Manager) Order(ctx context.Context, team string, ranked []Ranked) ([]Entry, error) {
	if err := validTeam(team); err != nil {
		return nil, err
	}
	var picks []Pick
	err := m.observe(ctx, "order", func() error {
		return m.store.InTx(ctx, team, func(ctx context.Context, tx Tx) error {
			if _, err := seedTx(ctx, tx, ranked); err != nil {
				return err
			}
			var err error
			picks, err = tx.Picks(ctx)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	known := make(map[model.AthleteID]struct{}, len(ranked))
	for _, r := range ranked {
		known[r.AthleteID] = struct{}{}
	}
	entries := make([]Entry, len(picks))
	for i, p := range picks {
		_, ok := known[p.AthleteID]
		entries[i] = Entry{Pick: p, Orphan: !ok}
		if !ok {
			m.logger.Warn(ctx, "draft entry not in ranked table", logger.String("team", team),
				logger.Int64("athlete_id", int64(p.AthleteID)), logger.Int("pick", p.Number))
			metrics.RecordDataQuality("orphan_athlete")
		}
	}
	return entries, nil
}

func (m *Manager) observe(ctx context.Context, op string, fn func() error) error {
	start := m.clock.Now()
	err := fn()
	elapsed := float64(m.clock.Now().Sub(start).Microseconds()) / 1000
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrPositionOutOfRange), errors.Is(err, ErrAthleteNotInOrder),
		errors.Is(err, ErrEmptyTeam), errors.Is(err, ErrConstraintViolation), errors.Is(err, ErrUnknownStatus):
		result = "rejected"
		m.logger.Debug(ctx, "draft operation rejected", logger.String("op", op), logger.Error(err))
	default:
		result = "error"
		m.logger.Error(ctx, "draft operation failed", logger.String("op", op), logger.Error(err))
	}
	metrics.RecordDraftOperation(op, result, elapsed)
	return err
}

func validTeam(team string) error {
	if strings.TrimSpace(team) == "" {
		return fmt.Errorf("%w: team name is empty", ErrConstraintViolation)
	}
	return nil
}
