package repository

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/okian/hoopsrank/internal/domain/draft"
	"github.com/okian/hoopsrank/internal/domain/model"
)

type memTeam struct {
	mu        sync.Mutex
	byAthlete map[model.AthleteID]int
	updatedAt map[model.AthleteID]time.Time
	statuses  map[model.AthleteID]draft.Status
}

// MemoryStore keeps draft orders in process. Each team has its own lock and
// transactions run against a copy that replaces the team's rows on success.
type MemoryStore struct {
	settings

	mu    sync.Mutex
	teams map[string]*memTeam
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{settings: newSettings(opts), teams: make(map[string]*memTeam)}
}

func (s *MemoryStore) team(name string) *memTeam {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[name]
	if !ok {
		t = &memTeam{
			byAthlete: make(map[model.AthleteID]int),
			updatedAt: make(map[model.AthleteID]time.Time),
			statuses:  make(map[model.AthleteID]draft.Status),
		}
		s.teams[name] = t
	}
	return t
}

// InTx runs fn against a copy of the team's rows and commits it only if fn
// succeeds.
func (s *MemoryStore) InTx(ctx context.Context, team string, fn func(ctx context.Context, tx draft.Tx) error) error {
	t := s.team(team)
	t.mu.Lock()
	defer t.mu.Unlock()

	tx := &memTx{
		byAthlete: maps.Clone(t.byAthlete),
		byNumber:  make(map[int]model.AthleteID, len(t.byAthlete)),
		updatedAt: maps.Clone(t.updatedAt),
		statuses:  maps.Clone(t.statuses),
		now:       s.clock.Now,
	}
	for id, n := range tx.byAthlete {
		tx.byNumber[n] = id
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if _, parked := tx.byNumber[draft.Sentinel]; parked {
		return fmt.Errorf("%w: sentinel slot still occupied at commit", ErrDuplicatePick)
	}
	t.byAthlete = tx.byAthlete
	t.updatedAt = tx.updatedAt
	t.statuses = tx.statuses
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

type memTx struct {
	byAthlete map[model.AthleteID]int
	byNumber  map[int]model.AthleteID
	updatedAt map[model.AthleteID]time.Time
	statuses  map[model.AthleteID]draft.Status
	now       func() time.Time
}

func (tx *memTx) Count(context.Context) (int, error) { return len(tx.byAthlete), nil }

func (tx *memTx) Picks(context.Context) ([]draft.Pick, error) {
	picks := make([]draft.Pick, 0, len(tx.byAthlete))
	for id, n := range tx.byAthlete {
		picks = append(picks, draft.Pick{AthleteID: id, Number: n})
	}
	slices.SortFunc(picks, func(a, b draft.Pick) int { return a.Number - b.Number })
	return picks, nil
}

func (tx *memTx) PickForUpdate(_ context.Context, athlete model.AthleteID) (draft.Pick, bool, error) {
	n, ok := tx.byAthlete[athlete]
	return draft.Pick{AthleteID: athlete, Number: n}, ok, nil
}

func (tx *memTx) PickAtForUpdate(_ context.Context, number int) (draft.Pick, bool, error) {
	id, ok := tx.byNumber[number]
	return draft.Pick{AthleteID: id, Number: number}, ok, nil
}

func (tx *memTx) SetNumber(_ context.Context, athlete model.AthleteID, number int) error {
	if number < 0 {
		return ErrInvalidPickNumber
	}
	old, ok := tx.byAthlete[athlete]
	if !ok {
		return fmt.Errorf("%w: athlete %d", ErrPickNotFound, athlete)
	}
	if holder, taken := tx.byNumber[number]; taken && holder != athlete {
		return fmt.Errorf("%w: %d", ErrDuplicatePick, number)
	}
	delete(tx.byNumber, old)
	tx.byNumber[number] = athlete
	tx.byAthlete[athlete] = number
	tx.updatedAt[athlete] = tx.now()
	return nil
}

func (tx *memTx) Insert(_ context.Context, p draft.Pick) error {
	if p.Number < 0 {
		return ErrInvalidPickNumber
	}
	if _, taken := tx.byNumber[p.Number]; taken {
		return fmt.Errorf("%w: %d", ErrDuplicatePick, p.Number)
	}
	if _, exists := tx.byAthlete[p.AthleteID]; exists {
		return fmt.Errorf("%w: athlete %d already placed", ErrDuplicatePick, p.AthleteID)
	}
	tx.byAthlete[p.AthleteID] = p.Number
	tx.byNumber[p.Number] = p.AthleteID
	tx.updatedAt[p.AthleteID] = tx.now()
	return nil
}

func (tx *memTx) DeleteAll(context.Context) error {
	clear(tx.byAthlete)
	clear(tx.byNumber)
	clear(tx.updatedAt)
	return nil
}

func (tx *memTx) Statuses(context.Context) (map[model.AthleteID]draft.Status, error) {
	return maps.Clone(tx.statuses), nil
}

func (tx *memTx) SetStatus(_ context.Context, athlete model.AthleteID, status draft.Status) (draft.Status, bool, error) {
	old, ok := tx.statuses[athlete]
	tx.statuses[athlete] = status
	return old, ok, nil
}

// UpdatedAt returns when the athlete's pick last changed.
func (s *MemoryStore) UpdatedAt(team string, athlete model.AthleteID) (time.Time, bool) {
	t := s.team(team)
	t.mu.Lock()
	defer t.mu.Unlock()
	at, ok := t.updatedAt[athlete]
	return at, ok
}
