// Package service orchestrates engine runs over the feeds and serves the
// resulting snapshot and the draft order operations built on it.
package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/itbasis/go-clock"

	"github.com/okian/hoopsrank/internal/adapters/mq/queue"
	"github.com/okian/hoopsrank/internal/adapters/mq/worker"
	"github.com/okian/hoopsrank/internal/adapters/repository"
	"github.com/okian/hoopsrank/internal/domain/availability"
	"github.com/okian/hoopsrank/internal/domain/blend"
	"github.com/okian/hoopsrank/internal/domain/dedupe"
	"github.com/okian/hoopsrank/internal/domain/draft"
	"github.com/okian/hoopsrank/internal/domain/model"
	"github.com/okian/hoopsrank/internal/domain/positions"
	"github.com/okian/hoopsrank/internal/domain/schedule"
	"github.com/okian/hoopsrank/internal/domain/scoring"
	"github.com/okian/hoopsrank/internal/domain/types"
	"github.com/okian/hoopsrank/pkg/logger"
	"github.com/okian/hoopsrank/pkg/metrics"
)

// Feeds supplies the raw inputs of an engine run. A source that does not
// exist returns an error matching fs.ErrNotExist.
type Feeds interface {
	CurrentGames(ctx context.Context) ([]model.AthleteGameRow, error)
	PriorGames(ctx context.Context) ([]model.AthleteGameRow, error)
	Roster(ctx context.Context) ([]model.RosterEntry, error)
	Schedule(ctx context.Context) ([]model.ScheduleGame, error)
}

// Service runs the rating engine and owns the latest snapshot.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	feeds     Feeds
	teams     *model.Teams
	store     draft.Store
	positions *positions.Cache
	drafts    *draft.Manager
	clock     clock.Clock

	// Configuration
	categories  []string
	puntMaxSize int
	seasonGames int
	workerCount int
	queueSize   int
	dedupeSize  int

	// State
	started    bool
	pool       *worker.Pool
	poolCancel context.CancelFunc
	snapshot   *types.Snapshot
	variance   map[scoring.Category]float64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithFeeds sets the input sources.
func WithFeeds(f Feeds) Option {
	return func(s *Service) { s.feeds = f }
}

// WithTeams sets the team directory. Defaults to the NBA.
func WithTeams(t *model.Teams) Option {
	return func(s *Service) {
		if t != nil {
			s.teams = t
		}
	}
}

// WithDraftStore sets the draft order store. Defaults to memory.
func WithDraftStore(store draft.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithPositions sets the fantasy position cache.
func WithPositions(c *positions.Cache) Option {
	return func(s *Service) { s.positions = c }
}

// WithCategories sets the configured category names. Unknown names are
// logged and skipped at run time.
func WithCategories(names []string) Option {
	return func(s *Service) {
		if len(names) > 0 {
			s.categories = append([]string(nil), names...)
		}
	}
}

// WithPuntMaxSize caps punt combinations.
func WithPuntMaxSize(n int) Option {
	return func(s *Service) { s.puntMaxSize = n }
}

// WithSeasonGames sets the regular season length used by the blender.
func WithSeasonGames(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.seasonGames = n
		}
	}
}

// WithWorkerCount sets the number of punt workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the worker queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the feed de-duplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithClock sets the clock stamping snapshots and timing runs.
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		teams:       model.NBATeams(),
		clock:       clock.New(),
		categories:  categoryNames(scoring.DefaultCategories()),
		puntMaxSize: scoring.MaxPuntSize,
		seasonGames: blend.DefaultSeasonGames,
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithClock(s.clock), repository.WithLogger(s.logger.Named("store")))
	}
	s.drafts = draft.NewManager(s.store, draft.WithClock(s.clock), draft.WithLogger(s.logger.Named("draft")))
	return s
}

func categoryNames(cats []scoring.Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}

// Start launches the worker pool. The pool outlives ctx cancellation and
// stops with Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	poolCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	q := queue.NewInMemoryQueue[worker.Job](queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, q, worker.WithClock(s.clock), worker.WithLogger(s.logger.Named("worker")))
	s.pool.Start(poolCtx)
	s.poolCancel = cancel
	s.started = true

	s.logger.Info(ctx, "service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Strings("categories", s.categories),
	)
	return nil
}

// Stop drains the worker pool.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	err := s.pool.Shutdown(ctx)
	s.poolCancel()
	s.started = false
	s.logger.Info(ctx, "service stopped")
	return err
}

// Started reports whether Start has been called.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Snapshot returns the latest snapshot, running the engine if there is none.
func (s *Service) Snapshot(ctx context.Context) (*types.Snapshot, error) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}
	return s.Run(ctx)
}

// Variance returns the per-category variance of the latest run.
func (s *Service) Variance(ctx context.Context) (map[scoring.Category]float64, []scoring.Category, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.variance, snap.Categories, nil
}

// InvalidatePositions drops cached positions; the next run reloads them.
func (s *Service) InvalidatePositions() {
	if s.positions != nil {
		s.positions.Invalidate()
	}
}

type inputs struct {
	current, prior []model.AthleteGameRow
	roster         []model.RosterEntry
	games          []model.ScheduleGame
}

// Run computes a new snapshot from the feeds and keeps it for later reads.
func (s *Service) Run(ctx context.Context) (*types.Snapshot, error) {
	s.mu.RLock()
	started, pool := s.started, s.pool
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}
	if s.feeds == nil {
		return nil, ErrNoFeeds
	}

	runID := uuid.New()
	log := s.logger.Named("engine")
	start := s.clock.Now()
	log.Info(ctx, "engine run started", logger.String("run_id", runID.String()))

	snap, variance, err := s.run(ctx, runID, pool, log)
	elapsed := float64(s.clock.Now().Sub(start).Microseconds()) / 1000
	if err != nil {
		metrics.RecordEngineRun("error", elapsed)
		log.Error(ctx, "engine run failed", logger.String("run_id", runID.String()), logger.Error(err))
		return nil, err
	}
	metrics.RecordEngineRun("ok", elapsed)
	metrics.UpdateSnapshotSize(snap.Len(), len(snap.PuntKeys), len(snap.Weeks))

	s.mu.Lock()
	s.snapshot = snap
	s.variance = variance
	s.mu.Unlock()

	log.Info(ctx, "engine run finished",
		logger.String("run_id", runID.String()),
		logger.Int("athletes", snap.Len()),
		logger.Int("punt_variants", len(snap.PuntKeys)),
		logger.Int("weeks", len(snap.Weeks)),
		logger.Float64("duration_ms", elapsed),
	)
	return snap, nil
}

func (s *Service) run(ctx context.Context, runID uuid.UUID, pool *worker.Pool, log logger.Logger) (*types.Snapshot, map[scoring.Category]float64, error) {
	in, err := s.load(ctx, log)
	if err != nil {
		return nil, nil, err
	}
	if len(in.current) == 0 && len(in.prior) == 0 {
		return nil, nil, fmt.Errorf("%w: no game rows in any season", scoring.ErrNoUsableInput)
	}

	current := blend.Aggregate(in.current, in.roster, s.teams)
	prior := blend.Aggregate(in.prior, in.roster, s.teams)

	availRows := in.current
	if len(availRows) == 0 {
		log.Warn(ctx, "no current season rows, using prior season only")
		availRows = in.prior
	}
	avail := availability.NewScorer(s.teams, availability.WithLogger(log.Named("availability"))).
		Score(ctx, availRows, in.roster)
	for range avail.Unmapped {
		metrics.RecordDataQuality("unmapped_team")
	}

	profiles := blend.NewBlender(blend.WithSeasonGames(s.seasonGames), blend.WithLogger(log.Named("blend"))).
		Blend(ctx, prior, current, avail.TeamGames)

	var weeks *schedule.WeekMap
	if len(in.games) > 0 {
		weeks = schedule.NewWeighter(s.teams, schedule.WithLogger(log.Named("schedule"))).Build(ctx, in.games)
	}

	cats, unknown := scoring.ParseCategories(s.categories)
	for _, name := range unknown {
		metrics.RecordDataQuality("unknown_category")
		log.Warn(ctx, "skipping unknown category", logger.String("category", name))
	}

	engine := scoring.NewEngine(
		scoring.WithCategories(cats),
		scoring.WithPuntMaxSize(s.puntMaxSize),
		scoring.WithPuntRunner(&puntRunner{pool: pool, batch: s.queueSize}),
		scoring.WithLogger(log),
	)
	ratings, err := engine.Rate(ctx, scoring.Input{
		Profiles:     profiles,
		Availability: avail.Scores,
		Schedule:     weeks,
	})
	if err != nil {
		return nil, nil, err
	}

	snap := types.NewSnapshot(runID, s.clock.Now(), ratings)
	for i := range snap.Rows {
		row := &snap.Rows[i]
		if t, ok := s.teams.ByID(row.TeamID); ok {
			row.TeamAbbr = t.Abbr
		}
		row.Positions = positions.Unknown
		if s.positions != nil {
			row.Positions = s.positions.Label(ctx, row.AthleteID)
		}
	}

	varianceRows := append(append([]model.AthleteGameRow(nil), in.prior...), in.current...)
	return snap, scoring.Variance(varianceRows, engine.Categories()), nil
}

// load reads every feed. Missing sources other than the two game logs
// together are tolerated with a warning.
func (s *Service) load(ctx context.Context, log logger.Logger) (inputs, error) {
	var in inputs
	var err error

	if in.current, err = optional(ctx, log, "current_games", s.feeds.CurrentGames); err != nil {
		return in, err
	}
	if in.prior, err = optional(ctx, log, "prior_games", s.feeds.PriorGames); err != nil {
		return in, err
	}
	if in.roster, err = optional(ctx, log, "roster", s.feeds.Roster); err != nil {
		return in, err
	}
	if in.games, err = optional(ctx, log, "schedule", s.feeds.Schedule); err != nil {
		return in, err
	}

	in.current = s.dedupe(ctx, log, "current_games", in.current)
	in.prior = s.dedupe(ctx, log, "prior_games", in.prior)
	return in, nil
}

func optional[T any](ctx context.Context, log logger.Logger, source string, read func(context.Context) ([]T, error)) ([]T, error) {
	rows, err := read(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		metrics.RecordDataQuality("missing_source")
		log.Warn(ctx, "feed source missing", logger.String("source", source), logger.Error(err))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}
	return rows, nil
}

func (s *Service) dedupe(ctx context.Context, log logger.Logger, source string, rows []model.AthleteGameRow) []model.AthleteGameRow {
	if len(rows) == 0 {
		return rows
	}
	var opts []dedupe.Option
	if s.dedupeSize > 0 {
		opts = append(opts, dedupe.WithMaxSize(s.dedupeSize))
	}
	kept, dropped := dedupe.Rows(ctx, rows, dedupe.NewInMemoryDeduper(opts...), log.Named("dedupe"))
	for range dropped {
		metrics.RecordDataQuality("duplicate_row")
	}
	if dropped > 0 {
		log.Warn(ctx, "dropped duplicate rows", logger.String("source", source), logger.Int("dropped", dropped))
	}
	return kept
}

func ranked(snap *types.Snapshot) []draft.Ranked {
	out := make([]draft.Ranked, len(snap.Rows))
	for i, r := range snap.Rows {
		out[i] = draft.Ranked{AthleteID: r.AthleteID, Overall: r.Overall}
	}
	return out
}

// DraftOrder returns the team's draft order, seeding it from the snapshot
// when the team has none.
func (s *Service) DraftOrder(ctx context.Context, team string) ([]draft.Entry, *types.Snapshot, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	entries, err := s.drafts.Order(ctx, team, ranked(snap))
	if err != nil {
		return nil, nil, err
	}
	return entries, snap, nil
}

// MoveDraftPick moves athlete to target in the team's order, swapping with
// the current holder of target.
func (s *Service) MoveDraftPick(ctx context.Context, team string, athlete model.AthleteID, target int) error {
	if err := s.drafts.Move(ctx, team, athlete, target); err != nil {
		return err
	}
	s.logger.Info(ctx, "draft pick moved", logger.String("team", team),
		logger.Int64("athlete_id", int64(athlete)), logger.Int("target", target))
	return nil
}

// SetDraftOrder replaces the team's order. Athletes not in the snapshot are
// skipped.
func (s *Service) SetDraftOrder(ctx context.Context, team string, ordered []model.AthleteID) ([]draft.Pick, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.drafts.SetFullOrder(ctx, team, ordered, ranked(snap))
}

// TeamAverages averages the snapshot rows of ids.
func (s *Service) TeamAverages(ctx context.Context, ids []model.AthleteID) (types.TeamAverage, *types.Snapshot, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return types.TeamAverage{}, nil, err
	}
	avg := snap.TeamAverages(ids)
	if avg.Orphans > 0 {
		metrics.RecordDataQuality("orphan_athlete")
		s.logger.Warn(ctx, "team average skipped unknown athletes", logger.Int("orphans", avg.Orphans))
	}
	return avg, snap, nil
}

// StatusUpdate is the outcome of SetPlayerStatus. Averages is recomputed only
// when the athlete joined or left the team.
type StatusUpdate struct {
	draft.StatusChange
	Averages *types.TeamAverage
}

// SetPlayerStatus stores the athlete's status for team.
func (s *Service) SetPlayerStatus(ctx context.Context, team string, athlete model.AthleteID, status draft.Status) (StatusUpdate, *types.Snapshot, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return StatusUpdate{}, nil, err
	}
	if _, ok := snap.Row(athlete); !ok {
		metrics.RecordDataQuality("orphan_athlete")
		s.logger.Warn(ctx, "status set for athlete not in ranked table", logger.String("team", team),
			logger.Int64("athlete_id", int64(athlete)))
	}
	change, err := s.drafts.SetStatus(ctx, team, athlete, status)
	if err != nil {
		return StatusUpdate{}, nil, err
	}
	update := StatusUpdate{StatusChange: change}
	if change.MembershipChanged() {
		avg, _, err := s.RosterAverages(ctx, team)
		if err != nil {
			return StatusUpdate{}, nil, err
		}
		update.Averages = &avg
	}
	return update, snap, nil
}

// PlayerStatuses returns the stored statuses of team.
func (s *Service) PlayerStatuses(ctx context.Context, team string) (map[model.AthleteID]draft.Status, error) {
	return s.drafts.Statuses(ctx, team)
}

// RosterAverages averages the snapshot rows of the team's ON_TEAM athletes.
func (s *Service) RosterAverages(ctx context.Context, team string) (types.TeamAverage, *types.Snapshot, error) {
	members, err := s.drafts.Members(ctx, team)
	if err != nil {
		return types.TeamAverage{}, nil, err
	}
	return s.TeamAverages(ctx, members)
}
