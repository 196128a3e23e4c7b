package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/hoopsrank/internal/domain/draft"
	"github.com/okian/hoopsrank/internal/domain/model"
	"github.com/okian/hoopsrank/pkg/logger"
)

//go:embed schema.sql
var schemaSQL string

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// PostgresStore keeps draft orders in PostgreSQL. Each transaction is
// serializable and holds a transaction-scoped advisory lock on the team.
type PostgresStore struct {
	settings
	pool *pgxpool.Pool
}

// NewPostgresStore connects, pings and ensures the store tables exist.
func NewPostgresStore(ctx context.Context, connString string, opts ...Option) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PostgresStore{settings: newSettings(opts), pool: pool}, nil
}

// InTx runs fn in a serializable transaction scoped to team.
func (s *PostgresStore) InTx(ctx context.Context, team string, fn func(ctx context.Context, tx draft.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			s.logger.Warn(ctx, "rollback failed", logger.String("team", team), logger.Error(err))
		}
	}()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, team); err != nil {
		return fmt.Errorf("lock team: %w", err)
	}
	if err := fn(ctx, &pgTx{tx: tx, team: team, settings: s.settings}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", mapPgError(err))
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

type pgTx struct {
	settings
	tx   pgx.Tx
	team string
}

func (t *pgTx) Count(ctx context.Context) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx, `SELECT count(*) FROM draft_picks WHERE team = $1`, t.team).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count picks: %w", err)
	}
	return n, nil
}

func (t *pgTx) Picks(ctx context.Context) ([]draft.Pick, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT athlete_id, pick_number FROM draft_picks WHERE team = $1 ORDER BY pick_number`, t.team)
	if err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}
	picks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (draft.Pick, error) {
		var p draft.Pick
		err := row.Scan(&p.AthleteID, &p.Number)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan picks: %w", err)
	}
	return picks, nil
}

func (t *pgTx) PickForUpdate(ctx context.Context, athlete model.AthleteID) (draft.Pick, bool, error) {
	return t.lockOne(ctx,
		`SELECT athlete_id, pick_number FROM draft_picks
		 WHERE team = @team AND athlete_id = @athlete FOR UPDATE`,
		pgx.NamedArgs{"team": t.team, "athlete": athlete})
}

func (t *pgTx) PickAtForUpdate(ctx context.Context, number int) (draft.Pick, bool, error) {
	return t.lockOne(ctx,
		`SELECT athlete_id, pick_number FROM draft_picks
		 WHERE team = @team AND pick_number = @number FOR UPDATE`,
		pgx.NamedArgs{"team": t.team, "number": number})
}

func (t *pgTx) lockOne(ctx context.Context, query string, args pgx.NamedArgs) (draft.Pick, bool, error) {
	var p draft.Pick
	err := t.tx.QueryRow(ctx, query, args).Scan(&p.AthleteID, &p.Number)
	if errors.Is(err, pgx.ErrNoRows) {
		return draft.Pick{}, false, nil
	}
	if err != nil {
		return draft.Pick{}, false, fmt.Errorf("lock pick: %w", err)
	}
	return p, true, nil
}

func (t *pgTx) SetNumber(ctx context.Context, athlete model.AthleteID, number int) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE draft_picks SET pick_number = @number, updated_at = @now
		 WHERE team = @team AND athlete_id = @athlete`,
		pgx.NamedArgs{"team": t.team, "athlete": athlete, "number": number, "now": t.clock.Now().UTC()})
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: athlete %d", ErrPickNotFound, athlete)
	}
	return nil
}

func (t *pgTx) Insert(ctx context.Context, p draft.Pick) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO draft_picks (team, athlete_id, pick_number, updated_at)
		 VALUES (@team, @athlete, @number, @now)`,
		pgx.NamedArgs{"team": t.team, "athlete": p.AthleteID, "number": p.Number, "now": t.clock.Now().UTC()})
	return mapPgError(err)
}

func (t *pgTx) DeleteAll(ctx context.Context) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM draft_picks WHERE team = $1`, t.team); err != nil {
		return fmt.Errorf("delete picks: %w", err)
	}
	return nil
}

func (t *pgTx) Statuses(ctx context.Context) (map[model.AthleteID]draft.Status, error) {
	rows, err := t.tx.Query(ctx, `SELECT athlete_id, status FROM team_players WHERE team = $1`, t.team)
	if err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	out := make(map[model.AthleteID]draft.Status)
	var (
		id     model.AthleteID
		status string
	)
	_, err = pgx.ForEachRow(rows, []any{&id, &status}, func() error {
		out[id] = draft.Status(status)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan statuses: %w", err)
	}
	return out, nil
}

func (t *pgTx) SetStatus(ctx context.Context, athlete model.AthleteID, status draft.Status) (draft.Status, bool, error) {
	args := pgx.NamedArgs{"team": t.team, "athlete": athlete}
	var old string
	err := t.tx.QueryRow(ctx,
		`SELECT status FROM team_players WHERE team = @team AND athlete_id = @athlete FOR UPDATE`, args).Scan(&old)
	found := err == nil
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", false, fmt.Errorf("read status: %w", err)
	}
	args["status"] = string(status)
	args["now"] = t.clock.Now().UTC()
	_, err = t.tx.Exec(ctx,
		`INSERT INTO team_players (team, athlete_id, status, updated_at)
		 VALUES (@team, @athlete, @status, @now)
		 ON CONFLICT (team, athlete_id) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`,
		args)
	if err != nil {
		return "", false, fmt.Errorf("write status: %w", err)
	}
	return draft.Status(old), found, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", ErrDuplicatePick, pgErr.ConstraintName)
	case pgCheckViolation:
		return fmt.Errorf("%w: %s", ErrInvalidPickNumber, pgErr.ConstraintName)
	default:
		return err
	}
}
