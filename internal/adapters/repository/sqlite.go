package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/glebarez/go-sqlite" // registers the "sqlite" driver

	"github.com/okian/hoopsrank/internal/domain/draft"
	"github.com/okian/hoopsrank/internal/domain/model"
	"github.com/okian/hoopsrank/pkg/logger"
)

// SQLiteStore keeps draft orders in a local SQLite file. A single connection
// serializes every transaction.
type SQLiteStore struct {
	settings
	db *sql.DB
}

// SQLiteDSN adds the connection parameters every store connection needs to
// path: a busy timeout and transactions that take the write lock at BEGIN,
// so processes sharing the file queue up instead of failing with
// SQLITE_BUSY.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)&_txlock=immediate"
}

// NewSQLiteStore opens path and ensures the store tables exist.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path must not be empty")
	}
	db, err := sql.Open("sqlite", SQLiteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare sqlite: %w", err)
	}
	return &SQLiteStore{settings: newSettings(opts), db: db}, nil
}

// InTx runs fn in a transaction. Team isolation follows from the single
// connection.
func (s *SQLiteStore) InTx(ctx context.Context, team string, fn func(ctx context.Context, tx draft.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.logger.Warn(ctx, "rollback failed", logger.String("team", team), logger.Error(err))
		}
	}()

	if err := fn(ctx, &sqliteTx{tx: tx, team: team, settings: s.settings}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

type sqliteTx struct {
	settings
	tx   *sql.Tx
	team string
}

func (t *sqliteTx) Count(ctx context.Context) (int, error) {
	var n int
	if err := t.tx.QueryRowContext(ctx, `SELECT count(*) FROM draft_picks WHERE team = ?`, t.team).Scan(&n); err != nil {
		return 0, fmt.Errorf("count picks: %w", err)
	}
	return n, nil
}

func (t *sqliteTx) Picks(ctx context.Context) ([]draft.Pick, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT athlete_id, pick_number FROM draft_picks WHERE team = ? ORDER BY pick_number`, t.team)
	if err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}
	defer rows.Close()

	var picks []draft.Pick
	for rows.Next() {
		var p draft.Pick
		if err := rows.Scan(&p.AthleteID, &p.Number); err != nil {
			return nil, fmt.Errorf("scan pick: %w", err)
		}
		picks = append(picks, p)
	}
	return picks, rows.Err()
}

// SQLite has no row locks; the write lock taken by the transaction covers
// the whole database.
func (t *sqliteTx) PickForUpdate(ctx context.Context, athlete model.AthleteID) (draft.Pick, bool, error) {
	return t.one(ctx, `SELECT athlete_id, pick_number FROM draft_picks WHERE team = ? AND athlete_id = ?`, t.team, athlete)
}

func (t *sqliteTx) PickAtForUpdate(ctx context.Context, number int) (draft.Pick, bool, error) {
	return t.one(ctx, `SELECT athlete_id, pick_number FROM draft_picks WHERE team = ? AND pick_number = ?`, t.team, number)
}

func (t *sqliteTx) one(ctx context.Context, query string, args ...any) (draft.Pick, bool, error) {
	var p draft.Pick
	err := t.tx.QueryRowContext(ctx, query, args...).Scan(&p.AthleteID, &p.Number)
	if errors.Is(err, sql.ErrNoRows) {
		return draft.Pick{}, false, nil
	}
	if err != nil {
		return draft.Pick{}, false, fmt.Errorf("read pick: %w", err)
	}
	return p, true, nil
}

func (t *sqliteTx) SetNumber(ctx context.Context, athlete model.AthleteID, number int) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE draft_picks SET pick_number = ?, updated_at = ? WHERE team = ? AND athlete_id = ?`,
		number, t.clock.Now().UTC(), t.team, athlete)
	if err != nil {
		return mapSQLiteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: athlete %d", ErrPickNotFound, athlete)
	}
	return nil
}

func (t *sqliteTx) Insert(ctx context.Context, p draft.Pick) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO draft_picks (team, athlete_id, pick_number, updated_at) VALUES (?, ?, ?, ?)`,
		t.team, p.AthleteID, p.Number, t.clock.Now().UTC())
	return mapSQLiteError(err)
}

func (t *sqliteTx) DeleteAll(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM draft_picks WHERE team = ?`, t.team); err != nil {
		return fmt.Errorf("delete picks: %w", err)
	}
	return nil
}

func (t *sqliteTx) Statuses(ctx context.Context) (map[model.AthleteID]draft.Status, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT athlete_id, status FROM team_players WHERE team = ?`, t.team)
	if err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	defer rows.Close()

	out := make(map[model.AthleteID]draft.Status)
	for rows.Next() {
		var (
			id     model.AthleteID
			status string
		)
		if err := rows.Scan(&id, &status); err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		out[id] = draft.Status(status)
	}
	return out, rows.Err()
}

func (t *sqliteTx) SetStatus(ctx context.Context, athlete model.AthleteID, status draft.Status) (draft.Status, bool, error) {
	var old string
	err := t.tx.QueryRowContext(ctx,
		`SELECT status FROM team_players WHERE team = ? AND athlete_id = ?`, t.team, athlete).Scan(&old)
	found := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", false, fmt.Errorf("read status: %w", err)
	}
	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO team_players (team, athlete_id, status, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (team, athlete_id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`,
		t.team, athlete, string(status), t.clock.Now().UTC())
	if err != nil {
		return "", false, fmt.Errorf("write status: %w", err)
	}
	return draft.Status(old), found, nil
}

func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %s", ErrDuplicatePick, msg)
	case strings.Contains(msg, "CHECK constraint failed"):
		return fmt.Errorf("%w: %s", ErrInvalidPickNumber, msg)
	default:
		return err
	}
}
