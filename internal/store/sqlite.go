package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/DuneReaper/dune-reapers-bot/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// AddPoints upserts the member's record in a single statement. The insert
// branch seeds a brand-new record at 1000+delta; the conflict branch adds
// delta to whatever is stored. Both branches refresh last_active, so a
// concurrent sweep can never observe a half-applied award.
func (r *SQLiteRepo) AddPoints(ctx context.Context, memberID string, delta float64, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (user_id, elo, last_active)
		VALUES (?, 1000 + ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			elo         = elo + ?,
			last_active = excluded.last_active`,
		memberID, delta, now.UTC().Unix(), delta,
	)
	return err
}

// GetUser returns a member's record or ErrNotFound.
func (r *SQLiteRepo) GetUser(ctx context.Context, memberID string) (*domain.UserRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, elo, last_active, on_break, break_start, break_end
		FROM users
		WHERE user_id = ?`,
		memberID,
	)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// SetBreak marks the member on break. A member can submit a new request
// while already on break; the declared window is simply replaced.
func (r *SQLiteRepo) SetBreak(ctx context.Context, memberID string, start, end time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (user_id, on_break, break_start, break_end)
		VALUES (?, 1, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			on_break    = 1,
			break_start = ?,
			break_end   = ?`,
		memberID, toNullInt64(&start), toNullInt64(&end),
		toNullInt64(&start), toNullInt64(&end),
	)
	return err
}

// ClearBreak ends a break regardless of the declared window. Clearing a
// member who was never on break (or has no record) is a no-op.
func (r *SQLiteRepo) ClearBreak(ctx context.Context, memberID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET on_break = 0, break_start = NULL, break_end = NULL
		WHERE user_id = ?`,
		memberID,
	)
	return err
}

// ListOnBreak returns members currently on break, earliest break start first.
func (r *SQLiteRepo) ListOnBreak(ctx context.Context) ([]domain.UserRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, elo, last_active, on_break, break_start, break_end
		FROM users
		WHERE on_break = 1
		ORDER BY break_start ASC, user_id ASC`,
	)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// ListAll returns every persisted record.
func (r *SQLiteRepo) ListAll(ctx context.Context) ([]domain.UserRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, elo, last_active, on_break, break_start, break_end
		FROM users
		ORDER BY user_id ASC`,
	)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// ApplyDecay writes a sweep's updates in one transaction. Every touched
// record also gets last_active set to the sweep time, which re-engages the
// grace window for the next sweep.
func (r *SQLiteRepo) ApplyDecay(ctx context.Context, updates []DecayUpdate, sweepTime time.Time) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	ts := sweepTime.UTC().Unix()
	for _, upd := range updates {
		if _, err := tx.ExecContext(ctx, `
			UPDATE users
			SET elo = ?, last_active = ?
			WHERE user_id = ?`,
			upd.NewScore, ts, upd.MemberID,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("decay update %s: %w", upd.MemberID, err)
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.UserRecord, error) {
	var (
		memberID   string
		elo        float64
		lastNS     sql.NullInt64
		onBreakInt int
		startNS    sql.NullInt64
		endNS      sql.NullInt64
	)
	if err := row.Scan(&memberID, &elo, &lastNS, &onBreakInt, &startNS, &endNS); err != nil {
		return nil, err
	}
	return &domain.UserRecord{
		MemberID:   memberID,
		Score:      elo,
		LastActive: fromNullInt64(lastNS),
		OnBreak:    onBreakInt != 0,
		BreakStart: fromNullInt64(startNS),
		BreakEnd:   fromNullInt64(endNS),
	}, nil
}

func collectUsers(rows *sql.Rows) ([]domain.UserRecord, error) {
	defer rows.Close()

	var res []domain.UserRecord
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
