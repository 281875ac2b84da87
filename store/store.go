// Package store archives finished banner runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"banner_agent/generator"
)

// ErrNotFound is returned when a run id is not archived.
var ErrNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_unix INTEGER NOT NULL,
	request TEXT NOT NULL,
	approved INTEGER NOT NULL,
	stop_reason TEXT,
	iterations INTEGER NOT NULL,
	result_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_unix);

CREATE TABLE IF NOT EXISTS iterations (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	iteration INTEGER NOT NULL,
	approved INTEGER NOT NULL,
	issues INTEGER NOT NULL,
	error TEXT,
	turn_json TEXT NOT NULL,
	PRIMARY KEY (run_id, iteration)
);
`

// Store is the run archive.
type Store struct {
	db   *sql.DB
	path string
}

// RunSummary is one row of ListRuns.
type RunSummary struct {
	ID         string
	CreatedAt  time.Time
	Request    string
	Approved   bool
	StopReason string
	Iterations int
}

// Open opens (or creates) the archive at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// single writer, avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun inserts or replaces a run and its iterations.
func (s *Store) SaveRun(ctx context.Context, res generator.Result) error {
	if res.RunID == "" {
		return errors.New("result has no run id")
	}
	turns := res.Iterations
	res.Iterations = nil
	body, err := json.Marshal(res)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM iterations WHERE run_id = ?`, res.RunID); err != nil {
		return fmt.Errorf("clear iterations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_unix, request, approved, stop_reason, iterations, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			approved = excluded.approved,
			stop_reason = excluded.stop_reason,
			iterations = excluded.iterations,
			result_json = excluded.result_json`,
		res.RunID, res.CreatedAt.UnixNano(), res.Request, res.Approved, res.StopReason, len(turns), string(body),
	); err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	for _, t := range turns {
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO iterations (run_id, iteration, approved, issues, error, turn_json)
			VALUES (?, ?, ?, ?, ?, ?)`,
			res.RunID, t.Iteration, t.Feedback.Approved, len(t.Feedback.Issues), t.Error, string(data),
		); err != nil {
			return fmt.Errorf("save iteration %d: %w", t.Iteration, err)
		}
	}
	return tx.Commit()
}

// GetRun loads a run with its iterations in order.
func (s *Store) GetRun(ctx context.Context, id string) (generator.Result, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT result_json FROM runs WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return generator.Result{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return generator.Result{}, err
	}
	var res generator.Result
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		return generator.Result{}, fmt.Errorf("decode run %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT turn_json FROM iterations WHERE run_id = ? ORDER BY iteration`, id)
	if err != nil {
		return generator.Result{}, err
	}
	defer rows.Close()

	res.Iterations = []generator.Turn{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return generator.Result{}, err
		}
		var t generator.Turn
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return generator.Result{}, fmt.Errorf("decode iteration of %s: %w", id, err)
		}
		res.Iterations = append(res.Iterations, t)
	}
	return res, rows.Err()
}

// ListRuns returns the newest runs first. limit <= 0 means 20.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_unix, request, approved, COALESCE(stop_reason, ''), iterations
		FROM runs ORDER BY created_unix DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			r       RunSummary
			created int64
		)
		if err := rows.Scan(&r.ID, &created, &r.Request, &r.Approved, &r.StopReason, &r.Iterations); err != nil {
			return nil, err
		}
		r.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
