// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides run history persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/2389/gardeners/internal/garden"
)

// timestampLayout is fixed width so text order in SQL matches time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			grid_size   INTEGER NOT NULL,
			seed        INTEGER NOT NULL,
			status      TEXT NOT NULL,
			started_at  TEXT NOT NULL,
			finished_at TEXT NOT NULL,

			CHECK (status IN ('completed', 'cancelled'))
		);

		CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

		CREATE TABLE IF NOT EXISTS run_gardeners (
			run_id   TEXT NOT NULL,
			ordinal  INTEGER NOT NULL,
			name     TEXT NOT NULL,
			speed    REAL NOT NULL,
			step_us  INTEGER NOT NULL,
			start_x  INTEGER NOT NULL,
			start_y  INTEGER NOT NULL,
			end_x    INTEGER NOT NULL,
			end_y    INTEGER NOT NULL,
			final_x  INTEGER NOT NULL,
			final_y  INTEGER NOT NULL,
			tended   INTEGER NOT NULL,
			passed   INTEGER NOT NULL,
			finished INTEGER NOT NULL,
			PRIMARY KEY (run_id, ordinal),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS run_cells (
			run_id TEXT NOT NULL,
			x      INTEGER NOT NULL,
			y      INTEGER NOT NULL,
			state  TEXT NOT NULL,
			PRIMARY KEY (run_id, x, y),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// SaveRun stores a run, its gardeners and its cells in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, grid_size, seed, status, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.GridSize,
		int64(run.Seed), // SQLite integers are signed, the bits round-trip
		run.Status,
		run.StartedAt.UTC().Format(timestampLayout),
		run.FinishedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		if isConstraintViolation(err) && strings.Contains(err.Error(), "runs.id") {
			return ErrDuplicateRun
		}
		return fmt.Errorf("inserting run: %w", err)
	}

	for i, g := range run.Gardeners {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_gardeners (run_id, ordinal, name, speed, step_us,
				start_x, start_y, end_x, end_y, final_x, final_y, tended, passed, finished)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID, i, g.Name, g.Speed, g.Step.Microseconds(),
			g.Start.X, g.Start.Y, g.End.X, g.End.Y, g.Final.X, g.Final.Y,
			g.Tended, g.Passed, g.Finished,
		)
		if err != nil {
			return fmt.Errorf("inserting gardener %q: %w", g.Name, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_cells (run_id, x, y, state) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing cell insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range run.Cells {
		if _, err := stmt.ExecContext(ctx, run.ID, c.Pos.X, c.Pos.Y, c.State.String()); err != nil {
			return fmt.Errorf("inserting cell %s: %w", c.Pos, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}

	s.logger.Debug("saved run", "id", run.ID, "status", run.Status, "cells", len(run.Cells))
	return nil
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}

// GetRun retrieves a run by ID with its gardeners and cells.
// Returns ErrNotFound if the run doesn't exist.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, grid_size, seed, status, started_at, finished_at
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}

	if run.Gardeners, err = s.loadGardeners(ctx, run.ID); err != nil {
		return nil, err
	}
	if run.Cells, err = s.loadCells(ctx, run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns runs newest first with gardeners but without cells.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `
		SELECT id, grid_size, seed, status, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC, id
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for _, run := range runs {
		if run.Gardeners, err = s.loadGardeners(ctx, run.ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var seed int64
	var startedAtStr, finishedAtStr string

	if err := row.Scan(&run.ID, &run.GridSize, &seed, &run.Status, &startedAtStr, &finishedAtStr); err != nil {
		return nil, err
	}
	run.Seed = uint64(seed)

	var err error
	run.StartedAt, err = time.Parse(timestampLayout, startedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	run.FinishedAt, err = time.Parse(timestampLayout, finishedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing finished_at: %w", err)
	}
	return &run, nil
}

func (s *SQLiteStore) loadGardeners(ctx context.Context, runID string) ([]GardenerResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, speed, step_us, start_x, start_y, end_x, end_y,
			final_x, final_y, tended, passed, finished
		FROM run_gardeners
		WHERE run_id = ?
		ORDER BY ordinal
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying gardeners: %w", err)
	}
	defer rows.Close()

	var gardeners []GardenerResult
	for rows.Next() {
		var g GardenerResult
		var stepUS int64
		if err := rows.Scan(&g.Name, &g.Speed, &stepUS,
			&g.Start.X, &g.Start.Y, &g.End.X, &g.End.Y, &g.Final.X, &g.Final.Y,
			&g.Tended, &g.Passed, &g.Finished); err != nil {
			return nil, fmt.Errorf("scanning gardener: %w", err)
		}
		g.Step = time.Duration(stepUS) * time.Microsecond
		gardeners = append(gardeners, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating gardeners: %w", err)
	}
	return gardeners, nil
}

func (s *SQLiteStore) loadCells(ctx context.Context, runID string) ([]CellResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT x, y, state
		FROM run_cells
		WHERE run_id = ?
		ORDER BY y, x
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying cells: %w", err)
	}
	defer rows.Close()

	var cells []CellResult
	for rows.Next() {
		var c CellResult
		var state string
		if err := rows.Scan(&c.Pos.X, &c.Pos.Y, &state); err != nil {
			return nil, fmt.Errorf("scanning cell: %w", err)
		}
		if c.State, err = garden.ParseCellState(state); err != nil {
			return nil, fmt.Errorf("cell %s: %w", c.Pos, err)
		}
		cells = append(cells, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cells: %w", err)
	}
	return cells, nil
}
