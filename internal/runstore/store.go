// Package runstore persists evaluation runs to SQLite so repeated
// comparisons of the same site can be tracked over time. Each run keeps
// the input paths, the algorithm parameters, and the summary statistics
// as JSON.
package runstore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/change-detect/m3c2eval/internal/m3c2"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrRunNotFound is returned by GetRun for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// Store wraps the runs database.
type Store struct {
	db *sql.DB
}

// Run is one recorded evaluation.
type Run struct {
	ID            string
	Label         string
	ReferencePath string
	OtherPath     string
	Params        map[string]string
	Summary       *m3c2.Summary
	CreatedAt     time.Time
}

// Open opens (creating if needed) the runs database at path and applies
// pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening runs database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading embedded migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating sqlite migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}
	// Not closed: closing would also close the shared DB connection.
	m.Log = &migrateLogger{}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// migrateLogger implements migrate.Logger.
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool { return false }

// InsertRun records a run and returns its id. A blank run ID gets a fresh
// UUID; CreatedAt is ignored and set by the database.
func (s *Store) InsertRun(ctx context.Context, run *Run) (string, error) {
	id := run.ID
	if id == "" {
		id = uuid.NewString()
	}

	params := run.Params
	if params == nil {
		params = map[string]string{}
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encoding run parameters: %w", err)
	}
	statsJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return "", fmt.Errorf("encoding run summary: %w", err)
	}

	var pctBoth, pctRef, pctOther float64
	if run.Summary != nil {
		pctBoth = run.Summary.PctBothNaN
		pctRef = run.Summary.PctReferenceNaN
		pctOther = run.Summary.PctOtherNaN
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (
			run_id, label, reference_path, other_path,
			params, stats, pct_both_nan, pct_reference_nan, pct_other_nan
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, run.Label, run.ReferencePath, run.OtherPath,
		string(paramsJSON), string(statsJSON), pctBoth, pctRef, pctOther,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// GetRun loads one run by id.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, label, reference_path, other_path,
		       params, stats, created_at
		FROM runs WHERE run_id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// ListRuns returns the most recent runs, newest first. limit <= 0 means
// no limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded.
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, label, reference_path, other_path,
		       params, stats, created_at
		FROM runs
		ORDER BY created_at DESC, run_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		paramsJSON string
		statsJSON  string
	)
	err := row.Scan(&run.ID, &run.Label, &run.ReferencePath, &run.OtherPath,
		&paramsJSON, &statsJSON, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(paramsJSON), &run.Params); err != nil {
		return nil, fmt.Errorf("decoding run parameters: %w", err)
	}
	if statsJSON != "" && statsJSON != "null" {
		if err := json.Unmarshal([]byte(statsJSON), &run.Summary); err != nil {
			return nil, fmt.Errorf("decoding run summary: %w", err)
		}
	}
	return &run, nil
}
