// Package sqlite keeps a ledger of training runs in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/quake-intensity-model/internal/domain"
)

// ErrRunNotFound is returned by Get when no run has the requested ID.
var ErrRunNotFound = errors.New("training run not found")

const runColumns = `id, started_at, finished_at, seed, test_size, n_estimators, max_depth,
	max_features, rows_read, rows_clean, train_rows, test_rows, features,
	train_accuracy, test_accuracy`

// RunStore persists domain.TrainingRun records.
type RunStore struct {
	db *sql.DB
}

// NewRunStore opens (or creates) the database at path and applies the schema.
// ":memory:" gives a private in-memory ledger.
func NewRunStore(path string) (*RunStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writes.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping run store: %w", err)
	}

	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate run store: %w", err)
	}
	return &RunStore{db: db}, nil
}

// Add stores run. IDs are unique; adding the same run twice fails.
func (s *RunStore) Add(ctx context.Context, run domain.TrainingRun) error {
	features, err := json.Marshal(run.Features)
	if err != nil {
		return fmt.Errorf("encode features: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO training_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		int64(run.Seed), //nolint:gosec // stored bit-for-bit, restored by Get
		run.TestSize,
		run.NumTrees,
		run.MaxDepth,
		run.MaxFeatures,
		run.RowsRead,
		run.RowsClean,
		run.TrainRows,
		run.TestRows,
		string(features),
		run.TrainAccuracy,
		run.TestAccuracy,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// Get returns the run with the given ID or ErrRunNotFound.
func (s *RunStore) Get(ctx context.Context, id string) (domain.TrainingRun, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM training_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TrainingRun{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return domain.TrainingRun{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// List returns up to limit runs, most recent first. A non-positive limit returns all runs.
func (s *RunStore) List(ctx context.Context, limit int) ([]domain.TrainingRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM training_runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []domain.TrainingRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Close releases the database handle.
func (s *RunStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (domain.TrainingRun, error) {
	var (
		run               domain.TrainingRun
		started, finished string
		seed              int64
		features          string
	)
	err := sc.Scan(
		&run.ID,
		&started,
		&finished,
		&seed,
		&run.TestSize,
		&run.NumTrees,
		&run.MaxDepth,
		&run.MaxFeatures,
		&run.RowsRead,
		&run.RowsClean,
		&run.TrainRows,
		&run.TestRows,
		&features,
		&run.TrainAccuracy,
		&run.TestAccuracy,
	)
	if err != nil {
		return domain.TrainingRun{}, err
	}

	run.Seed = uint64(seed) //nolint:gosec // inverse of the cast in Add
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return domain.TrainingRun{}, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return domain.TrainingRun{}, fmt.Errorf("parse finished_at: %w", err)
	}
	if err := json.Unmarshal([]byte(features), &run.Features); err != nil {
		return domain.TrainingRun{}, fmt.Errorf("decode features: %w", err)
	}
	return run, nil
}
