package domain

import (
	"time"

	"github.com/google/uuid"
)

// TrainingRun records one fit of the intensity model: the settings it ran with,
// how the table was split, and the scores it reached.
type TrainingRun struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Seed        uint64  `json:"seed"`
	TestSize    float64 `json:"test_size"`
	NumTrees    int     `json:"n_estimators"`
	MaxDepth    int     `json:"max_depth"`
	MaxFeatures int     `json:"max_features"`

	RowsRead  int      `json:"rows_read"`
	RowsClean int      `json:"rows_clean"`
	TrainRows int      `json:"train_rows"`
	TestRows  int      `json:"test_rows"`
	Features  []string `json:"features"`

	TrainAccuracy float64 `json:"train_balanced_accuracy"`
	TestAccuracy  float64 `json:"test_balanced_accuracy"`
}

// NewTrainingRun starts a run record with a fresh ID.
func NewTrainingRun(startedAt time.Time) TrainingRun {
	return TrainingRun{
		ID:        uuid.NewString(),
		StartedAt: startedAt.UTC(),
	}
}

// Finish stamps the completion time.
func (r *TrainingRun) Finish(at time.Time) {
	r.FinishedAt = at.UTC()
}

// Duration is the wall time between start and finish, zero if unfinished.
func (r TrainingRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
