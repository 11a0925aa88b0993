package model

import (
	"context"
	"fmt"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"

	"github.com/couchcryptid/quake-intensity-model/internal/frame"
)

// Stage names, in execution order.
const (
	StageScale  = "scale"
	StageForest = "random_forest"
)

// Pipeline chains the fitted scaler and forest. Features records the column
// order the model expects when predicting from a table.
type Pipeline struct {
	Features []string        `json:"features"`
	Scaler   *StandardScaler `json:"scaler"`
	Forest   *RandomForest   `json:"forest"`
}

// Fit learns the scaler from X, then the forest from the scaled X and y.
// Nothing is returned unless both stages succeed.
func Fit(ctx context.Context, X mat.Matrix, y []int, features []string, cfg ForestConfig) (*Pipeline, error) {
	_, c := X.Dims()
	if len(features) != c {
		return nil, fmt.Errorf("fit pipeline: %w: %d feature names for %d columns", ErrShape, len(features), c)
	}

	scaler, err := FitStandardScaler(X)
	if err != nil {
		return nil, fmt.Errorf("fit pipeline stage %q: %w", StageScale, err)
	}
	scaled, err := scaler.Transform(X)
	if err != nil {
		return nil, fmt.Errorf("fit pipeline stage %q: %w", StageScale, err)
	}
	forest, err := FitRandomForest(ctx, scaled, y, cfg)
	if err != nil {
		return nil, fmt.Errorf("fit pipeline stage %q: %w", StageForest, err)
	}

	return &Pipeline{
		Features: slices.Clone(features),
		Scaler:   scaler,
		Forest:   forest,
	}, nil
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	return []string{StageScale, StageForest}
}

// Classes returns the labels the forest can predict, ascending.
func (p *Pipeline) Classes() []int {
	if p.fitted() != nil {
		return nil
	}
	return slices.Clone(p.Forest.Classes)
}

func (p *Pipeline) fitted() error {
	if p == nil || p.Scaler == nil || p.Forest == nil {
		return ErrNotFitted
	}
	return nil
}

// Transform applies only the scaling stage, with the statistics learned at fit time.
func (p *Pipeline) Transform(X mat.Matrix) (*mat.Dense, error) {
	if err := p.fitted(); err != nil {
		return nil, err
	}
	return p.Scaler.Transform(X)
}

// PredictProba returns per-class probabilities for each row of X.
func (p *Pipeline) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	scaled, err := p.Transform(X)
	if err != nil {
		return nil, err
	}
	return p.Forest.PredictProba(scaled)
}

// Predict returns a class label for each row of X. Columns must be in Features order.
func (p *Pipeline) Predict(X mat.Matrix) ([]int, error) {
	scaled, err := p.Transform(X)
	if err != nil {
		return nil, err
	}
	return p.Forest.Predict(scaled)
}

// PredictFrame selects the fitted feature columns from df by name and predicts.
// Extra columns are ignored; missing ones produce a *domain.SchemaError.
func (p *Pipeline) PredictFrame(df dataframe.DataFrame) ([]int, error) {
	if err := p.fitted(); err != nil {
		return nil, err
	}
	X, err := frame.ToMatrix(df, p.Features)
	if err != nil {
		return nil, fmt.Errorf("predict frame: %w", err)
	}
	return p.Predict(X)
}
