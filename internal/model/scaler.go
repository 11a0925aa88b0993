package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// zeroScale is the standard deviation below which a feature is treated as
// constant and left unscaled.
const zeroScale = 10 * 2.220446049250313e-16

// StandardScaler centers each feature on its training mean and divides by its
// population standard deviation.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitStandardScaler learns per-column mean and standard deviation from X.
// Constant columns get a scale of 1 so they transform to zero.
func FitStandardScaler(X mat.Matrix) (*StandardScaler, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, fmt.Errorf("fit scaler: %w", ErrEmptyInput)
	}

	s := &StandardScaler{
		Mean:  make([]float64, c),
		Scale: make([]float64, c),
	}
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		mean, std := stat.PopMeanStdDev(col, nil)
		if std < zeroScale {
			std = 1
		}
		s.Mean[j] = mean
		s.Scale[j] = std
	}
	return s, nil
}

// NumFeatures is the column count the scaler was fit on.
func (s *StandardScaler) NumFeatures() int {
	return len(s.Mean)
}

// Transform applies the fitted statistics to X without refitting.
func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	r, c := X.Dims()
	if c != len(s.Mean) {
		return nil, fmt.Errorf("scale: %w: got %d columns, fitted on %d", ErrShape, c, len(s.Mean))
	}
	if r == 0 {
		return nil, fmt.Errorf("scale: %w", ErrEmptyInput)
	}

	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, X)
	return out, nil
}
