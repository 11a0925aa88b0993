// Package model implements the two-stage intensity classifier: a standard
// scaler followed by a random forest of depth-bounded CART trees.
//
// Fitting is atomic. [Fit] learns the scaler and the forest into locals and
// returns a *Pipeline only when every stage succeeded, so callers never hold a
// half-trained model. A fitted Pipeline is read-only and safe for concurrent
// prediction.
//
// Defaults follow the usual random forest conventions: 100 trees, gini
// impurity, bootstrap sampling, sqrt(n_features) candidate features per split,
// min_samples_split 2 and min_samples_leaf 1. The intensity model caps tree
// depth at 6.
package model

import "errors"

var (
	// ErrNotFitted is returned when predicting with a nil or incomplete pipeline.
	ErrNotFitted = errors.New("model is not fitted")

	// ErrShape is returned when matrix dimensions disagree with the fitted model.
	ErrShape = errors.New("shape mismatch")

	// ErrEmptyInput is returned when fitting on a matrix with no rows or columns.
	ErrEmptyInput = errors.New("empty input")
)
