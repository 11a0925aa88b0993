package model

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultMaxDepth caps tree depth for the intensity model.
const DefaultMaxDepth = 6

// treeStream separates per-tree PCG streams from the forest's seed stream.
const treeStream = 0x9e3779b97f4a7c15

// ForestConfig holds random forest hyperparameters.
type ForestConfig struct {
	NumTrees        int  `json:"n_estimators"`
	MaxDepth        int  `json:"max_depth"`
	MinSamplesSplit int  `json:"min_samples_split"`
	MinSamplesLeaf  int  `json:"min_samples_leaf"`
	MaxFeatures     int  `json:"max_features"` // 0 selects floor(sqrt(n_features))
	Bootstrap       bool `json:"bootstrap"`

	// Seed drives bootstrap draws and feature sampling. Fits with the same
	// seed and data produce identical forests regardless of Workers.
	Seed uint64 `json:"seed"`

	// Workers bounds the trees fit concurrently. 0 selects GOMAXPROCS.
	Workers int `json:"-"`
}

// DefaultForestConfig returns the intensity model defaults.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		NumTrees:        100,
		MaxDepth:        DefaultMaxDepth,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
	}
}

// Validate checks hyperparameter ranges.
func (c ForestConfig) Validate() error {
	var errs []error
	if c.NumTrees < 1 {
		errs = append(errs, fmt.Errorf("n_estimators must be at least 1, got %d", c.NumTrees))
	}
	if c.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("max_depth must be at least 1, got %d", c.MaxDepth))
	}
	if c.MinSamplesSplit < 2 {
		errs = append(errs, fmt.Errorf("min_samples_split must be at least 2, got %d", c.MinSamplesSplit))
	}
	if c.MinSamplesLeaf < 1 {
		errs = append(errs, fmt.Errorf("min_samples_leaf must be at least 1, got %d", c.MinSamplesLeaf))
	}
	if c.MaxFeatures < 0 {
		errs = append(errs, fmt.Errorf("max_features must not be negative, got %d", c.MaxFeatures))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// resolveMaxFeatures applies the sqrt default and clamps to [1, numFeatures].
func (c ForestConfig) resolveMaxFeatures(numFeatures int) int {
	m := c.MaxFeatures
	if m == 0 {
		m = int(math.Sqrt(float64(numFeatures)))
	}
	return min(max(m, 1), numFeatures)
}

func (c ForestConfig) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// RandomForest is a fitted ensemble. Classes maps class indexes used inside
// the trees back to the original labels, in ascending order.
type RandomForest struct {
	Classes     []int           `json:"classes"`
	NumFeatures int             `json:"n_features"`
	MaxFeatures int             `json:"max_features"`
	Trees       []*DecisionTree `json:"trees"`
}

// FitRandomForest grows cfg.NumTrees trees on (X, y). Trees are fit
// concurrently; every goroutine has returned by the time FitRandomForest does.
func FitRandomForest(ctx context.Context, X mat.Matrix, y []int, cfg ForestConfig) (*RandomForest, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("fit random forest: %w", err)
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, fmt.Errorf("fit random forest: %w", ErrEmptyInput)
	}
	if len(y) != r {
		return nil, fmt.Errorf("fit random forest: %w: %d rows, %d labels", ErrShape, r, len(y))
	}

	x := mat.DenseCopyOf(X)
	classes, encoded := encodeLabels(y)
	maxFeatures := cfg.resolveMaxFeatures(c)
	params := treeParams{
		maxDepth:        cfg.MaxDepth,
		minSamplesSplit: cfg.MinSamplesSplit,
		minSamplesLeaf:  cfg.MinSamplesLeaf,
		maxFeatures:     maxFeatures,
		numClasses:      len(classes),
	}

	// Seeds are drawn up front so tree i sees the same stream for any worker count.
	master := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^treeStream))
	seeds := make([]uint64, cfg.NumTrees)
	for i := range seeds {
		seeds[i] = master.Uint64()
	}

	trees := make([]*DecisionTree, cfg.NumTrees)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())
	for i := range trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(seeds[i], treeStream))
			trees[i] = growTree(x, encoded, drawSamples(r, cfg.Bootstrap, rng), params, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fit random forest: %w", err)
	}

	return &RandomForest{
		Classes:     classes,
		NumFeatures: c,
		MaxFeatures: maxFeatures,
		Trees:       trees,
	}, nil
}

// drawSamples returns n row indexes, drawn with replacement when bootstrap is set.
func drawSamples(n int, bootstrap bool, rng *rand.Rand) []int {
	samples := make([]int, n)
	for i := range samples {
		if bootstrap {
			samples[i] = rng.IntN(n)
		} else {
			samples[i] = i
		}
	}
	return samples
}

// encodeLabels returns the sorted distinct labels and y rewritten as indexes into them.
func encodeLabels(y []int) ([]int, []int) {
	classes := slices.Clone(y)
	slices.Sort(classes)
	classes = slices.Compact(classes)

	index := make(map[int]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	encoded := make([]int, len(y))
	for i, v := range y {
		encoded[i] = index[v]
	}
	return classes, encoded
}

// PredictProba returns the mean class distribution across trees, one row per
// sample and one column per entry of Classes.
func (f *RandomForest) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	r, c := X.Dims()
	if c != f.NumFeatures {
		return nil, fmt.Errorf("predict: %w: got %d columns, fitted on %d", ErrShape, c, f.NumFeatures)
	}
	if r == 0 {
		return nil, fmt.Errorf("predict: %w", ErrEmptyInput)
	}
	if len(f.Trees) == 0 {
		return nil, ErrNotFitted
	}

	k := len(f.Classes)
	out := mat.NewDense(r, k, nil)
	row := make([]float64, c)
	acc := make([]float64, k)
	for i := 0; i < r; i++ {
		mat.Row(row, i, X)
		clear(acc)
		for _, t := range f.Trees {
			floats.Add(acc, t.leafValue(row))
		}
		floats.Scale(1/float64(len(f.Trees)), acc)
		out.SetRow(i, acc)
	}
	return out, nil
}

// Predict returns the most probable class label for each row of X. Ties go to
// the smaller label.
func (f *RandomForest) Predict(X mat.Matrix) ([]int, error) {
	proba, err := f.PredictProba(X)
	if err != nil {
		return nil, err
	}
	r, _ := proba.Dims()
	out := make([]int, r)
	for i := 0; i < r; i++ {
		out[i] = f.Classes[floats.MaxIdx(proba.RawRowView(i))]
	}
	return out, nil
}
