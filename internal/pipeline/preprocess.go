package pipeline

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/quake-intensity-model/internal/domain"
	"github.com/couchcryptid/quake-intensity-model/internal/frame"
	"github.com/couchcryptid/quake-intensity-model/internal/observability"
)

// DefaultTestSize is the fraction of cleaned rows held out for testing.
const DefaultTestSize = 0.25

// previewRows is how many rows of the final table are logged at debug level.
const previewRows = 5

// Split is the result of preprocessing: features and labels for both sides of
// a single random partition of the cleaned rows. TrainIndex and TestIndex are
// row numbers in the cleaned table, aligned with the rows of XTrain and XTest.
type Split struct {
	XTrain dataframe.DataFrame
	XTest  dataframe.DataFrame
	YTrain []int
	YTest  []int

	TrainIndex []int
	TestIndex  []int

	Features  []string
	RowsRead  int
	RowsClean int
	Seed      uint64
}

// Preprocessor cleans a raw event table and splits it into train and test sets.
type Preprocessor struct {
	testSize float64
	seed     uint64
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewPreprocessor creates a Preprocessor. A zero seed draws a fresh one per
// call; the seed actually used is reported on the returned Split.
func NewPreprocessor(testSize float64, seed uint64, logger *slog.Logger, metrics *observability.Metrics) *Preprocessor {
	return &Preprocessor{
		testSize: testSize,
		seed:     seed,
		logger:   logger,
		metrics:  metrics,
	}
}

// Preprocess cleans raw with default settings and splits it.
func Preprocess(raw dataframe.DataFrame) (Split, error) {
	return NewPreprocessor(DefaultTestSize, 0, slog.Default(), observability.NewMetrics(nil)).Preprocess(raw)
}

// Preprocess runs the cleaning steps in order:
//  1. check the required columns exist
//  2. drop rows with any missing value
//  3. derive mmi_class from mmi
//  4. drop identifier and label-adjacent columns
//  5. separate features from the label
//  6. split rows at random into train and test
func (p *Preprocessor) Preprocess(raw dataframe.DataFrame) (Split, error) {
	if err := raw.Error(); err != nil {
		return Split{}, fmt.Errorf("preprocess: %w", err)
	}
	if err := domain.RequireColumns(raw.Names(), domain.DroppedColumns()); err != nil {
		return Split{}, fmt.Errorf("preprocess: %w", err)
	}
	if raw.Col(domain.ColumnMMI).Type() == series.String {
		return Split{}, fmt.Errorf("preprocess: %w", &domain.SchemaError{
			Reason:  domain.ReasonNonNumeric,
			Columns: []string{domain.ColumnMMI},
		})
	}

	cleaned, err := p.dropIncomplete(raw)
	if err != nil {
		return Split{}, err
	}

	labels := LabelMMI(cleaned.Col(domain.ColumnMMI).Float())
	final := cleaned.
		Mutate(series.New(labels, series.Int, domain.ColumnMMIClass)).
		Drop(domain.DroppedColumns())
	if err := final.Error(); err != nil {
		return Split{}, fmt.Errorf("preprocess: %w", err)
	}

	x, features, err := featureFrame(final)
	if err != nil {
		return Split{}, fmt.Errorf("preprocess: %w", err)
	}
	p.logger.Debug("final table",
		"rows", final.Nrow(),
		"columns", final.Ncol(),
		"features", features,
		"preview", frame.Preview(final, previewRows),
	)

	seed := p.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	trainIdx, testIdx, err := TrainTestSplit(x.Nrow(), p.testSize, seed)
	if err != nil {
		return Split{}, fmt.Errorf("preprocess: %w", err)
	}

	split := Split{
		XTrain:     frame.Rows(x, trainIdx),
		XTest:      frame.Rows(x, testIdx),
		YTrain:     pick(labels, trainIdx),
		YTest:      pick(labels, testIdx),
		TrainIndex: trainIdx,
		TestIndex:  testIdx,
		Features:   features,
		RowsRead:   raw.Nrow(),
		RowsClean:  cleaned.Nrow(),
		Seed:       seed,
	}

	p.metrics.SplitRows.WithLabelValues("train").Set(float64(len(trainIdx)))
	p.metrics.SplitRows.WithLabelValues("test").Set(float64(len(testIdx)))
	p.metrics.Features.Set(float64(len(features)))
	p.logger.Info("split dataset",
		"train_rows", len(trainIdx),
		"test_rows", len(testIdx),
		"features", len(features),
		"seed", seed,
	)
	return split, nil
}

// dropIncomplete removes every row with a missing value and renumbers the rest.
func (p *Preprocessor) dropIncomplete(raw dataframe.DataFrame) (dataframe.DataFrame, error) {
	total := raw.Nrow()
	p.metrics.RowsRead.Add(float64(total))
	if total == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("preprocess: %w: input table is empty", domain.ErrEmptyDataset)
	}

	keep := frame.CompleteRows(raw)
	dropped := total - len(keep)
	p.metrics.RowsDropped.Add(float64(dropped))
	if len(keep) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("preprocess: %w: all %d rows have missing values", domain.ErrEmptyDataset, total)
	}

	p.logger.Info("dropped incomplete rows",
		"dropped_pct", fmt.Sprintf("%.2f", 100*float64(dropped)/float64(total)),
		"dropped", dropped,
		"remaining", len(keep),
	)

	cleaned := frame.Rows(raw, keep)
	if err := cleaned.Error(); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("preprocess: %w", err)
	}
	return cleaned, nil
}

// featureFrame separates the feature columns from the label column and checks
// they can be fed to the scaler.
func featureFrame(final dataframe.DataFrame) (dataframe.DataFrame, []string, error) {
	features := slices.DeleteFunc(final.Names(), func(name string) bool {
		return name == domain.ColumnMMIClass
	})
	if len(features) == 0 {
		return dataframe.DataFrame{}, nil, &domain.SchemaError{Reason: domain.ReasonNoFeatures}
	}

	x := final.Select(features)
	if err := x.Error(); err != nil {
		return dataframe.DataFrame{}, nil, err
	}
	if bad := frame.NonNumericColumns(x); len(bad) > 0 {
		return dataframe.DataFrame{}, nil, &domain.SchemaError{Reason: domain.ReasonNonNumeric, Columns: bad}
	}
	return x, features, nil
}

// LabelMMI derives the intensity class of every mmi value.
func LabelMMI(mmi []float64) []int {
	labels := make([]int, len(mmi))
	for i, v := range mmi {
		labels[i] = int(domain.ClassifyMMI(v))
	}
	return labels
}

// TrainTestSplit partitions row numbers 0..n-1 with a seeded permutation. The
// test side takes ceil(testSize*n) rows and the train side the rest; both
// must be non-empty.
func TrainTestSplit(n int, testSize float64, seed uint64) (train, test []int, err error) {
	if !(testSize > 0 && testSize < 1) {
		return nil, nil, fmt.Errorf("test size %v must be between 0 and 1 exclusive", testSize)
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return nil, nil, fmt.Errorf("%w: %d rows with test size %v", domain.ErrDegenerateSplit, n, testSize)
	}

	perm := rand.New(rand.NewPCG(seed, seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

func pick(values, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}
