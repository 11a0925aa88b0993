package pipeline

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-intensity-model/internal/domain"
	"github.com/couchcryptid/quake-intensity-model/internal/observability"
)

func newTestPreprocessor(seed uint64) (*Preprocessor, *observability.Metrics) {
	m := observability.NewMetricsForTesting()
	return NewPreprocessor(DefaultTestSize, seed, observability.DiscardLogger(), m), m
}

func TestPreprocess_DropsIncompleteRows(t *testing.T) {
	p, m := newTestPreprocessor(7)

	split, err := p.Preprocess(rawQuakes(3, 11))
	require.NoError(t, err)

	assert.Equal(t, 20, split.RowsRead)
	assert.Equal(t, 18, split.RowsClean)
	assert.Len(t, split.YTrain, 13)
	assert.Len(t, split.YTest, 5)
	assert.Equal(t, 13, split.XTrain.Nrow())
	assert.Equal(t, 5, split.XTest.Nrow())

	assert.Equal(t, 20.0, testutil.ToFloat64(m.RowsRead))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsDropped))
	assert.Equal(t, 13.0, testutil.ToFloat64(m.SplitRows.WithLabelValues("train")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.SplitRows.WithLabelValues("test")))
}

func TestPreprocess_DropsLeakageColumns(t *testing.T) {
	p, m := newTestPreprocessor(7)

	split, err := p.Preprocess(rawQuakes())
	require.NoError(t, err)

	want := []string{"magnitude", "depth", "tsunami"}
	assert.Equal(t, want, split.Features)
	assert.Equal(t, want, split.XTrain.Names())
	assert.Equal(t, want, split.XTest.Names())
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Features))
}

func TestPreprocess_LabelsFollowRows(t *testing.T) {
	p, _ := newTestPreprocessor(11)

	split, err := p.Preprocess(rawQuakes(0))
	require.NoError(t, err)

	// Row 0 is dropped, so cleaned row i is raw row i+1.
	cleanMMI := quakeMMI[1:]
	for i, row := range split.TrainIndex {
		assert.Equal(t, int(domain.ClassifyMMI(cleanMMI[row])), split.YTrain[i], "train row %d", row)
		assert.InDelta(t, 2.5+cleanMMI[row]/2, split.XTrain.Elem(i, 0).Float(), 1e-9)
	}
	for i, row := range split.TestIndex {
		assert.Equal(t, int(domain.ClassifyMMI(cleanMMI[row])), split.YTest[i], "test row %d", row)
		assert.InDelta(t, 2.5+cleanMMI[row]/2, split.XTest.Elem(i, 0).Float(), 1e-9)
	}
}

func TestPreprocess_PartitionIsExhaustiveAndDisjoint(t *testing.T) {
	p, _ := newTestPreprocessor(3)

	split, err := p.Preprocess(rawQuakes())
	require.NoError(t, err)

	all := slices.Concat(split.TrainIndex, split.TestIndex)
	slices.Sort(all)
	want := make([]int, 20)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, all)
}

func TestPreprocess_SeedIsReproducible(t *testing.T) {
	p, _ := newTestPreprocessor(42)

	a, err := p.Preprocess(rawQuakes())
	require.NoError(t, err)
	b, err := p.Preprocess(rawQuakes())
	require.NoError(t, err)

	assert.Equal(t, uint64(42), a.Seed)
	assert.Equal(t, a.TestIndex, b.TestIndex)
	assert.Equal(t, a.YTest, b.YTest)
}

func TestPreprocess_ZeroSeedIsReported(t *testing.T) {
	p, _ := newTestPreprocessor(0)

	split, err := p.Preprocess(rawQuakes())
	require.NoError(t, err)
	require.NotZero(t, split.Seed)

	train, test, err := TrainTestSplit(20, DefaultTestSize, split.Seed)
	require.NoError(t, err)
	assert.Equal(t, split.TrainIndex, train)
	assert.Equal(t, split.TestIndex, test)
}

func TestPreprocess_PackageDefaults(t *testing.T) {
	split, err := Preprocess(rawQuakes())
	require.NoError(t, err)
	assert.Len(t, split.YTrain, 15)
	assert.Len(t, split.YTest, 5)
}

func TestPreprocess_MissingColumns(t *testing.T) {
	p, _ := newTestPreprocessor(1)

	_, err := p.Preprocess(rawQuakes().Drop([]string{"significance", "cdi"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSchema)

	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, domain.ReasonMissingColumn, schemaErr.Reason)
	assert.ElementsMatch(t, []string{"significance", "cdi"}, schemaErr.Columns)
}

func TestPreprocess_AllRowsIncomplete(t *testing.T) {
	p, _ := newTestPreprocessor(1)

	gaps := make([]int, len(quakeMMI))
	for i := range gaps {
		gaps[i] = i
	}
	_, err := p.Preprocess(rawQuakes(gaps...))
	assert.ErrorIs(t, err, domain.ErrEmptyDataset)
}

func TestPreprocess_EmptyTable(t *testing.T) {
	p, _ := newTestPreprocessor(1)

	empty := rawQuakes().Subset([]int{})
	require.NoError(t, empty.Error())
	_, err := p.Preprocess(empty)
	assert.ErrorIs(t, err, domain.ErrEmptyDataset)
}

func TestPreprocess_DegenerateSplit(t *testing.T) {
	p, _ := newTestPreprocessor(1)

	_, err := p.Preprocess(rawQuakes().Subset([]int{4}))
	assert.ErrorIs(t, err, domain.ErrDegenerateSplit)
}

func TestPreprocess_NonNumericFeature(t *testing.T) {
	p, _ := newTestPreprocessor(1)

	raw := rawQuakes()
	networks := make([]string, raw.Nrow())
	for i := range networks {
		networks[i] = "us"
	}
	raw = raw.Mutate(series.New(networks, series.String, "net"))
	require.NoError(t, raw.Error())

	_, err := p.Preprocess(raw)
	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, domain.ReasonNonNumeric, schemaErr.Reason)
	assert.Equal(t, []string{"net"}, schemaErr.Columns)
}

func TestPreprocess_NoFeatures(t *testing.T) {
	p, _ := newTestPreprocessor(1)

	_, err := p.Preprocess(rawQuakes().Select(domain.DroppedColumns()))
	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, domain.ReasonNoFeatures, schemaErr.Reason)
}

func TestPreprocess_TextMMI(t *testing.T) {
	p, _ := newTestPreprocessor(1)

	raw := dataframe.New(
		series.New([]string{"a", "b"}, series.String, "id"),
		series.New([]string{"t0", "t1"}, series.String, "time"),
		series.New([]string{"p0", "p1"}, series.String, "place"),
		series.New([]float64{1, 2}, series.Float, "felt"),
		series.New([]float64{3, 4}, series.Float, "cdi"),
		series.New([]string{"IV", "VI"}, series.String, "mmi"),
		series.New([]int{100, 200}, series.Int, "significance"),
		series.New([]float64{4.1, 5.6}, series.Float, "magnitude"),
	)
	_, err := p.Preprocess(raw)
	assert.ErrorIs(t, err, domain.ErrSchema)
}

func TestLabelMMI(t *testing.T) {
	got := LabelMMI([]float64{0, 3.999, 4.0, 4.5, 4.999, 5.0, 9.1})
	assert.Equal(t, []int{0, 0, 1, 1, 1, 2, 2}, got)
}

func TestTrainTestSplit(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		testSize  float64
		wantTrain int
		wantTest  int
	}{
		{"default fraction", 20, 0.25, 15, 5},
		{"test side rounds up", 18, 0.25, 13, 5},
		{"smallest split", 2, 0.25, 1, 1},
		{"even split", 10, 0.5, 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			train, test, err := TrainTestSplit(tt.n, tt.testSize, 9)
			require.NoError(t, err)
			assert.Len(t, train, tt.wantTrain)
			assert.Len(t, test, tt.wantTest)
		})
	}
}

func TestTrainTestSplit_Errors(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		testSize float64
		wantIs   error
	}{
		{"single row", 1, 0.25, domain.ErrDegenerateSplit},
		{"no rows", 0, 0.25, domain.ErrDegenerateSplit},
		{"whole table to test", 5, 0.99, domain.ErrDegenerateSplit},
		{"zero test size", 10, 0, nil},
		{"unit test size", 10, 1, nil},
		{"not a number", 10, math.NaN(), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := TrainTestSplit(tt.n, tt.testSize, 1)
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.True(t, errors.Is(err, tt.wantIs))
			}
		})
	}
}
