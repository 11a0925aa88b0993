package evaluation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestBalancedAccuracy(t *testing.T) {
	tests := []struct {
		name     string
		yTrue    []int
		yPred    []int
		expected float64
	}{
		{"perfect", []int{0, 1, 2, 2}, []int{0, 1, 2, 2}, 1},
		{"single class all right", []int{1, 1, 1}, []int{1, 1, 1}, 1},
		{"majority guess", []int{0, 0, 0, 0, 1}, []int{0, 0, 0, 0, 0}, 0.5},
		{"imbalanced", []int{0, 0, 0, 1, 1, 2}, []int{0, 0, 1, 1, 0, 2}, (2.0/3 + 0.5 + 1) / 3},
		{"all wrong", []int{0, 1}, []int{1, 0}, 0},
		{"unseen predicted label ignored", []int{0, 0, 1}, []int{2, 0, 1}, (0.5 + 1) / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BalancedAccuracy(tt.yTrue, tt.yPred)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-12)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestBalancedAccuracy_Errors(t *testing.T) {
	_, err := BalancedAccuracy(nil, nil)
	assert.ErrorIs(t, err, ErrNoLabels)

	_, err = BalancedAccuracy([]int{0, 1}, []int{0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 labels, 1 predictions")
}

func TestConfusionMatrix(t *testing.T) {
	cm := ConfusionMatrix([]int{0, 0, 1, 2}, []int{0, 1, 1, 0}, []int{0, 1, 2})
	want := mat.NewDense(3, 3, []float64{
		1, 1, 0,
		0, 1, 0,
		1, 0, 0,
	})
	assert.True(t, mat.Equal(want, cm), "got\n%v", mat.Formatted(cm))
}

func TestConfusionMatrix_NoLabels(t *testing.T) {
	cm := ConfusionMatrix(nil, nil, nil)
	assert.True(t, cm.IsEmpty())
}

func TestLabels(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, Labels([]int{2, 0}, []int{1, 1}))
}

func TestRecalls(t *testing.T) {
	recalls, err := Recalls([]int{0, 0, 1}, []int{0, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, map[int]float64{0: 0.5, 1: 1}, recalls)
}

type stubPredictor struct {
	pred []int
	err  error
}

func (s stubPredictor) Predict(mat.Matrix) ([]int, error) { return s.pred, s.err }

func TestCalcAccuracy(t *testing.T) {
	x := mat.NewDense(3, 1, []float64{1, 2, 3})

	got, err := CalcAccuracy(x, []int{0, 1, 1}, stubPredictor{pred: []int{0, 1, 0}})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, got, 1e-12)

	_, err = CalcAccuracy(x, []int{0, 1, 1}, stubPredictor{err: errors.New("boom")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calc accuracy: boom")
}
