package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFitStandardScaler(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		1, 5,
		2, 5,
		3, 5,
		4, 5,
	})

	s, err := FitStandardScaler(x)
	require.NoError(t, err)

	assert.InDelta(t, 2.5, s.Mean[0], 1e-12)
	assert.InDelta(t, 1.118033988749895, s.Scale[0], 1e-12) // population std of 1..4
	assert.Equal(t, 5.0, s.Mean[1])
	assert.Equal(t, 1.0, s.Scale[1], "constant column keeps unit scale")
	assert.Equal(t, 2, s.NumFeatures())
}

func TestStandardScaler_TransformTrainIsStandardized(t *testing.T) {
	x, _ := blobs(10, 3)
	s, err := FitStandardScaler(x)
	require.NoError(t, err)

	z, err := s.Transform(x)
	require.NoError(t, err)

	r, c := z.Dims()
	for j := 0; j < c; j++ {
		col := mat.Col(nil, j, z)
		var sum, sumSq float64
		for _, v := range col {
			sum += v
			sumSq += v * v
		}
		assert.InDelta(t, 0, sum/float64(r), 1e-9)
		assert.InDelta(t, 1, sumSq/float64(r), 1e-9)
	}
}

func TestStandardScaler_TransformUsesFittedStatistics(t *testing.T) {
	train := mat.NewDense(2, 1, []float64{0, 10})
	s, err := FitStandardScaler(train)
	require.NoError(t, err)

	test := mat.NewDense(2, 1, []float64{5, 20})
	z, err := s.Transform(test)
	require.NoError(t, err)

	assert.InDelta(t, 0, z.At(0, 0), 1e-12)
	assert.InDelta(t, 3, z.At(1, 0), 1e-12)
}

func TestStandardScaler_TransformShapeMismatch(t *testing.T) {
	s, err := FitStandardScaler(mat.NewDense(2, 2, []float64{1, 2, 3, 4}))
	require.NoError(t, err)

	_, err = s.Transform(mat.NewDense(1, 3, nil))
	assert.ErrorIs(t, err, ErrShape)
}
