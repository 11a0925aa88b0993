// Package evaluation scores class predictions against known labels.
package evaluation

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Predictor is anything that assigns a class label to each row of a matrix.
type Predictor interface {
	Predict(X mat.Matrix) ([]int, error)
}

// ErrNoLabels is returned when there is nothing to score.
var ErrNoLabels = errors.New("no labels to score")

// CalcAccuracy predicts X with p and returns the balanced accuracy against y.
func CalcAccuracy(X mat.Matrix, y []int, p Predictor) (float64, error) {
	pred, err := p.Predict(X)
	if err != nil {
		return 0, fmt.Errorf("calc accuracy: %w", err)
	}
	return BalancedAccuracy(y, pred)
}

// BalancedAccuracy is the unweighted mean of per-class recall over the
// classes present in yTrue. Labels that only appear in yPred lower the recall
// of the classes they were confused with but add no term of their own.
func BalancedAccuracy(yTrue, yPred []int) (float64, error) {
	recalls, err := Recalls(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	values := make([]float64, 0, len(recalls))
	for _, label := range slices.Sorted(maps.Keys(recalls)) {
		values = append(values, recalls[label])
	}
	return stat.Mean(values, nil), nil
}

// Recalls returns recall per class present in yTrue.
func Recalls(yTrue, yPred []int) (map[int]float64, error) {
	if len(yTrue) == 0 {
		return nil, ErrNoLabels
	}
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("balanced accuracy: %d labels, %d predictions", len(yTrue), len(yPred))
	}

	labels := Labels(yTrue, yPred)
	cm := ConfusionMatrix(yTrue, yPred, labels)
	recalls := make(map[int]float64, len(labels))
	for i, label := range labels {
		support := mat.Sum(cm.RowView(i))
		if support == 0 {
			continue
		}
		recalls[label] = cm.At(i, i) / support
	}
	return recalls, nil
}

// Labels returns the sorted union of labels seen in either slice.
func Labels(yTrue, yPred []int) []int {
	labels := make([]int, 0, len(yTrue)+len(yPred))
	labels = append(labels, yTrue...)
	labels = append(labels, yPred...)
	slices.Sort(labels)
	return slices.Compact(labels)
}

// ConfusionMatrix counts (true, predicted) pairs. Row i and column j follow
// labels[i] and labels[j]; pairs with a label outside labels are ignored.
// No labels gives an empty matrix.
func ConfusionMatrix(yTrue, yPred, labels []int) *mat.Dense {
	if len(labels) == 0 {
		return &mat.Dense{}
	}
	index := make(map[int]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	cm := mat.NewDense(len(labels), len(labels), nil)
	for k := range yTrue {
		i, okT := index[yTrue[k]]
		j, okP := index[yPred[k]]
		if !okT || !okP {
			continue
		}
		cm.Set(i, j, cm.At(i, j)+1)
	}
	return cm
}
