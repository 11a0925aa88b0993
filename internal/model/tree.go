package model

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// featureTolerance is the smallest gap between two sorted feature values that
// can host a split threshold.
const featureTolerance = 1e-7

// leafFeature marks a node without children.
const leafFeature = -1

// Node is one vertex of a fitted decision tree. Leaves have Feature == -1.
// Value holds the class distribution of the training samples that reached it.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value"`
}

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool {
	return n.Feature == leafFeature
}

// DecisionTree is a fitted CART classifier stored as a flat node array with
// the root at index 0.
type DecisionTree struct {
	Nodes []Node `json:"nodes"`
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *DecisionTree) Depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		n := t.Nodes[i]
		if n.IsLeaf() {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	if len(t.Nodes) == 0 {
		return 0
	}
	return walk(0)
}

// leafValue walks x down the tree and returns the class distribution of the leaf it lands in.
func (t *DecisionTree) leafValue(x []float64) []float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.IsLeaf() {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

type treeParams struct {
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int
	numClasses      int
}

type treeBuilder struct {
	params treeParams
	x      *mat.Dense
	y      []int
	rng    *rand.Rand
	nodes  []Node
}

type candidateSplit struct {
	feature   int
	threshold float64
	impurity  float64
}

// growTree fits one tree on the given sample indexes (repeats allowed, as
// drawn by bootstrap). y holds class indexes in [0, numClasses).
func growTree(x *mat.Dense, y []int, samples []int, p treeParams, rng *rand.Rand) *DecisionTree {
	b := &treeBuilder{
		params: p,
		x:      x,
		y:      y,
		rng:    rng,
	}
	b.build(samples, 0)
	return &DecisionTree{Nodes: b.nodes}
}

func (b *treeBuilder) build(samples []int, depth int) int {
	counts := b.classCounts(samples)
	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{
		Feature: leafFeature,
		Value:   distribution(counts, len(samples)),
	})

	n := len(samples)
	if depth >= b.params.maxDepth ||
		n < b.params.minSamplesSplit ||
		n < 2*b.params.minSamplesLeaf ||
		isPure(counts) {
		return idx
	}

	split, ok := b.bestSplit(samples, counts)
	if !ok {
		return idx
	}

	left := make([]int, 0, n)
	right := make([]int, 0, n)
	for _, s := range samples {
		if b.x.At(s, split.feature) <= split.threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[idx].Feature = split.feature
	b.nodes[idx].Threshold = split.threshold
	b.nodes[idx].Left = l
	b.nodes[idx].Right = r
	return idx
}

type sortedSample struct {
	value float64
	class int
}

// bestSplit searches a random subset of features for the threshold that
// minimizes weighted gini impurity. Constant features do not count against
// the maxFeatures budget.
func (b *treeBuilder) bestSplit(samples []int, parent []int) (candidateSplit, bool) {
	n := len(samples)
	_, numFeatures := b.x.Dims()

	best := candidateSplit{}
	found := false
	visited := 0

	sorted := make([]sortedSample, n)
	left := make([]int, b.params.numClasses)
	right := make([]int, b.params.numClasses)

	for _, f := range b.rng.Perm(numFeatures) {
		if visited >= b.params.maxFeatures {
			break
		}

		for i, s := range samples {
			sorted[i] = sortedSample{value: b.x.At(s, f), class: b.y[s]}
		}
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].value < sorted[j].value })
		if sorted[n-1].value <= sorted[0].value+featureTolerance {
			continue
		}
		visited++

		clear(left)
		copy(right, parent)
		for i := 0; i < n-1; i++ {
			c := sorted[i].class
			left[c]++
			right[c]--

			if sorted[i+1].value <= sorted[i].value+featureTolerance {
				continue
			}
			nl := i + 1
			nr := n - nl
			if nl < b.params.minSamplesLeaf || nr < b.params.minSamplesLeaf {
				continue
			}

			impurity := weightedGini(left, nl) + weightedGini(right, nr)
			if !found || impurity < best.impurity {
				threshold := (sorted[i].value + sorted[i+1].value) / 2
				if threshold >= sorted[i+1].value {
					threshold = sorted[i].value
				}
				best = candidateSplit{feature: f, threshold: threshold, impurity: impurity}
				found = true
			}
		}
	}
	return best, found
}

func (b *treeBuilder) classCounts(samples []int) []int {
	counts := make([]int, b.params.numClasses)
	for _, s := range samples {
		counts[b.y[s]]++
	}
	return counts
}

// weightedGini returns n * gini(counts), the impurity contribution of one side.
func weightedGini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	var sumSq float64
	for _, c := range counts {
		sumSq += float64(c) * float64(c)
	}
	return float64(n) - sumSq/float64(n)
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func distribution(counts []int, n int) []float64 {
	out := make([]float64, len(counts))
	if n == 0 {
		return out
	}
	for i, c := range counts {
		out[i] = float64(c) / float64(n)
	}
	return out
}
