// Package ensemble provides the decision-tree and random-forest baselines
// trained alongside the naive Bayes models for comparison runs.
package ensemble

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/aimedlab/symdx/core/model"
	"github.com/aimedlab/symdx/pkg/errors"
)

// TreeNode is one node of a fitted decision tree. Leaves keep the full class
// distribution of their training samples, so probability estimates reflect
// leaf purity instead of a hard vote.
type TreeNode struct {
	IsLeaf    bool
	ClassIdx  int
	Dist      []float64
	Feature   int
	Threshold float64
	Left      *TreeNode
	Right     *TreeNode
	Samples   int
}

// DecisionTree は Gini 不純度で分割する分類木
type DecisionTree struct {
	model.BaseEstimator

	MaxDepth            int
	MinSamplesSplit     int
	MinImpurityDecrease float64

	ClassList []float64
	Root      *TreeNode
}

// NewDecisionTree creates an unfitted tree. Non-positive limits fall back to
// depth 10 and 2 samples per split.
func NewDecisionTree(maxDepth, minSamplesSplit int) *DecisionTree {
	if maxDepth <= 0 {
		maxDepth = 10
	}
	if minSamplesSplit <= 0 {
		minSamplesSplit = 2
	}
	return &DecisionTree{
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
	}
}

// Classes returns the sorted class codes seen during fitting.
func (dt *DecisionTree) Classes() []float64 {
	return dt.ClassList
}

// Fit は決定木を学習させる
func (dt *DecisionTree) Fit(X, y mat.Matrix) error {
	rows, _ := X.Dims()
	if rows == 0 {
		return errors.Wrap(errors.ErrEmptyData, "DecisionTree.Fit")
	}
	yRows, yCols := y.Dims()
	if yRows != rows || yCols != 1 {
		return errors.NewInputShapeError("fit", []int{rows, 1}, []int{yRows, yCols})
	}

	classes, classIdx := indexLabels(y)
	dt.ClassList = classes
	dt.fitIndexed(denseRows(X), classIdx, len(classes), nil, 0)
	dt.SetFitted()
	return nil
}

// fitIndexed builds the tree on pre-indexed labels. rng and maxFeatures are
// set by the forest for per-split feature subsampling; nil rng means every
// split considers every feature.
func (dt *DecisionTree) fitIndexed(X [][]float64, classIdx []int, nClasses int, rng *rand.Rand, maxFeatures int) {
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	dt.Root = dt.buildNode(X, classIdx, nClasses, idx, 0, rng, maxFeatures)
}

func (dt *DecisionTree) buildNode(X [][]float64, classIdx []int, nClasses int, idx []int, depth int, rng *rand.Rand, maxFeatures int) *TreeNode {
	node := &TreeNode{Samples: len(idx)}
	dist := classDistribution(classIdx, nClasses, idx)
	impurity := gini(dist)

	if depth >= dt.MaxDepth || len(idx) < dt.MinSamplesSplit || impurity == 0 {
		return makeLeaf(node, dist)
	}

	feature, threshold, decrease := dt.bestSplit(X, classIdx, nClasses, idx, impurity, rng, maxFeatures)
	if decrease <= dt.MinImpurityDecrease {
		return makeLeaf(node, dist)
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] < threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return makeLeaf(node, dist)
	}

	node.Feature = feature
	node.Threshold = threshold
	node.Left = dt.buildNode(X, classIdx, nClasses, left, depth+1, rng, maxFeatures)
	node.Right = dt.buildNode(X, classIdx, nClasses, right, depth+1, rng, maxFeatures)
	return node
}

// bestSplit scans candidate thresholds (sorted unique column values) and
// returns the split with the largest Gini decrease.
func (dt *DecisionTree) bestSplit(X [][]float64, classIdx []int, nClasses int, idx []int, parentImpurity float64, rng *rand.Rand, maxFeatures int) (int, float64, float64) {
	bestFeature, bestThreshold, bestDecrease := 0, 0.0, 0.0
	n := float64(len(idx))

	for _, feature := range candidateFeatures(len(X[0]), rng, maxFeatures) {
		for _, threshold := range uniqueValues(X, idx, feature) {
			leftDist := make([]float64, nClasses)
			rightDist := make([]float64, nClasses)
			nLeft, nRight := 0.0, 0.0
			for _, i := range idx {
				if X[i][feature] < threshold {
					leftDist[classIdx[i]]++
					nLeft++
				} else {
					rightDist[classIdx[i]]++
					nRight++
				}
			}
			if nLeft == 0 || nRight == 0 {
				continue
			}

			weighted := (nLeft/n)*gini(leftDist) + (nRight/n)*gini(rightDist)
			if decrease := parentImpurity - weighted; decrease > bestDecrease {
				bestFeature, bestThreshold, bestDecrease = feature, threshold, decrease
			}
		}
	}
	return bestFeature, bestThreshold, bestDecrease
}

// Predict は各行の予測クラスコードを返す
func (dt *DecisionTree) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := dt.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return argmaxClasses(proba, dt.ClassList), nil
}

// PredictProba returns each row's leaf class distribution.
func (dt *DecisionTree) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !dt.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTree", "PredictProba")
	}
	rows, _ := X.Dims()
	proba := mat.NewDense(rows, len(dt.ClassList), nil)
	for i := 0; i < rows; i++ {
		leaf := dt.traverse(X, i)
		proba.SetRow(i, leaf.Dist)
	}
	return proba, nil
}

// predictDist exposes the leaf distribution for a single pre-sliced sample.
func (dt *DecisionTree) predictDist(sample []float64) []float64 {
	node := dt.Root
	for !node.IsLeaf {
		if sample[node.Feature] < node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Dist
}

func (dt *DecisionTree) traverse(X mat.Matrix, row int) *TreeNode {
	node := dt.Root
	for !node.IsLeaf {
		if X.At(row, node.Feature) < node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node
}

// Score returns the mean accuracy of Predict against y.
func (dt *DecisionTree) Score(X, y mat.Matrix) (float64, error) {
	pred, err := dt.Predict(X)
	if err != nil {
		return 0, err
	}
	return meanAccuracy(pred, y)
}

func makeLeaf(node *TreeNode, dist []float64) *TreeNode {
	node.IsLeaf = true
	node.Dist = normalize(dist)
	node.ClassIdx = argmaxLowest(node.Dist)
	return node
}

func gini(dist []float64) float64 {
	total := 0.0
	for _, c := range dist {
		total += c
	}
	if total == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range dist {
		p := c / total
		impurity -= p * p
	}
	return impurity
}

func classDistribution(classIdx []int, nClasses int, idx []int) []float64 {
	dist := make([]float64, nClasses)
	for _, i := range idx {
		dist[classIdx[i]]++
	}
	return dist
}

func normalize(dist []float64) []float64 {
	total := 0.0
	for _, c := range dist {
		total += c
	}
	if total == 0 {
		return dist
	}
	out := make([]float64, len(dist))
	for i, c := range dist {
		out[i] = c / total
	}
	return out
}

// uniqueValues returns the sorted distinct values of one column, so the
// threshold scan is deterministic.
func uniqueValues(X [][]float64, idx []int, feature int) []float64 {
	seen := make(map[float64]struct{}, len(idx))
	for _, i := range idx {
		seen[X[i][feature]] = struct{}{}
	}
	values := make([]float64, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Float64s(values)
	return values
}

// candidateFeatures returns the features one split may use: all of them
// without an rng, otherwise a random subset of size maxFeatures.
func candidateFeatures(nFeatures int, rng *rand.Rand, maxFeatures int) []int {
	features := make([]int, nFeatures)
	for i := range features {
		features[i] = i
	}
	if rng == nil || maxFeatures <= 0 || maxFeatures >= nFeatures {
		return features
	}
	for i := 0; i < maxFeatures; i++ {
		j := i + rng.Intn(nFeatures-i)
		features[i], features[j] = features[j], features[i]
	}
	return features[:maxFeatures]
}

func argmaxLowest(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}

// indexLabels extracts the sorted unique class codes of y and each row's
// index into that order.
func indexLabels(y mat.Matrix) ([]float64, []int) {
	rows, _ := y.Dims()
	pos := make(map[float64]int)
	for i := 0; i < rows; i++ {
		pos[y.At(i, 0)] = 0
	}
	classes := make([]float64, 0, len(pos))
	for label := range pos {
		classes = append(classes, label)
	}
	sort.Float64s(classes)
	for i, label := range classes {
		pos[label] = i
	}

	classIdx := make([]int, rows)
	for i := 0; i < rows; i++ {
		classIdx[i] = pos[y.At(i, 0)]
	}
	return classes, classIdx
}

func denseRows(X mat.Matrix) [][]float64 {
	rows, cols := X.Dims()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			row[j] = X.At(i, j)
		}
		out[i] = row
	}
	return out
}

func argmaxClasses(proba mat.Matrix, classes []float64) *mat.Dense {
	rows, cols := proba.Dims()
	pred := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		best := 0
		for c := 1; c < cols; c++ {
			if proba.At(i, c) > proba.At(i, best) {
				best = c
			}
		}
		pred.Set(i, 0, classes[best])
	}
	return pred
}

func meanAccuracy(pred, y mat.Matrix) (float64, error) {
	rows, _ := pred.Dims()
	yRows, _ := y.Dims()
	if yRows != rows {
		return 0, errors.NewDimensionError("Score", rows, yRows, 0)
	}
	correct := 0
	for i := 0; i < rows; i++ {
		if pred.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(rows), nil
}
