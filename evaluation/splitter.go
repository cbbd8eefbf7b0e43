// Package evaluation provides the stratified splitters and the parallel
// cross-validation loop used by the training runners.
package evaluation

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/aimedlab/symdx/pkg/errors"
)

// CVFold holds the row indices of one train/test split.
type CVFold struct {
	TrainIndices []int
	TestIndices  []int
}

// Splitter generates train/test folds over a labelled dataset.
type Splitter interface {
	Split(X, y mat.Matrix) ([]CVFold, error)
	NSplits() int
}

// StratifiedKFold splits the data into k folds preserving per-class
// proportions. Classes are visited in sorted order, so the same seed always
// produces the same folds.
type StratifiedKFold struct {
	K          int
	Shuffle    bool
	RandomSeed uint64
}

// NewStratifiedKFold creates a splitter; k below 2 falls back to 5.
func NewStratifiedKFold(k int, shuffle bool, seed uint64) *StratifiedKFold {
	if k < 2 {
		k = 5
	}
	return &StratifiedKFold{K: k, Shuffle: shuffle, RandomSeed: seed}
}

// NSplits returns the number of folds.
func (skf *StratifiedKFold) NSplits() int {
	return skf.K
}

// Split generates the stratified folds.
func (skf *StratifiedKFold) Split(X, y mat.Matrix) ([]CVFold, error) {
	nSamples, err := checkSplitInput(X, y, skf.K)
	if err != nil {
		return nil, err
	}

	classes, byClass := groupByClass(y, nSamples)
	if skf.Shuffle {
		r := rand.New(rand.NewPCG(skf.RandomSeed, skf.RandomSeed))
		for _, label := range classes {
			shuffle(r, byClass[label])
		}
	}

	folds := make([]CVFold, skf.K)
	for _, label := range classes {
		indices := byClass[label]
		foldSize := len(indices) / skf.K
		remainder := len(indices) % skf.K

		cur := 0
		for i := 0; i < skf.K; i++ {
			take := foldSize
			if i < remainder {
				take++
			}
			folds[i].TestIndices = append(folds[i].TestIndices, indices[cur:cur+take]...)
			cur += take
		}
	}

	for i := range folds {
		folds[i].TrainIndices = complement(nSamples, folds[i].TestIndices)
	}
	return folds, nil
}

// StratifiedShuffleSplit draws NIterations independent stratified splits,
// holding out TestSize of each class per split.
type StratifiedShuffleSplit struct {
	NIterations int
	TestSize    float64
	RandomSeed  uint64
}

// NewStratifiedShuffleSplit creates a splitter. Non-positive iteration
// counts fall back to 1, an out-of-range test size to 0.2.
func NewStratifiedShuffleSplit(nIterations int, testSize float64, seed uint64) *StratifiedShuffleSplit {
	if nIterations < 1 {
		nIterations = 1
	}
	if testSize <= 0 || testSize >= 1 {
		testSize = 0.2
	}
	return &StratifiedShuffleSplit{NIterations: nIterations, TestSize: testSize, RandomSeed: seed}
}

// NSplits returns the number of independent splits.
func (sss *StratifiedShuffleSplit) NSplits() int {
	return sss.NIterations
}

// Split generates the shuffled splits. Each class contributes at least one
// test sample when it has more than one member.
func (sss *StratifiedShuffleSplit) Split(X, y mat.Matrix) ([]CVFold, error) {
	nSamples, err := checkSplitInput(X, y, 2)
	if err != nil {
		return nil, err
	}

	classes, byClass := groupByClass(y, nSamples)
	folds := make([]CVFold, sss.NIterations)
	for it := 0; it < sss.NIterations; it++ {
		seed := sss.RandomSeed + uint64(it)
		r := rand.New(rand.NewPCG(seed, seed))

		for _, label := range classes {
			indices := append([]int(nil), byClass[label]...)
			shuffle(r, indices)

			nTest := int(math.Round(sss.TestSize * float64(len(indices))))
			if nTest < 1 && len(indices) > 1 {
				nTest = 1
			}
			if nTest >= len(indices) {
				nTest = len(indices) - 1
			}
			folds[it].TestIndices = append(folds[it].TestIndices, indices[:nTest]...)
		}
		folds[it].TrainIndices = complement(nSamples, folds[it].TestIndices)
	}
	return folds, nil
}

// ExtractSubset copies the selected rows of X and y into new matrices.
func ExtractSubset(X, y mat.Matrix, indices []int) (*mat.Dense, *mat.Dense) {
	_, cols := X.Dims()
	subX := mat.NewDense(len(indices), cols, nil)
	subY := mat.NewDense(len(indices), 1, nil)
	for i, idx := range indices {
		for j := 0; j < cols; j++ {
			subX.Set(i, j, X.At(idx, j))
		}
		subY.Set(i, 0, y.At(idx, 0))
	}
	return subX, subY
}

func checkSplitInput(X, y mat.Matrix, minSamples int) (int, error) {
	nSamples, _ := X.Dims()
	yRows, yCols := y.Dims()
	if yRows != nSamples || yCols != 1 {
		return 0, errors.NewInputShapeError("split", []int{nSamples, 1}, []int{yRows, yCols})
	}
	if nSamples < minSamples {
		return 0, errors.NewValidationError("nSamples", "not enough samples to split", nSamples)
	}
	return nSamples, nil
}

// groupByClass returns the sorted class codes and the row indices of each.
func groupByClass(y mat.Matrix, nSamples int) ([]float64, map[float64][]int) {
	byClass := make(map[float64][]int)
	for i := 0; i < nSamples; i++ {
		label := y.At(i, 0)
		byClass[label] = append(byClass[label], i)
	}
	classes := make([]float64, 0, len(byClass))
	for label := range byClass {
		classes = append(classes, label)
	}
	sort.Float64s(classes)
	return classes, byClass
}

func shuffle(r *rand.Rand, indices []int) {
	r.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
}

func complement(nSamples int, test []int) []int {
	inTest := make(map[int]bool, len(test))
	for _, idx := range test {
		inTest[idx] = true
	}
	train := make([]int, 0, nSamples-len(test))
	for i := 0; i < nSamples; i++ {
		if !inTest[i] {
			train = append(train, i)
		}
	}
	return train
}
