package ensemble

import (
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/aimedlab/symdx/core/model"
	"github.com/aimedlab/symdx/pkg/errors"
)

// RFParams holds the random-forest hyperparameters. MaxFeatures <= 0 means
// sqrt(nFeatures), MaxWorkers <= 0 means 4.
type RFParams struct {
	NTrees          int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
	MaxWorkers      int
	Seed            int64
}

// DefaultRFParams mirrors the training defaults used in the comparison runs.
func DefaultRFParams() RFParams {
	return RFParams{
		NTrees:          100,
		MaxDepth:        10,
		MinSamplesSplit: 2,
		MaxWorkers:      4,
	}
}

// RandomForest is a bagged ensemble of decision trees. Each tree trains on a
// bootstrap sample over a random feature subset; probabilities average the
// trees' leaf distributions. Tree seeds derive from Params.Seed, so the same
// data and parameters always grow the same forest.
type RandomForest struct {
	model.BaseEstimator

	Params RFParams

	ClassList      []float64
	Trees          []*DecisionTree
	FeatureIndices [][]int
}

// NewRandomForest creates an unfitted forest.
func NewRandomForest(params RFParams) *RandomForest {
	if params.NTrees <= 0 {
		params.NTrees = DefaultRFParams().NTrees
	}
	if params.MaxWorkers <= 0 {
		params.MaxWorkers = DefaultRFParams().MaxWorkers
	}
	return &RandomForest{Params: params}
}

// Classes returns the sorted class codes seen during fitting.
func (rf *RandomForest) Classes() []float64 {
	return rf.ClassList
}

// Fit は各決定木をワーカープールで並列に学習させる
func (rf *RandomForest) Fit(X, y mat.Matrix) error {
	if rf.IsFitted() {
		return errors.Wrap(errors.ErrRefitted, "RandomForest.Fit")
	}
	rows, cols := X.Dims()
	if rows == 0 {
		return errors.Wrap(errors.ErrEmptyData, "RandomForest.Fit")
	}
	yRows, yCols := y.Dims()
	if yRows != rows || yCols != 1 {
		return errors.NewInputShapeError("fit", []int{rows, 1}, []int{yRows, yCols})
	}

	classes, classIdx := indexLabels(y)
	samples := denseRows(X)

	maxFeatures := rf.Params.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Sqrt(float64(cols)))
	}
	if maxFeatures < 1 {
		maxFeatures = 1
	}
	if maxFeatures > cols {
		maxFeatures = cols
	}

	rf.Trees = make([]*DecisionTree, rf.Params.NTrees)
	rf.FeatureIndices = make([][]int, rf.Params.NTrees)

	workers := rf.Params.MaxWorkers
	if workers > rf.Params.NTrees {
		workers = rf.Params.NTrees
	}

	jobs := make(chan int, rf.Params.NTrees)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rf.Trees[i], rf.FeatureIndices[i] = rf.growTree(samples, classIdx, len(classes), maxFeatures, rf.Params.Seed+int64(i))
			}
		}()
	}
	for i := 0; i < rf.Params.NTrees; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	rf.ClassList = classes
	rf.SetFitted()
	return nil
}

// growTree bootstraps the samples, picks the tree's feature subset and fits
// one tree on the projected data.
func (rf *RandomForest) growTree(samples [][]float64, classIdx []int, nClasses, maxFeatures int, seed int64) (*DecisionTree, []int) {
	rng := rand.New(rand.NewSource(seed))
	n := len(samples)
	nFeatures := len(samples[0])

	features := candidateFeatures(nFeatures, rng, maxFeatures)

	bootX := make([][]float64, n)
	bootIdx := make([]int, n)
	for i := 0; i < n; i++ {
		src := rng.Intn(n)
		row := make([]float64, len(features))
		for j, f := range features {
			row[j] = samples[src][f]
		}
		bootX[i] = row
		bootIdx[i] = classIdx[src]
	}

	tree := NewDecisionTree(rf.Params.MaxDepth, rf.Params.MinSamplesSplit)
	tree.fitIndexed(bootX, bootIdx, nClasses, nil, 0)
	tree.SetFitted()
	return tree, features
}

// PredictProba averages the per-tree leaf distributions. Columns follow
// Classes() order.
func (rf *RandomForest) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !rf.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForest", "PredictProba")
	}
	rows, _ := X.Dims()
	nClasses := len(rf.ClassList)
	proba := mat.NewDense(rows, nClasses, nil)

	sample := make([]float64, 0)
	for i := 0; i < rows; i++ {
		acc := make([]float64, nClasses)
		for t, tree := range rf.Trees {
			features := rf.FeatureIndices[t]
			sample = sample[:0]
			for _, f := range features {
				sample = append(sample, X.At(i, f))
			}
			for c, p := range tree.predictDist(sample) {
				acc[c] += p
			}
		}
		for c := range acc {
			acc[c] /= float64(len(rf.Trees))
		}
		proba.SetRow(i, acc)
	}
	return proba, nil
}

// Predict は各行の予測クラスコードを返す
func (rf *RandomForest) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := rf.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return argmaxClasses(proba, rf.ClassList), nil
}

// Score returns the mean accuracy of Predict against y.
func (rf *RandomForest) Score(X, y mat.Matrix) (float64, error) {
	pred, err := rf.Predict(X)
	if err != nil {
		return 0, err
	}
	return meanAccuracy(pred, y)
}

// Clone returns an unfitted forest with the same parameters.
func (rf *RandomForest) Clone() *RandomForest {
	return NewRandomForest(rf.Params)
}

// Save persists the fitted forest with encoding/gob.
func (rf *RandomForest) Save(path string) error {
	return model.SaveModel(rf, path)
}

// Load restores a forest saved with Save.
func (rf *RandomForest) Load(path string) error {
	return model.LoadModel(rf, path)
}
