package naivebayes

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/aimedlab/symdx/core/model"
	"github.com/aimedlab/symdx/pkg/errors"
)

// SparseNaiveBayes is the composite mixed-type classifier. Each feature
// group of the ClassifierMap is fitted by its own likelihood model on its
// column slice; prediction sums the group log-likelihoods with the class
// log-priors, which is exact under the naive conditional independence
// assumption because the groups partition the columns.
type SparseNaiveBayes struct {
	model.BaseEstimator

	Map *ClassifierMap

	// ClassList holds the sorted unique class codes seen during Fit;
	// ClassLogPrior is aligned with it.
	ClassList     []float64
	ClassLogPrior []float64
}

// NewSparseNaiveBayes creates an unfitted composite classifier driven by the
// given map.
func NewSparseNaiveBayes(cmap *ClassifierMap) *SparseNaiveBayes {
	return &SparseNaiveBayes{Map: cmap}
}

// Clone returns an unfitted copy: same groups, fresh estimators.
func (nb *SparseNaiveBayes) Clone() *SparseNaiveBayes {
	pairs := make([]MappedEstimator, len(nb.Map.Pairs))
	for i, p := range nb.Map.Pairs {
		pairs[i] = MappedEstimator{Estimator: p.Estimator.Clone(), Group: p.Group}
	}
	return NewSparseNaiveBayes(&ClassifierMap{TotalWidth: nb.Map.TotalWidth, Pairs: pairs})
}

// Classes returns the sorted class codes seen during fitting.
func (nb *SparseNaiveBayes) Classes() []float64 {
	return nb.ClassList
}

// Fit は分類器を学習させる
//
// y は各行のクラスコードを持つ (n x 1) 行列。クラスコードの昇順が
// 予測出力の列順になる。
func (nb *SparseNaiveBayes) Fit(X, y mat.Matrix) error {
	if nb.IsFitted() {
		return errors.Wrap(errors.ErrRefitted, "SparseNaiveBayes.Fit")
	}

	rows, cols := X.Dims()
	if rows == 0 {
		return errors.Wrap(errors.ErrEmptyData, "SparseNaiveBayes.Fit")
	}
	if cols != nb.Map.TotalWidth {
		return errors.NewDimensionError("SparseNaiveBayes.Fit", nb.Map.TotalWidth, cols, 1)
	}
	yRows, yCols := y.Dims()
	if yRows != rows || yCols != 1 {
		return errors.NewInputShapeError("fit", []int{rows, 1}, []int{yRows, yCols})
	}

	classPos := make(map[float64]int)
	for i := 0; i < rows; i++ {
		label := y.At(i, 0)
		if _, ok := classPos[label]; !ok {
			classPos[label] = 0
		}
	}
	classes := make([]float64, 0, len(classPos))
	for label := range classPos {
		classes = append(classes, label)
	}
	sort.Float64s(classes)
	for i, label := range classes {
		classPos[label] = i
	}

	classIdx := make([]int, rows)
	counts := make([]float64, len(classes))
	for i := 0; i < rows; i++ {
		c := classPos[y.At(i, 0)]
		classIdx[i] = c
		counts[c]++
	}

	logPrior := make([]float64, len(classes))
	for c, n := range counts {
		logPrior[c] = math.Log(n / float64(rows))
	}

	for _, p := range nb.Map.Pairs {
		slice := sliceGroup(X, p.Group, nb.Map.TotalWidth)
		if err := p.Estimator.Fit(slice, classIdx, len(classes)); err != nil {
			return errors.Wrapf(err, "fitting group %q", p.Group.Name)
		}
	}

	nb.ClassList = classes
	nb.ClassLogPrior = logPrior
	nb.SetFitted()
	return nil
}

// PredictLogProba returns the unnormalized joint log-posterior scores
// (n x nClasses): class log-prior plus the sum of the group log-likelihoods.
// Columns follow Classes() order.
func (nb *SparseNaiveBayes) PredictLogProba(X mat.Matrix) (mat.Matrix, error) {
	if !nb.IsFitted() {
		return nil, errors.NewNotFittedError("SparseNaiveBayes", "PredictLogProba")
	}
	rows, cols := X.Dims()
	if cols != nb.Map.TotalWidth {
		return nil, errors.NewInputShapeError("predict", []int{rows, nb.Map.TotalWidth}, []int{rows, cols})
	}

	nClasses := len(nb.ClassList)
	scores := mat.NewDense(rows, nClasses, nil)
	for i := 0; i < rows; i++ {
		for c := 0; c < nClasses; c++ {
			scores.Set(i, c, nb.ClassLogPrior[c])
		}
	}

	for _, p := range nb.Map.Pairs {
		slice := sliceGroup(X, p.Group, nb.Map.TotalWidth)
		ll, err := p.Estimator.LogLikelihood(slice)
		if err != nil {
			return nil, errors.Wrapf(err, "scoring group %q", p.Group.Name)
		}
		scores.Add(scores, ll)
	}
	return scores, nil
}

// PredictProba normalizes the joint log-posteriors with log-sum-exp per row,
// so the returned rows sum to one even when the raw scores are far below the
// range of exp.
func (nb *SparseNaiveBayes) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	scores, err := nb.PredictLogProba(X)
	if err != nil {
		return nil, err
	}

	rows, nClasses := scores.Dims()
	proba := mat.NewDense(rows, nClasses, nil)
	row := make([]float64, nClasses)
	for i := 0; i < rows; i++ {
		for c := 0; c < nClasses; c++ {
			row[c] = scores.At(i, c)
		}
		norm := errors.LogSumExp(row)
		for c := 0; c < nClasses; c++ {
			proba.Set(i, c, math.Exp(row[c]-norm))
		}
	}
	return proba, nil
}

// Predict returns the (n x 1) matrix of predicted class codes. Ties go to
// the class with the lowest code.
func (nb *SparseNaiveBayes) Predict(X mat.Matrix) (mat.Matrix, error) {
	scores, err := nb.PredictLogProba(X)
	if err != nil {
		return nil, err
	}

	rows, nClasses := scores.Dims()
	pred := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		best := 0
		bestScore := scores.At(i, 0)
		for c := 1; c < nClasses; c++ {
			if s := scores.At(i, c); s > bestScore {
				best, bestScore = c, s
			}
		}
		pred.Set(i, 0, nb.ClassList[best])
	}
	return pred, nil
}

// Score returns the mean accuracy of Predict against y.
func (nb *SparseNaiveBayes) Score(X, y mat.Matrix) (float64, error) {
	pred, err := nb.Predict(X)
	if err != nil {
		return 0, err
	}

	rows, _ := pred.Dims()
	yRows, _ := y.Dims()
	if yRows != rows {
		return 0, errors.NewDimensionError("SparseNaiveBayes.Score", rows, yRows, 0)
	}
	correct := 0
	for i := 0; i < rows; i++ {
		if pred.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(rows), nil
}

// Save persists the fitted model with encoding/gob.
func (nb *SparseNaiveBayes) Save(path string) error {
	return model.SaveModel(nb, path)
}

// Load restores a model saved with Save.
func (nb *SparseNaiveBayes) Load(path string) error {
	return model.LoadModel(nb, path)
}
