package naivebayes

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/aimedlab/symdx/pkg/errors"
)

// BernoulliGroup models a group of binary presence flags. Any value > 0
// counts as present. Laplace smoothing with Alpha keeps every per-class
// probability strictly inside (0, 1), so log(p) and log(1-p) are always
// finite.
type BernoulliGroup struct {
	Alpha float64

	// SkipZero treats 0 as "not reported" rather than observed absence:
	// zero cells contribute nothing to the log-likelihood.
	SkipZero bool

	NClasses  int
	NFeatures int
	// LogProb[c][f] = log P(x_f = 1 | class c), LogNeg the complement.
	LogProb [][]float64
	LogNeg  [][]float64
}

// BernoulliOption configures a BernoulliGroup.
type BernoulliOption func(*BernoulliGroup)

// WithBernoulliAlpha sets the smoothing parameter (default 1.0).
func WithBernoulliAlpha(alpha float64) BernoulliOption {
	return func(b *BernoulliGroup) { b.Alpha = alpha }
}

// WithBernoulliSkipZero makes zero cells count as missing at prediction.
func WithBernoulliSkipZero() BernoulliOption {
	return func(b *BernoulliGroup) { b.SkipZero = true }
}

// NewBernoulliGroup creates an unfitted Bernoulli group estimator.
func NewBernoulliGroup(opts ...BernoulliOption) *BernoulliGroup {
	b := &BernoulliGroup{Alpha: 1.0}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Clone returns an unfitted copy with the same hyperparameters.
func (b *BernoulliGroup) Clone() GroupEstimator {
	clone := NewBernoulliGroup(WithBernoulliAlpha(b.Alpha))
	clone.SkipZero = b.SkipZero
	return clone
}

// Fit estimates the per-class presence probabilities.
func (b *BernoulliGroup) Fit(X mat.Matrix, classIdx []int, nClasses int) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.Wrap(errors.ErrEmptyData, "bernoulli group fit")
	}
	if rows != len(classIdx) {
		return errors.NewDimensionError("BernoulliGroup.Fit", len(classIdx), rows, 0)
	}

	counts := make([][]float64, nClasses)
	classTotal := make([]float64, nClasses)
	for c := range counts {
		counts[c] = make([]float64, cols)
	}
	for i := 0; i < rows; i++ {
		c := classIdx[i]
		classTotal[c]++
		for j := 0; j < cols; j++ {
			if X.At(i, j) > 0 {
				counts[c][j]++
			}
		}
	}

	b.LogProb = make([][]float64, nClasses)
	b.LogNeg = make([][]float64, nClasses)
	for c := 0; c < nClasses; c++ {
		b.LogProb[c] = make([]float64, cols)
		b.LogNeg[c] = make([]float64, cols)
		denom := classTotal[c] + 2*b.Alpha
		for j := 0; j < cols; j++ {
			p := (counts[c][j] + b.Alpha) / denom
			b.LogProb[c][j] = math.Log(p)
			b.LogNeg[c][j] = math.Log(1 - p)
		}
	}

	b.NClasses = nClasses
	b.NFeatures = cols
	return nil
}

// LogLikelihood sums log P(x_f | class) over the group's columns.
func (b *BernoulliGroup) LogLikelihood(X mat.Matrix) (*mat.Dense, error) {
	if b.LogProb == nil {
		return nil, errors.NewNotFittedError("BernoulliGroup", "LogLikelihood")
	}
	rows, cols := X.Dims()
	if cols != b.NFeatures {
		return nil, errors.NewDimensionError("BernoulliGroup.LogLikelihood", b.NFeatures, cols, 1)
	}

	ll := mat.NewDense(rows, b.NClasses, nil)
	for i := 0; i < rows; i++ {
		for c := 0; c < b.NClasses; c++ {
			sum := 0.0
			for j := 0; j < cols; j++ {
				if X.At(i, j) > 0 {
					sum += b.LogProb[c][j]
				} else if !b.SkipZero {
					sum += b.LogNeg[c][j]
				}
			}
			ll.Set(i, c, sum)
		}
	}
	return ll, nil
}
