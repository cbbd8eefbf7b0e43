package naivebayes

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/aimedlab/symdx/pkg/errors"
)

// CategoricalGroup models integer-coded categorical columns with a shared
// alphabet {0, ..., MaxCode} and per-class, per-feature code frequencies
// under Laplace smoothing.
//
// With SkipZero the code 0 is the missing-value sentinel: zero cells are
// excluded from the counts at fit time and contribute nothing to the
// log-likelihood at prediction time, so absent sub-attributes never drag a
// class's score. The valid alphabet is then {1, ..., MaxCode}.
type CategoricalGroup struct {
	Alpha    float64
	MaxCode  int
	SkipZero bool

	NClasses  int
	NFeatures int
	// LogProb[c][f][code] = log P(x_f = code | class c).
	LogProb [][][]float64
}

// CategoricalOption configures a CategoricalGroup.
type CategoricalOption func(*CategoricalGroup)

// WithCategoricalAlpha sets the smoothing parameter (default 1.0).
func WithCategoricalAlpha(alpha float64) CategoricalOption {
	return func(c *CategoricalGroup) { c.Alpha = alpha }
}

// WithSkipZero makes code 0 a missing-value sentinel instead of a category.
func WithSkipZero() CategoricalOption {
	return func(c *CategoricalGroup) { c.SkipZero = true }
}

// NewCategoricalGroup creates an unfitted categorical group estimator whose
// alphabet runs up to maxCode inclusive.
func NewCategoricalGroup(maxCode int, opts ...CategoricalOption) *CategoricalGroup {
	c := &CategoricalGroup{Alpha: 1.0, MaxCode: maxCode}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clone returns an unfitted copy with the same hyperparameters.
func (cg *CategoricalGroup) Clone() GroupEstimator {
	clone := NewCategoricalGroup(cg.MaxCode, WithCategoricalAlpha(cg.Alpha))
	clone.SkipZero = cg.SkipZero
	return clone
}

// alphabetSize is the number of codes the smoothing mass is spread over.
func (cg *CategoricalGroup) alphabetSize() float64 {
	if cg.SkipZero {
		return float64(cg.MaxCode)
	}
	return float64(cg.MaxCode + 1)
}

// Fit estimates per-class code frequencies for every column of the group.
func (cg *CategoricalGroup) Fit(X mat.Matrix, classIdx []int, nClasses int) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.Wrap(errors.ErrEmptyData, "categorical group fit")
	}
	if rows != len(classIdx) {
		return errors.NewDimensionError("CategoricalGroup.Fit", len(classIdx), rows, 0)
	}
	if cg.MaxCode < 1 {
		return errors.NewValidationError("maxCode", "alphabet must contain at least one code", cg.MaxCode)
	}

	counts := make([][][]float64, nClasses)
	totals := make([][]float64, nClasses)
	for c := 0; c < nClasses; c++ {
		counts[c] = make([][]float64, cols)
		totals[c] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			counts[c][j] = make([]float64, cg.MaxCode+1)
		}
	}

	for i := 0; i < rows; i++ {
		c := classIdx[i]
		for j := 0; j < cols; j++ {
			v := X.At(i, j)
			code := int(v)
			if float64(code) != v || code < 0 || code > cg.MaxCode {
				return errors.NewValueError("CategoricalGroup.Fit",
					fmt.Sprintf("value %v at row %d column %d is not a code in [0, %d]", v, i, j, cg.MaxCode))
			}
			if cg.SkipZero && code == 0 {
				continue
			}
			counts[c][j][code]++
			totals[c][j]++
		}
	}

	k := cg.alphabetSize()
	cg.LogProb = make([][][]float64, nClasses)
	for c := 0; c < nClasses; c++ {
		cg.LogProb[c] = make([][]float64, cols)
		for j := 0; j < cols; j++ {
			probs := make([]float64, cg.MaxCode+1)
			denom := totals[c][j] + cg.Alpha*k
			for code := 0; code <= cg.MaxCode; code++ {
				if cg.SkipZero && code == 0 {
					continue
				}
				probs[code] = math.Log((counts[c][j][code] + cg.Alpha) / denom)
			}
			cg.LogProb[c][j] = probs
		}
	}

	cg.NClasses = nClasses
	cg.NFeatures = cols
	return nil
}

// LogLikelihood sums per-column log code probabilities. Sentinel zeros are
// skipped when SkipZero is set.
func (cg *CategoricalGroup) LogLikelihood(X mat.Matrix) (*mat.Dense, error) {
	if cg.LogProb == nil {
		return nil, errors.NewNotFittedError("CategoricalGroup", "LogLikelihood")
	}
	rows, cols := X.Dims()
	if cols != cg.NFeatures {
		return nil, errors.NewDimensionError("CategoricalGroup.LogLikelihood", cg.NFeatures, cols, 1)
	}

	ll := mat.NewDense(rows, cg.NClasses, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := X.At(i, j)
			code := int(v)
			if float64(code) != v || code < 0 || code > cg.MaxCode {
				return nil, errors.NewValueError("CategoricalGroup.LogLikelihood",
					fmt.Sprintf("value %v at row %d column %d is not a code in [0, %d]", v, i, j, cg.MaxCode))
			}
			if cg.SkipZero && code == 0 {
				continue
			}
			for c := 0; c < cg.NClasses; c++ {
				ll.Set(i, c, ll.At(i, c)+cg.LogProb[c][j][code])
			}
		}
	}
	return ll, nil
}
