package naivebayes

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/aimedlab/symdx/pkg/errors"
)

const defaultVarSmoothing = 1e-9

// GaussianGroup models continuous columns with per-class normal densities.
// Variances are floored by VarSmoothing times the largest overall feature
// variance, so single-sample classes and constant columns fit without
// producing infinite log-densities.
type GaussianGroup struct {
	VarSmoothing float64

	NClasses  int
	NFeatures int
	// Theta[c][f] and Sigma[c][f] hold the per-class mean and variance.
	Theta [][]float64
	Sigma [][]float64
}

// GaussianOption configures a GaussianGroup.
type GaussianOption func(*GaussianGroup)

// WithVarSmoothing sets the relative variance floor (default 1e-9).
func WithVarSmoothing(eps float64) GaussianOption {
	return func(g *GaussianGroup) { g.VarSmoothing = eps }
}

// NewGaussianGroup creates an unfitted Gaussian group estimator.
func NewGaussianGroup(opts ...GaussianOption) *GaussianGroup {
	g := &GaussianGroup{VarSmoothing: defaultVarSmoothing}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Clone returns an unfitted copy with the same hyperparameters.
func (g *GaussianGroup) Clone() GroupEstimator {
	return NewGaussianGroup(WithVarSmoothing(g.VarSmoothing))
}

// Fit estimates per-class means and variances for every column of the group.
func (g *GaussianGroup) Fit(X mat.Matrix, classIdx []int, nClasses int) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.Wrap(errors.ErrEmptyData, "gaussian group fit")
	}
	if rows != len(classIdx) {
		return errors.NewDimensionError("GaussianGroup.Fit", len(classIdx), rows, 0)
	}

	// Overall per-feature variance sets the scale of the smoothing floor.
	globalMean := make([]float64, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			globalMean[j] += X.At(i, j)
		}
	}
	for j := 0; j < cols; j++ {
		globalMean[j] /= float64(rows)
	}
	maxVar := 0.0
	for j := 0; j < cols; j++ {
		v := 0.0
		for i := 0; i < rows; i++ {
			d := X.At(i, j) - globalMean[j]
			v += d * d
		}
		v /= float64(rows)
		if v > maxVar {
			maxVar = v
		}
	}
	epsilon := g.VarSmoothing * maxVar
	if epsilon == 0 {
		epsilon = g.VarSmoothing
	}

	classTotal := make([]float64, nClasses)
	g.Theta = make([][]float64, nClasses)
	g.Sigma = make([][]float64, nClasses)
	for c := 0; c < nClasses; c++ {
		g.Theta[c] = make([]float64, cols)
		g.Sigma[c] = make([]float64, cols)
	}
	for i := 0; i < rows; i++ {
		c := classIdx[i]
		classTotal[c]++
		for j := 0; j < cols; j++ {
			g.Theta[c][j] += X.At(i, j)
		}
	}
	for c := 0; c < nClasses; c++ {
		if classTotal[c] == 0 {
			continue
		}
		for j := 0; j < cols; j++ {
			g.Theta[c][j] /= classTotal[c]
		}
	}
	for i := 0; i < rows; i++ {
		c := classIdx[i]
		for j := 0; j < cols; j++ {
			d := X.At(i, j) - g.Theta[c][j]
			g.Sigma[c][j] += d * d
		}
	}
	for c := 0; c < nClasses; c++ {
		for j := 0; j < cols; j++ {
			if classTotal[c] > 0 {
				g.Sigma[c][j] /= classTotal[c]
			}
			g.Sigma[c][j] += epsilon
		}
	}

	g.NClasses = nClasses
	g.NFeatures = cols
	return nil
}

// LogLikelihood sums per-column normal log-densities.
func (g *GaussianGroup) LogLikelihood(X mat.Matrix) (*mat.Dense, error) {
	if g.Theta == nil {
		return nil, errors.NewNotFittedError("GaussianGroup", "LogLikelihood")
	}
	rows, cols := X.Dims()
	if cols != g.NFeatures {
		return nil, errors.NewDimensionError("GaussianGroup.LogLikelihood", g.NFeatures, cols, 1)
	}

	ll := mat.NewDense(rows, g.NClasses, nil)
	for i := 0; i < rows; i++ {
		for c := 0; c < g.NClasses; c++ {
			sum := 0.0
			for j := 0; j < cols; j++ {
				sigma := g.Sigma[c][j]
				d := X.At(i, j) - g.Theta[c][j]
				sum += -0.5*math.Log(2*math.Pi*sigma) - d*d/(2*sigma)
			}
			ll.Set(i, c, sum)
		}
	}
	return ll, nil
}
