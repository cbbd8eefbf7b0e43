package naivebayes

import (
	"gonum.org/v1/gonum/mat"
)

// GroupEstimator is the per-group likelihood model behind the composite
// classifier. Fit sees only the columns of its own group; classIdx maps each
// row of X to its class index in [0, nClasses).
//
// LogLikelihood returns an (nSamples x nClasses) matrix of per-class
// log-likelihood sums over the group's columns.
type GroupEstimator interface {
	Fit(X mat.Matrix, classIdx []int, nClasses int) error
	LogLikelihood(X mat.Matrix) (*mat.Dense, error)

	// Clone returns an unfitted copy with the same hyperparameters.
	Clone() GroupEstimator
}

// colSlice is a read-only column-range view over a matrix. Group estimators
// see their slice through this view, so sparse symptom blocks are never
// materialized as separate dense copies.
type colSlice struct {
	m     mat.Matrix
	start int
	width int
}

func (s colSlice) Dims() (int, int) {
	r, _ := s.m.Dims()
	return r, s.width
}

func (s colSlice) At(i, j int) float64 {
	return s.m.At(i, s.start+j)
}

func (s colSlice) T() mat.Matrix {
	return mat.Transpose{Matrix: s}
}

func sliceGroup(X mat.Matrix, g FeatureGroup, total int) colSlice {
	return colSlice{m: X, start: g.Start, width: g.Width(total)}
}
