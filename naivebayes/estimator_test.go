package naivebayes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	symerr "github.com/aimedlab/symdx/pkg/errors"
)

func TestBernoulliGroup(t *testing.T) {
	t.Run("smoothed probabilities", func(t *testing.T) {
		// class 0: rows {1, 0}, class 1: row {1}.
		X := mat.NewDense(3, 1, []float64{1, 0, 1})
		b := NewBernoulliGroup()
		require.NoError(t, b.Fit(X, []int{0, 0, 1}, 2))

		// class 0: (1+1)/(2+2) = 0.5, class 1: (1+1)/(1+2) = 2/3.
		assert.InDelta(t, math.Log(0.5), b.LogProb[0][0], 1e-12)
		assert.InDelta(t, math.Log(2.0/3.0), b.LogProb[1][0], 1e-12)
		assert.InDelta(t, math.Log(1.0/3.0), b.LogNeg[1][0], 1e-12)
	})

	t.Run("log likelihood", func(t *testing.T) {
		X := mat.NewDense(3, 1, []float64{1, 0, 1})
		b := NewBernoulliGroup()
		require.NoError(t, b.Fit(X, []int{0, 0, 1}, 2))

		ll, err := b.LogLikelihood(mat.NewDense(2, 1, []float64{1, 0}))
		require.NoError(t, err)
		assert.InDelta(t, math.Log(0.5), ll.At(0, 0), 1e-12)
		assert.InDelta(t, math.Log(2.0/3.0), ll.At(0, 1), 1e-12)
		assert.InDelta(t, math.Log(1.0/3.0), ll.At(1, 1), 1e-12)
	})

	t.Run("skip zero ignores absent cells", func(t *testing.T) {
		X := mat.NewDense(2, 1, []float64{1, 0})
		b := NewBernoulliGroup(WithBernoulliSkipZero())
		require.NoError(t, b.Fit(X, []int{0, 1}, 2))

		ll, err := b.LogLikelihood(mat.NewDense(1, 1, []float64{0}))
		require.NoError(t, err)
		assert.Zero(t, ll.At(0, 0))
		assert.Zero(t, ll.At(0, 1))
	})

	t.Run("not fitted", func(t *testing.T) {
		_, err := NewBernoulliGroup().LogLikelihood(mat.NewDense(1, 1, []float64{1}))
		var nf *symerr.NotFittedError
		assert.True(t, symerr.As(err, &nf))
	})

	t.Run("width mismatch after fit", func(t *testing.T) {
		b := NewBernoulliGroup()
		require.NoError(t, b.Fit(mat.NewDense(2, 2, []float64{1, 0, 0, 1}), []int{0, 1}, 2))
		_, err := b.LogLikelihood(mat.NewDense(1, 3, []float64{1, 0, 1}))
		var dim *symerr.DimensionError
		assert.True(t, symerr.As(err, &dim))
	})
}

func TestCategoricalGroup(t *testing.T) {
	t.Run("skip zero excludes sentinel from counts", func(t *testing.T) {
		// Codes 1..2 valid, 0 missing. class 0 sees one code 1,
		// one missing.
		X := mat.NewDense(2, 1, []float64{0, 1})
		c := NewCategoricalGroup(2, WithSkipZero())
		require.NoError(t, c.Fit(X, []int{0, 0}, 1))

		// One counted occurrence, alphabet size 2:
		// p(1) = (1+1)/(1+2) = 2/3, p(2) = 1/3.
		assert.InDelta(t, math.Log(2.0/3.0), c.LogProb[0][0][1], 1e-12)
		assert.InDelta(t, math.Log(1.0/3.0), c.LogProb[0][0][2], 1e-12)
	})

	t.Run("sentinel contributes nothing at prediction", func(t *testing.T) {
		X := mat.NewDense(2, 1, []float64{1, 2})
		c := NewCategoricalGroup(2, WithSkipZero())
		require.NoError(t, c.Fit(X, []int{0, 1}, 2))

		ll, err := c.LogLikelihood(mat.NewDense(1, 1, []float64{0}))
		require.NoError(t, err)
		assert.Zero(t, ll.At(0, 0))
		assert.Zero(t, ll.At(0, 1))
	})

	t.Run("zero is a category without skip zero", func(t *testing.T) {
		X := mat.NewDense(2, 1, []float64{0, 1})
		c := NewCategoricalGroup(1)
		require.NoError(t, c.Fit(X, []int{0, 0}, 1))

		// Alphabet {0, 1}: p(0) = (1+1)/(2+2) = 0.5.
		assert.InDelta(t, math.Log(0.5), c.LogProb[0][0][0], 1e-12)
	})

	t.Run("rejects out of range code", func(t *testing.T) {
		c := NewCategoricalGroup(2)
		err := c.Fit(mat.NewDense(1, 1, []float64{5}), []int{0}, 1)
		var ve *symerr.ValueError
		assert.True(t, symerr.As(err, &ve))
	})

	t.Run("rejects fractional code", func(t *testing.T) {
		c := NewCategoricalGroup(2)
		err := c.Fit(mat.NewDense(1, 1, []float64{1.5}), []int{0}, 1)
		assert.Error(t, err)
	})
}

func TestGaussianGroup(t *testing.T) {
	t.Run("per class statistics", func(t *testing.T) {
		X := mat.NewDense(4, 1, []float64{2, 4, 10, 10})
		g := NewGaussianGroup()
		require.NoError(t, g.Fit(X, []int{0, 0, 1, 1}, 2))

		assert.InDelta(t, 3.0, g.Theta[0][0], 1e-12)
		assert.InDelta(t, 10.0, g.Theta[1][0], 1e-12)
		// class 0 population variance = 1, class 1 variance floored
		// near zero by the smoothing epsilon.
		assert.InDelta(t, 1.0, g.Sigma[0][0], 1e-6)
		assert.Greater(t, g.Sigma[1][0], 0.0)
		assert.Less(t, g.Sigma[1][0], 1e-6)
	})

	t.Run("constant column stays finite", func(t *testing.T) {
		X := mat.NewDense(3, 1, []float64{7, 7, 7})
		g := NewGaussianGroup()
		require.NoError(t, g.Fit(X, []int{0, 0, 1}, 2))

		ll, err := g.LogLikelihood(mat.NewDense(1, 1, []float64{7}))
		require.NoError(t, err)
		assert.False(t, math.IsInf(ll.At(0, 0), 0))
		assert.False(t, math.IsNaN(ll.At(0, 1)))
	})

	t.Run("density peaks at the class mean", func(t *testing.T) {
		X := mat.NewDense(4, 1, []float64{0, 2, 8, 12})
		g := NewGaussianGroup()
		require.NoError(t, g.Fit(X, []int{0, 0, 1, 1}, 2))

		ll, err := g.LogLikelihood(mat.NewDense(2, 1, []float64{1, 10}))
		require.NoError(t, err)
		assert.Greater(t, ll.At(0, 0), ll.At(0, 1))
		assert.Greater(t, ll.At(1, 1), ll.At(1, 0))
	})
}

func TestGroupClone(t *testing.T) {
	b := NewBernoulliGroup(WithBernoulliAlpha(0.5))
	require.NoError(t, b.Fit(mat.NewDense(2, 1, []float64{1, 0}), []int{0, 1}, 2))

	clone := b.Clone().(*BernoulliGroup)
	assert.Equal(t, 0.5, clone.Alpha)
	assert.Nil(t, clone.LogProb)

	c := NewCategoricalGroup(3, WithSkipZero()).Clone().(*CategoricalGroup)
	assert.Equal(t, 3, c.MaxCode)
	assert.True(t, c.SkipZero)

	g := NewGaussianGroup(WithVarSmoothing(1e-6)).Clone().(*GaussianGroup)
	assert.Equal(t, 1e-6, g.VarSmoothing)
}
