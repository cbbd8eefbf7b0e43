package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/aimedlab/symdx/pkg/errors"
)

func TestStandardScalerFitTransform(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{10, 20, 30, 40})

	scaler := NewStandardScaler()
	scaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	// mean 25, population std sqrt(125)
	assert.InDelta(t, 25.0, scaler.Mean[0], 1e-12)

	sum := 0.0
	for i := 0; i < 4; i++ {
		sum += scaled.At(i, 0)
	}
	assert.InDelta(t, 0.0, sum, 1e-12)
}

func TestStandardScalerStatisticsFrozenAfterFit(t *testing.T) {
	train := mat.NewDense(3, 1, []float64{10, 20, 30})
	unseen := mat.NewDense(2, 1, []float64{100, 200})

	scaler := NewStandardScaler()
	require.NoError(t, scaler.Fit(train))

	meanBefore := scaler.Mean[0]
	scaleBefore := scaler.Scale[0]

	out, err := scaler.Transform(unseen)
	require.NoError(t, err)

	// transform must reuse fit-time statistics, never recompute
	assert.Equal(t, meanBefore, scaler.Mean[0])
	assert.Equal(t, scaleBefore, scaler.Scale[0])
	assert.InDelta(t, (100-meanBefore)/scaleBefore, out.At(0, 0), 1e-12)
}

func TestStandardScalerConstantFeature(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{5, 5, 5})

	scaler := NewStandardScaler()
	require.NoError(t, scaler.Fit(X))
	assert.Equal(t, 1.0, scaler.Scale[0])
}

func TestStandardScalerNotFitted(t *testing.T) {
	scaler := NewStandardScaler()
	_, err := scaler.Transform(mat.NewDense(1, 1, []float64{1}))
	require.Error(t, err)

	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))
}

func TestStandardScalerDimensionMismatch(t *testing.T) {
	scaler := NewStandardScaler()
	require.NoError(t, scaler.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))

	_, err := scaler.Transform(mat.NewDense(2, 3, nil))
	require.Error(t, err)

	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestLabelEncoderRoundTrip(t *testing.T) {
	labels := []string{"flu", "asthma", "flu", "migraine"}

	le := NewLabelEncoder()
	codes, err := le.FitTransform(labels)
	require.NoError(t, err)

	// codes follow sorted label order: asthma=0, flu=1, migraine=2
	assert.Equal(t, []float64{1, 0, 1, 2}, codes)
	assert.Equal(t, 3, le.NClasses())

	back, err := le.InverseTransform(codes)
	require.NoError(t, err)
	assert.Equal(t, labels, back)
}

func TestLabelEncoderUnknownLabel(t *testing.T) {
	le := NewLabelEncoder()
	require.NoError(t, le.Fit([]string{"flu", "asthma"}))

	_, err := le.Transform([]string{"unknown"})
	require.Error(t, err)

	var encErr *errors.EncodingError
	assert.True(t, errors.As(err, &encErr))
}
