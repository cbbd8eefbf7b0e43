package naivebayes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/aimedlab/symdx/encoding"
	symerr "github.com/aimedlab/symdx/pkg/errors"
)

func TestColumnOrder(t *testing.T) {
	t.Run("two symptoms", func(t *testing.T) {
		// Interleaved layout: demographics, then per symptom
		// [presence, nature, location, intensity, duration, onset,
		// excitation, frequency]. The permutation groups each
		// sub-attribute across symptoms, continuous blocks last.
		want := []int{
			0, 1, 2, // demographics
			3, 11, // presence
			4, 12, // nature
			5, 13, // location
			6, 14, // intensity
			9, 17, // excitation
			10, 18, // frequency
			7, 15, // duration
			8, 16, // onset
		}
		assert.Equal(t, want, ColumnOrder(2))
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, ColumnOrder(5), ColumnOrder(5))
	})

	t.Run("length matches encoded width", func(t *testing.T) {
		for _, n := range []int{1, 3, 33} {
			assert.Len(t, ColumnOrder(n), encoding.NumDemographicFeatures+encoding.ColumnsPerSymptom*n)
		}
	})
}

func TestReorderColumns(t *testing.T) {
	t.Run("permutes columns", func(t *testing.T) {
		X := mat.NewDense(2, 3, []float64{
			1, 2, 3,
			4, 5, 6,
		})
		out, err := ReorderColumns(X, []int{2, 0, 1})
		require.NoError(t, err)
		assert.Equal(t, []float64{3, 1, 2}, mat.Row(nil, 0, out))
		assert.Equal(t, []float64{6, 4, 5}, mat.Row(nil, 1, out))
	})

	t.Run("length mismatch", func(t *testing.T) {
		X := mat.NewDense(1, 3, []float64{1, 2, 3})
		_, err := ReorderColumns(X, []int{0, 1})
		var dimErr *symerr.DimensionError
		assert.True(t, symerr.As(err, &dimErr))
	})
}

func TestNewClassifierMap(t *testing.T) {
	t.Run("rejects gap", func(t *testing.T) {
		_, err := NewClassifierMap(4,
			MappedEstimator{Estimator: NewBernoulliGroup(), Group: FeatureGroup{Name: "a", Start: 0, End: 1}},
			MappedEstimator{Estimator: NewBernoulliGroup(), Group: FeatureGroup{Name: "b", Start: 2, End: 4}},
		)
		var valErr *symerr.ValidationError
		assert.True(t, symerr.As(err, &valErr))
	})

	t.Run("rejects overlap", func(t *testing.T) {
		_, err := NewClassifierMap(3,
			MappedEstimator{Estimator: NewBernoulliGroup(), Group: FeatureGroup{Name: "a", Start: 0, End: 2}},
			MappedEstimator{Estimator: NewBernoulliGroup(), Group: FeatureGroup{Name: "b", Start: 1, End: 3}},
		)
		assert.Error(t, err)
	})

	t.Run("rejects short coverage", func(t *testing.T) {
		_, err := NewClassifierMap(3,
			MappedEstimator{Estimator: NewBernoulliGroup(), Group: FeatureGroup{Name: "a", Start: 0, End: 2}},
		)
		assert.Error(t, err)
	})

	t.Run("open end resolves to total width", func(t *testing.T) {
		cmap, err := NewClassifierMap(5,
			MappedEstimator{Estimator: NewBernoulliGroup(), Group: FeatureGroup{Name: "a", Start: 0, End: 2}},
			MappedEstimator{Estimator: NewBernoulliGroup(), Group: FeatureGroup{Name: "b", Start: 2, End: -1}},
		)
		require.NoError(t, err)
		assert.Equal(t, 3, cmap.Pairs[1].Group.Width(cmap.TotalWidth))
	})
}

func TestVariantClassifierMaps(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		cmap, err := NewBasicClassifierMap(10)
		require.NoError(t, err)
		assert.Equal(t, 13, cmap.TotalWidth)
		require.Len(t, cmap.Pairs, 4)
		assert.Equal(t, "symptoms", cmap.Pairs[3].Group.Name)
		assert.True(t, cmap.Pairs[3].Group.Sparse)
		assert.Equal(t, 10, cmap.Pairs[3].Group.Width(cmap.TotalWidth))
	})

	t.Run("nlice", func(t *testing.T) {
		cmap, err := NewNLICEClassifierMap(4, encoding.DefaultNLICEEncodings)
		require.NoError(t, err)
		assert.Equal(t, 3+8*4, cmap.TotalWidth)
		require.Len(t, cmap.Pairs, 6)

		cat := cmap.Pairs[4]
		assert.Equal(t, "nlice_categorical", cat.Group.Name)
		assert.Equal(t, 3+4, cat.Group.Start)
		assert.Equal(t, 3+4+5*4, cat.Group.End)

		cont := cmap.Pairs[5]
		assert.Equal(t, FamilyGaussian, cont.Group.Family)
		assert.Equal(t, 2*4, cont.Group.Width(cmap.TotalWidth))
	})

	t.Run("advanced widths derive from symptom count", func(t *testing.T) {
		for _, n := range []int{2, 33} {
			cmap, err := NewAdvancedClassifierMap(n, encoding.DefaultNLICEEncodings)
			require.NoError(t, err)
			require.Len(t, cmap.Pairs, 10)
			for _, name := range []string{"nature", "location", "intensity", "excitation", "frequency"} {
				found := false
				for _, p := range cmap.Pairs {
					if p.Group.Name == name {
						found = true
						assert.Equal(t, n, p.Group.Width(cmap.TotalWidth), name)
						assert.Equal(t, FamilyCategorical, p.Group.Family)
					}
				}
				assert.True(t, found, name)
			}
		}
	})
}
