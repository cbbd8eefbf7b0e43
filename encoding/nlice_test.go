package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimedlab/symdx/pkg/errors"
)

func TestNLICESparseMakerWidth(t *testing.T) {
	vocab := testVocab(t, "fever", "cough", "headache")
	nm := NewNLICESparseMaker(vocab, DefaultNLICEEncodings)

	records := []Record{{Gender: "M", Race: "white", Age: 30}}
	X, err := nm.FitTransform(records)
	require.NoError(t, err)

	_, c := X.Dims()
	assert.Equal(t, NumDemographicFeatures+ColumnsPerSymptom*3, c)
	assert.Equal(t, nm.NumFeatures(), c)
}

func TestNLICESparseMakerBlockLayout(t *testing.T) {
	vocab := testVocab(t, "fever", "cough")
	nm := NewNLICESparseMaker(vocab, DefaultNLICEEncodings)

	records := []Record{
		{
			Gender: "F", Race: "black", Age: 40,
			Symptoms: []Symptom{{
				Name:      "cough",
				Nature:    "dull",
				Intensity: "severe",
				Duration:  14,
			}},
		},
	}

	X, err := nm.FitTransform(records)
	require.NoError(t, err)

	// fever block untouched
	feverBase := NumDemographicFeatures
	for off := 0; off < ColumnsPerSymptom; off++ {
		assert.Equal(t, 0.0, X.At(0, feverBase+off), "fever offset %d", off)
	}

	coughBase := NumDemographicFeatures + ColumnsPerSymptom
	assert.Equal(t, 1.0, X.At(0, coughBase+OffsetPresence))
	assert.Equal(t, DefaultNLICEEncodings.Nature["dull"], X.At(0, coughBase+OffsetNature))
	assert.Equal(t, DefaultNLICEEncodings.Intensity["severe"], X.At(0, coughBase+OffsetIntensity))
	assert.Equal(t, 14.0, X.At(0, coughBase+OffsetDuration))

	// unreported sub-attributes stay at the sentinel 0
	assert.Equal(t, 0.0, X.At(0, coughBase+OffsetLocation))
	assert.Equal(t, 0.0, X.At(0, coughBase+OffsetExcitation))
	assert.Equal(t, 0.0, X.At(0, coughBase+OffsetFrequency))
	assert.Equal(t, 0.0, X.At(0, coughBase+OffsetOnset))
}

func TestNLICESparseMakerUnknownAttributeValue(t *testing.T) {
	vocab := testVocab(t, "fever")
	nm := NewNLICESparseMaker(vocab, DefaultNLICEEncodings)
	require.NoError(t, nm.Fit([]Record{{Gender: "M", Race: "white", Age: 30}}))

	_, err := nm.Transform([]Record{
		{Gender: "M", Race: "white", Age: 30, Symptoms: []Symptom{{Name: "fever", Nature: "weird"}}},
	})
	require.Error(t, err)

	var encErr *errors.EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, "NATURE", encErr.Column)
}

func TestNLICEEncodingMapsAreOneBased(t *testing.T) {
	for _, m := range DefaultNLICEEncodings.Categorical() {
		for name, code := range m {
			assert.GreaterOrEqual(t, code, 1.0, "code for %s must not collide with the sentinel", name)
		}
	}
}
