package encoding

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimedlab/symdx/pkg/errors"
)

func testVocab(t *testing.T, names ...string) *Vocabulary {
	t.Helper()
	vocab, err := NewVocabulary(names)
	require.NoError(t, err)
	return vocab
}

func TestVocabularyOrdering(t *testing.T) {
	vocab := testVocab(t, "fever", "cough", "headache")

	idx, ok := vocab.Lookup("cough")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 3, vocab.Len())

	_, ok = vocab.Lookup("rash")
	assert.False(t, ok)
}

func TestVocabularyRejectsDuplicates(t *testing.T) {
	_, err := NewVocabulary([]string{"fever", "fever"})
	require.Error(t, err)
}

func TestLoadVocabularySortedKeyOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symptoms.json")
	content := `{"fever": {"id": 12}, "cough": {"id": 7}, "aches": {"id": 3}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	vocab, err := LoadVocabulary(path)
	require.NoError(t, err)

	// indices follow sorted key order regardless of JSON order
	assert.Equal(t, []string{"aches", "cough", "fever"}, vocab.Names)
}

func TestSparseMakerBasicRow(t *testing.T) {
	// Scenario from the data contract: vocabulary {fever:0, cough:1},
	// record {fever}, gender=M, race=asian, age=30.
	vocab := testVocab(t, "fever", "cough")
	sm := NewSparseMaker(vocab)

	records := []Record{
		{Gender: "M", Race: "asian", Age: 30, Symptoms: []Symptom{{Name: "fever"}}},
		{Gender: "F", Race: "white", Age: 50, Symptoms: []Symptom{{Name: "cough"}}},
	}

	X, err := sm.FitTransform(records)
	require.NoError(t, err)

	r, c := X.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, NumDemographicFeatures+2, c)

	// demographics
	assert.Equal(t, DefaultGenderCodes["M"], X.At(0, 0))
	assert.Equal(t, DefaultRaceCodes["asian"], X.At(0, 1))

	// age standardized over {30, 50}: mean 40, std 10
	assert.InDelta(t, -1.0, X.At(0, 2), 1e-12)
	assert.InDelta(t, 1.0, X.At(1, 2), 1e-12)

	// presence vector [1, 0] for row 0, [0, 1] for row 1
	assert.Equal(t, 1.0, X.At(0, 3))
	assert.Equal(t, 0.0, X.At(0, 4))
	assert.Equal(t, 0.0, X.At(1, 3))
	assert.Equal(t, 1.0, X.At(1, 4))
}

func TestSparseMakerUnknownSymptom(t *testing.T) {
	vocab := testVocab(t, "fever")
	sm := NewSparseMaker(vocab)
	require.NoError(t, sm.Fit([]Record{{Gender: "M", Race: "white", Age: 30}}))

	_, err := sm.Transform([]Record{
		{Gender: "M", Race: "white", Age: 30, Symptoms: []Symptom{{Name: "sneezing"}}},
	})
	require.Error(t, err)

	var encErr *errors.EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, "SYMPTOMS", encErr.Column)
	assert.Equal(t, "sneezing", encErr.Value)
}

func TestSparseMakerUnknownCategory(t *testing.T) {
	vocab := testVocab(t, "fever")
	sm := NewSparseMaker(vocab)
	require.NoError(t, sm.Fit([]Record{{Gender: "M", Race: "white", Age: 30}}))

	_, err := sm.Transform([]Record{{Gender: "X", Race: "white", Age: 30}})
	require.Error(t, err)

	var encErr *errors.EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, "GENDER", encErr.Column)
}

func TestSparseMakerTransformBeforeFit(t *testing.T) {
	sm := NewSparseMaker(testVocab(t, "fever"))
	_, err := sm.Transform([]Record{{Gender: "M", Race: "white", Age: 30}})
	require.Error(t, err)

	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))
}

func TestSparseMakerStatisticsFrozen(t *testing.T) {
	vocab := testVocab(t, "fever")
	sm := NewSparseMaker(vocab)
	require.NoError(t, sm.Fit([]Record{
		{Gender: "M", Race: "white", Age: 20},
		{Gender: "F", Race: "white", Age: 40},
	}))

	// unseen batch with very different ages must reuse fit-time mean/std
	X, err := sm.Transform([]Record{{Gender: "M", Race: "white", Age: 90}})
	require.NoError(t, err)
	assert.InDelta(t, (90.0-30.0)/10.0, X.At(0, 2), 1e-12)
}
