package train

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimedlab/symdx/ensemble"
	"github.com/aimedlab/symdx/naivebayes"
	symerr "github.com/aimedlab/symdx/pkg/errors"
)

func TestReadDataset(t *testing.T) {
	t.Run("parses records and labels", func(t *testing.T) {
		csv := `GENDER,RACE,AGE,SYMPTOMS,LABEL
M,white,34,"[{""name"":""cough""},{""name"":""fever""}]",flu
F,asian,52,"[{""name"":""headache"",""nature"":""dull"",""duration"":14}]",migraine
M,black,40,,healthy
`
		ds, err := ReadDataset(strings.NewReader(csv))
		require.NoError(t, err)
		require.Len(t, ds.Records, 3)

		assert.Equal(t, "M", ds.Records[0].Gender)
		assert.Equal(t, 34.0, ds.Records[0].Age)
		require.Len(t, ds.Records[0].Symptoms, 2)
		assert.Equal(t, "cough", ds.Records[0].Symptoms[0].Name)

		assert.Equal(t, "dull", ds.Records[1].Symptoms[0].Nature)
		assert.Equal(t, 14.0, ds.Records[1].Symptoms[0].Duration)

		assert.Empty(t, ds.Records[2].Symptoms)
		assert.Equal(t, []string{"flu", "migraine", "healthy"}, ds.Labels)
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := ReadDataset(strings.NewReader("GENDER,RACE,AGE,LABEL\nM,white,30,flu\n"))
		var valErr *symerr.ValidationError
		assert.True(t, symerr.As(err, &valErr))
	})

	t.Run("bad age", func(t *testing.T) {
		_, err := ReadDataset(strings.NewReader("GENDER,RACE,AGE,SYMPTOMS,LABEL\nM,white,old,,flu\n"))
		var encErr *symerr.EncodingError
		assert.True(t, symerr.As(err, &encErr))
	})

	t.Run("bad symptom cell", func(t *testing.T) {
		_, err := ReadDataset(strings.NewReader("GENDER,RACE,AGE,SYMPTOMS,LABEL\nM,white,30,not-json,flu\n"))
		assert.Error(t, err)
	})

	t.Run("empty dataset", func(t *testing.T) {
		_, err := ReadDataset(strings.NewReader("GENDER,RACE,AGE,SYMPTOMS,LABEL\n"))
		assert.True(t, symerr.Is(err, symerr.ErrEmptyData))
	})
}

func TestParseVariant(t *testing.T) {
	for _, name := range []string{"basic", "nlice", "advanced"} {
		v, err := ParseVariant(name)
		require.NoError(t, err)
		assert.Equal(t, Variant(name), v)
	}
	_, err := ParseVariant("fancy")
	assert.Error(t, err)
}

// writeFixture generates a vocabulary file and a separable dataset: flu
// patients always report cough, migraine patients headache.
func writeFixture(t *testing.T, nlice bool) (string, string) {
	t.Helper()
	dir := t.TempDir()

	vocabPath := filepath.Join(dir, "vocab.json")
	require.NoError(t, os.WriteFile(vocabPath, []byte(`{"cough": {}, "headache": {}}`), 0o644))

	var rows []string
	rows = append(rows, "GENDER,RACE,AGE,SYMPTOMS,LABEL")
	for i := 0; i < 10; i++ {
		gender := "M"
		if i%2 == 0 {
			gender = "F"
		}
		cough := `[{""name"":""cough""}]`
		headache := `[{""name"":""headache""}]`
		if nlice {
			cough = `[{""name"":""cough"",""nature"":""dull"",""intensity"":""severe"",""duration"":7,""onset"":2}]`
			headache = `[{""name"":""headache"",""nature"":""throbbing"",""location"":""head"",""duration"":1}]`
		}
		rows = append(rows, fmt.Sprintf(`%s,white,%d,"%s",flu`, gender, 20+i, cough))
		rows = append(rows, fmt.Sprintf(`%s,asian,%d,"%s",migraine`, gender, 40+i, headache))
	}
	dataPath := filepath.Join(dir, "patients.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte(strings.Join(rows, "\n")+"\n"), 0o644))
	return dataPath, vocabPath
}

func TestTrainNaiveBayesBasic(t *testing.T) {
	dataPath, vocabPath := writeFixture(t, false)
	outDir := t.TempDir()

	result, err := TrainNaiveBayes(Config{
		Variant:        VariantBasic,
		DataPath:       dataPath,
		VocabularyPath: vocabPath,
		OutputDir:      outDir,
		RunName:        "basic_test",
		CVSplits:       3,
		TestSize:       0.2,
		Seed:           42,
	})
	require.NoError(t, err)

	assert.Equal(t, "SparseNaiveBayes", result.ModelName)
	assert.Equal(t, 20, result.Samples)
	assert.Equal(t, 5, result.Features)
	assert.Equal(t, 2, result.Classes)
	assert.Equal(t, []string{"flu", "migraine"}, result.ClassNames)

	acc := result.Metrics["accuracy"]
	require.Len(t, acc.PerFold, 3)
	assert.Equal(t, 1.0, acc.Mean)
	assert.Contains(t, result.Metrics, "top5")

	// Both artifacts land in the output directory.
	assert.FileExists(t, result.ModelPath)
	assert.FileExists(t, result.ResultPath)

	loaded := &naivebayes.SparseNaiveBayes{}
	require.NoError(t, loaded.Load(result.ModelPath))
	assert.True(t, loaded.IsFitted())
	assert.Equal(t, []float64{0, 1}, loaded.Classes())
}

func TestTrainNaiveBayesNLICE(t *testing.T) {
	dataPath, vocabPath := writeFixture(t, true)

	for _, variant := range []Variant{VariantNLICE, VariantAdvanced} {
		t.Run(string(variant), func(t *testing.T) {
			result, err := TrainNaiveBayes(Config{
				Variant:        variant,
				DataPath:       dataPath,
				VocabularyPath: vocabPath,
				OutputDir:      t.TempDir(),
				CVSplits:       2,
				Seed:           7,
			})
			require.NoError(t, err)
			assert.Equal(t, 3+8*2, result.Features)
			assert.Equal(t, 1.0, result.Metrics["accuracy"].Mean)
		})
	}
}

func TestTrainRandomForest(t *testing.T) {
	dataPath, vocabPath := writeFixture(t, false)

	result, err := TrainRandomForest(Config{
		Variant:        VariantBasic,
		DataPath:       dataPath,
		VocabularyPath: vocabPath,
		OutputDir:      t.TempDir(),
		CVSplits:       2,
		Seed:           3,
		RF:             ensemble.RFParams{NTrees: 10, MaxDepth: 5, MaxFeatures: 5, MaxWorkers: 2, Seed: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, "RandomForest", result.ModelName)
	assert.Equal(t, 1.0, result.Metrics["accuracy"].Mean)
	assert.FileExists(t, result.ModelPath)
}
