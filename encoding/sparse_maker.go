package encoding

import (
	"gonum.org/v1/gonum/mat"

	"github.com/aimedlab/symdx/core/model"
	"github.com/aimedlab/symdx/pkg/errors"
	"github.com/aimedlab/symdx/preprocessing"
)

// SparseMaker encodes records into the basic fixed-width layout
// [genderCode, raceCode, standardizedAge, presence_0 .. presence_n-1].
//
// Fit learns the age mean/std over the training set; Transform reuses those
// statistics unchanged for any later batch, including unseen data.
type SparseMaker struct {
	model.BaseEstimator

	Vocab       *Vocabulary
	GenderCodes map[string]float64
	RaceCodes   map[string]float64
	AgeScaler   *preprocessing.StandardScaler
}

// NewSparseMaker creates a basic encoder over the given vocabulary with the
// default gender/race alphabets.
func NewSparseMaker(vocab *Vocabulary) *SparseMaker {
	return &SparseMaker{
		Vocab:       vocab,
		GenderCodes: DefaultGenderCodes,
		RaceCodes:   DefaultRaceCodes,
		AgeScaler:   preprocessing.NewStandardScaler(),
	}
}

// NumFeatures returns the encoded width: 3 demographic columns plus one
// presence column per vocabulary entry.
func (sm *SparseMaker) NumFeatures() int {
	return NumDemographicFeatures + sm.Vocab.Len()
}

// Fit computes the age statistics used by Transform.
func (sm *SparseMaker) Fit(records []Record) error {
	if len(records) == 0 {
		return errors.NewModelError("SparseMaker.Fit", "empty data", errors.ErrEmptyData)
	}
	if sm.Vocab == nil || sm.Vocab.Len() == 0 {
		return errors.WithStack(errors.ErrEmptyVocabulary)
	}

	ages := mat.NewDense(len(records), 1, nil)
	for i, rec := range records {
		ages.Set(i, 0, rec.Age)
	}
	if err := sm.AgeScaler.Fit(ages); err != nil {
		return err
	}

	sm.SetFitted()
	return nil
}

// Transform encodes a batch of records. It is a pure function of the input
// and the fitted statistics; unknown symptoms or category labels abort with
// an EncodingError.
func (sm *SparseMaker) Transform(records []Record) (*mat.Dense, error) {
	if !sm.IsFitted() {
		return nil, errors.NewNotFittedError("SparseMaker", "Transform")
	}

	width := sm.NumFeatures()
	out := mat.NewDense(len(records), width, nil)

	for i, rec := range records {
		if err := sm.encodeDemographics(out, i, rec); err != nil {
			return nil, err
		}
		for _, sym := range rec.Symptoms {
			idx, ok := sm.Vocab.Lookup(sym.Name)
			if !ok {
				return nil, errors.NewEncodingError("SYMPTOMS", sym.Name, "not in vocabulary")
			}
			out.Set(i, NumDemographicFeatures+idx, 1)
		}
	}

	if _, c := out.Dims(); c != width {
		return nil, errors.NewDimensionError("SparseMaker.Transform", width, c, 1)
	}
	return out, nil
}

// FitTransform fits on the batch and encodes it.
func (sm *SparseMaker) FitTransform(records []Record) (*mat.Dense, error) {
	if err := sm.Fit(records); err != nil {
		return nil, err
	}
	return sm.Transform(records)
}

func (sm *SparseMaker) encodeDemographics(out *mat.Dense, row int, rec Record) error {
	genderCode, ok := sm.GenderCodes[rec.Gender]
	if !ok {
		return errors.NewEncodingError("GENDER", rec.Gender, "")
	}
	raceCode, ok := sm.RaceCodes[rec.Race]
	if !ok {
		return errors.NewEncodingError("RACE", rec.Race, "")
	}
	age, err := sm.AgeScaler.TransformValue(rec.Age, 0)
	if err != nil {
		return err
	}

	out.Set(row, 0, genderCode)
	out.Set(row, 1, raceCode)
	out.Set(row, 2, age)
	return nil
}
