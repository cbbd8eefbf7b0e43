package encoding

import (
	"gonum.org/v1/gonum/mat"

	"github.com/aimedlab/symdx/core/model"
	"github.com/aimedlab/symdx/pkg/errors"
	"github.com/aimedlab/symdx/preprocessing"
)

// NLICESparseMaker encodes records into the extended layout with an
// eight-column block per symptom:
//
//	[gender, race, age,
//	 presence_0, nature_0, location_0, intensity_0, duration_0, onset_0, excitation_0, frequency_0,
//	 presence_1, ...]
//
// Sub-attribute slots of absent or unreported attributes stay at the
// sentinel value 0; categorical codes are 1-based for that reason.
type NLICESparseMaker struct {
	model.BaseEstimator

	Vocab       *Vocabulary
	GenderCodes map[string]float64
	RaceCodes   map[string]float64
	Encodings   NLICEEncodings
	AgeScaler   *preprocessing.StandardScaler
}

// NewNLICESparseMaker creates an NLICE encoder with the default demographic
// alphabets and the given sub-attribute encodings.
func NewNLICESparseMaker(vocab *Vocabulary, encodings NLICEEncodings) *NLICESparseMaker {
	return &NLICESparseMaker{
		Vocab:       vocab,
		GenderCodes: DefaultGenderCodes,
		RaceCodes:   DefaultRaceCodes,
		Encodings:   encodings,
		AgeScaler:   preprocessing.NewStandardScaler(),
	}
}

// NumFeatures returns the encoded width: 3 + 8*numSymptoms.
func (nm *NLICESparseMaker) NumFeatures() int {
	return NumDemographicFeatures + ColumnsPerSymptom*nm.Vocab.Len()
}

// Fit computes the age statistics used by Transform.
func (nm *NLICESparseMaker) Fit(records []Record) error {
	if len(records) == 0 {
		return errors.NewModelError("NLICESparseMaker.Fit", "empty data", errors.ErrEmptyData)
	}
	if nm.Vocab == nil || nm.Vocab.Len() == 0 {
		return errors.WithStack(errors.ErrEmptyVocabulary)
	}

	ages := mat.NewDense(len(records), 1, nil)
	for i, rec := range records {
		ages.Set(i, 0, rec.Age)
	}
	if err := nm.AgeScaler.Fit(ages); err != nil {
		return err
	}

	nm.SetFitted()
	return nil
}

// Transform encodes a batch of records into the NLICE layout.
func (nm *NLICESparseMaker) Transform(records []Record) (*mat.Dense, error) {
	if !nm.IsFitted() {
		return nil, errors.NewNotFittedError("NLICESparseMaker", "Transform")
	}

	width := nm.NumFeatures()
	out := mat.NewDense(len(records), width, nil)

	for i, rec := range records {
		genderCode, ok := nm.GenderCodes[rec.Gender]
		if !ok {
			return nil, errors.NewEncodingError("GENDER", rec.Gender, "")
		}
		raceCode, ok := nm.RaceCodes[rec.Race]
		if !ok {
			return nil, errors.NewEncodingError("RACE", rec.Race, "")
		}
		age, err := nm.AgeScaler.TransformValue(rec.Age, 0)
		if err != nil {
			return nil, err
		}
		out.Set(i, 0, genderCode)
		out.Set(i, 1, raceCode)
		out.Set(i, 2, age)

		for _, sym := range rec.Symptoms {
			idx, ok := nm.Vocab.Lookup(sym.Name)
			if !ok {
				return nil, errors.NewEncodingError("SYMPTOMS", sym.Name, "not in vocabulary")
			}
			base := NumDemographicFeatures + ColumnsPerSymptom*idx
			out.Set(i, base+OffsetPresence, 1)

			if err := nm.encodeAttributes(out, i, base, sym); err != nil {
				return nil, err
			}
		}
	}

	if _, c := out.Dims(); c != width {
		return nil, errors.NewDimensionError("NLICESparseMaker.Transform", width, c, 1)
	}
	return out, nil
}

// FitTransform fits on the batch and encodes it.
func (nm *NLICESparseMaker) FitTransform(records []Record) (*mat.Dense, error) {
	if err := nm.Fit(records); err != nil {
		return nil, err
	}
	return nm.Transform(records)
}

func (nm *NLICESparseMaker) encodeAttributes(out *mat.Dense, row, base int, sym Symptom) error {
	type catAttr struct {
		column string
		value  string
		codes  EncodingMap
		offset int
	}
	attrs := []catAttr{
		{"NATURE", sym.Nature, nm.Encodings.Nature, OffsetNature},
		{"LOCATION", sym.Location, nm.Encodings.Location, OffsetLocation},
		{"INTENSITY", sym.Intensity, nm.Encodings.Intensity, OffsetIntensity},
		{"EXCITATION", sym.Excitation, nm.Encodings.Excitation, OffsetExcitation},
		{"FREQUENCY", sym.Frequency, nm.Encodings.Frequency, OffsetFrequency},
	}

	for _, attr := range attrs {
		if attr.value == "" {
			continue // not reported, slot stays at the sentinel 0
		}
		code, ok := attr.codes[attr.value]
		if !ok {
			return errors.NewEncodingError(attr.column, attr.value, "not in encoding map")
		}
		out.Set(row, base+attr.offset, code)
	}

	// duration/onset are numeric and pass through unscaled
	out.Set(row, base+OffsetDuration, sym.Duration)
	out.Set(row, base+OffsetOnset, sym.Onset)
	return nil
}
