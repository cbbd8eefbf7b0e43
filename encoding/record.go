package encoding

// Layout constants shared between the encoders and the feature partitioner.
// The "33 columns per categorical group" style literal of earlier experiments
// is deliberately absent: every derived width comes from these constants and
// the vocabulary size.
const (
	// NumDemographicFeatures counts the leading columns
	// [gender, race, age] present in every variant.
	NumDemographicFeatures = 3

	// ColumnsPerSymptom is the NLICE block width per symptom:
	// one presence flag plus seven sub-attribute slots.
	ColumnsPerSymptom = 8

	// NumCategoricalAttributes counts the categorical NLICE sub-attributes
	// {nature, location, intensity, excitation, frequency}.
	NumCategoricalAttributes = 5
)

// Offsets of the sub-attribute slots within a symptom's eight-column block.
const (
	OffsetPresence = iota
	OffsetNature
	OffsetLocation
	OffsetIntensity
	OffsetDuration
	OffsetOnset
	OffsetExcitation
	OffsetFrequency
)

// Symptom is one reported symptom, optionally carrying NLICE sub-attributes.
// Empty categorical strings and zero numeric values mean "not reported".
type Symptom struct {
	Name string

	Nature     string
	Location   string
	Intensity  string
	Excitation string
	Frequency  string

	Duration float64
	Onset    float64
}

// Record is one patient case.
type Record struct {
	Gender   string
	Race     string
	Age      float64
	Symptoms []Symptom
}

// EncodingMap declares the valid code alphabet of one categorical
// sub-attribute. Codes are 1-based so that 0 stays reserved as the
// "not reported" sentinel.
type EncodingMap map[string]float64

// Cardinality returns the number of real (non-sentinel) codes.
func (m EncodingMap) Cardinality() int {
	return len(m)
}

// MaxCode returns the largest declared code value.
func (m EncodingMap) MaxCode() int {
	max := 0
	for _, code := range m {
		if int(code) > max {
			max = int(code)
		}
	}
	return max
}

// NLICEEncodings bundles the per-attribute code alphabets in the fixed
// attribute order used throughout the repository.
type NLICEEncodings struct {
	Nature     EncodingMap
	Location   EncodingMap
	Intensity  EncodingMap
	Excitation EncodingMap
	Frequency  EncodingMap
}

// Categorical returns the categorical encoding maps in partition order
// {nature, location, intensity, excitation, frequency}.
func (e NLICEEncodings) Categorical() []EncodingMap {
	return []EncodingMap{e.Nature, e.Location, e.Intensity, e.Excitation, e.Frequency}
}

// DefaultGenderCodes is the gender label alphabet.
var DefaultGenderCodes = map[string]float64{
	"M": 0,
	"F": 1,
}

// DefaultRaceCodes is the race label alphabet.
var DefaultRaceCodes = map[string]float64{
	"white":  0,
	"black":  1,
	"asian":  2,
	"native": 3,
	"other":  4,
}

// DefaultNLICEEncodings is the stock sub-attribute alphabet used when a run
// does not supply its own encoding maps.
var DefaultNLICEEncodings = NLICEEncodings{
	Nature: EncodingMap{
		"sharp": 1, "dull": 2, "burning": 3, "cramping": 4, "throbbing": 5,
	},
	Location: EncodingMap{
		"head": 1, "chest": 2, "abdomen": 3, "back": 4, "limbs": 5, "generalized": 6,
	},
	Intensity: EncodingMap{
		"mild": 1, "moderate": 2, "severe": 3,
	},
	Excitation: EncodingMap{
		"rest": 1, "exertion": 2, "eating": 3, "stress": 4,
	},
	Frequency: EncodingMap{
		"constant": 1, "intermittent": 2, "episodic": 3,
	},
}
