// Package naivebayes implements the mixed-type sparse naive Bayes classifier:
// a composite model that routes contiguous column ranges of the encoded
// feature matrix to per-group likelihood estimators (Bernoulli, Categorical,
// Gaussian) and fuses their log-likelihoods under the conditional
// independence assumption.
package naivebayes

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/aimedlab/symdx/encoding"
	"github.com/aimedlab/symdx/pkg/errors"
)

// Family tags the likelihood model of a feature group.
type Family int

const (
	FamilyBernoulli Family = iota
	FamilyCategorical
	FamilyGaussian
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case FamilyBernoulli:
		return "bernoulli"
	case FamilyCategorical:
		return "categorical"
	case FamilyGaussian:
		return "gaussian"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// FeatureGroup is a named contiguous column range [Start, End) assigned one
// likelihood family. End < 0 means "to the last column". Sparse marks groups
// whose slice is dominated by zeros; it is carried into the model artifact
// for self-description and lets callers pick sparse-aware storage upstream.
type FeatureGroup struct {
	Name   string
	Start  int
	End    int
	Family Family
	Sparse bool
}

// ResolveEnd returns the exclusive end column given the total width.
func (g FeatureGroup) ResolveEnd(total int) int {
	if g.End < 0 {
		return total
	}
	return g.End
}

// Width returns the number of columns in the group given the total width.
func (g FeatureGroup) Width(total int) int {
	return g.ResolveEnd(total) - g.Start
}

// MappedEstimator binds one estimator to its feature group.
type MappedEstimator struct {
	Estimator GroupEstimator
	Group     FeatureGroup
}

// ClassifierMap is the ordered configuration driving the composite
// classifier: one (estimator, group) pair per column range. It is built once
// per variant and never mutated afterwards.
type ClassifierMap struct {
	TotalWidth int
	Pairs      []MappedEstimator
}

// NewClassifierMap validates that the groups partition [0, totalWidth)
// exactly: no gaps, no overlaps, no out-of-range columns.
func NewClassifierMap(totalWidth int, pairs ...MappedEstimator) (*ClassifierMap, error) {
	if totalWidth <= 0 {
		return nil, errors.NewValidationError("totalWidth", "must be positive", totalWidth)
	}
	if len(pairs) == 0 {
		return nil, errors.NewValidationError("pairs", "at least one feature group required", 0)
	}

	sorted := append([]MappedEstimator(nil), pairs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Group.Start < sorted[j].Group.Start
	})

	next := 0
	for _, p := range sorted {
		g := p.Group
		end := g.ResolveEnd(totalWidth)
		if g.Start != next {
			return nil, errors.NewValidationError(
				"classifier_map",
				fmt.Sprintf("group %q starts at %d, expected %d (gap or overlap)", g.Name, g.Start, next),
				g,
			)
		}
		if end <= g.Start || end > totalWidth {
			return nil, errors.NewValidationError(
				"classifier_map",
				fmt.Sprintf("group %q has invalid range [%d, %d)", g.Name, g.Start, end),
				g,
			)
		}
		if p.Estimator == nil {
			return nil, errors.NewValidationError("classifier_map", fmt.Sprintf("group %q has no estimator", g.Name), g)
		}
		next = end
	}
	if next != totalWidth {
		return nil, errors.NewValidationError(
			"classifier_map",
			fmt.Sprintf("groups cover [0, %d), expected [0, %d)", next, totalWidth),
			nil,
		)
	}

	return &ClassifierMap{TotalWidth: totalWidth, Pairs: pairs}, nil
}

// NewBasicClassifierMap builds the configuration for the basic encoding
// [gender, race, age, presence...]: Bernoulli gender, Categorical race,
// Gaussian age and one sparse Bernoulli group over all presence flags.
func NewBasicClassifierMap(numSymptoms int) (*ClassifierMap, error) {
	total := encoding.NumDemographicFeatures + numSymptoms
	raceMaxCode := maxCode(encoding.DefaultRaceCodes)

	return NewClassifierMap(total,
		MappedEstimator{
			Estimator: NewBernoulliGroup(),
			Group:     FeatureGroup{Name: "gender", Start: 0, End: 1, Family: FamilyBernoulli},
		},
		MappedEstimator{
			Estimator: NewCategoricalGroup(raceMaxCode),
			Group:     FeatureGroup{Name: "race", Start: 1, End: 2, Family: FamilyCategorical},
		},
		MappedEstimator{
			Estimator: NewGaussianGroup(),
			Group:     FeatureGroup{Name: "age", Start: 2, End: 3, Family: FamilyGaussian},
		},
		MappedEstimator{
			Estimator: NewBernoulliGroup(),
			Group:     FeatureGroup{Name: "symptoms", Start: 3, End: -1, Family: FamilyBernoulli, Sparse: true},
		},
	)
}

// NewNLICEClassifierMap builds the configuration for the reordered NLICE
// layout (see ColumnOrder): presence block, one merged skip-zero categorical
// group over the five categorical sub-attribute blocks, and one Gaussian
// group over the duration/onset blocks.
func NewNLICEClassifierMap(numSymptoms int, encodings encoding.NLICEEncodings) (*ClassifierMap, error) {
	total := encoding.NumDemographicFeatures + encoding.ColumnsPerSymptom*numSymptoms
	presenceEnd := encoding.NumDemographicFeatures + numSymptoms
	categoricalEnd := categoricalEndColumn(numSymptoms)
	raceMaxCode := maxCode(encoding.DefaultRaceCodes)

	merged := 0
	for _, m := range encodings.Categorical() {
		if mc := m.MaxCode(); mc > merged {
			merged = mc
		}
	}

	return NewClassifierMap(total,
		MappedEstimator{
			Estimator: NewBernoulliGroup(),
			Group:     FeatureGroup{Name: "gender", Start: 0, End: 1, Family: FamilyBernoulli},
		},
		MappedEstimator{
			Estimator: NewCategoricalGroup(raceMaxCode),
			Group:     FeatureGroup{Name: "race", Start: 1, End: 2, Family: FamilyCategorical},
		},
		MappedEstimator{
			Estimator: NewGaussianGroup(),
			Group:     FeatureGroup{Name: "age", Start: 2, End: 3, Family: FamilyGaussian},
		},
		MappedEstimator{
			Estimator: NewBernoulliGroup(),
			Group:     FeatureGroup{Name: "symptoms", Start: encoding.NumDemographicFeatures, End: presenceEnd, Family: FamilyBernoulli, Sparse: true},
		},
		MappedEstimator{
			Estimator: NewCategoricalGroup(merged, WithSkipZero()),
			Group:     FeatureGroup{Name: "nlice_categorical", Start: presenceEnd, End: categoricalEnd, Family: FamilyCategorical, Sparse: true},
		},
		MappedEstimator{
			Estimator: NewGaussianGroup(),
			Group:     FeatureGroup{Name: "nlice_continuous", Start: categoricalEnd, End: -1, Family: FamilyGaussian},
		},
	)
}

// NewAdvancedClassifierMap builds the advanced-NLICE configuration: like
// NewNLICEClassifierMap but with one skip-zero categorical group per
// sub-attribute, each with its own code alphabet. Every group width is
// derived from the vocabulary size, so the encoder and the partitioner can
// never disagree about where a block starts.
func NewAdvancedClassifierMap(numSymptoms int, encodings encoding.NLICEEncodings) (*ClassifierMap, error) {
	total := encoding.NumDemographicFeatures + encoding.ColumnsPerSymptom*numSymptoms
	presenceEnd := encoding.NumDemographicFeatures + numSymptoms
	raceMaxCode := maxCode(encoding.DefaultRaceCodes)

	pairs := []MappedEstimator{
		{
			Estimator: NewBernoulliGroup(),
			Group:     FeatureGroup{Name: "gender", Start: 0, End: 1, Family: FamilyBernoulli},
		},
		{
			Estimator: NewCategoricalGroup(raceMaxCode),
			Group:     FeatureGroup{Name: "race", Start: 1, End: 2, Family: FamilyCategorical},
		},
		{
			Estimator: NewGaussianGroup(),
			Group:     FeatureGroup{Name: "age", Start: 2, End: 3, Family: FamilyGaussian},
		},
		{
			Estimator: NewBernoulliGroup(),
			Group:     FeatureGroup{Name: "symptoms", Start: encoding.NumDemographicFeatures, End: presenceEnd, Family: FamilyBernoulli, Sparse: true},
		},
	}

	names := []string{"nature", "location", "intensity", "excitation", "frequency"}
	start := presenceEnd
	for i, m := range encodings.Categorical() {
		pairs = append(pairs, MappedEstimator{
			Estimator: NewCategoricalGroup(m.MaxCode(), WithSkipZero()),
			Group:     FeatureGroup{Name: names[i], Start: start, End: start + numSymptoms, Family: FamilyCategorical, Sparse: true},
		})
		start += numSymptoms
	}

	pairs = append(pairs, MappedEstimator{
		Estimator: NewGaussianGroup(),
		Group:     FeatureGroup{Name: "nlice_continuous", Start: start, End: -1, Family: FamilyGaussian},
	})

	return NewClassifierMap(total, pairs...)
}

// categoricalEndColumn returns the first column after the five categorical
// sub-attribute blocks in the reordered NLICE layout.
func categoricalEndColumn(numSymptoms int) int {
	return encoding.NumDemographicFeatures + numSymptoms + encoding.NumCategoricalAttributes*numSymptoms
}

// ColumnOrder computes the permutation that moves the interleaved NLICE
// layout (one eight-column block per symptom) into family-contiguous blocks:
// demographics, all presence flags, then the categorical sub-attributes in
// the fixed order {nature, location, intensity, excitation, frequency}, then
// the continuous sub-attributes {duration, onset}. The result is pure index
// arithmetic: the same numSymptoms always yields the same permutation.
func ColumnOrder(numSymptoms int) []int {
	order := make([]int, 0, encoding.NumDemographicFeatures+encoding.ColumnsPerSymptom*numSymptoms)
	for i := 0; i < encoding.NumDemographicFeatures; i++ {
		order = append(order, i)
	}

	offsets := []int{
		encoding.OffsetPresence,
		encoding.OffsetNature,
		encoding.OffsetLocation,
		encoding.OffsetIntensity,
		encoding.OffsetExcitation,
		encoding.OffsetFrequency,
		encoding.OffsetDuration,
		encoding.OffsetOnset,
	}
	for _, off := range offsets {
		for s := 0; s < numSymptoms; s++ {
			order = append(order, encoding.NumDemographicFeatures+encoding.ColumnsPerSymptom*s+off)
		}
	}
	return order
}

// ReorderColumns returns a new matrix whose column j is X's column order[j].
func ReorderColumns(X mat.Matrix, order []int) (*mat.Dense, error) {
	r, c := X.Dims()
	if len(order) != c {
		return nil, errors.NewDimensionError("ReorderColumns", c, len(order), 1)
	}

	out := mat.NewDense(r, c, nil)
	for j, src := range order {
		if src < 0 || src >= c {
			return nil, errors.NewValueError("ReorderColumns", fmt.Sprintf("source column %d out of range", src))
		}
		for i := 0; i < r; i++ {
			out.Set(i, j, X.At(i, src))
		}
	}
	return out, nil
}

func maxCode(codes map[string]float64) int {
	max := 0
	for _, c := range codes {
		if int(c) > max {
			max = int(c)
		}
	}
	return max
}
