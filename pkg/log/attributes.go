// Package log defines standard attribute keys for training and scoring runs.
//
// Using these keys keeps run logs consistent and filterable: every phase of a
// training run (encoding, splitting, fitting, scoring) reports under the same
// attribute names.
package log

// Model and operation context.
const (
	// ModelNameKey identifies the classifier type.
	// Examples: "SparseNaiveBayes", "RandomForest"
	ModelNameKey = "model.name"

	// OperationKey specifies the machine learning operation being performed.
	// Standard values: "fit", "predict", "transform", "score"
	OperationKey = "ml.operation"

	// VariantKey names the encoding variant of a run.
	// Values: "basic", "nlice", "advanced"
	VariantKey = "ml.variant"

	// PhaseKey indicates the phase of a training run.
	// Examples: "encoding", "splitting", "training", "scoring"
	PhaseKey = "ml.phase"
)

// Data shape and characteristics.
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of encoded feature columns.
	FeaturesKey = "data.features"

	// SymptomsKey indicates the vocabulary size of a run.
	SymptomsKey = "data.symptoms"

	// ClassesKey indicates the number of distinct condition labels.
	ClassesKey = "data.classes"
)

// Performance and scoring.
const (
	// DurationSecondsKey records the execution time of a phase in seconds.
	DurationSecondsKey = "perf.duration_seconds"

	// MetricKey names the metric being reported.
	MetricKey = "metrics.name"

	// TrainScoreKey and TestScoreKey record a metric's train/test values.
	TrainScoreKey = "metrics.train"
	TestScoreKey  = "metrics.test"

	// FoldKey records the cross-validation fold index.
	FoldKey = "cv.fold"
)

// Standard attribute value constants for common operations.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationScore     = "score"

	PhaseEncoding  = "encoding"
	PhaseSplitting = "splitting"
	PhaseTraining  = "training"
	PhaseScoring   = "scoring"
)
