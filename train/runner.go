package train

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/aimedlab/symdx/core/model"
	"github.com/aimedlab/symdx/encoding"
	"github.com/aimedlab/symdx/ensemble"
	"github.com/aimedlab/symdx/evaluation"
	"github.com/aimedlab/symdx/naivebayes"
	"github.com/aimedlab/symdx/pkg/errors"
	symlog "github.com/aimedlab/symdx/pkg/log"
	"github.com/aimedlab/symdx/preprocessing"
)

// Variant selects the encoding and partitioning scheme of a run.
type Variant string

const (
	VariantBasic    Variant = "basic"
	VariantNLICE    Variant = "nlice"
	VariantAdvanced Variant = "advanced"
)

// ParseVariant validates a variant name from the command line.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantBasic, VariantNLICE, VariantAdvanced:
		return Variant(s), nil
	default:
		return "", errors.NewValidationError("variant", "must be basic, nlice or advanced", s)
	}
}

// Config describes one training run.
type Config struct {
	Variant        Variant
	DataPath       string
	VocabularyPath string
	OutputDir      string
	RunName        string

	// CVSplits stratified shuffle splits with TestSize held out each.
	CVSplits int
	TestSize float64
	Seed     uint64

	RF ensemble.RFParams

	Logger *slog.Logger
}

func (cfg *Config) withDefaults() Config {
	out := *cfg
	if out.CVSplits < 1 {
		out.CVSplits = 5
	}
	if out.TestSize <= 0 || out.TestSize >= 1 {
		out.TestSize = 0.2
	}
	if out.RunName == "" {
		out.RunName = fmt.Sprintf("%s_run", out.Variant)
	}
	if out.RF.NTrees == 0 {
		out.RF = ensemble.DefaultRFParams()
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return out
}

// MetricSummary aggregates one metric's test scores across folds.
type MetricSummary struct {
	Mean    float64   `json:"mean"`
	Std     float64   `json:"std"`
	PerFold []float64 `json:"per_fold"`
}

// RunResult is the JSON report written next to the model artifact.
type RunResult struct {
	RunName      string  `json:"run_name"`
	ModelName    string  `json:"model_name"`
	Variant      Variant `json:"variant"`
	Samples      int     `json:"samples"`
	Features     int     `json:"features"`
	Symptoms     int     `json:"symptoms"`
	Classes      int     `json:"classes"`
	SelectedFold int     `json:"selected_fold"`

	Metrics map[string]MetricSummary `json:"metrics"`
	Folds   []evaluation.FoldResult  `json:"folds"`

	ModelPath       string   `json:"model_path"`
	ResultPath      string   `json:"result_path"`
	ClassNames      []string `json:"class_names"`
	DurationSeconds float64  `json:"duration_seconds"`
}

// encoded is the prepared training input of one run.
type encoded struct {
	X       *mat.Dense
	Y       *mat.Dense
	Labels  *preprocessing.LabelEncoder
	Vocab   *encoding.Vocabulary
	Samples int
}

// prepare loads the vocabulary and dataset, encodes the records for the
// configured variant and label-encodes the conditions. NLICE layouts are
// reordered into family-contiguous blocks here, so the classifier maps can
// assume the grouped column order.
func prepare(cfg Config) (*encoded, error) {
	vocab, err := encoding.LoadVocabulary(cfg.VocabularyPath)
	if err != nil {
		return nil, err
	}
	ds, err := LoadDataset(cfg.DataPath)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var X *mat.Dense
	switch cfg.Variant {
	case VariantBasic:
		maker := encoding.NewSparseMaker(vocab)
		X, err = maker.FitTransform(ds.Records)
	case VariantNLICE, VariantAdvanced:
		maker := encoding.NewNLICESparseMaker(vocab, encoding.DefaultNLICEEncodings)
		X, err = maker.FitTransform(ds.Records)
		if err == nil {
			X, err = naivebayes.ReorderColumns(X, naivebayes.ColumnOrder(vocab.Len()))
		}
	default:
		return nil, errors.NewValidationError("variant", "unknown variant", cfg.Variant)
	}
	if err != nil {
		return nil, err
	}

	labelEnc := preprocessing.NewLabelEncoder()
	codes, err := labelEnc.FitTransform(ds.Labels)
	if err != nil {
		return nil, err
	}
	y := mat.NewDense(len(codes), 1, codes)

	_, features := X.Dims()
	cfg.Logger.Info("dataset encoded",
		slog.String(symlog.PhaseKey, symlog.PhaseEncoding),
		slog.String(symlog.VariantKey, string(cfg.Variant)),
		slog.Int(symlog.SamplesKey, len(ds.Records)),
		slog.Int(symlog.FeaturesKey, features),
		slog.Int(symlog.SymptomsKey, vocab.Len()),
		slog.Int(symlog.ClassesKey, labelEnc.NClasses()),
		slog.Float64(symlog.DurationSecondsKey, time.Since(start).Seconds()),
	)

	return &encoded{X: X, Y: y, Labels: labelEnc, Vocab: vocab, Samples: len(ds.Records)}, nil
}

// classifierMap builds the variant's partition over the encoded width.
func classifierMap(variant Variant, numSymptoms int) (*naivebayes.ClassifierMap, error) {
	switch variant {
	case VariantBasic:
		return naivebayes.NewBasicClassifierMap(numSymptoms)
	case VariantNLICE:
		return naivebayes.NewNLICEClassifierMap(numSymptoms, encoding.DefaultNLICEEncodings)
	case VariantAdvanced:
		return naivebayes.NewAdvancedClassifierMap(numSymptoms, encoding.DefaultNLICEEncodings)
	default:
		return nil, errors.NewValidationError("variant", "unknown variant", variant)
	}
}

// TrainNaiveBayes runs the full naive Bayes pipeline for the configured
// variant and writes the scores plus the representative fold's model.
func TrainNaiveBayes(cfg Config) (*RunResult, error) {
	cfg = cfg.withDefaults()

	data, err := prepare(cfg)
	if err != nil {
		return nil, err
	}

	cmap, err := classifierMap(cfg.Variant, data.Vocab.Len())
	if err != nil {
		return nil, err
	}
	base := naivebayes.NewSparseNaiveBayes(cmap)

	return run(cfg, data, "SparseNaiveBayes", func() model.Classifier {
		return base.Clone()
	})
}

// TrainRandomForest runs the random-forest baseline on the same encoding.
func TrainRandomForest(cfg Config) (*RunResult, error) {
	cfg = cfg.withDefaults()

	data, err := prepare(cfg)
	if err != nil {
		return nil, err
	}

	return run(cfg, data, "RandomForest", func() model.Classifier {
		return ensemble.NewRandomForest(cfg.RF)
	})
}

// run cross-validates the classifier, keeps the fold closest to the mean
// accuracy and writes both artifacts.
func run(cfg Config, data *encoded, modelName string, newClf func() model.Classifier) (*RunResult, error) {
	start := time.Now()
	logger := cfg.Logger.With(
		slog.String(symlog.ModelNameKey, modelName),
		slog.String(symlog.VariantKey, string(cfg.Variant)),
	)

	splitter := evaluation.NewStratifiedShuffleSplit(cfg.CVSplits, cfg.TestSize, cfg.Seed)
	logger.Info("cross-validation started",
		slog.String(symlog.PhaseKey, symlog.PhaseTraining),
		slog.Int("cv.splits", cfg.CVSplits),
	)

	scoring := evaluation.DefaultMetrics()
	cv, models, err := evaluation.CrossValidate(newClf, data.X, data.Y, splitter, scoring)
	if err != nil {
		logger.Error("cross-validation failed", symlog.ErrAttr(err))
		return nil, err
	}

	for _, fold := range cv.Folds {
		logger.Info("fold scored",
			slog.String(symlog.PhaseKey, symlog.PhaseScoring),
			slog.Int(symlog.FoldKey, fold.Fold),
			slog.Float64(symlog.TrainScoreKey, fold.TrainScores["accuracy"]),
			slog.Float64(symlog.TestScoreKey, fold.TestScores["accuracy"]),
		)
	}

	selected, err := cv.SelectClosestToMean("accuracy")
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating output dir %s", cfg.OutputDir)
	}

	prefix := filepath.Join(cfg.OutputDir, cfg.RunName+"_"+modelName)
	modelPath := prefix + ".gob"
	persistable, ok := models[selected].(model.Persistable)
	if !ok {
		return nil, errors.NewModelError("run", "model is not persistable", nil)
	}
	if err := persistable.Save(modelPath); err != nil {
		return nil, errors.Wrapf(err, "saving model %s", modelPath)
	}

	_, features := data.X.Dims()
	result := &RunResult{
		RunName:         cfg.RunName,
		ModelName:       modelName,
		Variant:         cfg.Variant,
		Samples:         data.Samples,
		Features:        features,
		Symptoms:        data.Vocab.Len(),
		Classes:         data.Labels.NClasses(),
		SelectedFold:    selected,
		Metrics:         make(map[string]MetricSummary, len(scoring)),
		Folds:           cv.Folds,
		ModelPath:       modelPath,
		ResultPath:      prefix + ".json",
		ClassNames:      append([]string(nil), data.Labels.CodeToClass...),
		DurationSeconds: time.Since(start).Seconds(),
	}
	for _, m := range scoring {
		perFold := make([]float64, len(cv.Folds))
		for i, fold := range cv.Folds {
			perFold[i] = fold.TestScores[m.Name]
		}
		result.Metrics[m.Name] = MetricSummary{
			Mean:    cv.MeanTestScore(m.Name),
			Std:     cv.StdTestScore(m.Name),
			PerFold: perFold,
		}
	}

	if err := writeResult(result); err != nil {
		return nil, err
	}

	logger.Info("run finished",
		slog.String(symlog.PhaseKey, symlog.PhaseScoring),
		slog.Int(symlog.FoldKey, selected),
		slog.Float64(symlog.TestScoreKey, result.Metrics["accuracy"].Mean),
		slog.Float64(symlog.DurationSecondsKey, result.DurationSeconds),
	)
	return result, nil
}

func writeResult(result *RunResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding run result")
	}
	if err := os.WriteFile(result.ResultPath, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing run result %s", result.ResultPath)
	}
	return nil
}
