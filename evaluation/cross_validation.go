package evaluation

import (
	"math"
	"strconv"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/aimedlab/symdx/core/model"
	"github.com/aimedlab/symdx/metrics"
	"github.com/aimedlab/symdx/pkg/errors"
)

// Metric names a scoring function evaluated on a fitted classifier.
type Metric struct {
	Name  string
	Score func(clf model.Classifier, X, y mat.Matrix) (float64, error)
}

// AccuracyMetric scores plain prediction accuracy.
func AccuracyMetric() Metric {
	return Metric{
		Name: "accuracy",
		Score: func(clf model.Classifier, X, y mat.Matrix) (float64, error) {
			pred, err := clf.Predict(X)
			if err != nil {
				return 0, err
			}
			return metrics.Accuracy(y, pred)
		},
	}
}

// WeightedPrecisionMetric scores support-weighted precision.
func WeightedPrecisionMetric() Metric {
	return Metric{
		Name: "precision_weighted",
		Score: func(clf model.Classifier, X, y mat.Matrix) (float64, error) {
			pred, err := clf.Predict(X)
			if err != nil {
				return 0, err
			}
			return metrics.WeightedPrecision(y, pred)
		},
	}
}

// WeightedRecallMetric scores support-weighted recall.
func WeightedRecallMetric() Metric {
	return Metric{
		Name: "recall_weighted",
		Score: func(clf model.Classifier, X, y mat.Matrix) (float64, error) {
			pred, err := clf.Predict(X)
			if err != nil {
				return 0, err
			}
			return metrics.WeightedRecall(y, pred)
		},
	}
}

// TopKMetric scores the fraction of rows whose true class ranks in the top
// k predicted probabilities.
func TopKMetric(k int) Metric {
	return Metric{
		Name: topKName(k),
		Score: func(clf model.Classifier, X, y mat.Matrix) (float64, error) {
			proba, err := clf.PredictProba(X)
			if err != nil {
				return 0, err
			}
			return metrics.TopKAccuracy(y, proba, clf.Classes(), k)
		},
	}
}

func topKName(k int) string {
	return "top" + strconv.Itoa(k)
}

// DefaultMetrics is the scoring suite of the training runners.
func DefaultMetrics() []Metric {
	return []Metric{
		AccuracyMetric(),
		WeightedPrecisionMetric(),
		WeightedRecallMetric(),
		TopKMetric(5),
	}
}

// FoldResult holds the per-metric train and test scores of one fold.
type FoldResult struct {
	Fold        int                `json:"fold"`
	TrainScores map[string]float64 `json:"train_scores"`
	TestScores  map[string]float64 `json:"test_scores"`
}

// CVResult aggregates cross-validation scores across folds.
type CVResult struct {
	Folds []FoldResult
}

// MeanTestScore returns the mean test score of one metric across folds.
func (cv *CVResult) MeanTestScore(metric string) float64 {
	if len(cv.Folds) == 0 {
		return 0
	}
	sum := 0.0
	for _, f := range cv.Folds {
		sum += f.TestScores[metric]
	}
	return sum / float64(len(cv.Folds))
}

// StdTestScore returns the sample standard deviation of one metric's test
// scores across folds.
func (cv *CVResult) StdTestScore(metric string) float64 {
	if len(cv.Folds) <= 1 {
		return 0
	}
	mean := cv.MeanTestScore(metric)
	sumSq := 0.0
	for _, f := range cv.Folds {
		d := f.TestScores[metric] - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(cv.Folds)-1))
}

// SelectClosestToMean returns the index of the fold whose test score on the
// given metric lies closest to the cross-fold mean. Ties go to the earliest
// fold. This is the fold whose model is kept as the run's representative
// artifact.
func (cv *CVResult) SelectClosestToMean(metric string) (int, error) {
	if len(cv.Folds) == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "SelectClosestToMean")
	}
	mean := cv.MeanTestScore(metric)
	best := 0
	bestDist := math.Abs(cv.Folds[0].TestScores[metric] - mean)
	for i := 1; i < len(cv.Folds); i++ {
		if d := math.Abs(cv.Folds[i].TestScores[metric] - mean); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, nil
}

// CrossValidate fits one fresh classifier per fold and scores every metric
// on both splits. Folds run concurrently; the first fold error aborts the
// whole run. newClf must return an unfitted classifier on every call.
func CrossValidate(newClf func() model.Classifier, X, y mat.Matrix, splitter Splitter, scoring []Metric) (*CVResult, []model.Classifier, error) {
	folds, err := splitter.Split(X, y)
	if err != nil {
		return nil, nil, err
	}
	if len(scoring) == 0 {
		scoring = DefaultMetrics()
	}

	results := make([]FoldResult, len(folds))
	models := make([]model.Classifier, len(folds))
	foldErrs := make([]error, len(folds))

	var wg sync.WaitGroup
	for foldIdx := range folds {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			fold := folds[idx]
			trainX, trainY := ExtractSubset(X, y, fold.TrainIndices)
			testX, testY := ExtractSubset(X, y, fold.TestIndices)

			clf := newClf()
			if err := clf.Fit(trainX, trainY); err != nil {
				foldErrs[idx] = errors.Wrapf(err, "fold %d training failed", idx)
				return
			}
			models[idx] = clf

			result := FoldResult{
				Fold:        idx,
				TrainScores: make(map[string]float64, len(scoring)),
				TestScores:  make(map[string]float64, len(scoring)),
			}
			for _, m := range scoring {
				trainScore, err := m.Score(clf, trainX, trainY)
				if err != nil {
					foldErrs[idx] = errors.Wrapf(err, "fold %d metric %q on train split", idx, m.Name)
					return
				}
				testScore, err := m.Score(clf, testX, testY)
				if err != nil {
					foldErrs[idx] = errors.Wrapf(err, "fold %d metric %q on test split", idx, m.Name)
					return
				}
				result.TrainScores[m.Name] = trainScore
				result.TestScores[m.Name] = testScore
			}
			results[idx] = result
		}(foldIdx)
	}
	wg.Wait()

	for _, err := range foldErrs {
		if err != nil {
			return nil, nil, err
		}
	}
	return &CVResult{Folds: results}, models, nil
}
