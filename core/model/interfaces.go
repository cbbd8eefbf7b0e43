// Package model provides the shared estimator interfaces and fitted-state
// machinery that every classifier in this repository builds on.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Transformer is the interface for components that map one feature
// representation onto another.
type Transformer interface {
	Transform(X mat.Matrix) (mat.Matrix, error)
}

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the mean accuracy of the prediction.
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// Classifier combines the interfaces every classification model in this
// repository satisfies. Classes returns the sorted class codes seen during
// fitting; PredictProba rows are aligned with that order.
type Classifier interface {
	Fitter
	Predictor
	Scorer

	// PredictProba returns probability estimates for each class.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the unique class codes seen during fitting.
	Classes() []float64
}

// LogProbClassifier is satisfied by classifiers that expose unnormalized
// log-posterior scores in addition to probabilities.
type LogProbClassifier interface {
	Classifier

	// PredictLogProba returns per-class log-probability scores.
	PredictLogProba(X mat.Matrix) (mat.Matrix, error)
}

// Persistable is the interface for models that can be saved and loaded.
type Persistable interface {
	// Save saves the model to a file.
	Save(path string) error

	// Load loads the model from a file.
	Load(path string) error
}
