package preprocessing

import (
	"sort"

	"github.com/aimedlab/symdx/core/model"
	"github.com/aimedlab/symdx/pkg/errors"
)

// LabelEncoder は条件ラベル（文字列）を安定したクラスコードに変換する
//
// クラスコードはラベルのソート順で割り当てられるため、同じラベル集合からは
// 常に同じコードが得られる。
type LabelEncoder struct {
	model.BaseEstimator

	// ClassToCode はラベルからクラスコードへの写像
	ClassToCode map[string]int

	// CodeToClass はソート済みのラベル一覧（添字がクラスコード）
	CodeToClass []string
}

// NewLabelEncoder は新しいLabelEncoderを作成する
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{
		ClassToCode: make(map[string]int),
	}
}

// Fit はラベル集合からクラスコードの写像を構築する
func (le *LabelEncoder) Fit(labels []string) error {
	if len(labels) == 0 {
		return errors.NewModelError("LabelEncoder.Fit", "empty labels", errors.ErrEmptyData)
	}

	unique := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		unique[label] = struct{}{}
	}

	le.CodeToClass = make([]string, 0, len(unique))
	for label := range unique {
		le.CodeToClass = append(le.CodeToClass, label)
	}
	sort.Strings(le.CodeToClass)

	le.ClassToCode = make(map[string]int, len(le.CodeToClass))
	for code, label := range le.CodeToClass {
		le.ClassToCode[label] = code
	}

	le.SetFitted()
	return nil
}

// Transform はラベル列をクラスコード列に変換する
func (le *LabelEncoder) Transform(labels []string) ([]float64, error) {
	if !le.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "Transform")
	}

	codes := make([]float64, len(labels))
	for i, label := range labels {
		code, ok := le.ClassToCode[label]
		if !ok {
			return nil, errors.NewEncodingError("LABEL", label, "not seen during fit")
		}
		codes[i] = float64(code)
	}
	return codes, nil
}

// FitTransform は学習と変換を同時に実行する
func (le *LabelEncoder) FitTransform(labels []string) ([]float64, error) {
	if err := le.Fit(labels); err != nil {
		return nil, err
	}
	return le.Transform(labels)
}

// InverseTransform はクラスコード列をラベル列に戻す
func (le *LabelEncoder) InverseTransform(codes []float64) ([]string, error) {
	if !le.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "InverseTransform")
	}

	labels := make([]string, len(codes))
	for i, code := range codes {
		idx := int(code)
		if idx < 0 || idx >= len(le.CodeToClass) || float64(idx) != code {
			return nil, errors.NewValueError("LabelEncoder.InverseTransform", "class code out of range")
		}
		labels[i] = le.CodeToClass[idx]
	}
	return labels, nil
}

// NClasses は学習されたクラス数を返す
func (le *LabelEncoder) NClasses() int {
	return len(le.CodeToClass)
}
