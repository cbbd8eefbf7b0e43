// Package metrics provides the classification metrics used to score the
// diagnosis models: accuracy, support-weighted precision/recall/F1 and
// top-k ranking accuracy.
package metrics

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/aimedlab/symdx/pkg/errors"
)

// Accuracy は正解率を計算する
//
// yTrue, yPred は (n x 1) のクラスコード行列。
func Accuracy(yTrue, yPred mat.Matrix) (float64, error) {
	n, err := checkPair(yTrue, yPred)
	if err != nil {
		return 0, err
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.At(i, 0) == yPred.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ConfusionMatrix counts (true class, predicted class) pairs. The returned
// classes are the sorted union of the codes in both inputs; matrix rows are
// true classes, columns predicted.
func ConfusionMatrix(yTrue, yPred mat.Matrix) (*mat.Dense, []float64, error) {
	n, err := checkPair(yTrue, yPred)
	if err != nil {
		return nil, nil, err
	}

	pos := make(map[float64]int)
	for i := 0; i < n; i++ {
		pos[yTrue.At(i, 0)] = 0
		pos[yPred.At(i, 0)] = 0
	}
	classes := make([]float64, 0, len(pos))
	for label := range pos {
		classes = append(classes, label)
	}
	sort.Float64s(classes)
	for i, label := range classes {
		pos[label] = i
	}

	cm := mat.NewDense(len(classes), len(classes), nil)
	for i := 0; i < n; i++ {
		t := pos[yTrue.At(i, 0)]
		p := pos[yPred.At(i, 0)]
		cm.Set(t, p, cm.At(t, p)+1)
	}
	return cm, classes, nil
}

// WeightedPrecision averages per-class precision weighted by true-class
// support. Classes never predicted contribute precision zero.
func WeightedPrecision(yTrue, yPred mat.Matrix) (float64, error) {
	cm, classes, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return weightedAverage(cm, classes, func(c int, cm *mat.Dense) float64 {
		predicted := 0.0
		for t := range classes {
			predicted += cm.At(t, c)
		}
		return errors.SafeDivide(cm.At(c, c), predicted)
	})
}

// WeightedRecall averages per-class recall weighted by true-class support.
func WeightedRecall(yTrue, yPred mat.Matrix) (float64, error) {
	cm, classes, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return weightedAverage(cm, classes, func(c int, cm *mat.Dense) float64 {
		support := 0.0
		for p := range classes {
			support += cm.At(c, p)
		}
		return errors.SafeDivide(cm.At(c, c), support)
	})
}

// WeightedF1 averages per-class F1 weighted by true-class support.
func WeightedF1(yTrue, yPred mat.Matrix) (float64, error) {
	cm, classes, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return weightedAverage(cm, classes, func(c int, cm *mat.Dense) float64 {
		predicted, support := 0.0, 0.0
		for i := range classes {
			predicted += cm.At(i, c)
			support += cm.At(c, i)
		}
		precision := errors.SafeDivide(cm.At(c, c), predicted)
		recall := errors.SafeDivide(cm.At(c, c), support)
		return errors.SafeDivide(2*precision*recall, precision+recall)
	})
}

// weightedAverage computes sum(metric_c * support_c) / sum(support_c).
func weightedAverage(cm *mat.Dense, classes []float64, metric func(c int, cm *mat.Dense) float64) (float64, error) {
	total := 0.0
	weighted := 0.0
	for c := range classes {
		support := 0.0
		for p := range classes {
			support += cm.At(c, p)
		}
		weighted += metric(c, cm) * support
		total += support
	}
	if total == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "weighted metric")
	}
	return weighted / total, nil
}

func checkPair(yTrue, yPred mat.Matrix) (int, error) {
	tRows, tCols := yTrue.Dims()
	pRows, pCols := yPred.Dims()
	if tCols != 1 || pCols != 1 {
		return 0, errors.NewInputShapeError("metric", []int{tRows, 1}, []int{pRows, pCols})
	}
	if tRows != pRows {
		return 0, errors.NewDimensionError("metric", tRows, pRows, 0)
	}
	if tRows == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "metric")
	}
	return tRows, nil
}
