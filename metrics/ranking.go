package metrics

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/aimedlab/symdx/pkg/errors"
)

// TopKAccuracy is the fraction of rows whose true class appears among the k
// highest-scoring classes of proba. classes maps proba columns to class
// codes, in the classifier's Classes() order. Scores tie toward the
// lower-indexed column, matching argmax prediction. k is clamped to the
// number of classes.
func TopKAccuracy(yTrue mat.Matrix, proba mat.Matrix, classes []float64, k int) (float64, error) {
	if k < 1 {
		return 0, errors.NewValidationError("k", "must be at least 1", k)
	}
	n, nCols := proba.Dims()
	if nCols != len(classes) {
		return 0, errors.NewDimensionError("TopKAccuracy", len(classes), nCols, 1)
	}
	yRows, yCols := yTrue.Dims()
	if yRows != n || yCols != 1 {
		return 0, errors.NewInputShapeError("metric", []int{n, 1}, []int{yRows, yCols})
	}
	if n == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "TopKAccuracy")
	}
	if k > nCols {
		k = nCols
	}

	order := make([]int, nCols)
	hits := 0
	for i := 0; i < n; i++ {
		for c := range order {
			order[c] = c
		}
		row := i
		sort.SliceStable(order, func(a, b int) bool {
			return proba.At(row, order[a]) > proba.At(row, order[b])
		})

		label := yTrue.At(i, 0)
		for _, c := range order[:k] {
			if classes[c] == label {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(n), nil
}
