// Package metrics implements the binary classification scores used to rank and
// filter feature subsets.
//
// Every function takes the true labels first. Label-based scores take hard
// predictions (0/1); probability-based scores (AUC, BinaryLogLoss, BrierScore)
// take the predicted probability of the positive class.
package metrics

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/exhaustive/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const logLossEpsilon = 1e-15

func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError(op, "nil vector")
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

func checkBinary(op string, y *mat.VecDense) error {
	for i := 0; i < y.Len(); i++ {
		if v := y.AtVec(i); v != 0 && v != 1 {
			return errors.NewValueError(op, "labels must be binary (0 or 1)")
		}
	}
	return nil
}

// confusion counts true/false positives/negatives for binary labels.
type confusion struct {
	tp, tn, fp, fn int
}

func confusionOf(op string, yTrue, yPred *mat.VecDense) (confusion, error) {
	var c confusion
	n, err := checkPair(op, yTrue, yPred)
	if err != nil {
		return c, err
	}
	if err := checkBinary(op, yTrue); err != nil {
		return c, err
	}
	if err := checkBinary(op, yPred); err != nil {
		return c, err
	}
	for i := 0; i < n; i++ {
		switch t, p := yTrue.AtVec(i), yPred.AtVec(i); {
		case t == 1 && p == 1:
			c.tp++
		case t == 0 && p == 0:
			c.tn++
		case t == 0 && p == 1:
			c.fp++
		default:
			c.fn++
		}
	}
	return c, nil
}

// Accuracy is the fraction of exact label matches. Labels need not be binary.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// TPR is the true positive rate (sensitivity, recall). It is 0 with an
// UndefinedMetricWarning when yTrue holds no positives.
func TPR(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := confusionOf("TPR", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if c.tp+c.fn == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("TPR", "no positive samples", 0))
		return 0, nil
	}
	return float64(c.tp) / float64(c.tp+c.fn), nil
}

// TNR is the true negative rate (specificity). It is 0 with an
// UndefinedMetricWarning when yTrue holds no negatives.
func TNR(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := confusionOf("TNR", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if c.tn+c.fp == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("TNR", "no negative samples", 0))
		return 0, nil
	}
	return float64(c.tn) / float64(c.tn+c.fp), nil
}

// MinTPRTNR is min(TPR, TNR), a score that punishes classifiers biased to one class.
func MinTPRTNR(yTrue, yPred *mat.VecDense) (float64, error) {
	tpr, err := TPR(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	tnr, err := TNR(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Min(tpr, tnr), nil
}

// BalancedAccuracy is the mean of TPR and TNR over the classes present in yTrue.
func BalancedAccuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := confusionOf("BalancedAccuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	var sum float64
	var classes int
	if c.tp+c.fn > 0 {
		sum += float64(c.tp) / float64(c.tp+c.fn)
		classes++
	}
	if c.tn+c.fp > 0 {
		sum += float64(c.tn) / float64(c.tn+c.fp)
		classes++
	}
	return sum / float64(classes), nil
}

// AUC is the area under the ROC curve computed from the Mann-Whitney U
// statistic with average ranks for ties. It is 0.5 with an
// UndefinedMetricWarning when yTrue holds a single class.
func AUC(yTrue, yScore *mat.VecDense) (float64, error) {
	n, err := checkPair("AUC", yTrue, yScore)
	if err != nil {
		return 0, err
	}
	if err := checkBinary("AUC", yTrue); err != nil {
		return 0, err
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return yScore.AtVec(idx[a]) < yScore.AtVec(idx[b])
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && yScore.AtVec(idx[j+1]) == yScore.AtVec(idx[i]) {
			j++
		}
		avg := float64(i+j)/2 + 1
		for m := i; m <= j; m++ {
			ranks[idx[m]] = avg
		}
		i = j + 1
	}

	var nPos, nNeg int
	var rankSum float64
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			nPos++
			rankSum += ranks[i]
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("AUC", "only one class present in y_true", 0.5))
		return 0.5, nil
	}

	u := rankSum - float64(nPos*(nPos+1))/2
	return u / float64(nPos*nNeg), nil
}

// BinaryLogLoss is the mean negative log-likelihood of the positive-class
// probabilities, clipped to [eps, 1-eps].
func BinaryLogLoss(yTrue, yProb *mat.VecDense) (float64, error) {
	n, err := checkPair("BinaryLogLoss", yTrue, yProb)
	if err != nil {
		return 0, err
	}
	if err := checkBinary("BinaryLogLoss", yTrue); err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		p := errors.ClipValue(yProb.AtVec(i), logLossEpsilon, 1-logLossEpsilon)
		if yTrue.AtVec(i) == 1 {
			sum -= math.Log(p)
		} else {
			sum -= math.Log(1 - p)
		}
	}
	return sum / float64(n), nil
}

// BrierScore is the mean squared difference between labels and positive-class probabilities.
func BrierScore(yTrue, yProb *mat.VecDense) (float64, error) {
	n, err := checkPair("BrierScore", yTrue, yProb)
	if err != nil {
		return 0, err
	}
	if err := checkBinary("BrierScore", yTrue); err != nil {
		return 0, err
	}

	diff := mat.NewVecDense(n, nil)
	diff.SubVec(yTrue, yProb)
	return mat.Dot(diff, diff) / float64(n), nil
}
