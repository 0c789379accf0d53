// Package registry maps the names used in run configurations to scorers,
// classifiers, preprocessors and feature selectors.
package registry

import (
	"maps"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/exhaustive/metrics"
	"github.com/YuminosukeSato/exhaustive/search"
)

type scoreFunc = func(yTrue, yPred *mat.VecDense) (float64, error)

// negated turns a loss into a score where larger is better.
func negated(fn scoreFunc) scoreFunc {
	return func(yTrue, yPred *mat.VecDense) (float64, error) {
		v, err := fn(yTrue, yPred)
		return -v, err
	}
}

var scorers = map[string]search.Scorer{
	"accuracy":          {Name: "accuracy", Fn: metrics.Accuracy},
	"balanced_accuracy": {Name: "balanced_accuracy", Fn: metrics.BalancedAccuracy},
	"TPR":               {Name: "TPR", Fn: metrics.TPR},
	"TNR":               {Name: "TNR", Fn: metrics.TNR},
	"min_TPR_TNR":       {Name: "min_TPR_TNR", Fn: metrics.MinTPRTNR},
	"ROC_AUC":           {Name: "ROC_AUC", NeedsProba: true, Fn: metrics.AUC},
	"log_loss_neg":      {Name: "log_loss_neg", NeedsProba: true, Fn: negated(metrics.BinaryLogLoss)},
	"brier_neg":         {Name: "brier_neg", NeedsProba: true, Fn: negated(metrics.BrierScore)},
}

// ScorerNames lists the registered scorers.
func ScorerNames() []string { return slices.Sorted(maps.Keys(scorers)) }

// Scorer returns the scorer registered under name.
func Scorer(name string) (search.Scorer, error) {
	s, ok := scorers[name]
	if !ok {
		return search.Scorer{}, unknownName("scoring_functions", name, keySet(scorers))
	}
	return s, nil
}

// Scorers resolves names in order.
func Scorers(names []string) ([]search.Scorer, error) {
	out := make([]search.Scorer, 0, len(names))
	for _, n := range names {
		s, err := Scorer(n)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func keySet[V any](m map[string]V) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}
