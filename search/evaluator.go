package search

import (
	"github.com/YuminosukeSato/exhaustive/dataset"
	"github.com/YuminosukeSato/exhaustive/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Evaluator scores a fitted subset on every (dataset, partition) group and
// applies the filtration gate.
type Evaluator struct {
	Data      *dataset.Data
	Scorers   []Scorer
	Main      string
	Threshold float64
}

// Evaluate returns the subset's scores and whether it passed: any Training or
// Filtration dataset scoring below Threshold on the main scorer vetoes it.
// Validation scores are recorded but never gate.
func (e *Evaluator) Evaluate(fm *FittedModel, subset Subset) (Record, bool, error) {
	rec := Record{
		Subset: subset,
		Scores: make(map[string]float64, len(e.Scorers)*len(e.Data.Groups())),
		Params: fm.Params,
	}
	passed := true

	for _, g := range e.Data.Groups() {
		X, y, err := e.Data.Slice(g.Rows, subset)
		if err != nil {
			return Record{}, false, err
		}
		Xt, err := fm.Transform(X)
		if err != nil {
			return Record{}, false, errors.Wrapf(err, "transforming dataset %s", g.Dataset)
		}

		yTrue := column(y, 0)
		var labels, proba *mat.VecDense
		for _, s := range e.Scorers {
			var yPred *mat.VecDense
			if s.NeedsProba {
				if proba == nil {
					if proba, err = s.predict(fm.Classifier, Xt); err != nil {
						return Record{}, false, err
					}
				}
				yPred = proba
			} else {
				if labels == nil {
					if labels, err = s.predict(fm.Classifier, Xt); err != nil {
						return Record{}, false, err
					}
				}
				yPred = labels
			}

			score, err := s.Fn(yTrue, yPred)
			if err != nil {
				return Record{}, false, errors.Wrapf(err, "scoring %s on dataset %s", s.Name, g.Dataset)
			}
			rec.Scores[ScoreColumn(g.Dataset, s.Name)] = score

			if s.Name == e.Main && g.Partition.Gates() && !(score >= e.Threshold) {
				passed = false
			}
		}
	}
	return rec, passed, nil
}
