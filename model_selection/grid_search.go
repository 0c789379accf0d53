package model_selection

import (
	"github.com/YuminosukeSato/exhaustive/core/model"
	"github.com/YuminosukeSato/exhaustive/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ModelFactory builds an unfitted classifier configured with params.
type ModelFactory func(params map[string]any) (model.Classifier, error)

// ScoreFunc scores a fitted classifier on held-out rows. Higher is better.
type ScoreFunc func(clf model.Classifier, X, y mat.Matrix) (float64, error)

// GridSearchCV picks the grid combination with the highest mean
// cross-validation score. Ties keep the first combination in grid order.
type GridSearchCV struct {
	Factory  ModelFactory
	Grid     ParamGrid
	Splitter Splitter
	Score    ScoreFunc

	// Refit trains BestEstimator on all rows after the search.
	Refit bool

	BestParams    map[string]any
	BestScore     float64
	BestIndex     int
	MeanScores    []float64
	BestEstimator model.Classifier
}

// NewGridSearchCV creates a refitting grid search.
func NewGridSearchCV(factory ModelFactory, grid ParamGrid, splitter Splitter, score ScoreFunc) *GridSearchCV {
	return &GridSearchCV{
		Factory:  factory,
		Grid:     grid,
		Splitter: splitter,
		Score:    score,
		Refit:    true,
	}
}

// Fit runs the search. InsufficientDataError from the splitter is returned
// unwrapped so callers can treat it as a skip.
func (gs *GridSearchCV) Fit(X, y mat.Matrix) error {
	if gs.Factory == nil || gs.Splitter == nil || gs.Score == nil {
		return errors.NewValueError("GridSearchCV.Fit", "factory, splitter and score are required")
	}
	if err := gs.Grid.Validate(); err != nil {
		return err
	}

	folds, err := gs.Splitter.Split(X, y)
	if err != nil {
		return err
	}

	combos := gs.Grid.Combinations()
	gs.MeanScores = make([]float64, len(combos))
	gs.BestIndex = -1
	foldScores := make([]float64, len(folds))

	for ci, params := range combos {
		for fi, fold := range folds {
			score, err := gs.scoreFold(params, fold, X, y)
			if err != nil {
				return errors.Wrapf(err, "grid search: fold %d with %s", fi, gs.Grid.FormatParams(params))
			}
			foldScores[fi] = score
		}
		mean := stat.Mean(foldScores, nil)
		gs.MeanScores[ci] = mean
		if gs.BestIndex < 0 || mean > gs.BestScore {
			gs.BestIndex = ci
			gs.BestScore = mean
		}
	}
	gs.BestParams = combos[gs.BestIndex]

	if !gs.Refit {
		return nil
	}
	best, err := gs.Factory(gs.BestParams)
	if err != nil {
		return err
	}
	if err := best.Fit(X, y); err != nil {
		return errors.Wrapf(err, "grid search: refit with %s", gs.Grid.FormatParams(gs.BestParams))
	}
	gs.BestEstimator = best
	return nil
}

func (gs *GridSearchCV) scoreFold(params map[string]any, fold CVFold, X, y mat.Matrix) (float64, error) {
	clf, err := gs.Factory(params)
	if err != nil {
		return 0, err
	}
	Xtr, ytr := takeRows(X, fold.TrainIndices), takeRows(y, fold.TrainIndices)
	if err := clf.Fit(Xtr, ytr); err != nil {
		return 0, err
	}
	return gs.Score(clf, takeRows(X, fold.TestIndices), takeRows(y, fold.TestIndices))
}

// takeRows copies the given rows of m into a new matrix.
func takeRows(m mat.Matrix, rows []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(rows), c, nil)
	for i, r := range rows {
		for j := 0; j < c; j++ {
			out.Set(i, j, m.At(r, j))
		}
	}
	return out
}
