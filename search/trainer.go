package search

import (
	"github.com/YuminosukeSato/exhaustive/core/model"
	"github.com/YuminosukeSato/exhaustive/dataset"
	"github.com/YuminosukeSato/exhaustive/model_selection"
	"github.com/YuminosukeSato/exhaustive/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// PreprocessorFactory returns a fresh, unfitted preprocessor. A nil factory
// means no preprocessing.
type PreprocessorFactory func() model.Transformer

// ModelFactory returns an unfitted classifier configured with params, which
// hold the fixed classifier kwargs overlaid with one grid combination.
type ModelFactory = model_selection.ModelFactory

// FittedModel is the trained classifier of one subset together with the
// preprocessor fitted on its training slice.
type FittedModel struct {
	Classifier   model.Classifier
	Preprocessor model.Transformer
	Params       map[string]any
}

// Transform applies the fitted preprocessor, or returns X when there is none.
func (fm *FittedModel) Transform(X mat.Matrix) (mat.Matrix, error) {
	if fm.Preprocessor == nil {
		return X, nil
	}
	return fm.Preprocessor.Transform(X)
}

// Trainer fits one classifier per subset with cross-validated hyperparameter
// selection on the Training partition.
type Trainer struct {
	Data         *dataset.Data
	Preprocessor PreprocessorFactory
	Model        ModelFactory
	Grid         model_selection.ParamGrid
	Folds        int
	MainScorer   Scorer
}

// Fit trains on the Training rows restricted to subset. The preprocessor is
// fitted once, on those rows only, and the grid search uses class-stratified
// folds. It returns InsufficientDataError when the
// training rows cannot fill every fold.
func (t *Trainer) Fit(subset Subset) (*FittedModel, map[string]any, error) {
	X, y, err := t.Data.Slice(t.Data.TrainingIndices(), subset)
	if err != nil {
		return nil, nil, err
	}
	if n, _ := X.Dims(); n < t.Folds {
		return nil, nil, errors.NewInsufficientDataError(n, t.Folds)
	}

	fm := &FittedModel{}
	var Xt mat.Matrix = X
	if t.Preprocessor != nil {
		fm.Preprocessor = t.Preprocessor()
		if Xt, err = fm.Preprocessor.FitTransform(X); err != nil {
			return nil, nil, errors.Wrapf(err, "preprocessing subset %s", subset.Key())
		}
	}

	cv := model_selection.NewStratifiedKFold(t.Folds, false, 0)
	gs := model_selection.NewGridSearchCV(t.Model, t.Grid, cv, t.MainScorer.Evaluate)
	if err := gs.Fit(Xt, y); err != nil {
		return nil, nil, err
	}

	fm.Classifier = gs.BestEstimator
	fm.Params = gs.BestParams
	return fm, gs.BestParams, nil
}

// Evaluate scores a fitted classifier on held-out rows. It is the grid
// search objective when s is the main scorer.
func (s Scorer) Evaluate(clf model.Classifier, X, y mat.Matrix) (float64, error) {
	pred, err := s.predict(clf, X)
	if err != nil {
		return 0, err
	}
	return s.Fn(column(y, 0), pred)
}

func (s Scorer) predict(clf model.Classifier, X mat.Matrix) (*mat.VecDense, error) {
	if !s.NeedsProba {
		p, err := clf.Predict(X)
		if err != nil {
			return nil, err
		}
		return column(p, 0), nil
	}
	pp, ok := clf.(model.ProbabilityPredictor)
	if !ok {
		return nil, errors.NewConfigurationErrorf("scoring_functions", "%s needs probabilities but %T has no PredictProba", s.Name, clf)
	}
	p, err := pp.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return column(p, 1), nil
}

func column(m mat.Matrix, j int) *mat.VecDense {
	r, _ := m.Dims()
	return mat.NewVecDense(r, mat.Col(nil, j, m))
}
