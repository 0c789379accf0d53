// Package model defines the capability interfaces that strategies plugged into
// the exhaustive search implement. The driver depends only on these.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter is a model that can be trained on samples X and labels y (n×1).
type Fitter interface {
	Fit(X, y mat.Matrix) error
}

// Predictor produces hard label predictions as an n×1 matrix.
type Predictor interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Classifier is a binary classifier. Labels are 0 and 1.
type Classifier interface {
	Fitter
	Predictor
}

// ProbabilityPredictor is implemented by classifiers that can estimate class
// probabilities. PredictProba returns an n×2 matrix; column 1 holds the
// probability of the positive class.
type ProbabilityPredictor interface {
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}

// Transformer is a fit-on-training, transform-everywhere preprocessing step.
type Transformer interface {
	// Fit learns the transform parameters.
	Fit(X mat.Matrix) error

	// Transform applies the learned parameters without refitting.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform runs Fit then Transform on the same data.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// ParameterGetter is the interface for models that expose their hyperparameters.
type ParameterGetter interface {
	GetParams() map[string]interface{}
}

// ParameterSetter is the interface for models whose hyperparameters can be set
// by name, as cross-validated grid search does.
type ParameterSetter interface {
	SetParams(params map[string]interface{}) error
}
