// Package linear_model provides the L2-regularized logistic regression used as
// the default classifier of the exhaustive search.
package linear_model

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/exhaustive/core/model"
	"github.com/YuminosukeSato/exhaustive/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LogisticRegression is a binary logistic regression trained by full-batch
// gradient descent. Labels must be 0 or 1.
type LogisticRegression struct {
	state *model.StateManager

	penalty      string  // "l2" or "none"
	C            float64 // inverse regularization strength
	fitIntercept bool
	classWeight  string // "none" or "balanced"
	maxIter      int
	tol          float64

	coef      *mat.VecDense
	intercept float64
	nIter     int
	converged bool
}

// LogisticRegressionOption is a functional option for LogisticRegression.
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a LogisticRegression with C=1, L2 penalty,
// 100 iterations and tolerance 1e-4.
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager(),
		penalty:      "l2",
		C:            1.0,
		fitIntercept: true,
		classWeight:  "none",
		maxIter:      100,
		tol:          1e-4,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// WithLRPenalty sets the regularization type ("l2" or "none").
func WithLRPenalty(penalty string) LogisticRegressionOption {
	return func(lr *LogisticRegression) { lr.penalty = penalty }
}

// WithLRC sets the inverse regularization strength.
func WithLRC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) { lr.C = c }
}

// WithLRFitIntercept sets whether an intercept is learned.
func WithLRFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) { lr.fitIntercept = fit }
}

// WithLRClassWeight sets the class weighting ("none" or "balanced").
func WithLRClassWeight(weight string) LogisticRegressionOption {
	return func(lr *LogisticRegression) { lr.classWeight = weight }
}

// WithLRMaxIter sets the iteration limit.
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) { lr.maxIter = maxIter }
}

// WithLRTol sets the gradient tolerance for early stopping.
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) { lr.tol = tol }
}

func (lr *LogisticRegression) validate() error {
	switch {
	case lr.C <= 0:
		return errors.NewValidationError("C", "must be positive", lr.C)
	case lr.maxIter <= 0:
		return errors.NewValidationError("max_iter", "must be positive", lr.maxIter)
	case lr.tol < 0:
		return errors.NewValidationError("tol", "must be non-negative", lr.tol)
	case lr.penalty != "l2" && lr.penalty != "none":
		return errors.NewValidationError("penalty", "must be \"l2\" or \"none\"", lr.penalty)
	case lr.classWeight != "none" && lr.classWeight != "balanced":
		return errors.NewValidationError("class_weight", "must be \"none\" or \"balanced\"", lr.classWeight)
	}
	return nil
}

// sampleWeights returns per-sample weights normalized to mean 1.
func (lr *LogisticRegression) sampleWeights(y []float64) []float64 {
	w := make([]float64, len(y))
	for i := range w {
		w[i] = 1
	}
	if lr.classWeight != "balanced" {
		return w
	}
	pos := floats.Sum(y)
	neg := float64(len(y)) - pos
	if pos == 0 || neg == 0 {
		return w
	}
	n := float64(len(y))
	for i, v := range y {
		if v == 1 {
			w[i] = n / (2 * pos)
		} else {
			w[i] = n / (2 * neg)
		}
	}
	return w
}

// Fit trains on X (n×p) and binary labels y (n×1). Training data holding a
// single class is accepted; the model then predicts that class.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	if err := lr.validate(); err != nil {
		return err
	}
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError("LogisticRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if yRows != nSamples {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("LogisticRegression.Fit", 1, yCols, 1)
	}

	labels := mat.Col(nil, 0, y)
	for _, v := range labels {
		if v != 0 && v != 1 {
			return errors.NewValueError("LogisticRegression.Fit", fmt.Sprintf("labels must be 0 or 1, got %v", v))
		}
	}
	target := mat.NewVecDense(nSamples, labels)
	weights := lr.sampleWeights(labels)

	w := mat.NewVecDense(nFeatures, nil)
	var b float64
	z := mat.NewVecDense(nSamples, nil)
	residual := mat.NewVecDense(nSamples, nil)
	grad := mat.NewVecDense(nFeatures, nil)
	n := float64(nSamples)

	// Constant step 1/L, where L bounds the curvature of the weighted loss.
	lambda := 0.0
	if lr.penalty == "l2" {
		lambda = 1 / (lr.C * n)
	}
	frob := mat.Norm(X, 2)
	lipschitz := 0.25*floats.Max(weights)*(frob*frob/n+1) + lambda
	step := 1 / lipschitz

	lr.nIter = 0
	lr.converged = false
	for iter := 0; iter < lr.maxIter; iter++ {
		z.MulVec(X, w)
		for i := 0; i < nSamples; i++ {
			residual.SetVec(i, weights[i]*(sigmoid(z.AtVec(i)+b)-target.AtVec(i)))
		}

		grad.MulVec(X.T(), residual)
		grad.ScaleVec(1/n, grad)
		if lambda > 0 {
			grad.AddScaledVec(grad, lambda, w)
		}
		gradB := mat.Sum(residual) / n

		w.AddScaledVec(w, -step, grad)
		if lr.fitIntercept {
			b -= step * gradB
		}
		lr.nIter = iter + 1

		maxGrad := math.Abs(gradB)
		if g := mat.Norm(grad, math.Inf(1)); g > maxGrad {
			maxGrad = g
		}
		if maxGrad < lr.tol {
			lr.converged = true
			break
		}
	}
	if !lr.converged {
		errors.Warn(errors.NewConvergenceWarning("LogisticRegression", lr.nIter, "Maximum number of iterations reached"))
	}

	if err := errors.CheckNumericalStability("LogisticRegression.Fit", w.RawVector().Data, lr.nIter); err != nil {
		return err
	}
	lr.coef = w
	lr.intercept = b
	lr.state.SetDimensions(nFeatures, nSamples)
	lr.state.SetFitted()
	return nil
}

func (lr *LogisticRegression) positiveProba(X mat.Matrix, op string) ([]float64, error) {
	if err := lr.state.RequireFitted("LogisticRegression", op); err != nil {
		return nil, err
	}
	if err := lr.state.RequireFeatures("LogisticRegression."+op, X); err != nil {
		return nil, err
	}
	r, _ := X.Dims()
	z := mat.NewVecDense(r, nil)
	z.MulVec(X, lr.coef)
	p := make([]float64, r)
	for i := range p {
		p[i] = sigmoid(z.AtVec(i) + lr.intercept)
	}
	return p, nil
}

// Predict returns 0/1 labels as an n×1 matrix, thresholding at 0.5.
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	p, err := lr.positiveProba(X, "Predict")
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(len(p), 1, nil)
	for i, v := range p {
		if v >= 0.5 {
			out.Set(i, 0, 1)
		}
	}
	return out, nil
}

// PredictProba returns an n×2 matrix of class probabilities.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	p, err := lr.positiveProba(X, "PredictProba")
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(len(p), 2, nil)
	for i, v := range p {
		out.Set(i, 0, 1-v)
		out.Set(i, 1, v)
	}
	return out, nil
}

// Coef returns a copy of the learned weights.
func (lr *LogisticRegression) Coef() []float64 {
	if lr.coef == nil {
		return nil
	}
	return mat.Col(nil, 0, lr.coef)
}

// Intercept returns the learned intercept.
func (lr *LogisticRegression) Intercept() float64 { return lr.intercept }

// NIter returns the number of gradient steps taken by the last Fit.
func (lr *LogisticRegression) NIter() int { return lr.nIter }

// Converged reports whether the last Fit met tol before max_iter.
func (lr *LogisticRegression) Converged() bool { return lr.converged }

// GetParams returns the model hyperparameters.
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"penalty":       lr.penalty,
		"C":             lr.C,
		"fit_intercept": lr.fitIntercept,
		"class_weight":  lr.classWeight,
		"max_iter":      lr.maxIter,
		"tol":           lr.tol,
	}
}

// SetParams sets hyperparameters by name. Numeric values may be given as any
// Go integer or float type, as decoded from YAML.
func (lr *LogisticRegression) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		var err error
		switch key {
		case "penalty":
			lr.penalty, err = asString(key, value)
		case "C":
			lr.C, err = asFloat(key, value)
		case "fit_intercept":
			lr.fitIntercept, err = asBool(key, value)
		case "class_weight":
			lr.classWeight, err = asString(key, value)
		case "max_iter":
			lr.maxIter, err = asInt(key, value)
		case "tol":
			lr.tol, err = asFloat(key, value)
		default:
			err = errors.NewValidationError(key, "unknown parameter", value)
		}
		if err != nil {
			return err
		}
	}
	return lr.validate()
}

func (lr *LogisticRegression) String() string {
	return fmt.Sprintf("LogisticRegression(C=%g, penalty=%s, max_iter=%d)", lr.C, lr.penalty, lr.maxIter)
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1.0 / (1.0 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1.0 + e)
}

var (
	_ model.Classifier           = (*LogisticRegression)(nil)
	_ model.ProbabilityPredictor = (*LogisticRegression)(nil)
	_ model.ParameterSetter      = (*LogisticRegression)(nil)
)
