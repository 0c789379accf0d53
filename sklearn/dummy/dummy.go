// Package dummy provides a baseline classifier that ignores the features.
// Subsets that cannot beat it are not worth keeping.
package dummy

import (
	"fmt"

	"github.com/YuminosukeSato/exhaustive/core/model"
	"github.com/YuminosukeSato/exhaustive/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Strategy names.
const (
	MostFrequent = "most_frequent"
	Prior        = "prior"
	Constant     = "constant"
)

// DummyClassifier predicts from the training label distribution alone.
type DummyClassifier struct {
	state *model.StateManager

	strategy string
	constant float64

	prior float64 // fraction of positive training labels
}

// NewDummyClassifier creates a DummyClassifier using the most_frequent strategy.
func NewDummyClassifier() *DummyClassifier {
	return &DummyClassifier{state: model.NewStateManager(), strategy: MostFrequent}
}

// Fit records the positive-class frequency of y.
func (d *DummyClassifier) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	yRows, _ := y.Dims()
	if r == 0 {
		return errors.NewModelError("DummyClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	if yRows != r {
		return errors.NewDimensionError("DummyClassifier.Fit", r, yRows, 0)
	}

	var pos float64
	for i := 0; i < r; i++ {
		v := y.At(i, 0)
		if v != 0 && v != 1 {
			return errors.NewValueError("DummyClassifier.Fit", fmt.Sprintf("labels must be 0 or 1, got %v", v))
		}
		pos += v
	}
	d.prior = pos / float64(r)
	d.state.SetDimensions(c, r)
	d.state.SetFitted()
	return nil
}

func (d *DummyClassifier) label() float64 {
	switch d.strategy {
	case Constant:
		return d.constant
	default:
		// Ties go to the negative class.
		if d.prior > 0.5 {
			return 1
		}
		return 0
	}
}

// Predict returns the same label for every row.
func (d *DummyClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := d.state.RequireFitted("DummyClassifier", "Predict"); err != nil {
		return nil, err
	}
	r, _ := X.Dims()
	out := mat.NewDense(r, 1, nil)
	label := d.label()
	for i := 0; i < r; i++ {
		out.Set(i, 0, label)
	}
	return out, nil
}

// PredictProba returns the training class distribution for prior and
// most_frequent, and a one-hot row for constant.
func (d *DummyClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := d.state.RequireFitted("DummyClassifier", "PredictProba"); err != nil {
		return nil, err
	}
	p := d.prior
	if d.strategy == Constant {
		p = d.constant
	}
	r, _ := X.Dims()
	out := mat.NewDense(r, 2, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, 1-p)
		out.Set(i, 1, p)
	}
	return out, nil
}

// GetParams returns the strategy and constant.
func (d *DummyClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"strategy": d.strategy,
		"constant": d.constant,
	}
}

// SetParams accepts "strategy" and "constant".
func (d *DummyClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "strategy":
			s, ok := value.(string)
			if !ok || (s != MostFrequent && s != Prior && s != Constant) {
				return errors.NewValidationError("strategy", "must be most_frequent, prior or constant", value)
			}
			d.strategy = s
		case "constant":
			var c float64
			switch v := value.(type) {
			case int:
				c = float64(v)
			case float64:
				c = v
			default:
				return errors.NewValidationError("constant", "must be 0 or 1", value)
			}
			if c != 0 && c != 1 {
				return errors.NewValidationError("constant", "must be 0 or 1", value)
			}
			d.constant = c
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

var (
	_ model.Classifier           = (*DummyClassifier)(nil)
	_ model.ProbabilityPredictor = (*DummyClassifier)(nil)
	_ model.ParameterSetter      = (*DummyClassifier)(nil)
)
