package registry

import (
	"maps"
	"slices"

	"github.com/YuminosukeSato/exhaustive/core/model"
	"github.com/YuminosukeSato/exhaustive/model_selection"
	"github.com/YuminosukeSato/exhaustive/pkg/errors"
	"github.com/YuminosukeSato/exhaustive/preprocessing"
	"github.com/YuminosukeSato/exhaustive/search"
	"github.com/YuminosukeSato/exhaustive/sklearn/dummy"
	"github.com/YuminosukeSato/exhaustive/sklearn/linear_model"
)

type configurable interface {
	model.Classifier
	model.ParameterSetter
}

var models = map[string]func() configurable{
	"LogisticRegression": func() configurable { return linear_model.NewLogisticRegression() },
	"DummyClassifier":    func() configurable { return dummy.NewDummyClassifier() },
}

// ModelNames lists the registered classifiers.
func ModelNames() []string { return slices.Sorted(maps.Keys(models)) }

// Model returns a factory for the classifier registered under name. Each
// created classifier gets kwargs overlaid with the grid parameters it is
// called with. kwargs are checked once here.
func Model(name string, kwargs map[string]any) (search.ModelFactory, error) {
	ctor, ok := models[name]
	if !ok {
		return nil, unknownName("classifier", name, keySet(models))
	}
	if err := ctor().SetParams(kwargs); err != nil {
		return nil, errors.NewConfigurationError("classifier_kwargs", err.Error())
	}
	fixed := maps.Clone(kwargs)
	return func(params map[string]any) (model.Classifier, error) {
		merged := make(map[string]any, len(fixed)+len(params))
		maps.Copy(merged, fixed)
		maps.Copy(merged, params)
		m := ctor()
		if err := m.SetParams(merged); err != nil {
			return nil, err
		}
		return m, nil
	}, nil
}

// CheckGrid builds one classifier per grid combination so that a bad range
// value fails before the search starts.
func CheckGrid(factory search.ModelFactory, grid model_selection.ParamGrid) error {
	if err := grid.Validate(); err != nil {
		return errors.NewConfigurationError("classifier_cv_ranges", err.Error())
	}
	for _, params := range grid.Combinations() {
		if _, err := factory(params); err != nil {
			return errors.NewConfigurationErrorf("classifier_cv_ranges", "%s: %v", grid.FormatParams(params), err)
		}
	}
	return nil
}

var preprocessors = map[string]func(*kwargs) search.PreprocessorFactory{
	"StandardScaler": func(kw *kwargs) search.PreprocessorFactory {
		withMean := kw.Bool("with_mean", true)
		withStd := kw.Bool("with_std", true)
		return func() model.Transformer { return preprocessing.NewStandardScaler(withMean, withStd) }
	},
	"MinMaxScaler": func(kw *kwargs) search.PreprocessorFactory {
		fr := [2]float64{0, 1}
		if r := kw.Floats("feature_range"); r != nil {
			if len(r) != 2 {
				kw.fail("feature_range", "expected two numbers, got %d", len(r))
				return nil
			}
			fr = [2]float64{r[0], r[1]}
		}
		if _, err := preprocessing.NewMinMaxScaler(fr); err != nil {
			kw.fail("feature_range", "%v", err)
			return nil
		}
		return func() model.Transformer {
			s, _ := preprocessing.NewMinMaxScaler(fr)
			return s
		}
	},
}

// PreprocessorNames lists the registered preprocessors.
func PreprocessorNames() []string { return slices.Sorted(maps.Keys(preprocessors)) }

// Preprocessor returns a factory for the preprocessor registered under name.
// An empty name means no preprocessing and yields a nil factory.
func Preprocessor(name string, raw map[string]any) (search.PreprocessorFactory, error) {
	if name == "" {
		if len(raw) > 0 {
			return nil, errors.NewConfigurationError("preprocessor_kwargs", "arguments given without a preprocessor")
		}
		return nil, nil
	}
	build, ok := preprocessors[name]
	if !ok {
		return nil, unknownName("preprocessor", name, keySet(preprocessors))
	}
	kw := newKwargs("preprocessor_kwargs", raw)
	factory := build(kw)
	if err := kw.Err(); err != nil {
		return nil, err
	}
	return factory, nil
}
