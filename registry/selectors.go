package registry

import (
	"maps"
	"slices"

	"github.com/YuminosukeSato/exhaustive/selection"
)

// strategy is implemented by every registered selector.
type strategy interface {
	selection.PreSelector
	selection.Selector
}

var selectors = map[string]func(*kwargs) strategy{
	"all": func(*kwargs) strategy { return selection.All{} },
	"list": func(kw *kwargs) strategy {
		features := kw.Strings("features")
		if len(features) == 0 {
			kw.fail("features", "a non-empty feature list is required")
		}
		return selection.List{Features: features}
	},
	"t_test": func(kw *kwargs) strategy {
		alpha := kw.Float("alpha", 0)
		if alpha < 0 || alpha > 1 {
			kw.fail("alpha", "must be within [0, 1], got %v", alpha)
		}
		return selection.TTest{Datasets: kw.Strings("datasets"), Alpha: alpha}
	},
	"mean_difference": func(kw *kwargs) strategy {
		return selection.MeanDifference{Datasets: kw.Strings("datasets")}
	},
}

// SelectorNames lists the registered selectors.
func SelectorNames() []string { return slices.Sorted(maps.Keys(selectors)) }

func lookupSelector(field, name string, raw map[string]any) (strategy, error) {
	if name == "" {
		name = "all"
	}
	build, ok := selectors[name]
	if !ok {
		return nil, unknownName(field, name, keySet(selectors))
	}
	kw := newKwargs(field+"_kwargs", raw)
	s := build(kw)
	if err := kw.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// PreSelector resolves the feature pre-selector; an empty name keeps every
// feature.
func PreSelector(name string, raw map[string]any) (selection.PreSelector, error) {
	return lookupSelector("feature_pre_selector", name, raw)
}

// Selector resolves the per-n feature selector; an empty name takes the first
// n features in matrix order.
func Selector(name string, raw map[string]any) (selection.Selector, error) {
	return lookupSelector("feature_selector", name, raw)
}
