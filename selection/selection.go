// Package selection provides the feature pre-selectors, run once before the
// search, and the selectors that choose the n-feature pool of each grid cell.
package selection

import (
	"github.com/YuminosukeSato/exhaustive/dataset"
	"github.com/YuminosukeSato/exhaustive/pkg/errors"
)

// PreSelector narrows the feature universe once per run.
type PreSelector interface {
	PreSelect(d *dataset.Data) ([]string, error)
}

// Selector returns an ordered pool of exactly n features. It fails with
// SelectionError when fewer than n are available.
type Selector interface {
	Select(d *dataset.Data, n int) ([]string, error)
}

func firstN(features []string, n int) ([]string, error) {
	if n < 0 || n > len(features) {
		return nil, errors.NewSelectionError(n, len(features))
	}
	return append([]string(nil), features[:n]...), nil
}

// All keeps every feature in matrix order.
type All struct{}

// PreSelect returns every feature.
func (All) PreSelect(d *dataset.Data) ([]string, error) {
	return append([]string(nil), d.Features()...), nil
}

// Select returns the first n features in matrix order.
func (All) Select(d *dataset.Data, n int) ([]string, error) {
	return firstN(d.Features(), n)
}

// List keeps a fixed, ordered list of features, e.g. a ranking computed
// outside the tool.
type List struct {
	Features []string
}

// PreSelect returns the listed features. A name missing from the matrix is a
// configuration error.
func (l List) PreSelect(d *dataset.Data) ([]string, error) {
	if len(l.Features) == 0 {
		return nil, errors.NewConfigurationError("features", "feature list is empty")
	}
	for _, f := range l.Features {
		if _, ok := d.Matrix.FeatureIndex(f); !ok {
			return nil, errors.NewConfigurationErrorf("features", "listed feature %q is not in the data", f)
		}
	}
	return append([]string(nil), l.Features...), nil
}

// Select returns the first n listed features that are present in d.
func (l List) Select(d *dataset.Data, n int) ([]string, error) {
	present := make([]string, 0, len(l.Features))
	for _, f := range l.Features {
		if _, ok := d.Matrix.FeatureIndex(f); ok {
			present = append(present, f)
		}
	}
	return firstN(present, n)
}

// statisticDatasets resolves the datasets a ranking is computed on. The
// default is every Training and Filtration dataset.
func statisticDatasets(d *dataset.Data, datasets []string) ([]string, error) {
	if len(datasets) == 0 {
		return d.DatasetsIn(dataset.Training, dataset.Filtration), nil
	}
	for _, ds := range datasets {
		if _, ok := d.PartitionOf(ds); !ok {
			return nil, errors.NewConfigurationErrorf("datasets", "unknown dataset %q", ds)
		}
	}
	return datasets, nil
}
