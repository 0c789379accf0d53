// Package dataset holds the in-memory feature matrix and sample annotations,
// and the partition view the search reads from.
package dataset

import (
	"github.com/YuminosukeSato/exhaustive/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// FeatureMatrix is a numeric samples × features table. It is never mutated
// after construction.
type FeatureMatrix struct {
	Samples  []string
	Features []string
	Data     *mat.Dense

	sampleIndex  map[string]int
	featureIndex map[string]int
}

// NewFeatureMatrix validates the labels against data's shape and indexes them.
func NewFeatureMatrix(samples, features []string, data *mat.Dense) (*FeatureMatrix, error) {
	if data == nil || data.IsEmpty() {
		return nil, errors.NewConfigurationError("data", "feature matrix is empty")
	}
	r, c := data.Dims()
	if len(samples) != r {
		return nil, errors.NewConfigurationErrorf("data", "%d sample names for %d rows", len(samples), r)
	}
	if len(features) != c {
		return nil, errors.NewConfigurationErrorf("data", "%d feature names for %d columns", len(features), c)
	}

	sampleIndex, err := indexNames("sample", samples)
	if err != nil {
		return nil, err
	}
	featureIndex, err := indexNames("feature", features)
	if err != nil {
		return nil, err
	}

	return &FeatureMatrix{
		Samples:      samples,
		Features:     features,
		Data:         data,
		sampleIndex:  sampleIndex,
		featureIndex: featureIndex,
	}, nil
}

func indexNames(kind string, names []string) (map[string]int, error) {
	index := make(map[string]int, len(names))
	for i, name := range names {
		if name == "" {
			return nil, errors.NewConfigurationErrorf("data", "empty %s name at position %d", kind, i)
		}
		if _, dup := index[name]; dup {
			return nil, errors.NewConfigurationErrorf("data", "duplicate %s %q", kind, name)
		}
		index[name] = i
	}
	return index, nil
}

// SampleIndex returns the row of sample.
func (m *FeatureMatrix) SampleIndex(sample string) (int, bool) {
	i, ok := m.sampleIndex[sample]
	return i, ok
}

// FeatureIndex returns the column of feature.
func (m *FeatureMatrix) FeatureIndex(feature string) (int, bool) {
	j, ok := m.featureIndex[feature]
	return j, ok
}

// Columns resolves feature names to column indices.
func (m *FeatureMatrix) Columns(features []string) ([]int, error) {
	cols := make([]int, len(features))
	for i, f := range features {
		j, ok := m.featureIndex[f]
		if !ok {
			return nil, errors.NewValueError("FeatureMatrix.Columns", "unknown feature "+f)
		}
		cols[i] = j
	}
	return cols, nil
}

// Column copies one feature's values for the given rows.
func (m *FeatureMatrix) Column(feature string, rows []int) ([]float64, error) {
	j, ok := m.featureIndex[feature]
	if !ok {
		return nil, errors.NewValueError("FeatureMatrix.Column", "unknown feature "+feature)
	}
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = m.Data.At(r, j)
	}
	return out, nil
}

// Select returns a new matrix holding only features, in the given order.
func (m *FeatureMatrix) Select(features []string) (*FeatureMatrix, error) {
	if len(features) == 0 {
		return nil, errors.NewConfigurationError("features", "no features selected")
	}
	cols, err := m.Columns(features)
	if err != nil {
		return nil, errors.NewConfigurationError("features", err.Error())
	}
	r, _ := m.Data.Dims()
	data := mat.NewDense(r, len(cols), nil)
	for i := 0; i < r; i++ {
		for jj, j := range cols {
			data.Set(i, jj, m.Data.At(i, j))
		}
	}
	return NewFeatureMatrix(m.Samples, append([]string(nil), features...), data)
}
