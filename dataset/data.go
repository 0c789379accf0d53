package dataset

import (
	"sort"

	"github.com/YuminosukeSato/exhaustive/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Group is one distinct (dataset, partition) pair and its rows.
type Group struct {
	Dataset   string
	Partition Partition
	Rows      []int
}

// Data joins a FeatureMatrix with its annotations. It is read-only and safe
// for concurrent use.
type Data struct {
	Matrix *FeatureMatrix

	labels     []float64
	datasetOf  []string
	partOf     map[string]Partition
	groups     []Group
	training   []int
	datasetIDs []string
}

// NewData checks that every sample has exactly one annotation, that classes
// are binary, and that no dataset spans two partitions. Annotations for
// samples absent from the matrix are rejected too.
func NewData(m *FeatureMatrix, annotations []Annotation) (*Data, error) {
	if m == nil {
		return nil, errors.NewConfigurationError("data", "no feature matrix")
	}
	nSamples := len(m.Samples)
	d := &Data{
		Matrix:    m,
		labels:    make([]float64, nSamples),
		datasetOf: make([]string, nSamples),
		partOf:    make(map[string]Partition),
	}

	seen := make([]bool, nSamples)
	for _, a := range annotations {
		if err := a.validate(); err != nil {
			return nil, err
		}
		row, ok := m.SampleIndex(a.Sample)
		if !ok {
			return nil, errors.NewConfigurationErrorf("annotation", "sample %q is not in the feature matrix", a.Sample)
		}
		if seen[row] {
			return nil, errors.NewConfigurationErrorf("annotation", "sample %q is annotated twice", a.Sample)
		}
		seen[row] = true

		if p, ok := d.partOf[a.Dataset]; ok && p != a.Partition {
			return nil, errors.NewConfigurationErrorf("Dataset type", "dataset %q is split across %s and %s", a.Dataset, p, a.Partition)
		}
		d.partOf[a.Dataset] = a.Partition
		d.labels[row] = float64(a.Class)
		d.datasetOf[row] = a.Dataset
	}
	for row, ok := range seen {
		if !ok {
			return nil, errors.NewConfigurationErrorf("annotation", "sample %q has no annotation", m.Samples[row])
		}
	}

	// Groups follow first appearance in matrix row order.
	groupOf := make(map[string]int)
	for row := 0; row < nSamples; row++ {
		ds := d.datasetOf[row]
		g, ok := groupOf[ds]
		if !ok {
			g = len(d.groups)
			groupOf[ds] = g
			d.groups = append(d.groups, Group{Dataset: ds, Partition: d.partOf[ds]})
		}
		d.groups[g].Rows = append(d.groups[g].Rows, row)
		if d.partOf[ds] == Training {
			d.training = append(d.training, row)
		}
	}
	if len(d.training) == 0 {
		return nil, errors.NewConfigurationError("Dataset type", "no Training samples")
	}

	for ds := range d.partOf {
		d.datasetIDs = append(d.datasetIDs, ds)
	}
	sort.Strings(d.datasetIDs)
	return d, nil
}

// Features returns the feature names in matrix order.
func (d *Data) Features() []string { return d.Matrix.Features }

// NumSamples returns the number of rows.
func (d *Data) NumSamples() int { return len(d.labels) }

// TrainingIndices returns the rows of Training datasets in matrix order.
func (d *Data) TrainingIndices() []int { return d.training }

// Groups returns the distinct (dataset, partition) pairs in first-appearance order.
func (d *Data) Groups() []Group { return d.groups }

// Datasets returns every dataset identifier, sorted.
func (d *Data) Datasets() []string { return d.datasetIDs }

// PartitionOf returns the partition of dataset.
func (d *Data) PartitionOf(dataset string) (Partition, bool) {
	p, ok := d.partOf[dataset]
	return p, ok
}

// DatasetsIn returns the sorted identifiers of datasets in any of partitions.
func (d *Data) DatasetsIn(partitions ...Partition) []string {
	var out []string
	for _, ds := range d.datasetIDs {
		for _, p := range partitions {
			if d.partOf[ds] == p {
				out = append(out, ds)
				break
			}
		}
	}
	return out
}

// RowsOf returns the rows belonging to any of datasets, in matrix order.
func (d *Data) RowsOf(datasets []string) []int {
	want := make(map[string]bool, len(datasets))
	for _, ds := range datasets {
		want[ds] = true
	}
	var rows []int
	for row, ds := range d.datasetOf {
		if want[ds] {
			rows = append(rows, row)
		}
	}
	return rows
}

// Label returns the class of row.
func (d *Data) Label(row int) float64 { return d.labels[row] }

// Slice copies rows × features into X and the matching labels into an n×1 y.
func (d *Data) Slice(rows []int, features []string) (*mat.Dense, *mat.Dense, error) {
	if len(rows) == 0 || len(features) == 0 {
		return nil, nil, errors.NewValueError("Data.Slice", "empty selection")
	}
	cols, err := d.Matrix.Columns(features)
	if err != nil {
		return nil, nil, err
	}
	X := mat.NewDense(len(rows), len(cols), nil)
	y := mat.NewDense(len(rows), 1, nil)
	for i, r := range rows {
		for j, c := range cols {
			X.Set(i, j, d.Matrix.Data.At(r, c))
		}
		y.Set(i, 0, d.labels[r])
	}
	return X, y, nil
}

// Restrict returns a view over the same annotations with only features kept.
func (d *Data) Restrict(features []string) (*Data, error) {
	m, err := d.Matrix.Select(features)
	if err != nil {
		return nil, err
	}
	clone := *d
	clone.Matrix = m
	return &clone, nil
}
