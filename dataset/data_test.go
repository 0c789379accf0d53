package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/exhaustive/pkg/errors"
)

const matrixCSV = `,f1,f2,f3
s1,1,10,100
s2,2,20,200
s3,3,30,300
s4,4,40,400
s5,5,50,500
`

const annotationCSV = `,Class,Dataset,Dataset type
s1,0,cohortB,Training
s2,1,cohortB,Training
s3,0,cohortA,Filtration
s4,1,cohortC,Validation
s5,1,cohortA,Filtration
`

func load(t *testing.T) *Data {
	t.Helper()
	m, err := ReadFeatureMatrix(strings.NewReader(matrixCSV))
	require.NoError(t, err)
	anns, err := ReadAnnotations(strings.NewReader(annotationCSV))
	require.NoError(t, err)
	d, err := NewData(m, anns)
	require.NoError(t, err)
	return d
}

func requireConfigError(t *testing.T, err error) {
	t.Helper()
	var cfg *errors.ConfigurationError
	require.Error(t, err)
	assert.True(t, errors.As(err, &cfg), "want ConfigurationError, got %v", err)
}

func TestReadFeatureMatrix(t *testing.T) {
	m, err := ReadFeatureMatrix(strings.NewReader(matrixCSV))
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2", "s3", "s4", "s5"}, m.Samples)
	assert.Equal(t, []string{"f1", "f2", "f3"}, m.Features)
	assert.Equal(t, 300.0, m.Data.At(2, 2))

	_, err = ReadFeatureMatrix(strings.NewReader(",f1\ns1,abc\n"))
	requireConfigError(t, err)
	_, err = ReadFeatureMatrix(strings.NewReader(",f1,f1\ns1,1,2\n"))
	requireConfigError(t, err)
	_, err = ReadFeatureMatrix(strings.NewReader(",f1\n"))
	requireConfigError(t, err)
}

func TestReadAnnotations(t *testing.T) {
	anns, err := ReadAnnotations(strings.NewReader(annotationCSV))
	require.NoError(t, err)
	require.Len(t, anns, 5)
	assert.Equal(t, Annotation{Sample: "s4", Class: 1, Dataset: "cohortC", Partition: Validation}, anns[3])

	_, err = ReadAnnotations(strings.NewReader(",Class,Dataset\ns1,0,a\n"))
	requireConfigError(t, err)

	_, err = ReadAnnotations(strings.NewReader(",Class,Dataset,Dataset type\ns1,0,a,Test\n"))
	requireConfigError(t, err)
}

func TestDataView(t *testing.T) {
	d := load(t)

	assert.Equal(t, 5, d.NumSamples())
	assert.Equal(t, []int{0, 1}, d.TrainingIndices())
	assert.Equal(t, []string{"cohortA", "cohortB", "cohortC"}, d.Datasets())
	assert.Equal(t, []string{"cohortA", "cohortB"}, d.DatasetsIn(Training, Filtration))
	assert.Equal(t, []int{2, 4}, d.RowsOf([]string{"cohortA"}))

	groups := d.Groups()
	require.Len(t, groups, 3)
	assert.Equal(t, Group{Dataset: "cohortB", Partition: Training, Rows: []int{0, 1}}, groups[0])
	assert.Equal(t, Group{Dataset: "cohortA", Partition: Filtration, Rows: []int{2, 4}}, groups[1])
	assert.Equal(t, Group{Dataset: "cohortC", Partition: Validation, Rows: []int{3}}, groups[2])

	X, y, err := d.Slice([]int{1, 3}, []string{"f3", "f1"})
	require.NoError(t, err)
	assert.True(t, mat.Equal(mat.NewDense(2, 2, []float64{200, 2, 400, 4}), X))
	assert.True(t, mat.Equal(mat.NewDense(2, 1, []float64{1, 1}), y))

	_, _, err = d.Slice([]int{0}, []string{"nope"})
	assert.Error(t, err)
}

func TestRestrict(t *testing.T) {
	d := load(t)
	r, err := d.Restrict([]string{"f2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"f2"}, r.Features())
	assert.Equal(t, []string{"f1", "f2", "f3"}, d.Features(), "original view untouched")
	assert.Equal(t, d.Groups(), r.Groups())

	_, err = d.Restrict([]string{"f9"})
	requireConfigError(t, err)
}

func TestNewDataValidation(t *testing.T) {
	m, err := ReadFeatureMatrix(strings.NewReader(",f1\ns1,1\ns2,2\n"))
	require.NoError(t, err)

	tests := []struct {
		name string
		anns []Annotation
	}{
		{"missing annotation", []Annotation{{Sample: "s1", Dataset: "a", Partition: Training}}},
		{"unknown sample", []Annotation{
			{Sample: "s1", Dataset: "a", Partition: Training},
			{Sample: "s2", Dataset: "a", Partition: Training},
			{Sample: "s9", Dataset: "a", Partition: Training},
		}},
		{"duplicate annotation", []Annotation{
			{Sample: "s1", Dataset: "a", Partition: Training},
			{Sample: "s1", Dataset: "a", Partition: Training},
		}},
		{"dataset split across partitions", []Annotation{
			{Sample: "s1", Dataset: "a", Partition: Training},
			{Sample: "s2", Dataset: "a", Partition: Validation},
		}},
		{"non-binary class", []Annotation{
			{Sample: "s1", Class: 2, Dataset: "a", Partition: Training},
			{Sample: "s2", Dataset: "a", Partition: Training},
		}},
		{"no training data", []Annotation{
			{Sample: "s1", Dataset: "a", Partition: Filtration},
			{Sample: "s2", Dataset: "b", Partition: Validation},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewData(m, tt.anns)
			requireConfigError(t, err)
		})
	}
}
