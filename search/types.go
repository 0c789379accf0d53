// Package search implements the exhaustive feature-subset search: subset
// enumeration, chunked parallel fit and evaluation, filtration, incremental
// aggregation over the (n, k) grid, and run-time estimation.
package search

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// NK is one grid cell: n is the size of the candidate pool, k the subset size.
type NK struct {
	N int `csv:"n" yaml:"n"`
	K int `csv:"k" yaml:"k"`
}

// Grid is the ordered sequence of cells swept by Run.
type Grid []NK

// Subset is a feature subset in pool order.
type Subset []string

// Key joins the feature names with ";".
func (s Subset) Key() string {
	return strings.Join(s, ";")
}

// ScoreColumn names the result column of scorer on dataset, "dataset;scorer".
func ScoreColumn(dataset, scorer string) string {
	return dataset + ";" + scorer
}

// Scorer is a named scoring function. NeedsProba scorers receive the
// positive-class probability instead of hard labels.
type Scorer struct {
	Name       string
	NeedsProba bool
	Fn         func(yTrue, yPred *mat.VecDense) (float64, error)
}

// Record holds the scores of one subset, keyed by ScoreColumn, and the
// winning hyperparameters.
type Record struct {
	Subset Subset
	Scores map[string]float64
	Params map[string]any
}

// ResultRow is one retained subset.
type ResultRow struct {
	Key      string
	Features Subset
	N        int
	K        int
	Scores   map[string]float64
	Params   map[string]any
}

// ResultTable is a set of retained subsets with a fixed column layout.
type ResultTable struct {
	ScoreColumns []string
	ParamColumns []string
	Rows         []ResultRow
}

// NewResultTable creates an empty table with the given columns.
func NewResultTable(scoreColumns, paramColumns []string) *ResultTable {
	return &ResultTable{ScoreColumns: scoreColumns, ParamColumns: paramColumns}
}

// Len returns the number of rows.
func (t *ResultTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// SortByKey orders rows by subset key.
func (t *ResultTable) SortByKey() {
	sort.SliceStable(t.Rows, func(i, j int) bool { return t.Rows[i].Key < t.Rows[j].Key })
}

// SummaryRow is the retention summary of one grid cell. NumTrainingReliable
// counts subsets that passed the Training and Filtration gate;
// NumValidationReliable counts those that also meet the threshold on every
// dataset, Validation included.
type SummaryRow struct {
	N                     int     `csv:"n"`
	K                     int     `csv:"k"`
	NumTrainingReliable   int     `csv:"num_training_reliable"`
	NumValidationReliable int     `csv:"num_validation_reliable"`
	PercentageReliable    float64 `csv:"percentage_reliable"`
}

// EstimateRow is the projected full run time of one cell.
type EstimateRow struct {
	N     int     `csv:"n"`
	K     int     `csv:"k"`
	Hours float64 `csv:"Estimated time"`
}

// FeatureShare is the percentage of retained subsets containing Feature.
type FeatureShare struct {
	Feature string  `csv:"gene"`
	Percent float64 `csv:"percent"`
}
