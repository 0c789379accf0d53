package search

// Accumulator collects the per-cell result tables of a run in grid order.
// Tables are never modified once appended.
type Accumulator struct {
	scoreColumns []string
	paramColumns []string
	tables       []*ResultTable
	rows         int
}

// NewAccumulator creates an accumulator for tables with the given columns.
func NewAccumulator(scoreColumns, paramColumns []string) *Accumulator {
	return &Accumulator{scoreColumns: scoreColumns, paramColumns: paramColumns}
}

// Append adds one cell's table.
func (a *Accumulator) Append(t *ResultTable) {
	if t == nil {
		return
	}
	a.tables = append(a.tables, t)
	a.rows += len(t.Rows)
}

// Len returns the total number of rows.
func (a *Accumulator) Len() int { return a.rows }

// Tables returns the appended tables in order.
func (a *Accumulator) Tables() []*ResultTable { return a.tables }

// Concat returns one table holding every row in append order.
func (a *Accumulator) Concat() *ResultTable {
	out := NewResultTable(a.scoreColumns, a.paramColumns)
	out.Rows = make([]ResultRow, 0, a.rows)
	for _, t := range a.tables {
		out.Rows = append(out.Rows, t.Rows...)
	}
	return out
}
