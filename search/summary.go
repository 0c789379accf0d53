package search

import (
	"sort"
)

// CountReliable counts rows scoring at least threshold with scorer on every
// one of datasets. A row missing one of the scores does not count.
func CountReliable(table *ResultTable, scorer string, threshold float64, datasets []string) int {
	if table == nil {
		return 0
	}
	n := 0
	for _, row := range table.Rows {
		ok := true
		for _, ds := range datasets {
			v, present := row.Scores[ScoreColumn(ds, scorer)]
			if !present || !(v >= threshold) {
				ok = false
				break
			}
		}
		if ok {
			n++
		}
	}
	return n
}

// Summarize builds the summary row of one cell. Every row of table already
// passed the Training and Filtration gate; datasets lists every dataset so
// that Validation is checked too.
func Summarize(n, k int, table *ResultTable, scorer string, threshold float64, datasets []string) SummaryRow {
	tf := table.Len()
	all := CountReliable(table, scorer, threshold, datasets)
	row := SummaryRow{N: n, K: k, NumTrainingReliable: tf, NumValidationReliable: all}
	if tf > 0 {
		row.PercentageReliable = float64(all) / float64(tf) * 100
	}
	return row
}

// FeatureFrequency returns, for every feature appearing in table, the
// percentage of rows whose subset contains it, by descending percentage then
// name.
func FeatureFrequency(table *ResultTable) []FeatureShare {
	total := table.Len()
	if total == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, row := range table.Rows {
		for _, f := range row.Features {
			counts[f]++
		}
	}
	out := make([]FeatureShare, 0, len(counts))
	for f, c := range counts {
		out = append(out, FeatureShare{Feature: f, Percent: float64(c) / float64(total) * 100})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Percent != out[j].Percent {
			return out[i].Percent > out[j].Percent
		}
		return out[i].Feature < out[j].Feature
	})
	return out
}
