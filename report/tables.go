package report

import (
	"io"
	"math"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/YuminosukeSato/exhaustive/pkg/errors"
	"github.com/YuminosukeSato/exhaustive/search"
)

// percentTolerance bounds the rounding error accepted when re-checking
// percentage_reliable against its counts.
const percentTolerance = 1e-6

// WriteSummary replaces path with the summary table.
func WriteSummary(path string, rows []search.SummaryRow) error {
	return writeAtomic(path, func(w io.Writer) error {
		return gocsv.Marshal(&rows, w)
	})
}

// ReadSummary loads a summary table and rejects rows whose counts are
// inconsistent, which is how a truncated or hand-edited file shows up.
func ReadSummary(path string) ([]search.SummaryRow, error) {
	var rows []search.SummaryRow
	if err := unmarshalFile(path, &rows); err != nil {
		return nil, err
	}
	for i, r := range rows {
		if err := validateSummaryRow(r); err != nil {
			return nil, errors.Wrapf(err, "%s line %d", path, i+2)
		}
	}
	return rows, nil
}

func validateSummaryRow(r search.SummaryRow) error {
	if r.K < 1 || r.N < r.K {
		return errors.Newf("invalid cell n=%d, k=%d", r.N, r.K)
	}
	if r.NumTrainingReliable < 0 || r.NumValidationReliable < 0 ||
		r.NumValidationReliable > r.NumTrainingReliable {
		return errors.Newf("inconsistent counts %d/%d", r.NumValidationReliable, r.NumTrainingReliable)
	}
	want := 0.0
	if r.NumTrainingReliable > 0 {
		want = float64(r.NumValidationReliable) / float64(r.NumTrainingReliable) * 100
	}
	if math.Abs(want-r.PercentageReliable) > percentTolerance {
		return errors.Newf("percentage_reliable %v does not match counts (%v)", r.PercentageReliable, want)
	}
	return nil
}

// WriteEstimates replaces path with the estimated run times.
func WriteEstimates(path string, rows []search.EstimateRow) error {
	return writeAtomic(path, func(w io.Writer) error {
		return gocsv.Marshal(&rows, w)
	})
}

// ReadEstimates loads an estimates table.
func ReadEstimates(path string) ([]search.EstimateRow, error) {
	var rows []search.EstimateRow
	if err := unmarshalFile(path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// WriteFeatureFrequency replaces path with the feature frequency table.
func WriteFeatureFrequency(path string, shares []search.FeatureShare) error {
	return writeAtomic(path, func(w io.Writer) error {
		return gocsv.Marshal(&shares, w)
	})
}

// ReadGrid loads the (n, k) grid. Cells must satisfy 1 <= k <= n.
func ReadGrid(path string) (search.Grid, error) {
	var cells []search.NK
	if err := unmarshalFile(path, &cells); err != nil {
		return nil, errors.NewConfigurationError("n_k_path", err.Error())
	}
	if len(cells) == 0 {
		return nil, errors.NewConfigurationErrorf("n_k_path", "%s has no (n, k) rows", path)
	}
	for i, c := range cells {
		if c.K < 1 || c.N < c.K {
			return nil, errors.NewConfigurationErrorf("n_k_path", "line %d: need 1 <= k <= n, got n=%d, k=%d", i+2, c.N, c.K)
		}
	}
	return search.Grid(cells), nil
}

func unmarshalFile(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	if err := gocsv.Unmarshal(f, out); err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}
	return nil
}
