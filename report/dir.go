package report

import (
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/exhaustive/pkg/errors"
	"github.com/YuminosukeSato/exhaustive/pkg/log"
	"github.com/YuminosukeSato/exhaustive/search"
)

// Dir is a search.Sink writing the standard file set into one directory.
type Dir struct {
	Path string
	// Plot re-renders the retention chart whenever the summary changes.
	Plot   bool
	logger log.Logger
}

var _ search.Sink = (*Dir)(nil)

// NewDir creates path if needed.
func NewDir(path string, plot bool) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, errors.NewConfigurationErrorf("output_dir", "cannot create %s: %v", path, err)
	}
	return &Dir{Path: path, Plot: plot, logger: log.GetLoggerWithName("report")}, nil
}

// File returns the path of name inside the directory.
func (d *Dir) File(name string) string { return filepath.Join(d.Path, name) }

func (d *Dir) WriteResults(table *search.ResultTable) error {
	return WriteResults(d.File(ResultsFile), table)
}

// WriteSummary writes the summary table and, when enabled, the retention
// chart. A failed chart is logged and does not fail the run.
func (d *Dir) WriteSummary(rows []search.SummaryRow) error {
	if err := WriteSummary(d.File(SummaryFile), rows); err != nil {
		return err
	}
	if d.Plot && len(rows) > 0 {
		if err := PlotRetention(d.File(RetentionPlotFile), rows); err != nil {
			d.getLogger().Warn("Rendering retention plot failed", err, log.OutputDirKey, d.Path)
		}
	}
	return nil
}

func (d *Dir) getLogger() log.Logger {
	if d.logger == nil {
		d.logger = log.GetLoggerWithName("report")
	}
	return d.logger
}

func (d *Dir) WriteFeatureFrequency(shares []search.FeatureShare) error {
	return WriteFeatureFrequency(d.File(FeaturesFile), shares)
}

func (d *Dir) WriteEstimates(rows []search.EstimateRow) error {
	return WriteEstimates(d.File(EstimatesFile), rows)
}
