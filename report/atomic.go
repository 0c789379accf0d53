// Package report persists run artifacts: the result and summary tables, run
// time estimates, feature frequencies and the retention plot. Every writer
// replaces its target atomically, so a reader sees either the previous file
// or the new one.
package report

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/exhaustive/pkg/errors"
)

// Output file names inside a run directory.
const (
	ResultsFile       = "models.csv"
	SummaryFile       = "summary_n_k.csv"
	EstimatesFile     = "estimated_times.csv"
	FeaturesFile      = "features.csv"
	MetricsFile       = "metrics.prom"
	RetentionPlotFile = "retention.png"
)

// writeAtomic streams fn into a temporary file next to path and renames it
// over path once fn and the flush succeed.
func writeAtomic(path string, fn func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return errors.Wrapf(err, "create temp file for %s", path)
	}
	tmpPath := tmp.Name()

	done := false
	defer func() {
		if !done {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := fn(bw); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	if err := tmp.Sync(); err != nil {
		return errors.Wrapf(err, "sync %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", path)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrapf(err, "rename %s", path)
	}
	done = true
	return nil
}
