package config

import (
	"time"

	"github.com/YuminosukeSato/exhaustive/dataset"
	"github.com/YuminosukeSato/exhaustive/pkg/errors"
	"github.com/YuminosukeSato/exhaustive/registry"
	"github.com/YuminosukeSato/exhaustive/report"
	"github.com/YuminosukeSato/exhaustive/search"
)

// Options resolves every named strategy into search options. Sink and Logger
// are left for the caller.
func (c *Config) Options() (search.Options, error) {
	var opts search.Options
	var err error

	if opts.PreSelector, err = registry.PreSelector(c.FeaturePreSelector, c.FeaturePreSelectorKwargs); err != nil {
		return opts, err
	}
	if opts.Selector, err = registry.Selector(c.FeatureSelector, c.FeatureSelectorKwargs); err != nil {
		return opts, err
	}
	if opts.Preprocessor, err = registry.Preprocessor(c.Preprocessor, c.PreprocessorKwargs); err != nil {
		return opts, err
	}
	if opts.Model, err = registry.Model(c.Classifier, c.ClassifierKwargs); err != nil {
		return opts, err
	}
	opts.ParamGrid = c.ClassifierCVRanges.Grid()
	if err := registry.CheckGrid(opts.Model, opts.ParamGrid); err != nil {
		return opts, err
	}
	if opts.Scorers, err = registry.Scorers(c.ScoringFunctions); err != nil {
		return opts, err
	}

	opts.Folds = c.ClassifierCVFolds
	opts.MainScorer = c.MainScoringFunction
	opts.Threshold = c.MainScoringThreshold
	opts.LimitSubsets = c.LimitFeatureSubsets
	opts.NumSubsets = c.NFeatureSubsets
	opts.ShuffleSubsets = c.ShuffleFeatureSubsets
	opts.Seed = c.RandomState
	opts.Workers = c.Workers()
	return opts, nil
}

// LoadData reads the feature matrix and the annotation table.
func (c *Config) LoadData() (*dataset.Data, error) {
	return dataset.Load(c.Resolve(c.DataPath), c.Resolve(c.AnnotationPath))
}

// LoadGrid reads the (n, k) grid and applies max_n.
func (c *Config) LoadGrid() (search.Grid, error) {
	grid, err := report.ReadGrid(c.Resolve(c.NKPath))
	if err != nil {
		return nil, err
	}
	if c.MaxN > 0 {
		for _, cell := range grid {
			if cell.N > c.MaxN {
				return nil, errors.NewConfigurationErrorf("max_n", "grid cell n=%d, k=%d exceeds max_n=%d", cell.N, cell.K, c.MaxN)
			}
		}
	}
	return grid, nil
}

// OutputPath returns the resolved output directory.
func (c *Config) OutputPath() string { return c.Resolve(c.OutputDir) }

// MaxTime returns max_estimated_time as a duration; zero when unset.
func (c *Config) MaxTime() time.Duration {
	return time.Duration(c.MaxEstimatedTime * float64(time.Hour))
}
