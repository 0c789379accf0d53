package search

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/YuminosukeSato/exhaustive/core/parallel"
	"github.com/YuminosukeSato/exhaustive/dataset"
	"github.com/YuminosukeSato/exhaustive/model_selection"
	"github.com/YuminosukeSato/exhaustive/pkg/errors"
	"github.com/YuminosukeSato/exhaustive/pkg/log"
	"github.com/YuminosukeSato/exhaustive/selection"
)

// Sink persists run artifacts. Each call replaces the previous content of
// its artifact, so a reader never sees a partially appended table.
type Sink interface {
	WriteResults(table *ResultTable) error
	WriteSummary(rows []SummaryRow) error
	WriteFeatureFrequency(shares []FeatureShare) error
}

// Options configures a Driver. Model, Scorers, MainScorer and Folds are required.
type Options struct {
	PreSelector  selection.PreSelector
	Selector     selection.Selector
	Preprocessor PreprocessorFactory
	Model        ModelFactory
	ParamGrid    model_selection.ParamGrid
	Folds        int

	Scorers    []Scorer
	MainScorer string
	Threshold  float64

	LimitSubsets   bool
	NumSubsets     int
	ShuffleSubsets bool
	Seed           uint64

	Workers int

	Sink        Sink
	MetricsPath string
	Logger      log.Logger
}

func (o *Options) validate() error {
	if o.Model == nil {
		return errors.NewConfigurationError("classifier", "no model factory")
	}
	if o.Folds < 2 {
		return errors.NewConfigurationErrorf("classifier_cv_folds", "need at least 2 folds, got %d", o.Folds)
	}
	if len(o.Scorers) == 0 {
		return errors.NewConfigurationError("scoring_functions", "no scoring functions")
	}
	seen := make(map[string]bool, len(o.Scorers))
	for _, s := range o.Scorers {
		if s.Fn == nil || s.Name == "" {
			return errors.NewConfigurationErrorf("scoring_functions", "incomplete scorer %q", s.Name)
		}
		if seen[s.Name] {
			return errors.NewConfigurationErrorf("scoring_functions", "scorer %q listed twice", s.Name)
		}
		seen[s.Name] = true
	}
	if !seen[o.MainScorer] {
		return errors.NewConfigurationErrorf("main_scoring_function", "%q is not among the scoring functions", o.MainScorer)
	}
	if err := o.ParamGrid.Validate(); err != nil {
		return errors.NewConfigurationError("classifier_cv_ranges", err.Error())
	}
	if o.LimitSubsets && o.NumSubsets < 1 {
		return errors.NewConfigurationErrorf("n_feature_subsets", "must be positive when limiting, got %d", o.NumSubsets)
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.PreSelector == nil {
		o.PreSelector = selection.All{}
	}
	if o.Selector == nil {
		o.Selector = selection.All{}
	}
	if o.Logger == nil {
		o.Logger = log.GetLoggerWithName("search")
	}
	return nil
}

// Driver runs the exhaustive search over one dataset. It is not safe for
// concurrent Run calls; its workers share the dataset read-only.
type Driver struct {
	data   *dataset.Data
	opts   Options
	logger log.Logger
	tel    *telemetry

	prepareOnce sync.Once
	prepareErr  error
	pool        *dataset.Data
	trainer     *Trainer
	evaluator   *Evaluator

	scoreColumns []string
	summary      []SummaryRow
}

// NewDriver validates opts and binds them to data.
func NewDriver(data *dataset.Data, opts Options) (*Driver, error) {
	if data == nil {
		return nil, errors.NewConfigurationError("data", "no data")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	d := &Driver{
		data:   data,
		opts:   opts,
		logger: opts.Logger,
		tel:    newTelemetry(),
	}
	for _, ds := range data.Datasets() {
		for _, s := range opts.Scorers {
			d.scoreColumns = append(d.scoreColumns, ScoreColumn(ds, s.Name))
		}
	}
	return d, nil
}

// prepare runs the pre-selector once and builds the trainer and evaluator
// over the reduced feature set.
func (d *Driver) prepare() error {
	d.prepareOnce.Do(func() {
		logger := d.logger.With(log.PhaseKey, log.PhasePreselection)
		features, err := d.opts.PreSelector.PreSelect(d.data)
		if err != nil {
			d.prepareErr = errors.Wrap(err, "feature pre-selection")
			return
		}
		pool, err := d.data.Restrict(features)
		if err != nil {
			d.prepareErr = errors.Wrap(err, "feature pre-selection")
			return
		}
		logger.Info("Pre-selected features",
			log.FeaturesKey, len(features),
			log.SamplesKey, pool.NumSamples(),
		)

		d.pool = pool
		d.trainer = &Trainer{
			Data:         pool,
			Preprocessor: d.opts.Preprocessor,
			Model:        d.opts.Model,
			Grid:         d.opts.ParamGrid,
			Folds:        d.opts.Folds,
			MainScorer:   d.mainScorer(),
		}
		d.evaluator = &Evaluator{
			Data:      pool,
			Scorers:   d.opts.Scorers,
			Main:      d.opts.MainScorer,
			Threshold: d.opts.Threshold,
		}
	})
	return d.prepareErr
}

func (d *Driver) mainScorer() Scorer {
	for _, s := range d.opts.Scorers {
		if s.Name == d.opts.MainScorer {
			return s
		}
	}
	return Scorer{}
}

func (d *Driver) newTable() *ResultTable {
	return NewResultTable(d.scoreColumns, d.opts.ParamGrid.Names())
}

// Features returns the pre-selected feature pool.
func (d *Driver) Features() ([]string, error) {
	if err := d.prepare(); err != nil {
		return nil, err
	}
	return d.pool.Features(), nil
}

// Summary returns the summary rows of the last Run.
func (d *Driver) Summary() []SummaryRow {
	return append([]SummaryRow(nil), d.summary...)
}

// Gatherer exposes the run counters.
func (d *Driver) Gatherer() prometheus.Gatherer { return d.tel.registry }

// Run sweeps grid in order. After every cell the cumulative result table and
// the summary are handed to the Sink. A SelectionError skips its cell with an
// empty table; any other error aborts the run and is returned with the rows
// accumulated so far.
func (d *Driver) Run(ctx context.Context, grid Grid) (*ResultTable, error) {
	if err := d.prepare(); err != nil {
		return nil, err
	}
	acc := NewAccumulator(d.scoreColumns, d.opts.ParamGrid.Names())
	d.summary = d.summary[:0]
	datasets := d.pool.Datasets()
	d.logger.Info("Starting grid",
		log.CellsKey, len(grid),
		log.ScorerKey, d.opts.MainScorer,
		log.ThresholdKey, d.opts.Threshold,
	)

	for _, cell := range grid {
		logger := d.logger.With(log.NKey, cell.N, log.KKey, cell.K)

		table, elapsed, err := d.RunNK(ctx, cell.N, cell.K)
		var selErr *errors.SelectionError
		switch {
		case errors.As(err, &selErr):
			logger.Warn("Skipping grid cell", err)
			table = d.newTable()
		case err != nil:
			logger.Error("Pipeline iteration failed", err, log.WorkersKey, d.opts.Workers)
			return acc.Concat(), err
		}

		acc.Append(table)
		row := Summarize(cell.N, cell.K, table, d.opts.MainScorer, d.opts.Threshold, datasets)
		d.summary = append(d.summary, row)

		if d.opts.Sink != nil {
			if err := d.opts.Sink.WriteResults(acc.Concat()); err != nil {
				return acc.Concat(), errors.Wrapf(err, "persisting results after n=%d, k=%d", cell.N, cell.K)
			}
			if err := d.opts.Sink.WriteSummary(d.Summary()); err != nil {
				return acc.Concat(), errors.Wrapf(err, "persisting summary after n=%d, k=%d", cell.N, cell.K)
			}
		}

		d.tel.cellTime.Observe(elapsed.Seconds())
		d.tel.retention.WithLabelValues(strconv.Itoa(cell.N), strconv.Itoa(cell.K)).Set(row.PercentageReliable)
		if err := d.tel.write(d.opts.MetricsPath); err != nil {
			logger.Warn("Writing metrics failed", err)
		}

		logger.Info("Grid cell summarized",
			log.PassedKey, row.NumTrainingReliable,
			log.ValidatedKey, row.NumValidationReliable,
			log.RetentionKey, row.PercentageReliable,
		)
	}

	result := acc.Concat()
	if d.opts.Sink != nil {
		if err := d.opts.Sink.WriteFeatureFrequency(FeatureFrequency(result)); err != nil {
			return result, errors.Wrap(err, "persisting feature frequency")
		}
	}
	return result, nil
}

// RunNK runs one grid cell and returns its retained subsets, tagged with n
// and k, and the wall time spent fitting and evaluating.
func (d *Driver) RunNK(ctx context.Context, n, k int) (*ResultTable, time.Duration, error) {
	if err := d.prepare(); err != nil {
		return nil, 0, err
	}
	cellLogger := d.logger.With(log.NKey, n, log.KKey, k)

	pool, err := d.opts.Selector.Select(d.pool, n)
	if err != nil {
		cellLogger.Debug("Feature selection failed", err, log.PhaseKey, log.PhaseSelection)
		return nil, 0, err
	}
	logger := cellLogger.With(log.PhaseKey, log.PhaseSearch)
	subsets := Sample(Combinations(pool, k), d.opts.LimitSubsets, d.opts.NumSubsets, d.opts.ShuffleSubsets, d.opts.Seed)
	logger.Debug(fmt.Sprintf("Evaluating %s feature subsets", humanize.Comma(int64(len(subsets)))),
		log.SubsetsKey, len(subsets),
		log.WorkersKey, d.opts.Workers,
	)

	start := time.Now()
	ranges := parallel.Chunks(len(subsets), d.opts.Workers)
	tables := make([]*ResultTable, len(ranges))
	skipped := make([]int, len(ranges))
	err = parallel.ForkJoin(ctx, len(ranges), func(ctx context.Context, job int) error {
		r := ranges[job]
		err := errors.SafeExecute(fmt.Sprintf("search worker %d", job), func() error {
			var err error
			tables[job], skipped[job], err = d.runChunk(ctx, job, subsets[r.Start:r.End])
			return err
		})
		if err != nil {
			return errors.NewWorkerFailure(job, n, k, err)
		}
		return nil
	})
	elapsed := time.Since(start)
	if err != nil {
		return nil, elapsed, err
	}

	merged := d.newTable()
	nSkipped := 0
	for i, t := range tables {
		nSkipped += skipped[i]
		for _, row := range t.Rows {
			row.N, row.K = n, k
			merged.Rows = append(merged.Rows, row)
		}
	}
	if d.opts.LimitSubsets && d.opts.ShuffleSubsets {
		merged.SortByKey()
	}

	fields := []any{
		log.DurationSecondsKey, elapsed.Seconds(),
		log.WorkersKey, d.opts.Workers,
		log.SubsetsKey, len(subsets),
		log.PassedKey, merged.Len(),
		log.SkippedKey, nSkipped,
	}
	if d.opts.LimitSubsets {
		fields = append(fields, log.SampledKey, d.opts.NumSubsets)
	}
	logger.Info(fmt.Sprintf("Pipeline iteration finished in %s for n=%d, k=%d", elapsed.Round(time.Millisecond), n, k), fields...)
	return merged, elapsed, nil
}

// runChunk fits and evaluates subsets in order on the calling goroutine. It
// returns the passing rows and the number of subsets skipped for lack of
// training samples.
func (d *Driver) runChunk(ctx context.Context, worker int, subsets []Subset) (*ResultTable, int, error) {
	out := d.newTable()
	skipped := 0
	logger := d.logger.With(log.WorkerIDKey, worker)
	for _, subset := range subsets {
		if err := ctx.Err(); err != nil {
			return nil, skipped, err
		}

		fm, _, err := d.trainer.Fit(subset)
		var insufficient *errors.InsufficientDataError
		if errors.As(err, &insufficient) {
			skipped++
			d.tel.subsets.WithLabelValues(outcomeSkipped).Inc()
			logger.Debug("Skipping subset", err, log.SubsetKey, subset.Key())
			continue
		}
		if err != nil {
			return nil, skipped, errors.Wrapf(err, "fitting subset %s", subset.Key())
		}

		rec, passed, err := d.evaluator.Evaluate(fm, subset)
		if err != nil {
			return nil, skipped, errors.Wrapf(err, "evaluating subset %s", subset.Key())
		}
		if !passed {
			d.tel.subsets.WithLabelValues(outcomeFiltered).Inc()
			continue
		}
		d.tel.subsets.WithLabelValues(outcomePassed).Inc()
		out.Rows = append(out.Rows, ResultRow{
			Key:      subset.Key(),
			Features: rec.Subset,
			Scores:   rec.Scores,
			Params:   rec.Params,
		})
	}
	return out, skipped, nil
}

// EstimateGrid projects full run times. For each k in 1..maxK it runs n =
// k, k+1, ... with the configured subset limiting and stops increasing n once
// the projection exceeds maxTime. Cells over the limit are not reported.
func (d *Driver) EstimateGrid(ctx context.Context, maxK int, maxTime time.Duration) ([]EstimateRow, error) {
	if err := d.prepare(); err != nil {
		return nil, err
	}
	var rows []EstimateRow
	nFeatures := len(d.pool.Features())
	for k := 1; k <= maxK; k++ {
		for n := k; n <= nFeatures; n++ {
			_, sampled, err := d.RunNK(ctx, n, k)
			var selErr *errors.SelectionError
			if errors.As(err, &selErr) {
				break
			}
			if err != nil {
				return rows, err
			}

			est := EstimateTime(n, k, sampled, d.opts.LimitSubsets, d.opts.NumSubsets)
			d.logger.Info("Estimated cell run time",
				log.NKey, n,
				log.KKey, k,
				log.PhaseKey, log.PhaseEstimate,
				log.EstimatedHoursKey, est.Hours(),
			)
			if est > maxTime {
				break
			}
			rows = append(rows, EstimateRow{N: n, K: k, Hours: est.Hours()})
		}
	}
	return rows, nil
}
