package search

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/exhaustive/core/model"
	"github.com/YuminosukeSato/exhaustive/dataset"
	"github.com/YuminosukeSato/exhaustive/pkg/errors"
	"github.com/YuminosukeSato/exhaustive/pkg/log"
	"github.com/YuminosukeSato/exhaustive/selection"
	"github.com/YuminosukeSato/exhaustive/sklearn/dummy"
)

func rowKeys(table *ResultTable) []string {
	var out []string
	for _, r := range table.Rows {
		out = append(out, r.Key)
	}
	return out
}

func newDriver(t *testing.T, d *dataset.Data, opts Options) *Driver {
	t.Helper()
	drv, err := NewDriver(d, opts)
	require.NoError(t, err)
	return drv
}

func TestRunSmallestGrid(t *testing.T) {
	m, err := dataset.NewFeatureMatrix(
		[]string{"s1", "s2", "s3", "s4"},
		[]string{"g1", "g2"},
		mat.NewDense(4, 2, []float64{0, 1, 1, 0, 0, 1, 1, 0}),
	)
	require.NoError(t, err)
	d, err := dataset.NewData(m, []dataset.Annotation{
		{Sample: "s1", Class: 0, Dataset: "A", Partition: dataset.Training},
		{Sample: "s2", Class: 1, Dataset: "A", Partition: dataset.Training},
		{Sample: "s3", Class: 0, Dataset: "B", Partition: dataset.Validation},
		{Sample: "s4", Class: 1, Dataset: "B", Partition: dataset.Validation},
	})
	require.NoError(t, err)

	opts := baseOptions()
	opts.Model = func(map[string]any) (model.Classifier, error) { return dummy.NewDummyClassifier(), nil }
	opts.Folds = 2
	opts.Threshold = 0
	drv := newDriver(t, d, opts)

	table, err := drv.Run(context.Background(), Grid{{N: 2, K: 1}})
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g2"}, rowKeys(table))
	assert.Equal(t, []string{"A;accuracy", "B;accuracy"}, table.ScoreColumns)
	for _, r := range table.Rows {
		assert.Equal(t, 2, r.N)
		assert.Equal(t, 1, r.K)
	}
	assert.Equal(t, []SummaryRow{{N: 2, K: 1, NumTrainingReliable: 2, NumValidationReliable: 2, PercentageReliable: 100}}, drv.Summary())
}

func TestRunGateAndSummary(t *testing.T) {
	sink := &memorySink{}
	opts := baseOptions()
	opts.Sink = sink
	drv := newDriver(t, gateData(t), opts)

	table, err := drv.Run(context.Background(), Grid{{N: 3, K: 1}, {N: 3, K: 2}})
	require.NoError(t, err)

	assert.Equal(t, []string{"f1", "f3", "f1;f3"}, rowKeys(table))
	assert.Equal(t, []string{"filt;accuracy", "train;accuracy", "valid;accuracy"}, table.ScoreColumns)

	f3 := table.Rows[1]
	assert.Equal(t, 1.0, f3.Scores["train;accuracy"])
	assert.Equal(t, 1.0, f3.Scores["filt;accuracy"])
	assert.Equal(t, 0.0, f3.Scores["valid;accuracy"], "validation scores are recorded, not gated")

	assert.Equal(t, []SummaryRow{
		{N: 3, K: 1, NumTrainingReliable: 2, NumValidationReliable: 1, PercentageReliable: 50},
		{N: 3, K: 2, NumTrainingReliable: 1, NumValidationReliable: 0, PercentageReliable: 0},
	}, drv.Summary())

	assert.Equal(t, 2, sink.writes)
	assert.Equal(t, rowKeys(table), rowKeys(sink.results))
	assert.Equal(t, drv.Summary(), sink.summary)
	require.Len(t, sink.shares, 2)
	assert.Equal(t, "f1", sink.shares[0].Feature)
	assert.Equal(t, "f3", sink.shares[1].Feature)
	assert.InDelta(t, 200.0/3, sink.shares[0].Percent, 1e-9)
	assert.InDelta(t, 200.0/3, sink.shares[1].Percent, 1e-9)

	assert.Equal(t, 3.0, testutil.ToFloat64(drv.tel.subsets.WithLabelValues(outcomePassed)))
	assert.Equal(t, 3.0, testutil.ToFloat64(drv.tel.subsets.WithLabelValues(outcomeFiltered)))
}

func TestRunGateMonotoneInThreshold(t *testing.T) {
	d := gateData(t)
	prev := -1
	for _, threshold := range []float64{1, 0.75, 0.5, 0.25, 0} {
		opts := baseOptions()
		opts.Threshold = threshold
		table, err := newDriver(t, d, opts).Run(context.Background(), Grid{{N: 3, K: 2}})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, table.Len(), prev, "threshold %v", threshold)
		prev = table.Len()
	}
	assert.Equal(t, 3, prev)
}

func TestRunIndependentOfWorkerCount(t *testing.T) {
	d := gateData(t)
	grid := Grid{{N: 3, K: 1}, {N: 3, K: 2}, {N: 3, K: 3}}

	var want *ResultTable
	for _, workers := range []int{1, 2, 3, 8} {
		opts := baseOptions()
		opts.Workers = workers
		opts.Threshold = 0
		got, err := newDriver(t, d, opts).Run(context.Background(), grid)
		require.NoError(t, err)
		if want == nil {
			want = got
			continue
		}
		assert.Equal(t, want.Rows, got.Rows, "workers=%d", workers)
	}
	assert.Equal(t, []string{"f1", "f2", "f3", "f1;f2", "f1;f3", "f2;f3", "f1;f2;f3"}, rowKeys(want))
}

func TestRunSampledSubsetsReproducible(t *testing.T) {
	d := gateData(t)
	run := func(workers int) *ResultTable {
		opts := baseOptions()
		opts.Threshold = 0
		opts.Workers = workers
		opts.LimitSubsets = true
		opts.NumSubsets = 2
		opts.ShuffleSubsets = true
		opts.Seed = 7
		table, err := newDriver(t, d, opts).Run(context.Background(), Grid{{N: 3, K: 2}})
		require.NoError(t, err)
		return table
	}

	a, b := run(1), run(2)
	require.Equal(t, 2, a.Len())
	assert.Equal(t, a.Rows, b.Rows)
	assert.True(t, a.Rows[0].Key < a.Rows[1].Key, "shuffled samples are sorted by key")
}

func TestRunSelectionErrorSkipsCell(t *testing.T) {
	opts := baseOptions()
	opts.Threshold = 0
	drv := newDriver(t, gateData(t), opts)

	table, err := drv.Run(context.Background(), Grid{{N: 5, K: 1}, {N: 2, K: 1}})
	require.NoError(t, err)
	assert.Equal(t, []string{"f1", "f2"}, rowKeys(table))
	assert.Equal(t, []SummaryRow{
		{N: 5, K: 1},
		{N: 2, K: 1, NumTrainingReliable: 2, NumValidationReliable: 2, PercentageReliable: 100},
	}, drv.Summary())

	_, _, err = drv.RunNK(context.Background(), 5, 1)
	var selErr *errors.SelectionError
	assert.True(t, errors.As(err, &selErr))
}

type panicModel struct{ cutModel }

func (*panicModel) Fit(X, y mat.Matrix) error { panic("fit exploded") }

func TestRunWorkerFailure(t *testing.T) {
	opts := baseOptions()
	opts.Workers = 2
	opts.Model = func(map[string]any) (model.Classifier, error) { return &panicModel{}, nil }
	sink := &memorySink{}
	opts.Sink = sink
	drv := newDriver(t, gateData(t), opts)

	_, err := drv.Run(context.Background(), Grid{{N: 3, K: 1}})
	require.Error(t, err)

	var wf *errors.WorkerFailure
	require.True(t, errors.As(err, &wf))
	assert.Equal(t, 3, wf.N)
	assert.Equal(t, 1, wf.K)

	var pe *errors.PanicError
	assert.True(t, errors.As(err, &pe))
	assert.Zero(t, sink.writes, "nothing is persisted for a failed cell")
}

func TestRunModelErrorAbortsRun(t *testing.T) {
	opts := baseOptions()
	opts.Model = func(map[string]any) (model.Classifier, error) {
		return nil, errors.NewValidationError("C", "must be positive", -1)
	}
	_, err := newDriver(t, gateData(t), opts).Run(context.Background(), Grid{{N: 3, K: 1}})

	var wf *errors.WorkerFailure
	require.True(t, errors.As(err, &wf))
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestRunSkipsSubsetsWithTooFewSamples(t *testing.T) {
	opts := baseOptions()
	opts.Folds = 7
	drv := newDriver(t, gateData(t), opts)

	table, err := drv.Run(context.Background(), Grid{{N: 3, K: 1}})
	require.NoError(t, err)
	assert.Zero(t, table.Len())
	assert.Equal(t, 3.0, testutil.ToFloat64(drv.tel.subsets.WithLabelValues(outcomeSkipped)))
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newDriver(t, gateData(t), baseOptions()).Run(ctx, Grid{{N: 3, K: 1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunSinkFailure(t *testing.T) {
	opts := baseOptions()
	opts.Sink = &memorySink{failWith: errors.New("disk full")}
	_, err := newDriver(t, gateData(t), opts).Run(context.Background(), Grid{{N: 3, K: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRunPreselection(t *testing.T) {
	opts := baseOptions()
	opts.Threshold = 0
	opts.PreSelector = selection.List{Features: []string{"f3", "f1"}}
	drv := newDriver(t, gateData(t), opts)

	pool, err := drv.Features()
	require.NoError(t, err)
	assert.Equal(t, []string{"f3", "f1"}, pool, "pool keeps list order")

	table, err := drv.Run(context.Background(), Grid{{N: 2, K: 2}})
	require.NoError(t, err)
	assert.Equal(t, []string{"f3;f1"}, rowKeys(table))

	_, _, err = drv.RunNK(context.Background(), 3, 1)
	var selErr *errors.SelectionError
	assert.True(t, errors.As(err, &selErr))
}

func TestRunLogsIterations(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelInfo)
	opts := baseOptions()
	opts.Logger = logger
	_, err := newDriver(t, gateData(t), opts).Run(context.Background(), Grid{{N: 3, K: 1}})
	require.NoError(t, err)

	entries, err := logger.GetLogEntries()
	require.NoError(t, err)
	var found bool
	for _, e := range entries {
		if e[log.NKey] == float64(3) && e[log.PassedKey] == float64(2) && e[log.SubsetsKey] == float64(3) {
			found = true
		}
	}
	assert.True(t, found, "iteration record with n, subsets and passed counts")
}

func TestEstimateGrid(t *testing.T) {
	opts := baseOptions()
	opts.LimitSubsets = true
	opts.NumSubsets = 1
	opts.ShuffleSubsets = true
	drv := newDriver(t, gateData(t), opts)

	rows, err := drv.EstimateGrid(context.Background(), 2, time.Hour)
	require.NoError(t, err)
	var cells []NK
	for _, r := range rows {
		cells = append(cells, NK{N: r.N, K: r.K})
		assert.GreaterOrEqual(t, r.Hours, 0.0)
	}
	assert.Equal(t, []NK{{1, 1}, {2, 1}, {3, 1}, {2, 2}, {3, 2}}, cells)

	rows, err = drv.EstimateGrid(context.Background(), 2, -time.Second)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestNewDriverValidation(t *testing.T) {
	d := gateData(t)
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"no model", func(o *Options) { o.Model = nil }},
		{"one fold", func(o *Options) { o.Folds = 1 }},
		{"no scorers", func(o *Options) { o.Scorers = nil }},
		{"unknown main scorer", func(o *Options) { o.MainScorer = "auc" }},
		{"duplicate scorer", func(o *Options) { o.Scorers = []Scorer{accuracyScorer, accuracyScorer} }},
		{"limit without count", func(o *Options) { o.LimitSubsets = true; o.NumSubsets = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := baseOptions()
			tt.mutate(&opts)
			_, err := NewDriver(d, opts)
			var ce *errors.ConfigurationError
			assert.True(t, errors.As(err, &ce), "got %v", err)
		})
	}

	_, err := NewDriver(nil, baseOptions())
	assert.Error(t, err)
}
