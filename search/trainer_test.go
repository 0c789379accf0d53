package search

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/exhaustive/core/model"
	"github.com/YuminosukeSato/exhaustive/metrics"
)

// recordingScorer wraps a scorer and keeps the labels and predictions of
// every call.
type recordingScorer struct {
	mu    sync.Mutex
	yTrue [][]float64
	yPred [][]float64
}

func (r *recordingScorer) wrap(name string, needsProba bool, fn func(yTrue, yPred *mat.VecDense) (float64, error)) Scorer {
	return Scorer{Name: name, NeedsProba: needsProba, Fn: func(yTrue, yPred *mat.VecDense) (float64, error) {
		r.mu.Lock()
		r.yTrue = append(r.yTrue, mat.Col(nil, 0, yTrue))
		r.yPred = append(r.yPred, mat.Col(nil, 0, yPred))
		r.mu.Unlock()
		return fn(yTrue, yPred)
	}}
}

// countingTransformer is an identity preprocessor that records the rows of
// every Fit.
type countingTransformer struct {
	mu   *sync.Mutex
	fits *[]*mat.Dense
}

func (c countingTransformer) Fit(X mat.Matrix) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	*c.fits = append(*c.fits, mat.DenseCopyOf(X))
	return nil
}

func (c countingTransformer) Transform(X mat.Matrix) (mat.Matrix, error) { return X, nil }

func (c countingTransformer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := c.Fit(X); err != nil {
		return nil, err
	}
	return c.Transform(X)
}

func TestTrainerFoldsAreStratified(t *testing.T) {
	// gateData lists its Training rows sorted by class; plain K-fold would
	// give single-class test folds.
	rec := &recordingScorer{}
	opts := baseOptions()
	opts.Scorers = []Scorer{rec.wrap("accuracy", false, metrics.Accuracy)}
	drv := newDriver(t, gateData(t), opts)

	_, _, err := drv.RunNK(context.Background(), 3, 1)
	require.NoError(t, err)

	require.NotEmpty(t, rec.yTrue)
	for i, y := range rec.yTrue {
		assert.Equal(t, 0.0, floats.Min(y), "call %d", i)
		assert.Equal(t, 1.0, floats.Max(y), "call %d", i)
	}
}

func TestRunPreprocessorAndProbabilityScorer(t *testing.T) {
	d := gateData(t)
	var (
		mu   sync.Mutex
		fits []*mat.Dense
	)
	rec := &recordingScorer{}
	opts := baseOptions()
	opts.Preprocessor = func() model.Transformer { return countingTransformer{mu: &mu, fits: &fits} }
	opts.Scorers = []Scorer{accuracyScorer, rec.wrap("auc", true, metrics.AUC)}
	drv := newDriver(t, d, opts)

	table, err := drv.Run(context.Background(), Grid{{N: 3, K: 1}})
	require.NoError(t, err)

	require.Len(t, fits, 3, "one preprocessor fit per subset")
	training := d.TrainingIndices()
	for _, f := range fits {
		r, c := f.Dims()
		assert.Equal(t, len(training), r)
		assert.Equal(t, 1, c)
		assert.Equal(t, []float64{0, 0.1, 0.2, 1, 1.1, 1.2}, mat.Col(nil, 0, f))
	}

	assert.Equal(t, []string{
		"filt;accuracy", "filt;auc", "train;accuracy", "train;auc", "valid;accuracy", "valid;auc",
	}, table.ScoreColumns)
	require.Equal(t, []string{"f1", "f3"}, rowKeys(table))
	assert.InDelta(t, 1.0, table.Rows[0].Scores["train;auc"], 1e-12)
	assert.InDelta(t, 1.0, table.Rows[0].Scores["filt;auc"], 1e-12)
	assert.InDelta(t, 0.0, table.Rows[1].Scores["valid;auc"], 1e-12)

	require.NotEmpty(t, rec.yPred)
	for i, p := range rec.yPred {
		continuous := false
		for _, v := range p {
			if v != 0 && v != 1 {
				continuous = true
			}
		}
		assert.True(t, continuous, "auc call %d got hard labels %v", i, p)
	}
}

func TestEvaluatorUndefinedScoreFailsGate(t *testing.T) {
	undefined := Scorer{Name: "undefined", Fn: func(*mat.VecDense, *mat.VecDense) (float64, error) {
		return math.NaN(), nil
	}}
	opts := baseOptions()
	opts.Scorers = []Scorer{undefined}
	opts.MainScorer = "undefined"
	opts.Threshold = 0

	table, err := newDriver(t, gateData(t), opts).Run(context.Background(), Grid{{N: 3, K: 1}})
	require.NoError(t, err)
	assert.Zero(t, table.Len())
}
