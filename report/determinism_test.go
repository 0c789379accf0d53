package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/exhaustive/core/model"
	"github.com/YuminosukeSato/exhaustive/dataset"
	"github.com/YuminosukeSato/exhaustive/metrics"
	"github.com/YuminosukeSato/exhaustive/model_selection"
	"github.com/YuminosukeSato/exhaustive/pkg/log"
	"github.com/YuminosukeSato/exhaustive/preprocessing"
	"github.com/YuminosukeSato/exhaustive/search"
	"github.com/YuminosukeSato/exhaustive/sklearn/linear_model"
)

func searchData(t *testing.T) *dataset.Data {
	t.Helper()
	values := []float64{
		0.1, 0.9, 0.4, 0.2,
		0.3, 0.7, 0.5, 0.1,
		0.2, 0.8, 0.6, 0.3,
		0.4, 0.6, 0.3, 0.2,
		1.1, 0.2, 0.5, 0.9,
		1.3, 0.1, 0.4, 0.8,
		1.2, 0.3, 0.6, 1.0,
		1.0, 0.4, 0.5, 0.7,
		0.2, 0.8, 0.5, 0.2,
		1.2, 0.2, 0.4, 0.9,
		0.3, 0.9, 0.6, 0.8,
		1.1, 0.1, 0.5, 0.3,
	}
	samples := make([]string, 12)
	for i := range samples {
		samples[i] = fmt.Sprintf("s%02d", i+1)
	}
	m, err := dataset.NewFeatureMatrix(samples, []string{"g1", "g2", "g3", "g4"}, mat.NewDense(12, 4, values))
	require.NoError(t, err)

	var ann []dataset.Annotation
	for i, s := range samples {
		a := dataset.Annotation{Sample: s, Class: (i / 4) % 2}
		switch {
		case i < 8:
			a.Dataset, a.Partition = "train", dataset.Training
		case i < 10:
			a.Dataset, a.Partition, a.Class = "filt", dataset.Filtration, i-8
		default:
			a.Dataset, a.Partition, a.Class = "valid", dataset.Validation, i-10
		}
		ann = append(ann, a)
	}
	d, err := dataset.NewData(m, ann)
	require.NoError(t, err)
	return d
}

// runIntoDir runs a sampled search with a fixed seed and returns the bytes of
// the results and summary files.
func runIntoDir(t *testing.T, d *dataset.Data) ([]byte, []byte) {
	t.Helper()
	dir, err := NewDir(t.TempDir(), false)
	require.NoError(t, err)
	logger, _ := log.NewTestLogger(log.LevelInfo)

	drv, err := search.NewDriver(d, search.Options{
		Preprocessor: func() model.Transformer { return preprocessing.NewStandardScalerDefault() },
		Model: func(params map[string]any) (model.Classifier, error) {
			lr := linear_model.NewLogisticRegression()
			if err := lr.SetParams(params); err != nil {
				return nil, err
			}
			return lr, nil
		},
		ParamGrid: model_selection.ParamGrid{{Name: "C", Values: []any{0.1, 1.0}}},
		Folds:     2,
		Scorers: []search.Scorer{
			{Name: "accuracy", Fn: metrics.Accuracy},
			{Name: "ROC_AUC", NeedsProba: true, Fn: metrics.AUC},
		},
		MainScorer:     "accuracy",
		Threshold:      0,
		LimitSubsets:   true,
		NumSubsets:     3,
		ShuffleSubsets: true,
		Seed:           11,
		Workers:        2,
		Sink:           dir,
		Logger:         logger,
	})
	require.NoError(t, err)

	_, err = drv.Run(context.Background(), search.Grid{{N: 4, K: 1}, {N: 4, K: 2}})
	require.NoError(t, err)

	results, err := os.ReadFile(dir.File(ResultsFile))
	require.NoError(t, err)
	summary, err := os.ReadFile(dir.File(SummaryFile))
	require.NoError(t, err)
	return results, summary
}

func TestRunsWithSameSeedAreByteIdentical(t *testing.T) {
	d := searchData(t)

	results1, summary1 := runIntoDir(t, d)
	results2, summary2 := runIntoDir(t, d)

	table, err := DecodeResults(bytes.NewReader(results1))
	require.NoError(t, err)
	assert.Equal(t, 6, table.Len(), "three sampled subsets per cell at threshold 0")

	assert.Equal(t, string(results1), string(results2))
	assert.Equal(t, string(summary1), string(summary2))
}
