package search

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/exhaustive/core/model"
	"github.com/YuminosukeSato/exhaustive/dataset"
	"github.com/YuminosukeSato/exhaustive/metrics"
	"github.com/YuminosukeSato/exhaustive/pkg/log"
)

// gateData has three features over train (Training), filt (Filtration) and
// valid (Validation):
//
//	f1 separates the classes everywhere,
//	f2 separates them on train only and is inverted on filt,
//	f3 separates them on train and filt and is inverted on valid.
func gateData(t *testing.T) *dataset.Data {
	t.Helper()
	samples := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10"}
	features := []string{"f1", "f2", "f3"}
	data := mat.NewDense(10, 3, []float64{
		0.0, 0.0, 0.0,
		0.1, 0.1, 0.1,
		0.2, 0.2, 0.2,
		1.0, 1.0, 1.0,
		1.1, 1.1, 1.1,
		1.2, 1.2, 1.2,
		0.1, 1.0, 0.1,
		1.1, 0.0, 1.1,
		0.1, 0.1, 1.0,
		1.1, 1.1, 0.0,
	})
	m, err := dataset.NewFeatureMatrix(samples, features, data)
	require.NoError(t, err)

	ann := func(s string, class int, ds string, p dataset.Partition) dataset.Annotation {
		return dataset.Annotation{Sample: s, Class: class, Dataset: ds, Partition: p}
	}
	d, err := dataset.NewData(m, []dataset.Annotation{
		ann("s1", 0, "train", dataset.Training),
		ann("s2", 0, "train", dataset.Training),
		ann("s3", 0, "train", dataset.Training),
		ann("s4", 1, "train", dataset.Training),
		ann("s5", 1, "train", dataset.Training),
		ann("s6", 1, "train", dataset.Training),
		ann("s7", 0, "filt", dataset.Filtration),
		ann("s8", 1, "filt", dataset.Filtration),
		ann("s9", 0, "valid", dataset.Validation),
		ann("s10", 1, "valid", dataset.Validation),
	})
	require.NoError(t, err)
	return d
}

// cutModel scores a row by the mean of its columns and predicts 1 above the
// midpoint of the training class means.
type cutModel struct {
	cut      float64
	constant float64
	fitted   bool
	single   bool
}

func rowMean(X mat.Matrix, i int) float64 {
	_, c := X.Dims()
	var s float64
	for j := 0; j < c; j++ {
		s += X.At(i, j)
	}
	return s / float64(c)
}

func (m *cutModel) Fit(X, y mat.Matrix) error {
	r, _ := X.Dims()
	var sum [2]float64
	var cnt [2]int
	for i := 0; i < r; i++ {
		c := int(y.At(i, 0))
		sum[c] += rowMean(X, i)
		cnt[c]++
	}
	m.fitted = true
	if cnt[0] == 0 || cnt[1] == 0 {
		m.single = true
		if cnt[1] > 0 {
			m.constant = 1
		}
		return nil
	}
	m.cut = (sum[0]/float64(cnt[0]) + sum[1]/float64(cnt[1])) / 2
	return nil
}

func (m *cutModel) Predict(X mat.Matrix) (mat.Matrix, error) {
	r, _ := X.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		switch {
		case m.single:
			out.Set(i, 0, m.constant)
		case rowMean(X, i) > m.cut:
			out.Set(i, 0, 1)
		}
	}
	return out, nil
}

// PredictProba moves away from 0.5 with the distance to the cut, so its
// positive column is continuous and agrees with Predict.
func (m *cutModel) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	r, _ := X.Dims()
	out := mat.NewDense(r, 2, nil)
	for i := 0; i < r; i++ {
		p := m.constant
		if !m.single {
			p = math.Min(0.95, math.Max(0.05, 0.5+(rowMean(X, i)-m.cut)/2))
		}
		out.Set(i, 0, 1-p)
		out.Set(i, 1, p)
	}
	return out, nil
}

func cutFactory(map[string]any) (model.Classifier, error) { return &cutModel{}, nil }

var accuracyScorer = Scorer{Name: "accuracy", Fn: metrics.Accuracy}

func baseOptions() Options {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	return Options{
		Model:      cutFactory,
		Folds:      3,
		Scorers:    []Scorer{accuracyScorer},
		MainScorer: "accuracy",
		Threshold:  0.9,
		Workers:    1,
		Logger:     logger,
	}
}

// memorySink keeps the last artifact of each kind and counts writes.
type memorySink struct {
	mu       sync.Mutex
	results  *ResultTable
	summary  []SummaryRow
	shares   []FeatureShare
	writes   int
	failWith error
}

func (s *memorySink) WriteResults(table *ResultTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.results = table
	s.writes++
	return nil
}

func (s *memorySink) WriteSummary(rows []SummaryRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = rows
	return nil
}

func (s *memorySink) WriteFeatureFrequency(shares []FeatureShare) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shares = shares
	return nil
}
