package selection

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/exhaustive/core/parallel"
	"github.com/YuminosukeSato/exhaustive/dataset"
	"github.com/YuminosukeSato/exhaustive/pkg/errors"
)

// parallelThreshold is the feature count below which statistics are computed
// on the calling goroutine.
const parallelThreshold = 64

type scored struct {
	feature string
	score   float64
}

// statFunc scores one feature from its negative and positive class values.
type statFunc func(neg, pos []float64) float64

// rank computes fn for every feature on the rows of datasets and sorts the
// features by score, ascending when asc is true. Ties are broken by name.
func rank(d *dataset.Data, datasets []string, fn statFunc, asc bool) ([]scored, error) {
	rows := d.RowsOf(datasets)
	var negRows, posRows []int
	for _, r := range rows {
		if d.Label(r) == 1 {
			posRows = append(posRows, r)
		} else {
			negRows = append(negRows, r)
		}
	}
	if len(negRows) < 2 || len(posRows) < 2 {
		return nil, errors.NewConfigurationErrorf("datasets",
			"ranking needs at least two samples per class, got %d negative and %d positive", len(negRows), len(posRows))
	}

	features := d.Features()
	out := make([]scored, len(features))
	parallel.ParallelizeWithThreshold(len(features), parallelThreshold, func(start, end int) {
		for j := start; j < end; j++ {
			// Column only fails on unknown names; these come from the matrix.
			neg, _ := d.Matrix.Column(features[j], negRows)
			pos, _ := d.Matrix.Column(features[j], posRows)
			s := fn(neg, pos)
			if math.IsNaN(s) {
				if asc {
					s = math.Inf(1)
				} else {
					s = math.Inf(-1)
				}
			}
			out[j] = scored{feature: features[j], score: s}
		}
	})

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].score != out[b].score {
			if asc {
				return out[a].score < out[b].score
			}
			return out[a].score > out[b].score
		}
		return out[a].feature < out[b].feature
	})
	return out, nil
}

func names(ranked []scored) []string {
	out := make([]string, len(ranked))
	for i, s := range ranked {
		out[i] = s.feature
	}
	return out
}

// WelchPValue is the two-sided p-value of Welch's unequal-variance t-test.
// It returns 1 when both groups have zero variance.
func WelchPValue(neg, pos []float64) float64 {
	m0, v0 := stat.MeanVariance(neg, nil)
	m1, v1 := stat.MeanVariance(pos, nil)
	n0, n1 := float64(len(neg)), float64(len(pos))

	se0, se1 := v0/n0, v1/n1
	se := se0 + se1
	if se == 0 {
		if m0 == m1 {
			return 1
		}
		return 0
	}
	t := (m1 - m0) / math.Sqrt(se)
	df := se * se / (se0*se0/(n0-1) + se1*se1/(n1-1))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.Survival(math.Abs(t))
}

// AbsMeanDifference is |mean(pos) - mean(neg)|.
func AbsMeanDifference(neg, pos []float64) float64 {
	return math.Abs(stat.Mean(pos, nil) - stat.Mean(neg, nil))
}

// TTest ranks features by ascending Welch t-test p-value between classes.
// As a pre-selector it keeps the features with p-value below Alpha, or all of
// them when Alpha is zero.
type TTest struct {
	Datasets []string
	Alpha    float64
}

func (s TTest) ranked(d *dataset.Data) ([]scored, error) {
	datasets, err := statisticDatasets(d, s.Datasets)
	if err != nil {
		return nil, err
	}
	return rank(d, datasets, WelchPValue, true)
}

// PreSelect implements PreSelector.
func (s TTest) PreSelect(d *dataset.Data) ([]string, error) {
	ranked, err := s.ranked(d)
	if err != nil {
		return nil, err
	}
	if s.Alpha > 0 {
		cut := sort.Search(len(ranked), func(i int) bool { return ranked[i].score >= s.Alpha })
		ranked = ranked[:cut]
	}
	if len(ranked) == 0 {
		return nil, errors.NewConfigurationErrorf("feature_pre_selector", "no feature has p-value below %g", s.Alpha)
	}
	return names(ranked), nil
}

// Select implements Selector.
func (s TTest) Select(d *dataset.Data, n int) ([]string, error) {
	ranked, err := s.ranked(d)
	if err != nil {
		return nil, err
	}
	return firstN(names(ranked), n)
}

// MeanDifference ranks features by descending absolute difference of class means.
type MeanDifference struct {
	Datasets []string
}

// PreSelect implements PreSelector and keeps every feature, ranked.
func (s MeanDifference) PreSelect(d *dataset.Data) ([]string, error) {
	datasets, err := statisticDatasets(d, s.Datasets)
	if err != nil {
		return nil, err
	}
	ranked, err := rank(d, datasets, AbsMeanDifference, false)
	if err != nil {
		return nil, err
	}
	return names(ranked), nil
}

// Select implements Selector.
func (s MeanDifference) Select(d *dataset.Data, n int) ([]string, error) {
	pool, err := s.PreSelect(d)
	if err != nil {
		return nil, err
	}
	return firstN(pool, n)
}

var (
	_ PreSelector = All{}
	_ Selector    = All{}
	_ PreSelector = List{}
	_ Selector    = List{}
	_ PreSelector = TTest{}
	_ Selector    = TTest{}
	_ PreSelector = MeanDifference{}
	_ Selector    = MeanDifference{}
)
