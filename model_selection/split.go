// Package model_selection provides K-fold splitting, hyperparameter grids and
// cross-validated grid search over binary classifiers.
package model_selection

import (
	"math/rand/v2"
	"sort"

	"github.com/YuminosukeSato/exhaustive/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// CVFold holds the row indices of one train/test split.
type CVFold struct {
	TrainIndices []int
	TestIndices  []int
}

// Splitter generates cross-validation folds.
type Splitter interface {
	Split(X, y mat.Matrix) ([]CVFold, error)
	GetNSplits() int
}

// KFold splits rows into NSplits contiguous folds. The first n%NSplits folds
// get one extra row. With Shuffle the row order is permuted first using a PCG
// source seeded with RandomSeed.
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed uint64
}

// NewKFold creates a KFold splitter. nSplits below 2 falls back to 5.
func NewKFold(nSplits int, shuffle bool, randomSeed uint64) *KFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &KFold{NSplits: nSplits, Shuffle: shuffle, RandomSeed: randomSeed}
}

// GetNSplits returns the number of folds.
func (kf *KFold) GetNSplits() int { return kf.NSplits }

// Split returns NSplits folds. It fails with InsufficientDataError when X has
// fewer rows than folds.
func (kf *KFold) Split(X, _ mat.Matrix) ([]CVFold, error) {
	nSamples, _ := X.Dims()
	if nSamples < kf.NSplits {
		return nil, errors.NewInsufficientDataError(nSamples, kf.NSplits)
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(kf.RandomSeed, kf.RandomSeed))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	return foldsFromAssignment(nSamples, kf.NSplits, assignContiguous(indices, kf.NSplits)), nil
}

// assignContiguous maps each row index to its test fold.
func assignContiguous(indices []int, nSplits int) []int {
	fold := make([]int, len(indices))
	size, remainder := len(indices)/nSplits, len(indices)%nSplits
	pos := 0
	for f := 0; f < nSplits; f++ {
		n := size
		if f < remainder {
			n++
		}
		for _, idx := range indices[pos : pos+n] {
			fold[idx] = f
		}
		pos += n
	}
	return fold
}

// foldsFromAssignment builds folds with ascending train and test indices.
func foldsFromAssignment(nSamples, nSplits int, fold []int) []CVFold {
	folds := make([]CVFold, nSplits)
	for i := 0; i < nSamples; i++ {
		for f := range folds {
			if fold[i] == f {
				folds[f].TestIndices = append(folds[f].TestIndices, i)
			} else {
				folds[f].TrainIndices = append(folds[f].TrainIndices, i)
			}
		}
	}
	return folds
}

// StratifiedKFold keeps the class proportions of y roughly equal across folds
// by dealing each class's rows round-robin over the folds.
type StratifiedKFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed uint64
}

// NewStratifiedKFold creates a StratifiedKFold splitter. nSplits below 2 falls back to 5.
func NewStratifiedKFold(nSplits int, shuffle bool, randomSeed uint64) *StratifiedKFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &StratifiedKFold{NSplits: nSplits, Shuffle: shuffle, RandomSeed: randomSeed}
}

// GetNSplits returns the number of folds.
func (skf *StratifiedKFold) GetNSplits() int { return skf.NSplits }

// Split returns NSplits folds. It fails with InsufficientDataError when X has
// fewer rows than folds.
func (skf *StratifiedKFold) Split(X, y mat.Matrix) ([]CVFold, error) {
	nSamples, _ := X.Dims()
	if nSamples < skf.NSplits {
		return nil, errors.NewInsufficientDataError(nSamples, skf.NSplits)
	}
	if y == nil {
		return nil, errors.NewValueError("StratifiedKFold.Split", "labels are required")
	}
	if yRows, _ := y.Dims(); yRows != nSamples {
		return nil, errors.NewDimensionError("StratifiedKFold.Split", nSamples, yRows, 0)
	}

	byClass := make(map[float64][]int)
	for i := 0; i < nSamples; i++ {
		label := y.At(i, 0)
		byClass[label] = append(byClass[label], i)
	}
	labels := make([]float64, 0, len(byClass))
	for label := range byClass {
		labels = append(labels, label)
	}
	sort.Float64s(labels)

	var r *rand.Rand
	if skf.Shuffle {
		r = rand.New(rand.NewPCG(skf.RandomSeed, skf.RandomSeed))
	}

	fold := make([]int, nSamples)
	next := 0
	for _, label := range labels {
		rows := byClass[label]
		if r != nil {
			r.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		}
		for _, idx := range rows {
			fold[idx] = next % skf.NSplits
			next++
		}
	}

	return foldsFromAssignment(nSamples, skf.NSplits, fold), nil
}

var (
	_ Splitter = (*KFold)(nil)
	_ Splitter = (*StratifiedKFold)(nil)
)
