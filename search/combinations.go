package search

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/combin"
)

// exactBinomialLimit is the largest n for which combin.Binomial cannot overflow int64.
const exactBinomialLimit = 60

// NumSubsets returns C(n, k) as a float64, 0 when k is outside [0, n].
func NumSubsets(n, k int) float64 {
	if k < 0 || n < 0 || k > n {
		return 0
	}
	if n <= exactBinomialLimit {
		return float64(combin.Binomial(n, k))
	}
	return combin.GeneralizedBinomial(float64(n), float64(k))
}

// Combinations enumerates every size-k subset of pool in lexicographic order
// of pool positions. It returns nil when k < 1 or k > len(pool).
func Combinations(pool []string, k int) []Subset {
	n := len(pool)
	if k < 1 || k > n {
		return nil
	}
	out := make([]Subset, 0, int(NumSubsets(n, k)))
	gen := combin.NewCombinationGenerator(n, k)
	idx := make([]int, k)
	for gen.Next() {
		gen.Combination(idx)
		s := make(Subset, k)
		for i, p := range idx {
			s[i] = pool[p]
		}
		out = append(out, s)
	}
	return out
}

// Sample applies subset limiting: with shuffle the whole enumeration is
// permuted by a PCG source seeded with seed, then the first count subsets are
// kept. Without limit the input is returned unchanged.
func Sample(subsets []Subset, limit bool, count int, shuffle bool, seed uint64) []Subset {
	if !limit {
		return subsets
	}
	out := append([]Subset(nil), subsets...)
	if shuffle {
		r := rand.New(rand.NewPCG(seed, seed))
		r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	if count >= 0 && count < len(out) {
		out = out[:count]
	}
	return out
}
