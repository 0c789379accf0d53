package search

import (
	"time"
)

// EstimateTime projects the time of a full (n, k) run from one limited to
// sampleCount subsets. The sampled time is returned unchanged when limiting
// is off or the sample already covered all C(n, k) subsets.
func EstimateTime(n, k int, sampled time.Duration, limit bool, sampleCount int) time.Duration {
	if !limit || sampleCount <= 0 {
		return sampled
	}
	total := NumSubsets(n, k)
	if total <= float64(sampleCount) {
		return sampled
	}
	return time.Duration(float64(sampled) * total / float64(sampleCount))
}
