package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTime(t *testing.T) {
	tests := []struct {
		name    string
		n, k    int
		sampled time.Duration
		limit   bool
		count   int
		want    time.Duration
	}{
		// C(10, 3) = 120 subsets, 30 sampled in 60s.
		{name: "scaled", n: 10, k: 3, sampled: 60 * time.Second, limit: true, count: 30, want: 240 * time.Second},
		{name: "no limit", n: 10, k: 3, sampled: 60 * time.Second, limit: false, count: 30, want: 60 * time.Second},
		{name: "sample covers all", n: 5, k: 2, sampled: time.Second, limit: true, count: 10, want: time.Second},
		{name: "sample exceeds all", n: 5, k: 2, sampled: time.Second, limit: true, count: 50, want: time.Second},
		{name: "non-positive count", n: 10, k: 3, sampled: time.Second, limit: true, count: 0, want: time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateTime(tt.n, tt.k, tt.sampled, tt.limit, tt.count))
		})
	}
}
