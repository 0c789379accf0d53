package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// telemetry holds the run counters on a registry private to one Driver, so
// that concurrent drivers in one process do not share series.
type telemetry struct {
	registry *prometheus.Registry

	subsets   *prometheus.CounterVec
	cellTime  prometheus.Histogram
	retention *prometheus.GaugeVec
}

func newTelemetry() *telemetry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &telemetry{
		registry: reg,
		subsets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "exhaustive",
			Name:      "subsets_total",
			Help:      "Feature subsets processed, by outcome (passed, filtered, skipped).",
		}, []string{"outcome"}),
		cellTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "exhaustive",
			Name:      "cell_duration_seconds",
			Help:      "Wall time of one (n, k) grid cell.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 10),
		}),
		retention: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "exhaustive",
			Name:      "retention_percent",
			Help:      "Share of gated subsets that also hold up on every dataset.",
		}, []string{"n", "k"}),
	}
}

const (
	outcomePassed   = "passed"
	outcomeFiltered = "filtered"
	outcomeSkipped  = "skipped"
)

// write dumps the registry in text exposition format, replacing path.
func (t *telemetry) write(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, t.registry)
}
