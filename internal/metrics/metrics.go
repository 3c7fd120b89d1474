// Package metrics exposes Prometheus instrumentation for the burn
// path: the one operation expensive and failure-prone enough to
// warrant dashboards. Grounded on ManuGH-xg2g's client_golang usage —
// the teacher never imported a metrics library.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BurnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lyricburn_burn_duration_seconds",
		Help:    "Wall-clock duration of a burn invocation, from admission to finished MP4.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	BurnQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lyricburn_burn_queue_depth",
		Help: "Burns holding an admission slot right now (capacity minus free tickets).",
	})

	EncoderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lyricburn_encoder_failures_total",
		Help: "Burns that failed at any step (probe, segment load, encoder exit, timeout, cancellation), by error kind.",
	}, []string{"reason"})
)

// Handler returns the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
