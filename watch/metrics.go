package watch

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bioimagesuiteweb/bisresample/batch"
)

// Metrics counts module invocations.
type Metrics struct {
	registry    *prometheus.Registry
	invocations *prometheus.CounterVec
	seconds     prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bisresample_invocations_total",
			Help: "Resample invocations by result.",
		}, []string{"result"}),
		seconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bisresample_invocation_seconds",
			Help:    "Time spent per resample invocation, including file I/O.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
	m.registry.MustRegister(m.invocations, m.seconds)
	// pre-create both series so they are exported at zero
	m.invocations.WithLabelValues("ok")
	m.invocations.WithLabelValues("failed")
	return m
}

// Observe records one batch result.
func (m *Metrics) Observe(res batch.Result) {
	result := "failed"
	if res.OK {
		result = "ok"
	}
	m.invocations.WithLabelValues(result).Inc()
	m.seconds.Observe(res.Elapsed.Seconds())
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
