package capture

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "showcase"
	metricsSubsystem = "capture"
)

// Metrics holds the Prometheus collectors for captures and batches.
type Metrics struct {
	Captures        *prometheus.CounterVec
	CaptureDuration prometheus.Histogram
	BatchItems      *prometheus.CounterVec
}

// NewMetrics registers capture metrics on reg, or the default registerer when nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Captures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "total",
			Help:      "Screenshot acquisitions by outcome",
		}, []string{"outcome"}),
		CaptureDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "duration_seconds",
			Help:      "Time spent rendering, downloading and re-hosting a screenshot",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 60, 90},
		}),
		BatchItems: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "batch_items_total",
			Help:      "Batch capture items by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) observeCapture(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Captures.WithLabelValues(outcome).Inc()
	m.CaptureDuration.Observe(seconds)
}

func (m *Metrics) observeBatchItem(ok bool) {
	if m == nil {
		return
	}
	outcome := "failed"
	if ok {
		outcome = "succeeded"
	}
	m.BatchItems.WithLabelValues(outcome).Inc()
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "succeeded"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrProviderNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrCaptureFetch):
		return "fetch_failed"
	case errors.Is(err, ErrAssetUpload):
		return "upload_failed"
	default:
		return "error"
	}
}
