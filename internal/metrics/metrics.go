package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Conversion job metrics
var (
	ConversionsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_convert_conversions_started_total",
			Help: "Total number of conversion jobs started",
		},
		[]string{"kind"},
	)

	ConversionsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_convert_conversions_completed_total",
			Help: "Total number of conversion jobs completed, by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	ConversionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_convert_conversion_duration_seconds",
			Help:    "Conversion job duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"backend"},
	)

	FallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_convert_fallbacks_total",
			Help: "Total number of primary-to-external backend fallbacks",
		},
	)
)

// External tool metrics
var (
	IntrospectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_convert_introspections_total",
			Help: "Total number of external transcoder capability introspections",
		},
		[]string{"status"},
	)

	CodecAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_convert_codec_attempts_total",
			Help: "Total number of external encoder candidate attempts",
		},
		[]string{"codec", "status"},
	)
)

// InitializeMetrics pre-populates expected label combinations so every metric
// is exported from the first scrape. Call once at startup.
func InitializeMetrics() {
	for _, kind := range []string{"video", "audio", "image"} {
		ConversionsStarted.WithLabelValues(kind)
	}
	for _, backend := range []string{"primary", "external"} {
		for _, outcome := range []string{"succeeded", "failed", "cancelled"} {
			ConversionsCompleted.WithLabelValues(backend, outcome)
		}
		ConversionDuration.WithLabelValues(backend)
	}
	for _, status := range []string{"ok", "error"} {
		IntrospectionsTotal.WithLabelValues(status)
	}
}
