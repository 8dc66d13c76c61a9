// Package metrics defines Prometheus instrumentation for the conversion
// engine: job outcomes per backend, fallback transitions, and durations.
// Metrics register on the default registry; the shell decides whether an
// exporter is exposed.
package metrics
