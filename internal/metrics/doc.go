// Package metrics defines Prometheus metrics for the gallery build
// pipeline and the preview server. Metrics are exposed on /metrics when
// the preview server runs; one-shot builds still record them so watch
// mode accumulates counts across rebuilds.
package metrics
