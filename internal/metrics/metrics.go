package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Thumbnail pipeline metrics
var (
	ThumbnailsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_gen_thumbnails_processed_total",
			Help: "Total number of thumbnail pipeline outcomes",
		},
		[]string{"outcome"}, // generated, cached, failed
	)

	ThumbnailGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gallery_gen_thumbnail_generation_duration_seconds",
			Help:    "Time spent encoding a single thumbnail pair",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ThumbnailBytesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_gen_thumbnail_bytes_written_total",
			Help: "Bytes written per derivative format",
		},
		[]string{"format"}, // webp, jpeg
	)
)

// Build metrics
var (
	BuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_gen_builds_total",
			Help: "Total number of gallery builds",
		},
		[]string{"status"}, // success, error
	)

	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gallery_gen_build_duration_seconds",
			Help:    "Full gallery build duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	ImagesDiscovered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_gen_images_discovered",
			Help: "Number of source images found in the last scan",
		},
	)
)

// HTTP metrics (preview server)
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_gen_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_gen_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
