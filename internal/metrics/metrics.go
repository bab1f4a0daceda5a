package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Audio download metrics
var (
	AudioDownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audio_downloads_total",
			Help: "Total number of audio downloads by outcome.",
		},
		[]string{"status"},
	)

	AudioDownloadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "audio_download_duration_seconds",
			Help: "Time spent fetching and transcoding audio.",
			// Downloads range from a few seconds to several minutes
			Buckets: []float64{1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"status"},
	)

	MetadataProbesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metadata_probes_total",
			Help: "Total number of metadata lookups by outcome.",
		},
		[]string{"status"},
	)
)

// HTTP request metrics
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status code.",
		},
		[]string{"route", "code"},
	)

	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		AudioDownloadsTotal,
		AudioDownloadDuration,
		MetadataProbesTotal,
		HTTPRequestsTotal,
		HTTPRequestsInFlight,
	)
}
