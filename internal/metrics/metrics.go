// Package metrics holds the Prometheus collectors the Router and Reaper
// increment. Scraped at GET /metrics, unauthenticated, intended for
// in-cluster use only.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "flicker_http_requests_total", Help: "Total HTTP requests"},
		[]string{"route", "method", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flicker_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ReaperPostsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "flicker_reaper_posts_expired_total", Help: "Posts soft-deleted by the reaper"},
	)
	ReaperCommentsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "flicker_reaper_comments_expired_total", Help: "Comments soft-deleted by the reaper"},
	)
	ReaperSweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flicker_reaper_sweep_duration_seconds",
			Help:    "Duration of a single reaper sweep",
			Buckets: prometheus.DefBuckets,
		},
	)
	ReaperErrors = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "flicker_reaper_errors_total", Help: "Errors encountered during reaper sweeps"},
	)
)

// MustRegister registers every collector against the default registry.
// Called once at startup.
func MustRegister() {
	prometheus.MustRegister(
		RequestsTotal, RequestDuration,
		ReaperPostsExpired, ReaperCommentsExpired, ReaperSweepDuration, ReaperErrors,
	)
}
