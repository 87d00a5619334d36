package common

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_http_requests_total",
		Help: "Total number of HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quill_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_rate_limited_requests_total",
		Help: "Requests rejected by the rate limiter",
	})

	// BlogViewsTotal counts view recordings by result (recorded|failed).
	BlogViewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_blog_views_total",
		Help: "Blog view recordings by result",
	}, []string{"result"})

	UserEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_user_events_total",
		Help: "User lifecycle events by type and publish result",
	}, []string{"event", "result"})
)
