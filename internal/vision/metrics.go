// Package vision provides Prometheus metrics for vision service operations.
package vision

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks successful vision service calls
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vision_requests_total",
			Help: "Total number of successful vision service requests",
		},
		[]string{"operation"},
	)

	// RequestErrorsTotal tracks failed vision service calls
	RequestErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vision_request_errors_total",
			Help: "Total number of failed vision service requests",
		},
		[]string{"operation", "error_type"},
	)

	// RequestLatency tracks vision service call latency
	RequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vision_request_latency_seconds",
			Help:    "Vision service request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// CacheHitsTotal tracks report cache hits
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vision_cache_hits_total",
			Help: "Total number of vision report cache hits",
		},
		[]string{"operation"},
	)
)
