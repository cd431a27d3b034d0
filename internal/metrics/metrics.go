// Package metrics provides the centralized Prometheus metrics registry.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	SimulationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parlayscope",
		Name:      "simulations_total",
		Help:      "Total number of parlay simulations run",
	}, []string{"probability_basis"})
	SimulationErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "parlayscope",
		Name:      "simulation_errors_total",
		Help:      "Total number of rejected simulation requests",
	})
	SlipUploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parlayscope",
		Name:      "slip_uploads_total",
		Help:      "Total number of slip uploads",
	}, []string{"source"})
	LegsRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "parlayscope",
		Name:      "legs_rejected_total",
		Help:      "Total number of legs rejected by validation",
	})
	FramesExtractedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "parlayscope",
		Name:      "frames_extracted_total",
		Help:      "Total number of frames sampled from uploaded videos",
	})
	FramesDedupedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "parlayscope",
		Name:      "frames_deduped_total",
		Help:      "Total number of frames dropped as near-duplicates",
	})
	ExtractionFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parlayscope",
		Name:      "extraction_failures_total",
		Help:      "Total number of failed extraction attempts",
	}, []string{"reason"})
	InsightRefreshesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parlayscope",
		Name:      "insight_refreshes_total",
		Help:      "Total number of scheduled insight refreshes",
	}, []string{"kind", "status"})
)

// Gauge metrics
var (
	ActiveExtractions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "parlayscope",
		Name:      "active_extractions",
		Help:      "Number of extraction passes currently in flight",
	})
	WebsocketSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "parlayscope",
		Name:      "websocket_subscribers",
		Help:      "Number of connected extraction progress subscribers",
	})
)

// Histogram metrics
var (
	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "parlayscope",
		Name:      "simulation_duration_seconds",
		Help:      "Duration of simulation requests in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	ExtractionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "parlayscope",
		Name:      "extraction_duration_seconds",
		Help:      "Duration of frame extraction passes in seconds",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
	})
	FramesPerVideo = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "parlayscope",
		Name:      "frames_per_video",
		Help:      "Deduplicated frame count per processed video",
		Buckets:   []float64{1, 2, 4, 8, 16, 32},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(SimulationsTotal)
		registry.MustRegister(SimulationErrorsTotal)
		registry.MustRegister(SlipUploadsTotal)
		registry.MustRegister(LegsRejectedTotal)
		registry.MustRegister(FramesExtractedTotal)
		registry.MustRegister(FramesDedupedTotal)
		registry.MustRegister(ExtractionFailuresTotal)
		registry.MustRegister(InsightRefreshesTotal)

		// Register gauge metrics
		registry.MustRegister(ActiveExtractions)
		registry.MustRegister(WebsocketSubscribers)

		// Register histogram metrics
		registry.MustRegister(SimulationDuration)
		registry.MustRegister(ExtractionDuration)
		registry.MustRegister(FramesPerVideo)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordSimulation records a completed simulation.
func RecordSimulation(probabilityBasis string, durationSeconds float64) {
	SimulationsTotal.WithLabelValues(probabilityBasis).Inc()
	SimulationDuration.Observe(durationSeconds)
}

// RecordSimulationError records a rejected simulation request.
func RecordSimulationError() {
	SimulationErrorsTotal.Inc()
}

// RecordSlipUpload records a slip upload event.
func RecordSlipUpload(source string) {
	SlipUploadsTotal.WithLabelValues(source).Inc()
}

// RecordExtractionPass records a completed extraction pass.
func RecordExtractionPass(sampled, kept int, durationSeconds float64) {
	FramesExtractedTotal.Add(float64(sampled))
	FramesDedupedTotal.Add(float64(sampled - kept))
	FramesPerVideo.Observe(float64(kept))
	ExtractionDuration.Observe(durationSeconds)
}

// RecordExtractionFailure records a terminal extraction failure.
func RecordExtractionFailure(reason string) {
	ExtractionFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordInsightRefresh records a scheduled insight refresh outcome.
func RecordInsightRefresh(kind, status string) {
	InsightRefreshesTotal.WithLabelValues(kind, status).Inc()
}
