package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tailor outcomes.
const (
	OutcomeDelivered    = "delivered"
	OutcomeBadRequest   = "bad_request"
	OutcomeUnauthorized = "unauthorized"
	OutcomeBackendError = "backend_error"
	OutcomeInternal     = "internal_error"
)

var (
	registry = prometheus.NewRegistry()

	tailorRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_tailor_requests_total",
		Help: "Tailoring requests by outcome.",
	}, []string{"outcome"})

	tailorDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "portal_tailor_duration_seconds",
		Help:    "Time spent waiting on the tailoring backend.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 15, 30, 60, 120},
	})

	artifactBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_artifact_bytes_total",
		Help: "Bytes of generated artifacts delivered, by delivery path.",
	}, []string{"path"})

	artifactMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "portal_artifact_not_found_total",
		Help: "Download requests for artifacts that were not in the store.",
	})
)

func init() {
	registry.MustRegister(
		tailorRequests,
		tailorDuration,
		artifactBytes,
		artifactMisses,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
}

// ObserveTailor records one orchestrator call.
func ObserveTailor(outcome string, seconds float64) {
	tailorRequests.WithLabelValues(outcome).Inc()
	if seconds >= 0 {
		tailorDuration.Observe(seconds)
	}
}

// AddArtifactBytes counts bytes handed to a client via path ("store", "stream", "proxy", "download").
func AddArtifactBytes(path string, n int) {
	if n > 0 {
		artifactBytes.WithLabelValues(path).Add(float64(n))
	}
}

// IncArtifactNotFound counts a download miss.
func IncArtifactNotFound() {
	artifactMisses.Inc()
}

// Registry exposes the collector registry, mainly for tests.
func Registry() *prometheus.Registry {
	return registry
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
