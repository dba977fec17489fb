package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pdf_uploads_total",
		Help: "Documents persisted, by upload path.",
	}, []string{"path"})

	deletesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pdf_deletes_total",
		Help: "Documents deleted.",
	})

	analysisFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pdf_analysis_failed_total",
		Help: "Uploads persisted with a placeholder analysis.",
	})

	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by key namespace and result.",
	}, []string{"namespace", "result"})

	workerEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_events_total",
		Help: "Queue events handled by the worker, by outcome.",
	}, []string{"outcome"})

	aiCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ai_gateway_duration_ms",
		Help:    "AI gateway call duration in milliseconds.",
		Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 300000},
	}, []string{"operation", "outcome"})
)

func init() {
	registry.MustRegister(uploadsTotal, deletesTotal, analysisFailedTotal, cacheLookups, workerEvents, aiCallDuration)
}

// IncUpload counts a persisted document. path is "direct" or "presigned".
func IncUpload(path string) {
	uploadsTotal.WithLabelValues(path).Inc()
}

// IncDelete counts a deleted document.
func IncDelete() {
	deletesTotal.Inc()
}

// IncAnalysisFailed counts an upload that fell back to the placeholder analysis.
func IncAnalysisFailed() {
	analysisFailedTotal.Inc()
}

// ObserveCache records a cache lookup for the namespace of key.
func ObserveCache(key string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(namespace(key), result).Inc()
}

// IncWorkerEvent counts a queue event by outcome: received, completed,
// failed or discarded.
func IncWorkerEvent(outcome string) {
	workerEvents.WithLabelValues(outcome).Inc()
}

// ObserveAICall records the latency of one gateway call.
func ObserveAICall(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	aiCallDuration.WithLabelValues(operation, outcome).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Registry exposes the collector registry for tests and embedding.
func Registry() *prometheus.Registry {
	return registry
}

func namespace(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i]
		}
	}
	return "other"
}
