// Package metrics exports Prometheus metrics for the API and the engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Evaluation outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
	OutcomeError    = "error"
)

var (
	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "request_latency",
			Subsystem: "pulvis_fes",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.2, 0.4, 0.8, 1.0, 2.0, 4.0, 8.0},
		},
		[]string{"verb", "path", "code"},
	)

	evaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "evaluations_total",
			Subsystem: "pulvis_fes",
			Help:      "Tide evaluations by tide type and outcome.",
		},
		[]string{"tide_type", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		requestLatency,
		evaluations,
	)
}

func ObserveRequestLatency(verb, path, code string, latency float64) {
	requestLatency.With(prometheus.Labels{
		"code": code,
		"verb": verb,
		"path": path,
	}).Observe(latency)
}

// ObserveEvaluation counts one evaluation. missing is the number of waves
// without data at the point.
func ObserveEvaluation(tideType string, missing int, err error) {
	outcome := OutcomeOK
	switch {
	case err != nil:
		outcome = OutcomeError
	case missing > 0:
		outcome = OutcomeDegraded
	}
	evaluations.WithLabelValues(tideType, outcome).Inc()
}

// Middleware records request latencies. Unmatched routes are reported
// under an empty path.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := time.Now()
		c.Next()
		ObserveRequestLatency(c.Request.Method, c.FullPath(), strconv.Itoa(c.Writer.Status()), time.Since(t).Seconds())
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
