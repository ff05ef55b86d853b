package httpadapter

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts and times the requests of every mounted resource.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the HTTP metrics with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	return &Metrics{
		requests: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "crudrouter",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of requests served per resource",
			},
			[]string{"resource", "method", "status"},
		),
		duration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "crudrouter",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Request latency per resource",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"resource", "method"},
		),
	}
}

// Middleware records the requests served under resource.
func (m *Metrics) Middleware(resource string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			m.requests.WithLabelValues(resource, r.Method, strconv.Itoa(status)).Inc()
			m.duration.WithLabelValues(resource, r.Method).Observe(time.Since(start).Seconds())
		})
	}
}
