// Package metrics records operation outcomes for both the record store
// service and the roster client.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder observes the outcome of a named operation.
type Recorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Nop discards every observation.
type Nop struct{}

func (Nop) Observe(context.Context, string, bool, time.Duration) {}

// Prometheus exports observations as a counter and a histogram, both
// labelled by operation.
type Prometheus struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheus registers the collectors on reg under the given subsystem
// ("client" or "server"). Passing a fresh prometheus.NewRegistry() keeps
// tests independent of the default registry.
func NewPrometheus(reg prometheus.Registerer, subsystem string) (*Prometheus, error) {
	p := &Prometheus{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roster",
			Subsystem: subsystem,
			Name:      "operations_total",
			Help:      "Operations by name and result.",
		}, []string{"operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "roster",
			Subsystem: subsystem,
			Name:      "operation_duration_seconds",
			Help:      "Operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	for _, c := range []prometheus.Collector{p.total, p.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Observe implements Recorder.
func (p *Prometheus) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	result := "error"
	if success {
		result = "success"
	}
	p.total.WithLabelValues(operation, result).Inc()
	p.duration.WithLabelValues(operation).Observe(duration.Seconds())
}

// Middleware wraps an http.Handler and observes each request under
// operation. A response status below 400 counts as success.
func Middleware(rec Recorder, operation string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		rec.Observe(r.Context(), operation, sw.status < 400, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// StatusLabel formats an HTTP status for log attributes.
func StatusLabel(status int) string {
	if status == 0 {
		return "network"
	}
	return strconv.Itoa(status)
}
