// Package metrics exposes Prometheus collectors for the HTTP surface and
// upstream provider calls.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yumina0616/PromptLab-sub000/pkg/middleware"
)

var (
	// RequestsTotal counts HTTP requests by method, route pattern, and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptlab_http_requests_total",
			Help: "Total HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration observes HTTP request latency in seconds.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "promptlab_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// ProviderCalls counts playground and model-test executions by provider and outcome.
	ProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptlab_provider_calls_total",
			Help: "Total upstream provider calls.",
		},
		[]string{"provider", "outcome"},
	)

	// ProviderTokens accumulates estimated token usage by provider and direction.
	ProviderTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptlab_provider_tokens_total",
			Help: "Estimated tokens sent to and received from providers.",
		},
		[]string{"provider", "direction"},
	)
)

// Middleware records request counts and latency. The route label is the
// matched ServeMux pattern so path parameters do not inflate cardinality.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := middleware.NewStatusRecorder(w)
			next.ServeHTTP(rec, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}

			RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.Status)).Inc()
			RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// ObserveProviderCall records the outcome and token usage of a provider call.
func ObserveProviderCall(provider string, err error, promptTokens, completionTokens int) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	ProviderCalls.WithLabelValues(provider, outcome).Inc()
	if err == nil {
		ProviderTokens.WithLabelValues(provider, "prompt").Add(float64(promptTokens))
		ProviderTokens.WithLabelValues(provider, "completion").Add(float64(completionTokens))
	}
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
