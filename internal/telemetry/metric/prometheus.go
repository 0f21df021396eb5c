package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sessiongate"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Gateway metrics
	GatewayRequests *prometheus.CounterVec
	GatewayDuration *prometheus.HistogramVec

	// Form metrics
	FormSubmissions *prometheus.CounterVec

	// Session metrics
	SessionClears prometheus.Counter
}

// NewRegistry creates a registry with all metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		GatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Auth API calls by operation and outcome.",
		}, []string{"op", "outcome"}),

		GatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Auth API call latency.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"op"}),

		FormSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "form",
			Name:      "submissions_total",
			Help:      "Form submissions by flow and result.",
		}, []string{"flow", "result"}),

		SessionClears: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "auth_clears_total",
			Help:      "Sessions cleared after the server rejected the token.",
		}),
	}

	r.registry.MustRegister(
		r.GatewayRequests,
		r.GatewayDuration,
		r.FormSubmissions,
		r.SessionClears,
	)
	return r
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns a process-wide registry that also carries Go runtime and
// process collectors. Used by long-running binaries.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
		global.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
	return global
}

// Register adds a custom collector.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.registry.Register(c)
}

// Gatherer exposes the underlying registry for testutil and textfile export.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WriteToTextfile writes the current values in the text exposition format.
func (r *Registry) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// ObserveGatewayCall records one gateway call. outcome is "ok" or an error kind.
func (r *Registry) ObserveGatewayCall(op, outcome string, seconds float64) {
	if r == nil {
		return
	}
	r.GatewayRequests.WithLabelValues(op, outcome).Inc()
	r.GatewayDuration.WithLabelValues(op).Observe(seconds)
}

// ObserveSubmission records one form submission result.
func (r *Registry) ObserveSubmission(flow, result string) {
	if r == nil {
		return
	}
	r.FormSubmissions.WithLabelValues(flow, result).Inc()
}

// IncSessionClear records a session cleared on an authorization failure.
func (r *Registry) IncSessionClear() {
	if r == nil {
		return
	}
	r.SessionClears.Inc()
}
