// Package metric provides Prometheus metrics for SessionGate.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: registry of gateway and form counters/histograms
//   - collector.go: session state collector read at scrape time
//
// Metrics include:
//
//   - Gateway request outcomes and latency per operation
//   - Form submission results per flow
//   - Session clears triggered by authorization failures
//   - Current session state (authenticated, remaining lifetime, storage mode)
//
// The CLI writes them to a textfile (--metrics-file) for node_exporter;
// the dev API server exposes them at /metrics.
package metric
