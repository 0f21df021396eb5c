package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/sessiongate/internal/core/domain"
)

// SessionSource is the read side of the session store.
type SessionSource interface {
	Get() (*domain.Session, bool)
	Degraded() bool
}

// Collector reports the current session state at scrape time.
type Collector struct {
	source SessionSource
	now    func() time.Time

	authenticated *prometheus.Desc
	remaining     *prometheus.Desc
	degraded      *prometheus.Desc
}

// NewCollector creates a session state collector.
func NewCollector(source SessionSource) *Collector {
	return &Collector{
		source: source,
		now:    time.Now,
		authenticated: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "authenticated"),
			"1 if a valid session is held.",
			nil, nil,
		),
		remaining: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "remaining_seconds"),
			"Seconds until the held session expires.",
			nil, nil,
		),
		degraded: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "storage_degraded"),
			"1 if the session is only held in memory.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.authenticated
	ch <- c.remaining
	ch <- c.degraded
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	var authenticated, remaining float64
	if sess, ok := c.source.Get(); ok {
		authenticated = 1
		remaining = sess.TTLAt(c.now()).Seconds()
	}

	var degraded float64
	if c.source.Degraded() {
		degraded = 1
	}

	ch <- prometheus.MustNewConstMetric(c.authenticated, prometheus.GaugeValue, authenticated)
	ch <- prometheus.MustNewConstMetric(c.remaining, prometheus.GaugeValue, remaining)
	ch <- prometheus.MustNewConstMetric(c.degraded, prometheus.GaugeValue, degraded)
}
