// Package metrics exposes dispatch metrics as a Prometheus collector
// implementing the events.Publisher interface.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/morezero/action-gateway/pkg/events"
)

// Collector counts dispatches by protocol and outcome and times them.
type Collector struct {
	dispatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics on the given
// registerer (use prometheus.DefaultRegisterer for the default registry).
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_dispatches_total",
			Help: "Dispatches handled, by protocol and outcome.",
		}, []string{"protocol", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gateway_dispatch_duration_seconds",
			Help:    "Dispatch duration from entry point to envelope.",
			Buckets: prometheus.DefBuckets,
		}, []string{"protocol"}),
	}
	reg.MustRegister(c.dispatches, c.duration)
	return c
}

// PublishDispatch records one dispatch event.
func (c *Collector) PublishDispatch(_ context.Context, event *events.DispatchEvent) {
	outcome := "success"
	if !event.OK() {
		outcome = event.ErrorCode
	}
	c.dispatches.WithLabelValues(event.Protocol, outcome).Inc()
	c.duration.WithLabelValues(event.Protocol).Observe(event.Duration.Seconds())
}
