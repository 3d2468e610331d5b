// Package metrics exposes Prometheus counters for pipeline operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation_error"
	OutcomeFailure    = "failure"
	OutcomeBusy       = "busy"
)

// Recorder is what the controller reports to.
type Recorder interface {
	ObserveOperation(op, outcome string, d time.Duration)
}

// Nop discards all observations.
type Nop struct{}

func (Nop) ObserveOperation(string, string, time.Duration) {}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	gatherer   prometheus.Gatherer
}

// NewCollector registers the pipeline metrics with reg.
func NewCollector(reg *prometheus.Registry) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletter_operations_total",
			Help: "Pipeline operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newsletter_operation_duration_seconds",
			Help:    "Wall time of pipeline operations, model call included.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"operation"}),
		gatherer: reg,
	}

	reg.MustRegister(c.operations, c.latency)
	return c
}

func (c *Collector) ObserveOperation(op, outcome string, d time.Duration) {
	c.operations.WithLabelValues(op, outcome).Inc()
	if outcome == OutcomeSuccess || outcome == OutcomeFailure {
		c.latency.WithLabelValues(op).Observe(d.Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
