// Package metrics provides Prometheus metrics for the simulation core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the tick loop.
type Metrics struct {
	TickDuration     prometheus.Histogram
	DecisionTimeouts prometheus.Counter
	DecisionPanics   prometheus.Counter
	ActionsExecuted  *prometheus.CounterVec
	ActionFailures   *prometheus.CounterVec
	AgentsRegistered prometheus.Gauge
	ReentrantTicks   prometheus.Counter

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sim_tick_duration_seconds",
			Help:    "Wall time spent processing one tick.",
			Buckets: prometheus.DefBuckets,
		}),
		DecisionTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sim_decision_timeouts_total",
			Help: "Decision calls abandoned after exceeding their deadline.",
		}),
		DecisionPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sim_decision_panics_total",
			Help: "Decision calls that panicked and were contained.",
		}),
		ActionsExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sim_actions_executed_total",
			Help: "Actions executed on the control goroutine, by kind.",
		}, []string{"kind"}),
		ActionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sim_action_failures_total",
			Help: "Actions whose execution-time preconditions failed, by kind.",
		}, []string{"kind"}),
		AgentsRegistered: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sim_agents_registered",
			Help: "Agents currently registered with the coordinator.",
		}),
		ReentrantTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sim_reentrant_ticks_total",
			Help: "ProcessTick calls rejected because a tick was in flight.",
		}),
		registry: reg,
	}

	reg.MustRegister(
		m.TickDuration,
		m.DecisionTimeouts,
		m.DecisionPanics,
		m.ActionsExecuted,
		m.ActionFailures,
		m.AgentsRegistered,
		m.ReentrantTicks,
	)
	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
