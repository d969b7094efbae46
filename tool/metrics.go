package tool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels recorded for each invocation.
const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid_request"
	OutcomeFault    = "handler_fault"
	OutcomeTimeout  = "timeout"
	OutcomeNotFound = "unknown_tool"
)

// Metrics records invocation counts and latencies per tool.
type Metrics struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	inFlight    prometheus.Gauge
}

// NewMetrics creates the dispatcher collectors and registers them with reg.
// A nil reg leaves the collectors unregistered, which is useful in tests.
func NewMetrics(reg prometheus.Registerer, server string) *Metrics {
	labels := prometheus.Labels{"server": server}
	m := &Metrics{
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "tao",
			Name:        "tool_invocations_total",
			Help:        "Tool invocations by tool and outcome.",
			ConstLabels: labels,
		}, []string{"tool", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "tao",
			Name:        "tool_invocation_duration_seconds",
			Help:        "Handler latency by tool.",
			ConstLabels: labels,
			Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 120},
		}, []string{"tool"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "tao",
			Name:        "tool_invocations_in_flight",
			Help:        "Handlers currently executing.",
			ConstLabels: labels,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.invocations, m.duration, m.inFlight)
	}
	return m
}

func (m *Metrics) begin() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

func (m *Metrics) observe(tool, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.inFlight.Dec()
	m.invocations.WithLabelValues(tool, outcome).Inc()
	m.duration.WithLabelValues(tool).Observe(d.Seconds())
}

// reject counts a call that never reached a handler.
func (m *Metrics) reject(tool, outcome string) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(tool, outcome).Inc()
}
