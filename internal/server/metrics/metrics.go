// Package metrics holds the Prometheus counters for signup, signin and gate
// outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	SignUps      *prometheus.CounterVec
	SignIns      *prometheus.CounterVec
	GateDecision *prometheus.CounterVec
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SignUps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ebet_signups_total",
				Help: "Total number of signup attempts by result",
			},
			[]string{"result"},
		),
		SignIns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ebet_signins_total",
				Help: "Total number of signin attempts by result and reason code",
			},
			[]string{"result", "code"},
		),
		GateDecision: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ebet_gate_decisions_total",
				Help: "Total number of authorization gate decisions by transport and code",
			},
			[]string{"transport", "code"},
		),
	}

	reg.MustRegister(m.SignUps, m.SignIns, m.GateDecision)

	return m
}

func (m *Metrics) SignUp(result string) {
	if m == nil {
		return
	}
	m.SignUps.WithLabelValues(result).Inc()
}

func (m *Metrics) SignIn(result, code string) {
	if m == nil {
		return
	}
	m.SignIns.WithLabelValues(result, code).Inc()
}

// Gate records one decision. code is "" for an allowed request.
func (m *Metrics) Gate(transport, code string) {
	if m == nil {
		return
	}
	if code == "" {
		code = "OK"
	}
	m.GateDecision.WithLabelValues(transport, code).Inc()
}

// NewRegistry returns a registry with the Go runtime and process collectors
// already registered.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
