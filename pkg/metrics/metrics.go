package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "pulse"
	subsystem = "sim"
)

// Metrics collects simulation counters. All methods are safe for concurrent
// use, so one instance can be shared by parallel watcher runs.
type Metrics struct {
	reg *prometheus.Registry

	PressesTotal prometheus.Counter
	PulsesTotal  *prometheus.CounterVec
	Periods      *prometheus.GaugeVec
	RunsTotal    *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. A nil reg gets a
// fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		reg: reg,
		PressesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "presses_total",
				Help:      "Button presses delivered",
			},
		),
		PulsesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pulses_total",
				Help:      "Pulses processed by level",
			},
			[]string{"level"},
		),
		Periods: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "watcher_period_presses",
				Help:      "First press at which a watcher emitted its watched level",
			},
			[]string{"watcher"},
		),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "runs_total",
				Help:      "Query runs by query and status",
			},
			[]string{"query", "status"},
		),
	}

	reg.MustRegister(m.PressesTotal, m.PulsesTotal, m.Periods, m.RunsTotal)
	return m
}

// RecordPress adds one press and its pulse totals.
func (m *Metrics) RecordPress(low, high int64) {
	m.PressesTotal.Inc()
	m.PulsesTotal.WithLabelValues("low").Add(float64(low))
	m.PulsesTotal.WithLabelValues("high").Add(float64(high))
}

// RecordPeriod stores the period measured for a watcher.
func (m *Metrics) RecordPeriod(watcher string, period int64) {
	m.Periods.WithLabelValues(watcher).Set(float64(period))
}

// RecordRun counts a finished query. status is "success", "cached" or "error".
func (m *Metrics) RecordRun(query, status string) {
	m.RunsTotal.WithLabelValues(query, status).Inc()
}

// WriteTextfile writes the current values in the node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
