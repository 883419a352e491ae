package wmbuspipe

import (
	"bytes"
	"fmt"

	"github.com/google/renameio/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics holds the pipeline's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// Lines counts consumer lines by classification result
	Lines *prometheus.CounterVec
	// Telegrams counts matching lines by transmission mode
	Telegrams *prometheus.CounterVec
	// MatchRate is the last completed window's matches per second
	MatchRate prometheus.Gauge
	// ChildrenRunning is 1 while the child with the given role is running
	ChildrenRunning *prometheus.GaugeVec

	registry *prometheus.Registry
}

// Label values for the lines counter
const (
	resultMatch   = "match"
	resultDiscard = "discard"
)

// NewMetrics creates the collectors on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		Lines: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wmbuspipe_lines_total",
				Help: "Consumer output lines by classification result",
			},
			[]string{"result"},
		),
		Telegrams: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wmbuspipe_telegrams_total",
				Help: "Forwarded telegram lines by transmission mode",
			},
			[]string{"mode"},
		),
		MatchRate: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wmbuspipe_match_rate",
				Help: "Matching lines per second over the last completed window",
			},
		),
		ChildrenRunning: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wmbuspipe_children_running",
				Help: "Whether the child process with the given role is running",
			},
			[]string{"role"},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(m.Lines, m.Telegrams, m.MatchRate, m.ChildrenRunning)

	return m
}

// Registry returns the registry holding the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveLine counts a classified line
func (m *Metrics) ObserveLine(l Line) {
	if m == nil {
		return
	}
	if !l.Match {
		m.Lines.WithLabelValues(resultDiscard).Inc()
		return
	}
	m.Lines.WithLabelValues(resultMatch).Inc()
	m.Telegrams.WithLabelValues(l.Mode.String()).Inc()
}

// ObserveRate records a completed rate window
func (m *Metrics) ObserveRate(s RateSample) {
	if m == nil {
		return
	}
	m.MatchRate.Set(s.PerSecond)
}

// SetRunning records the liveness of a child
func (m *Metrics) SetRunning(role Role, running bool) {
	if m == nil {
		return
	}
	v := 0.0
	if running {
		v = 1
	}
	m.ChildrenRunning.WithLabelValues(role.String()).Set(v)
}

// WriteTextfile gathers the registry and atomically replaces path with the
// text exposition, in the layout node_exporter's textfile collector reads.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}

	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return fmt.Errorf("encoding metrics: %w", err)
		}
	}

	if err := renameio.WriteFile(path, buf.Bytes(), FileMode); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}
	return nil
}
