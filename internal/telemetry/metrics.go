/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects per-run counters. They are written in the node_exporter
// textfile format at the end of a run, since a CLI has no scrape endpoint.
type Metrics struct {
	registry *prometheus.Registry

	DocumentsRendered *prometheus.CounterVec
	CrawlsGenerated   prometheus.Counter
	Objects           prometheus.Gauge
	RunFailures       prometheus.Counter
	RunDuration       prometheus.Gauge
	LastSuccess       prometheus.Gauge
}

// NewMetrics registers collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		DocumentsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shiftsheet",
			Name:      "documents_rendered_total",
			Help:      "Shift documents rendered and stored.",
		}, []string{"format"}),
		CrawlsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shiftsheet",
			Name:      "crawls_generated_total",
			Help:      "Crawl times generated across all objects and shifts.",
		}),
		Objects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shiftsheet",
			Name:      "objects",
			Help:      "Objects scheduled per shift in the last run.",
		}),
		RunFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shiftsheet",
			Name:      "run_failures_total",
			Help:      "Runs aborted by a render or storage error.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shiftsheet",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shiftsheet",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that wrote every requested shift.",
		}),
	}
	m.registry.MustRegister(
		m.DocumentsRendered,
		m.CrawlsGenerated,
		m.Objects,
		m.RunFailures,
		m.RunDuration,
		m.LastSuccess,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRun records run duration and, on success, the completion time.
func (m *Metrics) ObserveRun(started time.Time, err error) {
	m.RunDuration.Set(time.Since(started).Seconds())
	if err != nil {
		m.RunFailures.Inc()
		return
	}
	m.LastSuccess.SetToCurrentTime()
}

// WriteTextfile writes the metrics to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
