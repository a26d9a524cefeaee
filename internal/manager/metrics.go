// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// Metrics counts plugin checks and probe rounds
type Metrics struct {
	checks      *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	rounds      *prometheus.CounterVec
	lastSuccess prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		checks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "console_probe_checks_total",
			Help: "Total number of plugin checks by result",
		}, []string{"plugin", "result"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "console_probe_check_duration_seconds",
			Help:    "Duration of plugin checks",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"plugin"}),
		rounds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "console_probe_rounds_total",
			Help: "Total number of probe rounds by result, retries included",
		}, []string{"result"}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "console_probe_last_success_timestamp_seconds",
			Help: "Unix time of the last successful probe round",
		}),
	}
}

// Record implements plugins.Recorder
func (m *Metrics) Record(plugin string, err error, elapsed time.Duration) {
	m.checks.WithLabelValues(plugin, result(err)).Inc()
	m.duration.WithLabelValues(plugin).Observe(elapsed.Seconds())
}

func (m *Metrics) recordRound(err error, at time.Time) {
	m.rounds.WithLabelValues(result(err)).Inc()
	if err == nil {
		m.lastSuccess.Set(float64(at.Unix()))
	}
}

func result(err error) string {
	if err != nil {
		return resultFailure
	}
	return resultSuccess
}
