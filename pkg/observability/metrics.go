// Package observability bridges lifecycle events to Prometheus metrics.
// The returned hooks attach to an Engine like any other LifecycleHooks.
package observability

import (
	"context"
	"net/http"

	"github.com/florandr/trialflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the trial lifecycle collectors.
type Metrics struct {
	trialsStarted  *prometheus.CounterVec
	trialsFinished *prometheus.CounterVec
	trialsAborted  *prometheus.CounterVec
	trialDuration  *prometheus.HistogramVec
	phaseChanges   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. Pass
// prometheus.DefaultRegisterer to use the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		trialsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trialflow_trials_started_total",
				Help: "Total number of trials started",
			},
			[]string{"plugin"},
		),
		trialsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trialflow_trials_finished_total",
				Help: "Total number of trials finished",
			},
			[]string{"plugin"},
		),
		trialsAborted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trialflow_trials_aborted_total",
				Help: "Total number of trials aborted",
			},
			[]string{"plugin", "phase"},
		),
		trialDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trialflow_trial_duration_seconds",
				Help:    "Duration of completed trials",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"plugin"},
		),
		phaseChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trialflow_phase_changes_total",
				Help: "Total number of lifecycle phase transitions",
			},
			[]string{"phase"},
		),
	}

	reg.MustRegister(
		m.trialsStarted,
		m.trialsFinished,
		m.trialsAborted,
		m.trialDuration,
		m.phaseChanges,
	)
	return m
}

// Hooks returns lifecycle hooks that record the metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTrialStart: func(ctx context.Context, e *domain.TrialEvent) {
			m.trialsStarted.WithLabelValues(e.Plugin).Inc()
		},
		OnPhaseChange: func(ctx context.Context, e *domain.TrialEvent) {
			m.phaseChanges.WithLabelValues(string(e.Phase)).Inc()
		},
		OnTrialFinish: func(ctx context.Context, e *domain.TrialEvent) {
			m.trialsFinished.WithLabelValues(e.Plugin).Inc()
			m.trialDuration.WithLabelValues(e.Plugin).Observe(e.Elapsed.Seconds())
		},
		OnTrialAbort: func(ctx context.Context, e *domain.TrialEvent) {
			m.trialsAborted.WithLabelValues(e.Plugin, string(e.Phase)).Inc()
		},
	}
}

// Handler returns the /metrics HTTP handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
