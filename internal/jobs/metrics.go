// Package jobmetrics instruments asynq task handlers with Prometheus collectors.
package jobmetrics

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusSkipped = "skipped"
)

// Metrics holds the worker's collectors.
type Metrics struct {
	runs       *prometheus.CounterVec
	retries    *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	mismatches prometheus.Gauge
}

// NewMetrics registers the collectors with registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reservo_jobs_total",
			Help: "Task executions by task type and status.",
		}, []string{"task", "status"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reservo_job_retries_total",
			Help: "Task executions that were retries of an earlier failure.",
		}, []string{"task"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reservo_job_duration_seconds",
			Help:    "Task handler latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"task"}),
		mismatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reservo_slot_counter_mismatches",
			Help: "Slot counters whose booked value differs from the stored reservations.",
		}),
	}
	registerer.MustRegister(m.runs, m.retries, m.duration, m.mismatches)
	return m
}

// Middleware records every task passing through the mux. A handler
// returning asynq.SkipRetry counts as skipped rather than failed.
func (m *Metrics) Middleware() asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
			if m == nil {
				return next.ProcessTask(ctx, t)
			}
			if n, ok := asynq.GetRetryCount(ctx); ok && n > 0 {
				m.retries.WithLabelValues(t.Type()).Inc()
			}
			start := time.Now()
			err := next.ProcessTask(ctx, t)
			m.duration.WithLabelValues(t.Type()).Observe(time.Since(start).Seconds())
			m.runs.WithLabelValues(t.Type(), statusOf(err)).Inc()
			return err
		})
	}
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, asynq.SkipRetry):
		return StatusSkipped
	default:
		return StatusFailure
	}
}

// SetCounterMismatches publishes the drift found by the latest ledger audit.
func (m *Metrics) SetCounterMismatches(count int) {
	if m == nil {
		return
	}
	m.mismatches.Set(float64(count))
}
