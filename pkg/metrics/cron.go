package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CronJobMetrics tracks per-job outcomes and run durations for the worker
// loop. A zero value (or one built with a nil registerer) records nothing,
// which keeps tests and one-off CLI invocations free of registry setup.
type CronJobMetrics struct {
	durations *prometheus.HistogramVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
}

// NewCronJobMetrics registers the job metric families on reg. Passing a nil
// registerer yields a no-op instance.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	m := &CronJobMetrics{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "job_duration_seconds",
			Help:    "Wall-clock duration of scheduled job runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "job_success",
			Help: "Completed scheduled job runs.",
		}, []string{"job"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "job_failure",
			Help: "Scheduled job runs that returned an error.",
		}, []string{"job"}),
	}
	reg.MustRegister(m.durations, m.successes, m.failures)
	return m
}

func (m *CronJobMetrics) ObserveDuration(job string, d time.Duration) {
	if m == nil || m.durations == nil {
		return
	}
	m.durations.WithLabelValues(jobLabel(job)).Observe(d.Seconds())
}

func (m *CronJobMetrics) IncSuccess(job string) {
	if m == nil || m.successes == nil {
		return
	}
	m.successes.WithLabelValues(jobLabel(job)).Inc()
}

func (m *CronJobMetrics) IncFailure(job string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(jobLabel(job)).Inc()
}

func jobLabel(job string) string {
	if job == "" {
		return "unknown"
	}
	return job
}
