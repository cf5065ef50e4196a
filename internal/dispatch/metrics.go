package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/foldlab/foldd/internal/model"
)

var (
	jobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foldd_jobs_total",
			Help: "Total number of dispatched jobs by terminal status.",
		},
		[]string{"status"},
	)

	executionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foldd_job_execution_seconds",
			Help:    "Engine execution time per job, in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		},
	)

	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "foldd_dispatch_queue_depth",
			Help: "Number of jobs waiting in the admission queue.",
		},
	)

	jobsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "foldd_jobs_in_flight",
			Help: "Number of jobs currently executing on workers.",
		},
	)
)

func init() {
	prometheus.MustRegister(jobsTotal)
	prometheus.MustRegister(executionDuration)
	prometheus.MustRegister(queueDepth)
	prometheus.MustRegister(jobsInFlight)

	// Pre-initialize label combinations so they appear in /metrics with
	// value 0 from startup, rather than only after first observation.
	jobsTotal.WithLabelValues(model.StatusSucceeded)
	jobsTotal.WithLabelValues(model.StatusFailed)
}
