// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	FormsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forms_generated_total",
			Help: "Application forms written, by template and layout version",
		},
		[]string{"template", "layout_version"},
	)

	FormMissingFields = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_missing_fields_total",
			Help: "Mapped fields with no matching template widget",
		},
		[]string{"template"},
	)

	FormFillDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "form_fill_duration_seconds",
			Help:    "Time spent filling and saving a form",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"template"},
	)
)
