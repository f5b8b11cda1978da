package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics records commit outcomes per workflow.
type WorkflowMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewWorkflowMetrics registers the workflow metrics on the provided registerer.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "workflow_commit_duration_seconds",
		Help:    "Duration of draft commits in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"workflow"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_commit_success",
		Help: "Successful draft commits.",
	}, []string{"workflow"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_commit_failure",
		Help: "Failed draft commits.",
	}, []string{"workflow", "reason"})
	reg.MustRegister(duration, success, failure)
	return &WorkflowMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the commit duration for the named workflow.
func (w *WorkflowMetrics) ObserveDuration(workflow string, duration time.Duration) {
	if w == nil || w.duration == nil {
		return
	}
	w.duration.WithLabelValues(normalizeLabel(workflow)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named workflow.
func (w *WorkflowMetrics) IncSuccess(workflow string) {
	if w == nil || w.success == nil {
		return
	}
	w.success.WithLabelValues(normalizeLabel(workflow)).Inc()
}

// IncFailure increments the failure counter for the named workflow and reason.
func (w *WorkflowMetrics) IncFailure(workflow, reason string) {
	if w == nil || w.failure == nil {
		return
	}
	w.failure.WithLabelValues(normalizeLabel(workflow), normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
