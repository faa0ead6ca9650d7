// Package metrics records pipeline stage metrics with Prometheus.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/meows-bio/meows/internal/core/domain"
	"github.com/meows-bio/meows/internal/core/ports/driven"
)

const namespace = "meows"

// Ensure Observer implements the interface.
var _ driven.RunObserver = (*Observer)(nil)

// Observer exposes Prometheus collectors that report pipeline activity.
type Observer struct {
	gatherer      prometheus.Gatherer
	stageDuration *prometheus.HistogramVec
	stageFailures *prometheus.CounterVec
	milestones    *prometheus.CounterVec
}

// NewObserver registers the pipeline collectors with reg.
// Registration errors are returned rather than panicking.
func NewObserver(reg *prometheus.Registry) (*Observer, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	o := &Observer{
		gatherer: reg,
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "stage_duration_seconds",
				Help:      "Duration spent in each pipeline stage.",
				Buckets:   []float64{0.01, 0.1, 1, 5, 15, 60, 300, 900, 3600},
			},
			[]string{"stage", "status"},
		),
		stageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "stage_failures_total",
				Help:      "Number of stage executions that failed.",
			},
			[]string{"stage", "reason"},
		),
		milestones: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "milestones_total",
				Help:      "Progress milestones reported by each stage.",
			},
			[]string{"stage"},
		),
	}

	for _, c := range []prometheus.Collector{o.stageDuration, o.stageFailures, o.milestones} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// StageStarted is a no-op; durations are recorded when a stage finishes.
func (o *Observer) StageStarted(domain.Stage) {}

// StageFinished records the duration and, on failure, the failure reason.
func (o *Observer) StageFinished(stage domain.Stage, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		o.stageFailures.WithLabelValues(stage.String(), Reason(err)).Inc()
	}
	o.stageDuration.WithLabelValues(stage.String(), status).Observe(elapsed.Seconds())
}

// Milestone counts progress messages per stage.
func (o *Observer) Milestone(stage domain.Stage, _ string) {
	o.milestones.WithLabelValues(stage.String()).Inc()
}

// WriteTextfile writes every collected metric to path in the Prometheus
// text exposition format.
func (o *Observer) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, o.gatherer)
}

// Reason returns a short label for the kind of err.
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrInputFormat):
		return "input_format"
	case errors.Is(err, domain.ErrNoHitFound):
		return "no_hit"
	case errors.Is(err, domain.ErrService):
		return "service"
	case errors.Is(err, domain.ErrRecordNotFound):
		return "record_not_found"
	case errors.Is(err, domain.ErrQuery):
		return "query"
	case errors.Is(err, domain.ErrNoRelatedSequences):
		return "no_related_sequences"
	case errors.Is(err, domain.ErrFetch):
		return "fetch"
	case errors.Is(err, domain.ErrArtifactExists):
		return "artifact_exists"
	case errors.Is(err, domain.ErrWrite):
		return "write"
	case errors.Is(err, domain.ErrExternalTool):
		return "external_tool"
	default:
		return "other"
	}
}
