package metrics

import (
	"time"

	"github.com/andreyxaxa/File-Moderator/internal/dto"
	"github.com/andreyxaxa/File-Moderator/pkg/types/errs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "file_moderator"

var (
	objectsModerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "objects_moderated_total",
		Help:      "Objects that reached the done stage, by category and verdict.",
	}, []string{"category", "verdict"})

	objectsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "objects_failed_total",
		Help:      "Objects that failed, by the stage being entered and the error kind.",
	}, []string{"stage", "kind"})

	pipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_duration_seconds",
		Help:      "Time spent moderating one object.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"category"})

	retries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_retryable_failures_total",
		Help:      "Pipeline runs that failed before any side effect.",
	})

	outboxEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_events_total",
		Help:      "Outbox events handed to the broker, by result.",
	}, []string{"result"})
)

// ObserveOutcome records a finished pipeline run.
func ObserveOutcome(o *dto.Outcome, err error, elapsed time.Duration) {
	category := string(o.Category)
	if category == "" {
		category = "unknown"
	}

	pipelineDuration.WithLabelValues(category).Observe(elapsed.Seconds())

	if err != nil {
		objectsFailed.WithLabelValues(string(o.FailedAt), errs.Kind(err)).Inc()

		return
	}

	objectsModerated.WithLabelValues(category, o.Verdict.Status()).Inc()
}

func ObserveRetry() {
	retries.Inc()
}

func ObserveOutboxBatch(size int, err error) {
	result := "published"
	if err != nil {
		result = "failed"
	}

	outboxEvents.WithLabelValues(result).Add(float64(size))
}
