package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Submission outcomes
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailure = "failure"
)

// SubmissionMetrics counts orchestrator submissions and their per-request results.
type SubmissionMetrics struct {
	submissions *Counter
	requests    *Counter
	failures    *Counter
	duration    *Histogram
}

// NewSubmissionMetrics registers the submission instruments on meter.
func NewSubmissionMetrics(meter metric.Meter) (*SubmissionMetrics, error) {
	submissions, err := NewCounter(meter, "sfa_submissions_total", "Orchestrator submissions by operation and outcome", "{submission}")
	if err != nil {
		return nil, err
	}
	requests, err := NewCounter(meter, "sfa_submission_requests_total", "Remote requests issued by submissions", "{request}")
	if err != nil {
		return nil, err
	}
	failures, err := NewCounter(meter, "sfa_submission_request_failures_total", "Remote requests that failed", "{request}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, "sfa_submission_duration_seconds", "Wall time of a submission", "s", RequestDurationBuckets...)
	if err != nil {
		return nil, err
	}
	return &SubmissionMetrics{
		submissions: submissions,
		requests:    requests,
		failures:    failures,
		duration:    duration,
	}, nil
}

// Record records one submission of operation that issued succeeded+failed requests.
func (m *SubmissionMetrics) Record(ctx context.Context, operation string, succeeded, failed int, elapsed time.Duration) {
	if m == nil {
		return
	}
	op := AttrOperation.String(operation)
	m.submissions.Add(ctx, 1, op, AttrOutcome.String(Outcome(succeeded, failed)))
	m.requests.Add(ctx, int64(succeeded+failed), op)
	m.failures.Add(ctx, int64(failed), op)
	m.duration.RecordDuration(ctx, elapsed, op)
}

// Outcome classifies a batch by its success and failure counts.
func Outcome(succeeded, failed int) string {
	switch {
	case failed == 0:
		return OutcomeSuccess
	case succeeded == 0:
		return OutcomeFailure
	default:
		return OutcomePartial
	}
}
