package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	OutcomeSent    = "sent"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

// SchedulerMetrics instruments notification passes. A nil *SchedulerMetrics
// records nothing.
type SchedulerMetrics struct {
	passes       metric.Int64Counter
	passDuration metric.Float64Histogram
	candidates   metric.Int64Counter
	dispatches   metric.Int64Counter
}

func NewSchedulerMetrics(meter metric.Meter) (*SchedulerMetrics, error) {
	passes, err := meter.Int64Counter(
		"scheduler.passes",
		metric.WithDescription("Scheduler passes by source and result"),
		metric.WithUnit("{pass}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler.passes counter: %w", err)
	}

	passDuration, err := meter.Float64Histogram(
		"scheduler.pass.duration",
		metric.WithDescription("Wall time of one scheduler pass"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler.pass.duration histogram: %w", err)
	}

	candidates, err := meter.Int64Counter(
		"scheduler.candidates",
		metric.WithDescription("Reminders returned by candidate queries"),
		metric.WithUnit("{reminder}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler.candidates counter: %w", err)
	}

	dispatches, err := meter.Int64Counter(
		"scheduler.dispatches",
		metric.WithDescription("Notification dispatch attempts by tier and outcome"),
		metric.WithUnit("{dispatch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler.dispatches counter: %w", err)
	}

	return &SchedulerMetrics{
		passes:       passes,
		passDuration: passDuration,
		candidates:   candidates,
		dispatches:   dispatches,
	}, nil
}

func (m *SchedulerMetrics) RecordPass(ctx context.Context, source string, total, errors int, d time.Duration) {
	if m == nil {
		return
	}

	result := "ok"
	if errors > 0 {
		result = "partial"
	}

	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("result", result),
	)

	m.passes.Add(ctx, 1, attrs)
	m.passDuration.Record(ctx, d.Seconds(), attrs)
	m.candidates.Add(ctx, int64(total), metric.WithAttributes(attribute.String("source", source)))
}

func (m *SchedulerMetrics) RecordPassAborted(ctx context.Context, source string) {
	if m == nil {
		return
	}

	m.passes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("result", "aborted"),
	))
}

func (m *SchedulerMetrics) RecordDispatch(ctx context.Context, tier, outcome string) {
	if m == nil {
		return
	}

	m.dispatches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tier", tier),
		attribute.String("outcome", outcome),
	))
}
