package notify

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"taskboard/internal/models"
)

// Metrics counts task events per status on an OpenTelemetry meter.
type Metrics struct {
	events metric.Int64Counter
}

// NewMetrics creates the metric instruments from the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	events, err := meter.Int64Counter("taskboard.task.status_events",
		metric.WithDescription("Task status events emitted after committed mutations"),
	)
	if err != nil {
		return nil, fmt.Errorf("create task event counter: %w", err)
	}
	return &Metrics{events: events}, nil
}

// Emit implements Emitter.
func (m *Metrics) Emit(ctx context.Context, ev models.TaskEvent) error {
	attrs := []attribute.KeyValue{attribute.String("status", ev.Status)}
	if old, ok := ev.Context[models.EventContextOldStatus].(string); ok {
		attrs = append(attrs, attribute.String("old_status", old))
	}
	m.events.Add(ctx, 1, metric.WithAttributes(attrs...))
	return nil
}
