// Package notify delivers task events to notification and metrics
// collaborators. Delivery is best-effort: callers log failures and never
// undo the mutation that produced the event.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"taskboard/internal/models"
)

// Emitter hands a task event to a collaborator.
type Emitter interface {
	Emit(ctx context.Context, ev models.TaskEvent) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, ev models.TaskEvent) error

// Emit calls f.
func (f EmitterFunc) Emit(ctx context.Context, ev models.TaskEvent) error {
	return f(ctx, ev)
}

// Multi fans an event out to every emitter. All emitters are attempted;
// their errors are joined.
type Multi []Emitter

// Emit implements Emitter.
func (m Multi) Emit(ctx context.Context, ev models.TaskEvent) error {
	var errs []error
	for _, e := range m {
		if e == nil {
			continue
		}
		if err := e.Emit(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Log writes each event to a structured logger.
type Log struct {
	Logger *slog.Logger
}

// Emit implements Emitter.
func (l Log) Emit(_ context.Context, ev models.TaskEvent) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{"event_id", ev.ID, "task_id", ev.TaskID, "status", ev.Status}
	if old, ok := ev.Context[models.EventContextOldStatus]; ok {
		attrs = append(attrs, "old_status", old)
	}
	logger.Info("task event", attrs...)
	return nil
}
