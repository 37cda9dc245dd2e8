// Package board exposes the project and task operations to the API layer and
// dispatches the events that committed task mutations describe.
package board

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/models"
	"taskboard/internal/storage/sqlite"
)

// Service wires the store to an event emitter.
type Service struct {
	store   *sqlite.Store
	emitter Emitter
	logger  *slog.Logger
	now     func() time.Time
}

// Emitter is the delivery side of task events.
type Emitter interface {
	Emit(ctx context.Context, ev models.TaskEvent) error
}

// New constructs a Service. A nil emitter drops events.
func New(store *sqlite.Store, emitter Emitter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, emitter: emitter, logger: logger, now: time.Now}
}

// ListProjects returns active projects, or all of them when includeArchived.
func (s *Service) ListProjects(ctx context.Context, includeArchived bool) ([]models.Project, error) {
	return s.store.ListProjects(ctx, includeArchived)
}

// GetProject returns one project.
func (s *Service) GetProject(ctx context.Context, id int64) (models.Project, error) {
	return s.store.GetProject(ctx, id)
}

// CreateProject appends a project to the active list.
func (s *Service) CreateProject(ctx context.Context, req models.CreateProjectRequest) (models.Project, error) {
	return s.store.CreateProject(ctx, req)
}

// UpdateProject applies a partial update.
func (s *Service) UpdateProject(ctx context.Context, id int64, req models.UpdateProjectRequest) (models.Project, error) {
	return s.store.UpdateProject(ctx, id, req)
}

// ArchiveProject soft-deletes a project.
func (s *Service) ArchiveProject(ctx context.Context, id int64) (models.Project, error) {
	return s.store.ArchiveProject(ctx, id)
}

// RestoreProject un-archives a project.
func (s *Service) RestoreProject(ctx context.Context, id int64) (models.Project, error) {
	return s.store.RestoreProject(ctx, id)
}

// ReorderProjects applies a batch of positions atomically.
func (s *Service) ReorderProjects(ctx context.Context, items models.ReorderRequest) error {
	return s.store.ReorderProjects(ctx, items)
}

// DeleteProject removes a project and its tasks.
func (s *Service) DeleteProject(ctx context.Context, id int64) error {
	return s.store.DeleteProject(ctx, id)
}

// ListTasksByProject returns the tasks of a project in lane order.
func (s *Service) ListTasksByProject(ctx context.Context, projectID int64) ([]models.Task, error) {
	return s.store.ListTasksByProject(ctx, projectID)
}

// GetTask returns one task.
func (s *Service) GetTask(ctx context.Context, id int64) (models.Task, error) {
	return s.store.GetTask(ctx, id)
}

// ListTaskTransitions returns the status history of a task.
func (s *Service) ListTaskTransitions(ctx context.Context, id int64) ([]models.StatusTransition, error) {
	return s.store.ListTaskTransitions(ctx, id)
}

// CreateTask inserts a task and dispatches its event, if any.
func (s *Service) CreateTask(ctx context.Context, req models.CreateTaskRequest) (models.Task, error) {
	m, err := s.store.CreateTask(ctx, req)
	if err != nil {
		return models.Task{}, err
	}
	s.dispatch(ctx, m.Event)
	return m.Task, nil
}

// UpdateTask applies a partial update and dispatches its event, if any.
func (s *Service) UpdateTask(ctx context.Context, id int64, req models.UpdateTaskRequest) (models.Task, error) {
	m, err := s.store.UpdateTask(ctx, id, req)
	if err != nil {
		return models.Task{}, err
	}
	s.dispatch(ctx, m.Event)
	return m.Task, nil
}

// MoveTask relocates a task to another lane.
func (s *Service) MoveTask(ctx context.Context, id int64, req models.MoveTaskRequest) (models.Task, error) {
	m, err := s.store.MoveTask(ctx, id, req)
	if err != nil {
		return models.Task{}, err
	}
	s.dispatch(ctx, m.Event)
	return m.Task, nil
}

// dispatch delivers ev after the mutation committed. Failures are logged and
// never reach the caller.
func (s *Service) dispatch(ctx context.Context, ev *models.TaskEvent) {
	if ev == nil || s.emitter == nil {
		return
	}
	out := *ev
	out.ID = uuid.NewString()
	out.OccurredAt = s.now().UTC()
	if err := s.emitter.Emit(ctx, out); err != nil {
		s.logger.Warn("task event delivery failed",
			slog.String("event_id", out.ID),
			slog.Int64("task_id", out.TaskID),
			slog.String("status", out.Status),
			slog.String("error", err.Error()),
		)
	}
}
