package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskboard/internal/apperr"
	"taskboard/internal/models"
	"taskboard/internal/validate"
)

const entityTask = "task"

// ListTasksByProject returns tasks for the given project ordered by status,
// then position, with id as the final tiebreak.
func (s *Store) ListTasksByProject(ctx context.Context, projectID int64) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+`
        FROM tasks WHERE project_id = ? ORDER BY status ASC, position ASC, id ASC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := s.scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id int64) (models.Task, error) {
	return s.getTask(ctx, s.db, id)
}

func (s *Store) getTask(ctx context.Context, q queryer, id int64) (models.Task, error) {
	t, err := s.scanTask(q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, apperr.NotFound(entityTask, id)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// CreateTask inserts a task and records its initial status. The insert and
// the transition commit together.
func (s *Store) CreateTask(ctx context.Context, req models.CreateTaskRequest) (models.TaskMutation, error) {
	req.Normalize()
	if err := validate.Request(req); err != nil {
		return models.TaskMutation{}, err
	}
	tags, err := encodeTags(req.Tags)
	if err != nil {
		return models.TaskMutation{}, fmt.Errorf("encode tags: %w", err)
	}

	var out models.TaskMutation
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var pos int64
		if req.Position != nil {
			pos = *req.Position
		} else {
			next, err := nextPosition(ctx, tx, req.ProjectID, req.Status)
			if err != nil {
				return err
			}
			pos = next
		}

		var id int64
		err := tx.QueryRowContext(ctx, `INSERT INTO tasks(project_id, title, description, status, due_date, priority, tags, position,
            estimated_start_date, estimated_end_date, actual_start_date, actual_end_date, estimated_minutes, actual_minutes)
            VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
			req.ProjectID, req.Title, req.Description, req.Status, req.DueDate, req.Priority, tags, pos,
			req.EstimatedStartDate, req.EstimatedEndDate, req.ActualStartDate, req.ActualEndDate,
			req.EstimatedMinutes, req.ActualMinutes).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}

		tr, err := recordTransition(ctx, tx, id, nil, req.Status)
		if err != nil {
			return err
		}
		task, err := s.getTask(ctx, tx, id)
		if err != nil {
			return err
		}
		out = models.TaskMutation{Task: task, Transition: &tr}
		return nil
	})
	if err != nil {
		return models.TaskMutation{}, err
	}

	if out.Task.Status == models.ActiveTaskStatus {
		out.Event = &models.TaskEvent{TaskID: out.Task.ID, Status: out.Task.Status}
	}
	return out, nil
}

// UpdateTask applies the supplied fields only. When the status changes, a
// transition is appended in the same transaction and an event describing
// the new status is returned.
func (s *Store) UpdateTask(ctx context.Context, id int64, req models.UpdateTaskRequest) (models.TaskMutation, error) {
	req.Normalize()
	if err := validate.Request(req); err != nil {
		return models.TaskMutation{}, err
	}

	b := newUpdate("tasks")
	setOptional(b, "project_id", req.ProjectID)
	setOptional(b, "title", req.Title)
	setOptional(b, "status", req.Status)
	setOptional(b, "position", req.Position)
	setNullable(b, "description", req.Description)
	setNullable(b, "due_date", req.DueDate)
	setNullable(b, "priority", req.Priority)
	if req.Tags.Set {
		var list []string
		if !req.Tags.Null {
			list = req.Tags.Value
			if list == nil {
				list = []string{}
			}
		}
		tags, err := encodeTags(list)
		if err != nil {
			return models.TaskMutation{}, fmt.Errorf("encode tags: %w", err)
		}
		b.set("tags", tags)
	}
	setNullable(b, "estimated_start_date", req.EstimatedStartDate)
	setNullable(b, "estimated_end_date", req.EstimatedEndDate)
	setNullable(b, "actual_start_date", req.ActualStartDate)
	setNullable(b, "actual_end_date", req.ActualEndDate)
	setNullable(b, "estimated_minutes", req.EstimatedMinutes)
	setNullable(b, "actual_minutes", req.ActualMinutes)

	var (
		out       models.TaskMutation
		oldStatus string
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.getTask(ctx, tx, id)
		if err != nil {
			return err
		}
		if b.empty() {
			out = models.TaskMutation{Task: current}
			return nil
		}
		oldStatus = current.Status

		query, args := b.statement(id)
		var updated int64
		err = tx.QueryRowContext(ctx, query, args...).Scan(&updated)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound(entityTask, id)
		}
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}

		if newStatus, ok := req.Status.Get(); ok && newStatus != oldStatus {
			from := oldStatus
			tr, err := recordTransition(ctx, tx, id, &from, newStatus)
			if err != nil {
				return err
			}
			out.Transition = &tr
		}

		task, err := s.getTask(ctx, tx, id)
		if err != nil {
			return err
		}
		out.Task = task
		return nil
	})
	if err != nil {
		return models.TaskMutation{}, err
	}

	if out.Transition != nil {
		out.Event = &models.TaskEvent{
			TaskID: out.Task.ID,
			Status: out.Task.Status,
			Context: map[string]any{
				models.EventContextOldStatus: oldStatus,
				models.EventContextDueDate:   out.Task.DueDate,
			},
		}
	}
	return out, nil
}

// MoveTask places a task into another lane at the caller's position.
func (s *Store) MoveTask(ctx context.Context, id int64, req models.MoveTaskRequest) (models.TaskMutation, error) {
	return s.UpdateTask(ctx, id, req.Update())
}

// nextPosition returns the slot after the last task of a lane, or 1 for an
// empty lane.
func nextPosition(ctx context.Context, q queryer, projectID int64, status string) (int64, error) {
	var position sql.NullInt64
	err := q.QueryRowContext(ctx, `SELECT MAX(position) FROM tasks WHERE project_id = ? AND status = ?`, projectID, status).Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("select position: %w", err)
	}
	if position.Valid {
		return position.Int64 + 1, nil
	}
	return 1, nil
}
