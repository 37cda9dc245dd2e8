package sqlite

import (
	"context"
	"fmt"

	"taskboard/internal/models"
)

const transitionColumns = `id, task_id, from_status, to_status, changed_at`

// recordTransition appends one history entry. Entries are never updated or
// deleted; a failed append is returned to the caller so the surrounding
// mutation can roll back.
func recordTransition(ctx context.Context, q queryer, taskID int64, from *string, to string) (models.StatusTransition, error) {
	var id int64
	err := q.QueryRowContext(ctx, `INSERT INTO task_status_transitions(task_id, from_status, to_status)
        VALUES(?, ?, ?) RETURNING id`, taskID, from, to).Scan(&id)
	if err != nil {
		return models.StatusTransition{}, fmt.Errorf("record transition: %w", err)
	}

	tr, err := scanTransition(q.QueryRowContext(ctx, `SELECT `+transitionColumns+` FROM task_status_transitions WHERE id = ?`, id))
	if err != nil {
		return models.StatusTransition{}, fmt.Errorf("read transition: %w", err)
	}
	return tr, nil
}

// ListTaskTransitions returns the status history of a task, oldest first.
func (s *Store) ListTaskTransitions(ctx context.Context, taskID int64) ([]models.StatusTransition, error) {
	if _, err := s.GetTask(ctx, taskID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+transitionColumns+`
        FROM task_status_transitions WHERE task_id = ? ORDER BY id ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	out := []models.StatusTransition{}
	for rows.Next() {
		tr, err := scanTransition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}
