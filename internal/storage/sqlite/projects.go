package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskboard/internal/apperr"
	"taskboard/internal/models"
	"taskboard/internal/validate"
)

const entityProject = "project"

// ListProjects returns projects ordered by position. Archived projects are
// included, interleaved by position, only when includeArchived is set.
func (s *Store) ListProjects(ctx context.Context, includeArchived bool) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE archived_at IS NULL ORDER BY position ASC, id ASC`
	if includeArchived {
		query = `SELECT ` + projectColumns + ` FROM projects ORDER BY position ASC, id ASC`
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// GetProject fetches a single project by id.
func (s *Store) GetProject(ctx context.Context, id int64) (models.Project, error) {
	return getProject(ctx, s.db, id)
}

func getProject(ctx context.Context, q queryer, id int64) (models.Project, error) {
	p, err := scanProject(q.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, apperr.NotFound(entityProject, id)
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// CreateProject inserts a project after the last active one.
func (s *Store) CreateProject(ctx context.Context, req models.CreateProjectRequest) (models.Project, error) {
	req.Normalize()
	if err := validate.Request(req); err != nil {
		return models.Project{}, err
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `INSERT INTO projects(name, color, icon, position)
        VALUES(?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM projects WHERE archived_at IS NULL))
        RETURNING id`, req.Name, req.Color, req.Icon).Scan(&id)
	if err != nil {
		return models.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return s.GetProject(ctx, id)
}

// UpdateProject applies the supplied fields only. An empty update returns
// the stored row without touching updated_at.
func (s *Store) UpdateProject(ctx context.Context, id int64, req models.UpdateProjectRequest) (models.Project, error) {
	req.Normalize()
	if err := validate.Request(req); err != nil {
		return models.Project{}, err
	}
	if req.Empty() {
		return s.GetProject(ctx, id)
	}

	b := newUpdate("projects")
	setOptional(b, "name", req.Name)
	setNullable(b, "color", req.Color)
	setNullable(b, "icon", req.Icon)
	setOptional(b, "position", req.Position)
	setNullable(b, "archived_at", req.ArchivedAt)

	query, args := b.statement(id)
	var updated int64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, apperr.NotFound(entityProject, id)
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("update project: %w", err)
	}
	return s.GetProject(ctx, id)
}

// ArchiveProject soft-deletes a project by stamping archived_at.
func (s *Store) ArchiveProject(ctx context.Context, id int64) (models.Project, error) {
	return s.UpdateProject(ctx, id, models.UpdateProjectRequest{
		ArchivedAt: models.Value(time.Now().UTC()),
	})
}

// RestoreProject clears archived_at.
func (s *Store) RestoreProject(ctx context.Context, id int64) (models.Project, error) {
	return s.UpdateProject(ctx, id, models.UpdateProjectRequest{
		ArchivedAt: models.Null[time.Time](),
	})
}

// ReorderProjects assigns the given positions verbatim in one transaction.
// Any failure, including an unknown id, leaves every position unchanged.
func (s *Store) ReorderProjects(ctx context.Context, items models.ReorderRequest) error {
	if err := validate.Request(items); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, item := range items {
			res, err := tx.ExecContext(ctx, `UPDATE projects SET position = ? WHERE id = ?`, item.Position, item.ID)
			if err != nil {
				return fmt.Errorf("reorder project %d: %w", item.ID, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("reorder project %d: %w", item.ID, err)
			}
			if affected == 0 {
				return apperr.NotFound(entityProject, item.ID)
			}
		}
		return nil
	})
}

// DeleteProject removes a project; its tasks are removed by the cascade.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NotFound(entityProject, id)
	}
	return nil
}
