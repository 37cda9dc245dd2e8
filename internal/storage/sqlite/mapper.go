package sqlite

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/tidwall/gjson"

	"taskboard/internal/models"
)

const projectColumns = `id, name, color, icon, position, archived_at, created_at, updated_at`

const taskColumns = `id, project_id, title, description, status, due_date, priority, tags, position,
        estimated_start_date, estimated_end_date, actual_start_date, actual_end_date,
        estimated_minutes, actual_minutes, created_at, updated_at`

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

type projectRow struct {
	ID         int64
	Name       string
	Color      sql.NullString
	Icon       sql.NullString
	Position   int64
	ArchivedAt sql.NullTime
	CreatedAt  sql.NullTime
	UpdatedAt  sql.NullTime
}

func scanProject(sc rowScanner) (models.Project, error) {
	var r projectRow
	if err := sc.Scan(&r.ID, &r.Name, &r.Color, &r.Icon, &r.Position, &r.ArchivedAt, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return models.Project{}, err
	}
	return r.toProject(), nil
}

func (r projectRow) toProject() models.Project {
	return models.Project{
		ID:         r.ID,
		Name:       r.Name,
		Color:      stringPtr(r.Color),
		Icon:       stringPtr(r.Icon),
		Position:   r.Position,
		ArchivedAt: timePtr(r.ArchivedAt),
		CreatedAt:  r.CreatedAt.Time,
		UpdatedAt:  r.UpdatedAt.Time,
	}
}

type taskRow struct {
	ID                 int64
	ProjectID          int64
	Title              string
	Description        sql.NullString
	Status             sql.NullString
	DueDate            sql.NullTime
	Priority           sql.NullString
	Tags               sql.NullString
	Position           sql.NullInt64
	EstimatedStartDate sql.NullTime
	EstimatedEndDate   sql.NullTime
	ActualStartDate    sql.NullTime
	ActualEndDate      sql.NullTime
	EstimatedMinutes   sql.NullInt64
	ActualMinutes      sql.NullInt64
	CreatedAt          sql.NullTime
	UpdatedAt          sql.NullTime
}

func (s *Store) scanTask(sc rowScanner) (models.Task, error) {
	var r taskRow
	err := sc.Scan(&r.ID, &r.ProjectID, &r.Title, &r.Description, &r.Status, &r.DueDate, &r.Priority, &r.Tags, &r.Position,
		&r.EstimatedStartDate, &r.EstimatedEndDate, &r.ActualStartDate, &r.ActualEndDate,
		&r.EstimatedMinutes, &r.ActualMinutes, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return models.Task{}, err
	}
	return r.toTask(s.logger), nil
}

// toTask never fails: absent optional columns map to nil and an unreadable
// tags column is logged and dropped.
func (r taskRow) toTask(logger *slog.Logger) models.Task {
	status := r.Status.String
	if !r.Status.Valid {
		status = models.DefaultTaskStatus
	}
	return models.Task{
		ID:                 r.ID,
		ProjectID:          r.ProjectID,
		Title:              r.Title,
		Description:        stringPtr(r.Description),
		Status:             status,
		DueDate:            timePtr(r.DueDate),
		Priority:           stringPtr(r.Priority),
		Tags:               decodeTags(logger, r.ID, r.Tags),
		Position:           r.Position.Int64,
		EstimatedStartDate: timePtr(r.EstimatedStartDate),
		EstimatedEndDate:   timePtr(r.EstimatedEndDate),
		ActualStartDate:    timePtr(r.ActualStartDate),
		ActualEndDate:      timePtr(r.ActualEndDate),
		EstimatedMinutes:   int64Ptr(r.EstimatedMinutes),
		ActualMinutes:      int64Ptr(r.ActualMinutes),
		CreatedAt:          r.CreatedAt.Time,
		UpdatedAt:          r.UpdatedAt.Time,
	}
}

// decodeTags reads a JSON array and coerces every element to text. Nested
// values and null keep their JSON form.
func decodeTags(logger *slog.Logger, taskID int64, raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	if !gjson.Valid(raw.String) {
		logger.Warn("malformed task tags ignored", "task_id", taskID, "error", "invalid json")
		return nil
	}
	parsed := gjson.Parse(raw.String)
	if !parsed.IsArray() {
		logger.Warn("malformed task tags ignored", "task_id", taskID, "error", "not an array")
		return nil
	}
	elems := parsed.Array()
	tags := make([]string, 0, len(elems))
	for _, el := range elems {
		if el.IsArray() || el.IsObject() || el.Type == gjson.Null {
			tags = append(tags, el.Raw)
			continue
		}
		tags = append(tags, el.String())
	}
	return tags
}

// encodeTags returns the column value for tags; nil stores NULL.
func encodeTags(tags []string) (any, error) {
	if tags == nil {
		return nil, nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanTransition(sc rowScanner) (models.StatusTransition, error) {
	var (
		t    models.StatusTransition
		from sql.NullString
		at   sql.NullTime
	)
	if err := sc.Scan(&t.ID, &t.TaskID, &from, &t.ToStatus, &at); err != nil {
		return models.StatusTransition{}, err
	}
	t.FromStatus = stringPtr(from)
	t.ChangedAt = at.Time
	return t, nil
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
