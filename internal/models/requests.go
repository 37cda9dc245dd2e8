package models

import (
	"fmt"
	"strings"
	"time"

	"taskboard/internal/validate"
)

// CreateProjectRequest carries the input of a project insert.
type CreateProjectRequest struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
	Icon  *string `json:"icon"`
}

// Normalize trims the name.
func (r *CreateProjectRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// ValidationFields implements validate.Checker.
func (r CreateProjectRequest) ValidationFields() []validate.Field {
	fs := []validate.Field{{Rule: validate.ProjectName, Name: "name", Value: r.Name}}
	fs = appendPtr(fs, validate.ProjectColor, "color", r.Color)
	fs = appendPtr(fs, validate.ProjectIcon, "icon", r.Icon)
	return fs
}

// UpdateProjectRequest is a partial project update. Absent fields are left
// untouched; Nullable fields set to null clear the column.
type UpdateProjectRequest struct {
	Name       Optional[string]    `json:"name"`
	Color      Nullable[string]    `json:"color"`
	Icon       Nullable[string]    `json:"icon"`
	Position   Optional[int64]     `json:"position"`
	ArchivedAt Nullable[time.Time] `json:"archived_at"`
}

// Normalize trims the name when supplied.
func (r *UpdateProjectRequest) Normalize() {
	if r.Name.Set {
		r.Name.Value = strings.TrimSpace(r.Name.Value)
	}
}

// Empty reports whether no field was supplied.
func (r UpdateProjectRequest) Empty() bool {
	return !r.Name.Set && !r.Color.Set && !r.Icon.Set && !r.Position.Set && !r.ArchivedAt.Set
}

// ValidationFields implements validate.Checker.
func (r UpdateProjectRequest) ValidationFields() []validate.Field {
	var fs []validate.Field
	fs = appendOptional(fs, validate.ProjectName, "name", r.Name)
	fs = appendNullable(fs, validate.ProjectColor, "color", r.Color)
	fs = appendNullable(fs, validate.ProjectIcon, "icon", r.Icon)
	fs = appendOptional(fs, validate.ProjectPosition, "position", r.Position)
	return fs
}

// ReorderItem assigns a position to a project.
type ReorderItem struct {
	ID       int64 `json:"id"`
	Position int64 `json:"position"`
}

// ReorderRequest is a batch of positions applied all-or-nothing.
type ReorderRequest []ReorderItem

// ValidationFields implements validate.Checker.
func (r ReorderRequest) ValidationFields() []validate.Field {
	fs := make([]validate.Field, 0, 2*len(r))
	for i, item := range r {
		fs = append(fs,
			validate.Field{Rule: validate.ProjectID, Name: fmt.Sprintf("items[%d].id", i), Value: item.ID},
			validate.Field{Rule: validate.ProjectPosition, Name: fmt.Sprintf("items[%d].position", i), Value: item.Position},
		)
	}
	return fs
}

// CreateTaskRequest carries the input of a task insert. A nil Position is
// computed from the destination lane.
type CreateTaskRequest struct {
	ProjectID          int64      `json:"project_id"`
	Title              string     `json:"title"`
	Status             string     `json:"status"`
	Description        *string    `json:"description"`
	DueDate            *time.Time `json:"due_date"`
	Priority           *string    `json:"priority"`
	Tags               []string   `json:"tags"`
	Position           *int64     `json:"position"`
	EstimatedStartDate *time.Time `json:"estimated_start_date"`
	EstimatedEndDate   *time.Time `json:"estimated_end_date"`
	ActualStartDate    *time.Time `json:"actual_start_date"`
	ActualEndDate      *time.Time `json:"actual_end_date"`
	EstimatedMinutes   *int64     `json:"estimated_minutes"`
	ActualMinutes      *int64     `json:"actual_minutes"`
}

// Normalize trims text input and applies the default status.
func (r *CreateTaskRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Status = strings.TrimSpace(r.Status)
	if r.Status == "" {
		r.Status = DefaultTaskStatus
	}
}

// ValidationFields implements validate.Checker.
func (r CreateTaskRequest) ValidationFields() []validate.Field {
	fs := []validate.Field{
		{Rule: validate.TaskProjectID, Name: "project_id", Value: r.ProjectID},
		{Rule: validate.TaskTitle, Name: "title", Value: r.Title},
		{Rule: validate.TaskStatus, Name: "status", Value: r.Status},
	}
	fs = appendPtr(fs, validate.TaskDescription, "description", r.Description)
	fs = appendPtr(fs, validate.TaskPriority, "priority", r.Priority)
	if r.Tags != nil {
		fs = append(fs, validate.Field{Rule: validate.TaskTags, Name: "tags", Value: r.Tags})
	}
	fs = appendPtr(fs, validate.TaskPosition, "position", r.Position)
	fs = appendPtr(fs, validate.TaskMinutes, "estimated_minutes", r.EstimatedMinutes)
	fs = appendPtr(fs, validate.TaskMinutes, "actual_minutes", r.ActualMinutes)
	return fs
}

// UpdateTaskRequest is a partial task update.
type UpdateTaskRequest struct {
	ProjectID          Optional[int64]     `json:"project_id"`
	Title              Optional[string]    `json:"title"`
	Status             Optional[string]    `json:"status"`
	Position           Optional[int64]     `json:"position"`
	Description        Nullable[string]    `json:"description"`
	DueDate            Nullable[time.Time] `json:"due_date"`
	Priority           Nullable[string]    `json:"priority"`
	Tags               Nullable[[]string]  `json:"tags"`
	EstimatedStartDate Nullable[time.Time] `json:"estimated_start_date"`
	EstimatedEndDate   Nullable[time.Time] `json:"estimated_end_date"`
	ActualStartDate    Nullable[time.Time] `json:"actual_start_date"`
	ActualEndDate      Nullable[time.Time] `json:"actual_end_date"`
	EstimatedMinutes   Nullable[int64]     `json:"estimated_minutes"`
	ActualMinutes      Nullable[int64]     `json:"actual_minutes"`
}

// MoveTaskRequest relocates a task to another lane.
type MoveTaskRequest struct {
	ProjectID int64  `json:"project_id"`
	Status    string `json:"status"`
	Position  int64  `json:"position"`
}

// Update converts the move into the equivalent partial update.
func (m MoveTaskRequest) Update() UpdateTaskRequest {
	return UpdateTaskRequest{
		ProjectID: Some(m.ProjectID),
		Status:    Some(m.Status),
		Position:  Some(m.Position),
	}
}

// Normalize trims text input when supplied.
func (r *UpdateTaskRequest) Normalize() {
	if r.Title.Set {
		r.Title.Value = strings.TrimSpace(r.Title.Value)
	}
	if r.Status.Set {
		r.Status.Value = strings.TrimSpace(r.Status.Value)
	}
}

// Empty reports whether no field was supplied.
func (r UpdateTaskRequest) Empty() bool {
	return !r.ProjectID.Set && !r.Title.Set && !r.Status.Set && !r.Position.Set &&
		!r.Description.Set && !r.DueDate.Set && !r.Priority.Set && !r.Tags.Set &&
		!r.EstimatedStartDate.Set && !r.EstimatedEndDate.Set &&
		!r.ActualStartDate.Set && !r.ActualEndDate.Set &&
		!r.EstimatedMinutes.Set && !r.ActualMinutes.Set
}

// ValidationFields implements validate.Checker.
func (r UpdateTaskRequest) ValidationFields() []validate.Field {
	var fs []validate.Field
	fs = appendOptional(fs, validate.TaskProjectID, "project_id", r.ProjectID)
	fs = appendOptional(fs, validate.TaskTitle, "title", r.Title)
	fs = appendOptional(fs, validate.TaskStatus, "status", r.Status)
	fs = appendOptional(fs, validate.TaskPosition, "position", r.Position)
	fs = appendNullable(fs, validate.TaskDescription, "description", r.Description)
	fs = appendNullable(fs, validate.TaskPriority, "priority", r.Priority)
	fs = appendNullable(fs, validate.TaskTags, "tags", r.Tags)
	fs = appendNullable(fs, validate.TaskMinutes, "estimated_minutes", r.EstimatedMinutes)
	fs = appendNullable(fs, validate.TaskMinutes, "actual_minutes", r.ActualMinutes)
	return fs
}

func appendPtr[T any](fs []validate.Field, rule, name string, v *T) []validate.Field {
	if v == nil {
		return fs
	}
	return append(fs, validate.Field{Rule: rule, Name: name, Value: *v})
}

func appendOptional[T any](fs []validate.Field, rule, name string, o Optional[T]) []validate.Field {
	if !o.Set {
		return fs
	}
	return append(fs, validate.Field{Rule: rule, Name: name, Value: o.Value})
}

func appendNullable[T any](fs []validate.Field, rule, name string, n Nullable[T]) []validate.Field {
	if !n.Set || n.Null {
		return fs
	}
	return append(fs, validate.Field{Rule: rule, Name: name, Value: n.Value})
}
