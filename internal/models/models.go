package models

import "time"

const (
	// DefaultTaskStatus is assigned when a task is created without a status.
	DefaultTaskStatus = "To-Do"
	// ActiveTaskStatus marks active work; entering it raises a TaskEvent.
	ActiveTaskStatus = "In Progress"
)

// Project groups tasks and is ordered on the board by Position.
type Project struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Color      *string    `json:"color"`
	Icon       *string    `json:"icon"`
	Position   int64      `json:"position"`
	ArchivedAt *time.Time `json:"archived_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Archived reports whether the project has been soft-deleted.
func (p Project) Archived() bool {
	return p.ArchivedAt != nil
}

// Task is a single card. Position orders it inside its (project, status) lane.
type Task struct {
	ID                 int64      `json:"id"`
	ProjectID          int64      `json:"project_id"`
	Title              string     `json:"title"`
	Description        *string    `json:"description"`
	Status             string     `json:"status"`
	DueDate            *time.Time `json:"due_date"`
	Priority           *string    `json:"priority"`
	Tags               []string   `json:"tags"`
	Position           int64      `json:"position"`
	EstimatedStartDate *time.Time `json:"estimated_start_date"`
	EstimatedEndDate   *time.Time `json:"estimated_end_date"`
	ActualStartDate    *time.Time `json:"actual_start_date"`
	ActualEndDate      *time.Time `json:"actual_end_date"`
	EstimatedMinutes   *int64     `json:"estimated_minutes"`
	ActualMinutes      *int64     `json:"actual_minutes"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// StatusTransition is an append-only history entry. FromStatus is nil for
// the initial assignment made when the task is created.
type StatusTransition struct {
	ID         int64     `json:"id"`
	TaskID     int64     `json:"task_id"`
	FromStatus *string   `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ChangedAt  time.Time `json:"changed_at"`
}

// TaskEvent describes a task entering a watched status. Repositories only
// describe events; delivery happens after the mutation has committed.
type TaskEvent struct {
	ID         string         `json:"id"`
	TaskID     int64          `json:"task_id"`
	Status     string         `json:"status"`
	Context    map[string]any `json:"context,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Event context keys.
const (
	EventContextOldStatus = "old_status"
	EventContextDueDate   = "due_date"
)

// TaskMutation is the committed result of a task write together with the
// side effects it produced.
type TaskMutation struct {
	Task       Task
	Transition *StatusTransition
	Event      *TaskEvent
}
