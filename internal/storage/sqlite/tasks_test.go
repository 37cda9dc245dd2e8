package sqlite

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/apperr"
	"taskboard/internal/models"
)

func TestCreateTask_DefaultsAndLanePositions(t *testing.T) {
	s := openTestStore(t)
	p := mustCreateProject(t, s, "Inbox")

	first := mustCreateTask(t, s, models.CreateTaskRequest{ProjectID: p.ID, Title: "  Draft spec  "})
	assert.Equal(t, "Draft spec", first.Task.Title)
	assert.Equal(t, models.DefaultTaskStatus, first.Task.Status)
	assert.Equal(t, int64(1), first.Task.Position)
	assert.Nil(t, first.Task.Tags)
	assert.Nil(t, first.Task.Description)

	second := mustCreateTask(t, s, models.CreateTaskRequest{ProjectID: p.ID, Title: "Review"})
	assert.Equal(t, int64(2), second.Task.Position)

	otherLane := mustCreateTask(t, s, models.CreateTaskRequest{ProjectID: p.ID, Title: "Ship", Status: "Done"})
	assert.Equal(t, int64(1), otherLane.Task.Position)

	pos := int64(10)
	explicit := mustCreateTask(t, s, models.CreateTaskRequest{ProjectID: p.ID, Title: "Pinned", Position: &pos})
	assert.Equal(t, int64(10), explicit.Task.Position)

	next := mustCreateTask(t, s, models.CreateTaskRequest{ProjectID: p.ID, Title: "After pinned"})
	assert.Equal(t, int64(11), next.Task.Position)
}

func TestCreateTask_RecordsInitialTransition(t *testing.T) {
	s := openTestStore(t)
	p := mustCreateProject(t, s, "Inbox")

	m := mustCreateTask(t, s, models.CreateTaskRequest{ProjectID: p.ID, Title: "Draft spec", Status: "To-Do"})
	require.NotNil(t, m.Transition)
	assert.Nil(t, m.Transition.FromStatus)
	assert.Equal(t, "To-Do", m.Transition.ToStatus)
	assert.Nil(t, m.Event)

	history, err := s.ListTaskTransitions(context.Background(), m.Task.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].FromStatus)
	assert.Equal(t, "To-Do", history[0].ToStatus)
}

func TestCreateTask_ActiveStatusDescribesEvent(t *testing.T) {
	s := openTestStore(t)
	p := mustCreateProject(t, s, "Inbox")

	m := mustCreateTask(t, s, models.CreateTaskRequest{ProjectID: p.ID, Title: "Focus", Status: models.ActiveTaskStatus})
	require.NotNil(t, m.Event)
	assert.Equal(t, m.Task.ID, m.Event.TaskID)
	assert.Equal(t, models.ActiveTaskStatus, m.Event.Status)

	done := mustCreateTask(t, s, models.CreateTaskRequest{ProjectID: p.ID, Title: "Old", Status: "Done"})
	assert.Nil(t, done.Event)
	assert.Equal(t, 1, countTransitions(t, s, done.Task.ID))
}

func TestCreateTask_AllFieldsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := mustCreateProject(t, s, "Inbox")

	due := time.Date(2026, 11, 2, 9, 30, 0, 0, time.UTC)
	desc, prio := "write it down", "high"
	est := int64(90)

	m := mustCreateTask(t, s, models.CreateTaskRequest{
		ProjectID:        p.ID,
		Title:            "Draft spec",
		Description:      &desc,
		DueDate:          &due,
		Priority:         &prio,
		Tags:             []string{"a", "b"},
		EstimatedMinutes: &est,
	})

	tasks, err := s.ListTasksByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	got := tasks[0]
	assert.Equal(t, m.Task.ID, got.ID)
	assert.Equal(t, []string{"a", "b"}, got.Tags)
	require.NotNil(t, got.Description)
	assert.Equal(t, desc, *got.Description)
	require.NotNil(t, got.Priority)
	assert.Equal(t, prio, *got.Priority)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	require.NotNil(t, got.EstimatedMinutes)
	assert.Equal(t, est, *got.EstimatedMinutes)
	assert.Nil(t, got.ActualMinutes)
	assert.Nil(t, got.ActualStartDate)
}

func TestCreateTask_Validation(t *testing.T) {
	s := openTestStore(t)
	p := mustCreateProject(t, s, "Inbox")
	negative := int64(-1)

	tests := []struct {
		name  string
		req   models.CreateTaskRequest
		field string
	}{
		{"missing project", models.CreateTaskRequest{Title: "x"}, "project_id"},
		{"blank title", models.CreateTaskRequest{ProjectID: p.ID, Title: " "}, "title"},
		{"long title", models.CreateTaskRequest{ProjectID: p.ID, Title: strings.Repeat("t", 201)}, "title"},
		{"long tag", models.CreateTaskRequest{ProjectID: p.ID, Title: "x", Tags: []string{"ok", strings.Repeat("g", 31)}}, "tags"},
		{"negative position", models.CreateTaskRequest{ProjectID: p.ID, Title: "x", Position: &negative}, "position"},
		{"negative minutes", models.CreateTaskRequest{ProjectID: p.ID, Title: "x", ActualMinutes: &negative}, "actual_minutes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateTask(context.Background(), tt.req)
			var verr *apperr.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	tasks, err := s.ListTasksByProject(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCreateTask_UnknownProjectIsStoreError(t *testing.T) {
	s := openTestStore(t)

	_, err := s.CreateTask(context.Background(), models.CreateTaskRequest{ProjectID: 42, Title: "Orphan"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrValidation)
	assert.NotErrorIs(t, err, apperr.ErrNotFound)

	var n int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM task_status_transitions`).Scan(&n))
	assert.Zero(t, n)
}

func TestListTasksByProject_Order(t *testing.T) {
	s := openTestStore(t)
	p := mustCreateProject(t, s, "Inbox")
	other := mustCreateProject(t, s, "Other")
	same := int64(3)

	b := mustCreateTask(t, s, models.CreateTaskRequest{ProjectID: p.ID, Title: "b", Status: "To-Do", Position: &same})
	a := mustCreateTask(t, s, models.CreateTaskRequest{ProjectID: p.ID, Title: "a", Status: "To-Do", Position: &same})
	d := mustCreateTask(t, s, models.CreateTaskRequest{ProjectID: p.ID, Title: "d", Status: "Done"})
	c := mustCreateTask(t, s, models.CreateTaskRequest{ProjectID: p.ID, Title: "c", Status: "To-Do"})
	mustCreateTask(t, s, models.CreateTaskRequest{ProjectID: other.ID, Title: "elsewhere"})

	tasks, err := s.ListTasksByProject(context.Background(), p.ID)
	require.NoError(t, err)

	var ids []int64
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	// "Done" sorts before "To-Do"; colliding positions fall back to id.
	assert.Equal(t, []int64{d.Task.ID, b.Task.ID, a.Task.ID, c.Task.ID}, ids)
}

func TestUpdateTask_StatusChangeRecordsTransition(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := mustCreateProject(t, s, "Inbox")
	due := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	created := mustCreateTask(t, s, models.CreateTaskRequest{ProjectID: p.ID, Title: "Draft spec", Status: "To-Do", DueDate: &due})

	m, err := s.UpdateTask(ctx, created.Task.ID, models.UpdateTaskRequest{Status: models.Some(models.ActiveTaskStatus)})
	require.NoError(t, err)
	assert.Equal(t, models.ActiveTaskStatus, m.Task.Status)

	require.NotNil(t, m.Transition)
	require.NotNil(t, m.Transition.FromStatus)
	assert.Equal(t, "To-Do", *m.Transition.FromStatus)
	assert.Equal(t, models.ActiveTaskStatus, m.Transition.ToStatus)

	require.NotNil(t, m.Event)
	assert.Equal(t, models.ActiveTaskStatus, m.Event.Status)
	assert.Equal(t, "To-Do", m.Event.Context[models.EventContextOldStatus])
	gotDue, ok := m.Event.Context[models.EventContextDueDate].(*time.Time)
	require.True(t, ok)
	require.NotNil(t, gotDue)
	assert.True(t, due.Equal(*gotDue))

	assert.Equal(t, 2, countTransitions(t, s, created.Task.ID))
}

func TestUpdateTask_NoStatusChangeLeavesHistoryAlone(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := mustCreateProject(t, s, "Inbox")
	created := mustCreateTask(t, s, models.CreateTaskRequest{ProjectID: p.ID, Title: "Draft spec"})

	m, err := s.UpdateTask(ctx, created.Task.ID, models.UpdateTaskRequest{Title: models.Some("Final draft")})
	require.NoError(t, err)
	assert.Equal(t, "Final draft", m.Task.Title)
	assert.Nil(t, m.Transition)
	assert.Nil(t, m.Event)

	m, err = s.UpdateTask(ctx, created.Task.ID, models.UpdateTaskRequest{Status: models.Some(created.Task.Status)})
	require.NoError(t, err)
	assert.Nil(t, m.Transition)
	assert.Nil(t, m.Event)

	assert.Equal(t, 1, countTransitions(t, s, created.Task.ID))
}

func TestUpdateTask_EmptyPayload(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := mustCreateProject(t, s, "Inbox")
	created := mustCreateTask(t, s, models.CreateTaskRequest{ProjectID: p.ID, Title: "Draft spec"})

	m, err := s.UpdateTask(ctx, created.Task.ID, models.UpdateTaskRequest{})
	require.NoError(t, err)
	assert.Equal(t, created.Task, m.Task)
	assert.Nil(t, m.Transition)
	assert.Nil(t, m.Event)
	assert.Equal(t, 1, countTransitions(t, s, created.Task.ID))

	_, err = s.UpdateTask(ctx, 999, models.UpdateTaskRequest{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = s.UpdateTask(ctx, 999, models.UpdateTaskRequest{Title: models.Some("x")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateTask_ClearsNullableFields(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := mustCreateProject(t, s, "Inbox")
	desc := "notes"
	created := mustCreateTask(t, s, models.CreateTaskRequest{
		ProjectID:   p.ID,
		Title:       "Draft spec",
		Description: &desc,
		Tags:        []string{"a"},
	})

	m, err := s.UpdateTask(ctx, created.Task.ID, models.UpdateTaskRequest{
		Description: models.Null[string](),
		Tags:        models.Value([]string{"x", "y"}),
	})
	require.NoError(t, err)
	assert.Nil(t, m.Task.Description)
	assert.Equal(t, []string{"x", "y"}, m.Task.Tags)

	m, err = s.UpdateTask(ctx, created.Task.ID, models.UpdateTaskRequest{Tags: models.Null[[]string]()})
	require.NoError(t, err)
	assert.Nil(t, m.Task.Tags)
	assert.Equal(t, "Draft spec", m.Task.Title)
}

func TestUpdateTask_Validation(t *testing.T) {
	s := openTestStore(t)
	p := mustCreateProject(t, s, "Inbox")
	created := mustCreateTask(t, s, models.CreateTaskRequest{ProjectID: p.ID, Title: "Draft spec"})

	_, err := s.UpdateTask(context.Background(), created.Task.ID, models.UpdateTaskRequest{Status: models.Some("  ")})
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "status", verr.Field)
	assert.Equal(t, 1, countTransitions(t, s, created.Task.ID))
}

func TestMoveTask_UpdatesLaneWithSingleTransition(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p1 := mustCreateProject(t, s, "Inbox")
	p2 := mustCreateProject(t, s, "Work")
	created := mustCreateTask(t, s, models.CreateTaskRequest{ProjectID: p1.ID, Title: "Draft spec"})

	m, err := s.MoveTask(ctx, created.Task.ID, models.MoveTaskRequest{ProjectID: p2.ID, Status: "Done", Position: 0})
	require.NoError(t, err)
	assert.Equal(t, p2.ID, m.Task.ProjectID)
	assert.Equal(t, "Done", m.Task.Status)
	assert.Equal(t, int64(0), m.Task.Position)
	require.NotNil(t, m.Transition)
	assert.Equal(t, "Done", m.Transition.ToStatus)

	history, err := s.ListTaskTransitions(ctx, created.Task.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.NotNil(t, history[1].FromStatus)
	assert.Equal(t, models.DefaultTaskStatus, *history[1].FromStatus)
	assert.Equal(t, "Done", history[1].ToStatus)
}

func TestMoveTask_SameStatusAcrossProjects(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p1 := mustCreateProject(t, s, "Inbox")
	p2 := mustCreateProject(t, s, "Work")
	created := mustCreateTask(t, s, models.CreateTaskRequest{ProjectID: p1.ID, Title: "Draft spec"})

	m, err := s.MoveTask(ctx, created.Task.ID, models.MoveTaskRequest{ProjectID: p2.ID, Status: created.Task.Status, Position: 4})
	require.NoError(t, err)
	assert.Equal(t, p2.ID, m.Task.ProjectID)
	assert.Nil(t, m.Transition)
	assert.Equal(t, 1, countTransitions(t, s, created.Task.ID))
}

func TestListTaskTransitions_UnknownTask(t *testing.T) {
	s := openTestStore(t)

	_, err := s.ListTaskTransitions(context.Background(), 7)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func failTransitionLog(t *testing.T, s *Store) {
	t.Helper()
	_, err := s.DB().Exec(`CREATE TRIGGER fail_transitions BEFORE INSERT ON task_status_transitions
		BEGIN SELECT RAISE(ABORT, 'transition log unavailable'); END;`)
	require.NoError(t, err)
}

func TestUpdateTask_FailedTransitionRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := mustCreateProject(t, s, "Inbox")
	created := mustCreateTask(t, s, models.CreateTaskRequest{ProjectID: p.ID, Title: "x"})
	failTransitionLog(t, s)

	_, err := s.UpdateTask(ctx, created.Task.ID, models.UpdateTaskRequest{
		Status: models.Some("Done"),
		Title:  models.Some("y"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transition log unavailable")

	stored, err := s.GetTask(ctx, created.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTaskStatus, stored.Status)
	assert.Equal(t, "x", stored.Title)
	assert.Equal(t, created.Task.UpdatedAt, stored.UpdatedAt)
	assert.Equal(t, 1, countTransitions(t, s, created.Task.ID))
}

func TestCreateTask_FailedTransitionRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := mustCreateProject(t, s, "Inbox")
	failTransitionLog(t, s)

	_, err := s.CreateTask(ctx, models.CreateTaskRequest{ProjectID: p.ID, Title: "x", Status: models.ActiveTaskStatus})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transition log unavailable")

	tasks, err := s.ListTasksByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	var n int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&n))
	assert.Equal(t, 0, n)
}
