package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adept/internal/types"
)

var created = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedProject(t *testing.T, s *Store) types.Project {
	t.Helper()
	p, err := s.CreateProject(context.Background(), " Apollo ", "Moon landing")
	require.NoError(t, err)
	return p
}

func TestCreateAndGetProject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := seedProject(t, s)
	assert.Len(t, p.ID, 36)
	assert.Equal(t, "Apollo", p.Name)

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = s.GetProject(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.CreateProject(ctx, "  ", "")
	assert.Error(t, err)

	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.Project{p}, projects)
}

func TestSaveAndListTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s)
	due := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tasks := []types.Task{
		{ID: "t1", ProjectID: p.ID, Title: "Design schema", Description: "Draft DB schema", Status: types.StatusTodo, AssignedUserID: "u1", DueDate: &due, CreatedAt: created},
		{ID: "t2", ProjectID: p.ID, Title: "Write API", Description: "REST endpoints", CreatedAt: created},
		{ID: "t3", ProjectID: p.ID, Title: "Load test", Description: "Use 100% of the DB pool", Status: types.StatusDone, CreatedAt: created},
	}
	require.NoError(t, s.SaveTasks(ctx, tasks))

	got, err := s.ListTasks(ctx, p.ID, "")
	require.NoError(t, err)
	require.Len(t, got, 3)
	tasks[1].Status = types.StatusTodo
	if diff := cmp.Diff(tasks, got); diff != "" {
		t.Errorf("ListTasks() mismatch (-want +got):\n%s", diff)
	}

	found, err := s.ListTasks(ctx, p.ID, "SCHEMA")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "t1", found[0].ID)

	found, err = s.ListTasks(ctx, p.ID, "endpoints")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "t2", found[0].ID)

	found, err = s.ListTasks(ctx, p.ID, "100%")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "t3", found[0].ID)

	found, err = s.ListTasks(ctx, p.ID, "%")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestSaveTasksIsAllOrNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s)

	err := s.SaveTasks(ctx, []types.Task{
		{ID: "ok", ProjectID: p.ID, Title: "fine", CreatedAt: created},
		{ID: "bad", ProjectID: "no-such-project", Title: "orphan", CreatedAt: created},
	})
	require.Error(t, err)

	got, err := s.ListTasks(ctx, p.ID, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetAndAssignTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s)
	other, err := s.CreateProject(ctx, "Gemini", "")
	require.NoError(t, err)

	require.NoError(t, s.SaveTasks(ctx, []types.Task{{ID: "t1", ProjectID: p.ID, Title: "x", CreatedAt: created}}))

	_, err = s.GetTask(ctx, other.ID, "t1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.AssignTask(ctx, p.ID, "t1", "user-9"))
	task, err := s.GetTask(ctx, p.ID, "t1")
	require.NoError(t, err)
	assert.Equal(t, "user-9", task.AssignedUserID)
	assert.Nil(t, task.DueDate)

	require.NoError(t, s.AssignTask(ctx, p.ID, "t1", ""))
	task, err = s.GetTask(ctx, p.ID, "t1")
	require.NoError(t, err)
	assert.Empty(t, task.AssignedUserID)

	err = s.AssignTask(ctx, p.ID, "missing", "u")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSubtasksAndSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s)

	require.NoError(t, s.SaveTasks(ctx, []types.Task{
		{ID: "t1", ProjectID: p.ID, Title: "Build API", Status: types.StatusTodo, AssignedUserID: "u1", CreatedAt: created},
		{ID: "t2", ProjectID: p.ID, Title: "Docs", Status: types.StatusDone, CreatedAt: created.Add(time.Minute)},
	}))
	require.NoError(t, s.SaveSubtasks(ctx, []types.Subtask{
		{ID: "s1", TaskID: "t1", Title: "Routes", Description: "CRUD", CreatedAt: created},
		{ID: "s2", TaskID: "t1", Title: "Auth", CreatedAt: created},
	}))

	err := s.SaveSubtasks(ctx, []types.Subtask{{ID: "s3", TaskID: "nope", Title: "orphan", CreatedAt: created}})
	assert.Error(t, err)

	subtasks, err := s.ListSubtasks(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, subtasks, 2)
	assert.Equal(t, types.StatusTodo, subtasks[0].Status)

	snapshot, err := s.Snapshot(ctx, p.ID)
	require.NoError(t, err)

	want := types.ProjectSnapshot{
		Project: p,
		Tasks: []types.TaskSnapshot{
			{ID: "t1", Title: "Build API", Status: types.StatusTodo, AssignedTo: "u1", Subtasks: []types.SubtaskSnapshot{
				{ID: "s1", Title: "Routes", Description: "CRUD", Status: types.StatusTodo},
				{ID: "s2", Title: "Auth", Status: types.StatusTodo},
			}},
			{ID: "t2", Title: "Docs", Status: types.StatusDone},
		},
	}
	if diff := cmp.Diff(want, snapshot); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}

	_, err = s.Snapshot(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "adept.db")
	s, err := Open(path)
	require.NoError(t, err)
	p, err := s.CreateProject(context.Background(), "Persisted", "")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.GetProject(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Persisted", got.Name)
}
