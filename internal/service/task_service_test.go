package service

import (
	"context"
	"errors"
	"testing"
	"time"

	dom "github.com/umutakksy/task-floww/internal/domain"
	"github.com/umutakksy/task-floww/internal/events"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTaskRepo struct {
	seq        int64
	tasks      map[int64]dom.Task
	order      []int64
	updateHook func() // runs before the CAS check, to simulate a concurrent writer
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[int64]dom.Task)}
}

func (r *fakeTaskRepo) Create(_ context.Context, t dom.Task) (dom.Task, error) {
	r.seq++
	t.ID = r.seq
	t.Version = 1
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	r.tasks[t.ID] = t
	r.order = append(r.order, t.ID)
	return t, nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id int64) (dom.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.DeletedAt != nil {
		return dom.Task{}, pgx.ErrNoRows
	}
	return t, nil
}

func (r *fakeTaskRepo) ListByFolder(_ context.Context, folderID int64) ([]dom.Task, error) {
	var list []dom.Task
	for _, id := range r.order {
		t := r.tasks[id]
		if t.FolderID == folderID && t.DeletedAt == nil {
			list = append(list, t)
		}
	}
	return list, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, t dom.Task) (dom.Task, error) {
	if r.updateHook != nil {
		r.updateHook()
	}
	cur, ok := r.tasks[t.ID]
	if !ok || cur.DeletedAt != nil || cur.Version != t.Version {
		return dom.Task{}, pgx.ErrNoRows
	}
	cur.Title = t.Title
	cur.Description = t.Description
	cur.Status = t.Status
	cur.Priority = t.Priority
	cur.StartDate = t.StartDate
	cur.EndDate = t.EndDate
	cur.Progress = t.Progress
	cur.Version++
	cur.UpdatedAt = time.Now().UTC()
	r.tasks[t.ID] = cur
	return cur, nil
}

func (r *fakeTaskRepo) SoftDelete(_ context.Context, id int64) error {
	t, ok := r.tasks[id]
	if !ok || t.DeletedAt != nil {
		return nil
	}
	now := time.Now().UTC()
	t.DeletedAt = &now
	r.tasks[id] = t
	return nil
}

type fakeAssignmentRepo struct {
	seq  int64
	rows []dom.Assignment
}

func (r *fakeAssignmentRepo) ListByTask(_ context.Context, taskID int64) ([]dom.Assignment, error) {
	var list []dom.Assignment
	for _, a := range r.rows {
		if a.TaskID == taskID {
			list = append(list, a)
		}
	}
	return list, nil
}

func (r *fakeAssignmentRepo) ListByUser(_ context.Context, userID int64) ([]dom.Assignment, error) {
	var list []dom.Assignment
	for _, a := range r.rows {
		if a.UserID == userID {
			list = append(list, a)
		}
	}
	return list, nil
}

func (r *fakeAssignmentRepo) InsertUnique(_ context.Context, taskID, userID int64) (bool, error) {
	for _, a := range r.rows {
		if a.TaskID == taskID && a.UserID == userID {
			return false, nil
		}
	}
	r.seq++
	r.rows = append(r.rows, dom.Assignment{ID: r.seq, TaskID: taskID, UserID: userID})
	return true, nil
}

func (r *fakeAssignmentRepo) DeleteByPair(_ context.Context, taskID, userID int64) (bool, error) {
	for i, a := range r.rows {
		if a.TaskID == taskID && a.UserID == userID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeSink struct {
	published []events.AssignmentCreated
	err       error
}

func (s *fakeSink) Publish(_ context.Context, e events.AssignmentCreated) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, e)
	return nil
}

type taskFixture struct {
	svc         *TaskService
	tasks       *fakeTaskRepo
	assignments *fakeAssignmentRepo
	sink        *fakeSink
}

func newTaskFixture() *taskFixture {
	tasks := newFakeTaskRepo()
	assignments := &fakeAssignmentRepo{}
	sink := &fakeSink{}
	return &taskFixture{
		svc:         NewTaskService(tasks, assignments, sink, zap.NewNop()),
		tasks:       tasks,
		assignments: assignments,
		sink:        sink,
	}
}

func TestCreateTask_Defaults(t *testing.T) {
	ctx := context.Background()
	fx := newTaskFixture()

	v, err := fx.svc.Create(ctx, 7, CreateTaskInput{Title: "t", FolderID: 1})
	require.NoError(t, err)
	require.Equal(t, dom.StatusTodo, v.Status)
	require.Equal(t, dom.PriorityMedium, v.Priority)
	require.Equal(t, 0, v.Progress)
	require.Equal(t, int64(7), v.CreatorID)
	require.Empty(t, v.AssigneeIDs)
}

func TestCreateTask_ClampsProgress(t *testing.T) {
	ctx := context.Background()
	fx := newTaskFixture()

	low, err := fx.svc.Create(ctx, 1, CreateTaskInput{Title: "low", FolderID: 1, Progress: -5})
	require.NoError(t, err)
	require.Equal(t, 0, low.Progress)

	high, err := fx.svc.Create(ctx, 1, CreateTaskInput{Title: "high", FolderID: 1, Progress: 150})
	require.NoError(t, err)
	require.Equal(t, 100, high.Progress)
}

func TestToggleAssignee_Parity(t *testing.T) {
	ctx := context.Background()
	fx := newTaskFixture()
	task, _ := fx.svc.Create(ctx, 1, CreateTaskInput{Title: "t", FolderID: 1})

	// Once: assigned, one notification.
	require.NoError(t, fx.svc.ToggleAssignee(ctx, task.ID, 5))
	require.Len(t, fx.assignments.rows, 1)
	require.Len(t, fx.sink.published, 1)
	require.Equal(t, events.AssignmentCreated{TaskID: task.ID, UserID: 5}, fx.sink.published[0])

	// Twice: unassigned, no new notification, no duplicate error.
	require.NoError(t, fx.svc.ToggleAssignee(ctx, task.ID, 5))
	require.Empty(t, fx.assignments.rows)
	require.Len(t, fx.sink.published, 1)

	// Thrice: assigned again.
	require.NoError(t, fx.svc.ToggleAssignee(ctx, task.ID, 5))
	require.Len(t, fx.assignments.rows, 1)
	require.Len(t, fx.sink.published, 2)
}

func TestToggleAssignee_SinkFailureDoesNotFailToggle(t *testing.T) {
	ctx := context.Background()
	fx := newTaskFixture()
	fx.sink.err = errors.New("broker down")
	task, _ := fx.svc.Create(ctx, 1, CreateTaskInput{Title: "t", FolderID: 1})

	require.NoError(t, fx.svc.ToggleAssignee(ctx, task.ID, 5))
	require.Len(t, fx.assignments.rows, 1)
}

func TestUpdateProgress_CreatorOnly(t *testing.T) {
	ctx := context.Background()
	fx := newTaskFixture()
	task, _ := fx.svc.Create(ctx, 1, CreateTaskInput{Title: "t", FolderID: 1, Progress: 10})

	_, err := fx.svc.UpdateProgress(ctx, task.ID, 50, 2)
	require.ErrorIs(t, err, ErrForbidden)
	require.Equal(t, 10, fx.tasks.tasks[task.ID].Progress)

	v, err := fx.svc.UpdateProgress(ctx, task.ID, 150, 1)
	require.NoError(t, err)
	require.Equal(t, 100, v.Progress)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	fx := newTaskFixture()
	_, err := fx.svc.UpdateStatus(context.Background(), 99, dom.StatusDone)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTask_PatchesTitleAndDescriptionOnly(t *testing.T) {
	ctx := context.Background()
	fx := newTaskFixture()
	task, _ := fx.svc.Create(ctx, 1, CreateTaskInput{
		Title: "old", Description: "desc", FolderID: 1,
		Status: dom.StatusInProgress, Progress: 30,
	})

	title := "new"
	v, err := fx.svc.Update(ctx, task.ID, &title, nil)
	require.NoError(t, err)
	require.Equal(t, "new", v.Title)
	require.Equal(t, "desc", v.Description)
	require.Equal(t, dom.StatusInProgress, v.Status)
	require.Equal(t, 30, v.Progress)
}

func TestUpdateStatus_VersionConflict(t *testing.T) {
	ctx := context.Background()
	fx := newTaskFixture()
	task, _ := fx.svc.Create(ctx, 1, CreateTaskInput{Title: "t", FolderID: 1})

	// A concurrent writer bumps the version between read and write.
	fx.tasks.updateHook = func() {
		cur := fx.tasks.tasks[task.ID]
		cur.Version++
		fx.tasks.tasks[task.ID] = cur
		fx.tasks.updateHook = nil
	}

	_, err := fx.svc.UpdateStatus(ctx, task.ID, dom.StatusDone)
	require.ErrorIs(t, err, ErrVersionConflict)
}

func TestListForUser_SkipsDeadTasks(t *testing.T) {
	ctx := context.Background()
	fx := newTaskFixture()

	live, _ := fx.svc.Create(ctx, 1, CreateTaskInput{Title: "live", FolderID: 1})
	dead, _ := fx.svc.Create(ctx, 1, CreateTaskInput{Title: "dead", FolderID: 1})
	require.NoError(t, fx.svc.ToggleAssignee(ctx, dead.ID, 5))
	require.NoError(t, fx.svc.ToggleAssignee(ctx, live.ID, 5))
	require.NoError(t, fx.svc.Delete(ctx, dead.ID, 1))

	// A dangling assignment row for a task that never existed.
	_, err := fx.assignments.InsertUnique(ctx, 999, 5)
	require.NoError(t, err)

	views, err := fx.svc.ListForUser(ctx, 5)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, live.ID, views[0].ID)
	require.Equal(t, []int64{5}, views[0].AssigneeIDs)
}

func TestDeleteTask_CreatorOnly(t *testing.T) {
	ctx := context.Background()
	fx := newTaskFixture()
	task, _ := fx.svc.Create(ctx, 1, CreateTaskInput{Title: "t", FolderID: 3})

	require.ErrorIs(t, fx.svc.Delete(ctx, task.ID, 2), ErrForbidden)
	require.NoError(t, fx.svc.Delete(ctx, task.ID, 1))

	views, err := fx.svc.ListByFolder(ctx, 3)
	require.NoError(t, err)
	require.Empty(t, views)

	require.ErrorIs(t, fx.svc.Delete(ctx, task.ID, 1), ErrNotFound)
}

func TestEnrichment_OnMutationPaths(t *testing.T) {
	ctx := context.Background()
	fx := newTaskFixture()
	task, _ := fx.svc.Create(ctx, 1, CreateTaskInput{Title: "t", FolderID: 1})
	require.NoError(t, fx.svc.ToggleAssignee(ctx, task.ID, 4))
	require.NoError(t, fx.svc.ToggleAssignee(ctx, task.ID, 9))

	v, err := fx.svc.UpdatePriority(ctx, task.ID, dom.PriorityUrgent)
	require.NoError(t, err)
	require.Equal(t, dom.PriorityUrgent, v.Priority)
	require.Equal(t, []int64{4, 9}, v.AssigneeIDs)
}
