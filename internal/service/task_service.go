package service

import (
	"context"
	"errors"
	"strings"
	"time"

	dom "github.com/umutakksy/task-floww/internal/domain"
	"github.com/umutakksy/task-floww/internal/events"
	"github.com/umutakksy/task-floww/internal/repo"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// TaskView is a task enriched with the ids of its assigned users. Every read
// and every mutation that returns a task re-reads the assignment rows.
type TaskView struct {
	dom.Task
	AssigneeIDs []int64
}

// CreateTaskInput carries the caller-supplied fields for a new task.
type CreateTaskInput struct {
	Title        string
	Description  string
	Status       dom.Status
	Priority     dom.Priority
	FolderID     int64
	ParentTaskID *int64
	StartDate    *time.Time
	EndDate      *time.Time
	Progress     int
}

// TaskService manages the task lifecycle and the task-to-user assignment
// relation.
type TaskService struct {
	tasks       repo.TaskRepo
	assignments repo.AssignmentRepo
	sink        events.Sink
	log         *zap.Logger
}

// NewTaskService creates a TaskService.
func NewTaskService(tasks repo.TaskRepo, assignments repo.AssignmentRepo, sink events.Sink, log *zap.Logger) *TaskService {
	return &TaskService{tasks: tasks, assignments: assignments, sink: sink, log: log}
}

// Create persists a new task. Status defaults to TODO, priority to MEDIUM and
// progress is clamped to [0, 100]. Folder existence is not validated here.
func (s *TaskService) Create(ctx context.Context, creatorID int64, in CreateTaskInput) (TaskView, error) {
	if in.Status == "" {
		in.Status = dom.StatusTodo
	}
	if in.Priority == "" {
		in.Priority = dom.PriorityMedium
	}
	t, err := s.tasks.Create(ctx, dom.Task{
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Status:       in.Status,
		Priority:     in.Priority,
		FolderID:     in.FolderID,
		ParentTaskID: in.ParentTaskID,
		CreatorID:    creatorID,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Progress:     dom.ClampProgress(in.Progress),
	})
	if err != nil {
		return TaskView{}, err
	}
	return s.enrich(ctx, t)
}

// ListByFolder returns all live tasks in the folder, enriched with assignees.
func (s *TaskService) ListByFolder(ctx context.Context, folderID int64) ([]TaskView, error) {
	tasks, err := s.tasks.ListByFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		v, err := s.enrich(ctx, t)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// ListForUser returns the tasks the user is assigned to, in assignment-row
// fetch order. Assignment rows whose task is gone or soft-deleted are skipped;
// the rows themselves are kept (liveness is filtered at read time, not
// cascaded on task deletion).
func (s *TaskService) ListForUser(ctx context.Context, userID int64) ([]TaskView, error) {
	rows, err := s.assignments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]TaskView, 0, len(rows))
	for _, a := range rows {
		t, err := s.tasks.GetByID(ctx, a.TaskID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return nil, err
		}
		v, err := s.enrich(ctx, t)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// ToggleAssignee flips the assignment state of the (task, user) pair. The
// unique constraint on the pair makes the flip race-safe: of two concurrent
// toggles at most one insert and at most one delete can take effect. A
// notification is emitted only when a row was actually inserted; sink failures
// are logged and never surfaced.
func (s *TaskService) ToggleAssignee(ctx context.Context, taskID, userID int64) error {
	deleted, err := s.assignments.DeleteByPair(ctx, taskID, userID)
	if err != nil {
		return err
	}
	if deleted {
		return nil
	}
	inserted, err := s.assignments.InsertUnique(ctx, taskID, userID)
	if err != nil {
		return err
	}
	if inserted {
		if err := s.sink.Publish(ctx, events.AssignmentCreated{TaskID: taskID, UserID: userID}); err != nil {
			s.log.Warn("assignment notification failed",
				zap.Int64("task_id", taskID), zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

// UpdateStatus overwrites the task status unconditionally.
func (s *TaskService) UpdateStatus(ctx context.Context, taskID int64, status dom.Status) (TaskView, error) {
	t, err := s.get(ctx, taskID)
	if err != nil {
		return TaskView{}, err
	}
	t.Status = status
	return s.save(ctx, t)
}

// UpdateProgress sets the task progress, clamped to [0, 100]. Only the task
// creator may update progress.
func (s *TaskService) UpdateProgress(ctx context.Context, taskID int64, progress int, callerID int64) (TaskView, error) {
	t, err := s.get(ctx, taskID)
	if err != nil {
		return TaskView{}, err
	}
	if t.CreatorID != callerID {
		return TaskView{}, ErrForbidden
	}
	t.Progress = dom.ClampProgress(progress)
	return s.save(ctx, t)
}

// Update patches title and description only. Status, priority and progress are
// left untouched even if the caller sent them; those have dedicated endpoints.
func (s *TaskService) Update(ctx context.Context, taskID int64, title, description *string) (TaskView, error) {
	t, err := s.get(ctx, taskID)
	if err != nil {
		return TaskView{}, err
	}
	if title != nil {
		t.Title = strings.TrimSpace(*title)
	}
	if description != nil {
		t.Description = strings.TrimSpace(*description)
	}
	return s.save(ctx, t)
}

// UpdatePriority overwrites the task priority unconditionally.
func (s *TaskService) UpdatePriority(ctx context.Context, taskID int64, priority dom.Priority) (TaskView, error) {
	t, err := s.get(ctx, taskID)
	if err != nil {
		return TaskView{}, err
	}
	t.Priority = priority
	return s.save(ctx, t)
}

// Delete soft-deletes a task. Only the creator may delete, mirroring the
// progress rule. Assignment rows stay; reads filter them against live tasks.
func (s *TaskService) Delete(ctx context.Context, taskID, callerID int64) error {
	t, err := s.get(ctx, taskID)
	if err != nil {
		return err
	}
	if t.CreatorID != callerID {
		return ErrForbidden
	}
	return s.tasks.SoftDelete(ctx, taskID)
}

func (s *TaskService) get(ctx context.Context, taskID int64) (dom.Task, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, err
	}
	return t, nil
}

// save writes the task back with compare-and-swap on the version read in get.
// The task existed moments ago, so zero rows means a concurrent writer bumped
// the version (or deleted the task) in between.
func (s *TaskService) save(ctx context.Context, t dom.Task) (TaskView, error) {
	out, err := s.tasks.Update(ctx, t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TaskView{}, ErrVersionConflict
		}
		return TaskView{}, err
	}
	return s.enrich(ctx, out)
}

func (s *TaskService) enrich(ctx context.Context, t dom.Task) (TaskView, error) {
	rows, err := s.assignments.ListByTask(ctx, t.ID)
	if err != nil {
		return TaskView{}, err
	}
	ids := make([]int64, 0, len(rows))
	for _, a := range rows {
		ids = append(ids, a.UserID)
	}
	return TaskView{Task: t, AssigneeIDs: ids}, nil
}
