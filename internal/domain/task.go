package domain

import "time"

// Task status values, stored as text.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
	StatusCancelled  Status = "CANCELLED"
)

// Task priority values, stored as text.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Task is the domain entity for a task.
// Не зависит от Gin, Postgres, Redis.
type Task struct {
	ID           int64
	Title        string
	Description  string
	Status       Status
	Priority     Priority
	FolderID     int64
	ParentTaskID *int64
	CreatorID    int64
	StartDate    *time.Time
	EndDate      *time.Time
	Progress     int
	Version      int64

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// ClampProgress keeps progress inside [0, 100]. Applied on every write path.
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
