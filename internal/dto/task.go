package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Date parses a JSON date as either date-only ("2006-01-02") or RFC3339.
// Date-only is stored as start of that day in UTC.
type Date struct{ t *time.Time }

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		d.t = nil
		return nil
	}
	s := strings.TrimSpace(*raw)
	layouts := []string{
		"2006-01-02",     // date only
		time.RFC3339,     // 2006-01-02T15:04:05Z07:00
		time.RFC3339Nano, // with nanoseconds
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			if layout == "2006-01-02" {
				parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			}
			d.t = &parsed
			return nil
		}
	}
	return fmt.Errorf("date: use YYYY-MM-DD or RFC3339 datetime")
}

// Ptr returns *time.Time for use in service/domain.
func (d Date) Ptr() *time.Time { return d.t }

type CreateTaskRequest struct {
	Title        string `json:"title" binding:"required,min=1,max=200"`
	Description  string `json:"description" binding:"max=2000"`
	Status       string `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS DONE CANCELLED"`
	Priority     string `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	FolderID     int64  `json:"folder_id" binding:"required"`
	ParentTaskID *int64 `json:"parent_task_id"`
	StartDate    Date   `json:"start_date"` // optional: "2026-02-19" or RFC3339
	EndDate      Date   `json:"end_date"`
	Progress     int    `json:"progress"`
}

// UpdateTaskRequest patches title and description only. Status, priority and
// progress have dedicated endpoints and are never touched here.
type UpdateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=TODO IN_PROGRESS DONE CANCELLED"`
}

type UpdatePriorityRequest struct {
	Priority string `json:"priority" binding:"required,oneof=LOW MEDIUM HIGH URGENT"`
}

type UpdateProgressRequest struct {
	Progress *int `json:"progress" binding:"required"`
}

type TaskResponse struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	FolderID     int64      `json:"folder_id"`
	ParentTaskID *int64     `json:"parent_task_id"`
	CreatorID    int64      `json:"creator_id"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Progress     int        `json:"progress"`
	Version      int64      `json:"version"`
	AssigneeIDs  []int64    `json:"assignee_ids"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type ListTasksResponse struct {
	Items []TaskResponse `json:"items"`
}
