package dto

import (
	"time"

	"focusdesk/internal/models/task"
)

type CreateTaskRequest struct {
	Title    string        `json:"title"`
	Progress task.Progress `json:"progress,omitempty"`
	DueDate  *time.Time    `json:"dueDate,omitempty"`
	Duration int           `json:"duration,omitempty"`
}

// размеченные указателями поля отличают "не прислано" от нулевого значения
type UpdateTaskRequest struct {
	Title         *string        `json:"title,omitempty"`
	Progress      *task.Progress `json:"progress,omitempty"`
	Completed     *bool          `json:"completed,omitempty"`
	CompletedAt   *time.Time     `json:"completedAt,omitempty"`
	DueDate       *time.Time     `json:"dueDate,omitempty"`
	Duration      *int           `json:"duration,omitempty"`
	PomodoroCount *int           `json:"pomodoroCount,omitempty"`
}

type SyncResponse struct {
	Synced int `json:"synced"`
	Total  int `json:"total"`
}

type AuthURLResponse struct {
	URL string `json:"url"`
}

type AuthStatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
}
