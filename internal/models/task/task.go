package task

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	UserID        uuid.UUID  `json:"userId" db:"user_id"`
	Title         string     `json:"title" db:"title"`
	Progress      Progress   `json:"progress" db:"progress"`
	Completed     bool       `json:"completed" db:"completed"`
	CompletedAt   *time.Time `json:"completedAt,omitempty" db:"completed_at"`
	DueDate       *time.Time `json:"dueDate,omitempty" db:"due_date"`
	Duration      int        `json:"duration" db:"duration"`
	PomodoroCount int        `json:"pomodoroCount" db:"pomodoro_count"`
	GoogleEventID *string    `json:"googleEventId,omitempty" db:"google_event_id"`
	Deleted       bool       `json:"deleted" db:"deleted"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty" db:"updated_at"`
}

type Progress string

// значения сериализуются ровно так, как их ждёт фронтенд
const ProgressNotStarted Progress = "Not Started"
const ProgressInProgress Progress = "In Progress"
const ProgressDone Progress = "Done"

func (p Progress) Valid() bool {
	switch p {
	case ProgressNotStarted, ProgressInProgress, ProgressDone:
		return true
	}
	return false
}
