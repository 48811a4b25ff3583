package service

import (
	"time"

	"focusdesk/internal/models/task"
)

// TaskOption применяет частичное обновление к задаче.
// Опция со значением nil просто пропускается сервисом.
type TaskOption func(*task.Task)

func WithTitle(title string) TaskOption {
	if title == "" {
		return nil
	}
	return func(t *task.Task) {
		t.Title = title
	}
}

func WithDueDate(dueDate *time.Time) TaskOption {
	return func(t *task.Task) {
		t.DueDate = dueDate
	}
}

func WithDuration(duration int) TaskOption {
	if duration < 0 {
		return nil
	}
	return func(t *task.Task) {
		t.Duration = duration
	}
}

func WithPomodoroCount(count int) TaskOption {
	if count < 0 {
		return nil
	}
	return func(t *task.Task) {
		t.PomodoroCount = count
	}
}

// WithProgress служит единственным источником правды для completed/completedAt.
// Переход в Done проставляет время завершения (повторное применение его
// не сдвигает), уход из Done сбрасывает оба поля независимо от того,
// что клиент прислал явно.
func (s *TaskService) WithProgress(progress task.Progress, explicitCompletedAt *time.Time) TaskOption {
	if !progress.Valid() {
		return nil
	}
	return func(t *task.Task) {
		t.Progress = progress

		if progress == task.ProgressDone {
			t.Completed = true
			if t.CompletedAt == nil {
				if explicitCompletedAt != nil {
					t.CompletedAt = explicitCompletedAt
				} else {
					now := s.now()
					t.CompletedAt = &now
				}
			}
			return
		}

		t.Completed = false
		t.CompletedAt = nil
	}
}
