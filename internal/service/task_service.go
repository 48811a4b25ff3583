package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"focusdesk/internal/logger"
	"focusdesk/internal/models/task"
	repo "focusdesk/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type TaskService struct {
	repo TaskRepository
	now  func() time.Time
}

func NewTaskService(taskRepo TaskRepository) *TaskService {
	return &TaskService{
		repo: taskRepo,
		now:  time.Now,
	}
}

// WithClock подменяет источник времени для тестов жизненного цикла
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

func (s *TaskService) CreateNewTask(ctx context.Context, userID uuid.UUID, title string, progress task.Progress, dueDate *time.Time, duration int) (*task.Task, error) {
	if title == "" {
		return nil, NewValidationError("title", "название не может быть пустым")
	}
	if progress == "" {
		progress = task.ProgressNotStarted
	}
	if !progress.Valid() {
		return nil, NewValidationError("progress", "недопустимое значение статуса")
	}
	if duration < 0 {
		return nil, NewValidationError("duration", "длительность не может быть отрицательной")
	}

	newTask := &task.Task{
		ID:       uuid.New(),
		UserID:   userID,
		Title:    title,
		Progress: progress,
		DueDate:  dueDate,
		Duration: duration,
	}

	// задача может быть создана сразу завершённой
	if progress == task.ProgressDone {
		now := s.now()
		newTask.Completed = true
		newTask.CompletedAt = &now
	}

	if err := s.repo.Create(ctx, newTask); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}
	return newTask, nil
}

func (s *TaskService) GetActiveTasks(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	tasks, err := s.repo.GetActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

// UpdateTask применяет частичное обновление к задаче владельца.
// Правила жизненного цикла progress зашиты в опцию WithProgress.
func (s *TaskService) UpdateTask(ctx context.Context, userID, id uuid.UUID, options ...TaskOption) (*task.Task, error) {
	taskToUpdate, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound("задача", id.String())
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	for _, opt := range options {
		if opt != nil {
			opt(taskToUpdate)
		}
	}

	if err := s.repo.Update(ctx, taskToUpdate); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("задача", id.String())
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}
	return taskToUpdate, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, userID, id uuid.UUID) error {
	err := s.repo.DeleteSoft(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return NewNotFound("задача", id.String())
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}
	return nil
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}
