package service

import (
	"context"
	"errors"
	"fmt"

	"focusdesk/internal/google"
	"focusdesk/internal/logger"
	"focusdesk/internal/models/task"
	repo "focusdesk/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SyncResult содержит итог одного прохода синхронизации для пользователя
type SyncResult struct {
	Synced int `json:"synced"`
	Total  int `json:"total"`
}

type SyncService struct {
	tasks  TaskRepository
	users  UserRepository
	lister EventLister
}

func NewSyncService(tasks TaskRepository, users UserRepository, lister EventLister) *SyncService {
	return &SyncService{
		tasks:  tasks,
		users:  users,
		lister: lister,
	}
}

// SyncUser выполняет интерактивную синхронизацию: забирает ближайшие
// события календаря пользователя и сливает их в локальные задачи.
func (s *SyncService) SyncUser(ctx context.Context, userID uuid.UUID) (*SyncResult, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewUnauthenticated()
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}

	if u.AccessToken == "" {
		return nil, NewAuthRequired(nil)
	}

	events, err := s.lister.ListUpcomingEvents(ctx, u.AccessToken, u.RefreshToken)
	if err != nil {
		if errors.Is(err, google.ErrAuthRequired) {
			return nil, NewAuthRequired(err)
		}
		return nil, NewUpstreamUnavailable(err)
	}

	return s.Reconcile(ctx, userID, events), nil
}

// Reconcile сливает список событий в хранилище задач. Слияние
// одностороннее и идемпотентное: событие, уже привязанное к задаче
// (в том числе удалённой), пропускается: повторный прогон с тем же
// списком не создаёт ничего нового и не воскрешает удалённое.
func (s *SyncService) Reconcile(ctx context.Context, userID uuid.UUID, events []google.Event) *SyncResult {
	result := &SyncResult{}

	for _, event := range events {
		// события без названия не участвуют в синхронизации
		if event.Title == "" {
			continue
		}
		result.Total++

		_, err := s.tasks.FindByEventID(ctx, userID, event.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, repo.ErrNotFound) {
			// ошибка одного события не прерывает обработку остальных
			logger.Warn("Sync: Ошибка поиска задачи по событию",
				zap.String("user_id", userID.String()),
				zap.String("event_id", event.ID),
				zap.Error(err))
			continue
		}

		eventID := event.ID
		newTask := &task.Task{
			ID:            uuid.New(),
			UserID:        userID,
			Title:         event.Title,
			Progress:      task.ProgressNotStarted,
			DueDate:       event.Start,
			GoogleEventID: &eventID,
		}

		if err := s.tasks.Create(ctx, newTask); err != nil {
			if errors.Is(err, repo.ErrDuplicateRemoteEvent) {
				// параллельный прогон успел первым, хранилище решает гонку
				continue
			}
			logger.Warn("Sync: Не удалось создать задачу из события",
				zap.String("user_id", userID.String()),
				zap.String("event_id", event.ID),
				zap.Error(err))
			continue
		}

		result.Synced++
	}

	return result
}
