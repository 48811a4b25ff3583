package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"focusdesk/internal/models/task"
	repo "focusdesk/internal/repository"

	"github.com/google/uuid"
)

type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	mtx     *sync.RWMutex
	ids     []uuid.UUID
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	// та же уникальность, что и у частичного индекса в postgres:
	// событие учитывается даже у удалённых задач
	if taskToCreate.GoogleEventID != nil {
		for _, existing := range s.storage {
			if existing.UserID == taskToCreate.UserID &&
				existing.GoogleEventID != nil &&
				*existing.GoogleEventID == *taskToCreate.GoogleEventID {
				return repo.ErrDuplicateRemoteEvent
			}
		}
	}

	taskToCreate.CreatedAt = time.Now()

	copied := *taskToCreate
	s.storage[copied.ID] = &copied
	s.ids = append(s.ids, copied.ID)
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[taskToUpdate.ID]
	if !ok || existing.UserID != taskToUpdate.UserID || existing.Deleted {
		return repo.ErrNotFound
	}

	now := time.Now()
	taskToUpdate.UpdatedAt = &now

	copied := *taskToUpdate
	s.storage[copied.ID] = &copied
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, userID, id uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok || taskToGet.UserID != userID || taskToGet.Deleted {
		return nil, repo.ErrNotFound
	}

	copied := *taskToGet
	return &copied, nil
}

// поиск по событию календаря, удалённые задачи тоже участвуют
func (s *TaskStorage) FindByEventID(ctx context.Context, userID uuid.UUID, eventID string) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, t := range s.storage {
		if t.UserID == userID && t.GoogleEventID != nil && *t.GoogleEventID == eventID {
			copied := *t
			return &copied, nil
		}
	}
	return nil, repo.ErrNotFound
}

// мягкое удаление с сохранением записи
func (s *TaskStorage) DeleteSoft(ctx context.Context, userID, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	taskExisted, ok := s.storage[id]
	if !ok || taskExisted.UserID != userID || taskExisted.Deleted {
		return repo.ErrNotFound
	}

	now := time.Now()
	taskExisted.UpdatedAt = &now
	taskExisted.Deleted = true

	return nil
}

func (s *TaskStorage) GetActive(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}

	for _, id := range s.ids {
		t, ok := s.storage[id]
		if !ok || t.UserID != userID || t.Deleted {
			continue
		}
		copied := *t
		res = append(res, &copied)
	}

	// dueDate по возрастанию (задачи без срока в конце), затем новые раньше
	sort.SliceStable(res, func(i, j int) bool {
		a, b := res[i], res[j]
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return a.CreatedAt.After(b.CreatedAt)
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		case a.DueDate.Equal(*b.DueDate):
			return a.CreatedAt.After(b.CreatedAt)
		default:
			return a.DueDate.Before(*b.DueDate)
		}
	})

	return res, nil
}
