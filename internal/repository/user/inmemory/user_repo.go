package inmemory

import (
	"context"
	"sync"
	"time"

	"focusdesk/internal/models/user"
	repo "focusdesk/internal/repository"

	"github.com/google/uuid"
)

type UserStorage struct {
	storage map[uuid.UUID]*user.User
	mtx     *sync.RWMutex
	ids     []uuid.UUID
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		storage: make(map[uuid.UUID]*user.User),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *UserStorage) Create(ctx context.Context, userToCreate *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	userToCreate.CreatedAt = time.Now()

	copied := *userToCreate
	s.storage[copied.ID] = &copied
	s.ids = append(s.ids, copied.ID)
	return nil
}

func (s *UserStorage) Update(ctx context.Context, userToUpdate *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[userToUpdate.ID]; !ok {
		return repo.ErrNotFound
	}

	now := time.Now()
	userToUpdate.UpdatedAt = &now

	copied := *userToUpdate
	s.storage[copied.ID] = &copied
	return nil
}

func (s *UserStorage) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	userToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}

	copied := *userToGet
	return &copied, nil
}

func (s *UserStorage) GetByGoogleID(ctx context.Context, googleID string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, u := range s.storage {
		if u.GoogleID == googleID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *UserStorage) GetAll(ctx context.Context) ([]*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*user.User, 0, len(s.ids))
	for _, id := range s.ids {
		if u, ok := s.storage[id]; ok {
			copied := *u
			res = append(res, &copied)
		}
	}
	return res, nil
}
