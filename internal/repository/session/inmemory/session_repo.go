package inmemory

import (
	"context"
	"sync"

	"focusdesk/internal/models/session"
	repo "focusdesk/internal/repository"

	"github.com/google/uuid"
)

type SessionStorage struct {
	storage map[uuid.UUID]*session.Session
	mtx     *sync.RWMutex
}

func NewSessionStorage() *SessionStorage {
	return &SessionStorage{
		storage: make(map[uuid.UUID]*session.Session),
		mtx:     &sync.RWMutex{},
	}
}

func (s *SessionStorage) Create(ctx context.Context, sess *session.Session) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	copied := *sess
	s.storage[copied.Token] = &copied
	return nil
}

func (s *SessionStorage) Get(ctx context.Context, token uuid.UUID) (*session.Session, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	sess, ok := s.storage[token]
	if !ok {
		return nil, repo.ErrNotFound
	}

	copied := *sess
	return &copied, nil
}

func (s *SessionStorage) Delete(ctx context.Context, token uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	delete(s.storage, token)
	return nil
}
