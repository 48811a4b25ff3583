package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"focusdesk/internal/google"
	"focusdesk/internal/logger"
	"focusdesk/internal/models/session"
	"focusdesk/internal/models/user"
	repo "focusdesk/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	users    UserRepository
	sessions SessionRepository
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthService(users UserRepository, sessions SessionRepository, ttl time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// LoginWithGoogle создаёт пользователя при первом входе и перезаписывает
// токены при повторном. Google выдаёт refresh token не на каждый вход,
// поэтому пустой новый refresh token не затирает сохранённый.
func (s *AuthService) LoginWithGoogle(ctx context.Context, identity *google.Identity) (*session.Session, error) {
	u, err := s.users.GetByGoogleID(ctx, identity.GoogleID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		u = &user.User{
			ID:           uuid.New(),
			GoogleID:     identity.GoogleID,
			Email:        identity.Email,
			AccessToken:  identity.AccessToken,
			RefreshToken: identity.RefreshToken,
		}
		if err := s.users.Create(ctx, u); err != nil {
			return nil, fmt.Errorf("создание пользователя: %w", err)
		}
		logger.Info("Service: Зарегистрирован новый пользователь", zap.String("email", u.Email))

	case err != nil:
		return nil, fmt.Errorf("поиск пользователя: %w", err)

	default:
		u.Email = identity.Email
		u.AccessToken = identity.AccessToken
		if identity.RefreshToken != "" {
			u.RefreshToken = identity.RefreshToken
		}
		if err := s.users.Update(ctx, u); err != nil {
			return nil, fmt.Errorf("обновление токенов: %w", err)
		}
	}

	now := s.now()
	sess := &session.Session{
		Token:     uuid.New(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("создание сессии: %w", err)
	}
	return sess, nil
}

// UserFromSession возвращает владельца живой сессии.
// Просроченная или неизвестная сессия даёт Unauthenticated без деталей.
func (s *AuthService) UserFromSession(ctx context.Context, token uuid.UUID) (*user.User, error) {
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewUnauthenticated()
		}
		return nil, fmt.Errorf("получение сессии: %w", err)
	}

	if sess.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, token); err != nil {
			logger.Warn("Service: Не удалось удалить просроченную сессию", zap.Error(err))
		}
		return nil, NewUnauthenticated()
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewUnauthenticated()
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}

func (s *AuthService) Logout(ctx context.Context, token uuid.UUID) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("удаление сессии: %w", err)
	}
	return nil
}
