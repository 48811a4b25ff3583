package service_test

import (
	"context"
	"testing"
	"time"

	"focusdesk/internal/google"
	sessioninmem "focusdesk/internal/repository/session/inmemory"
	userinmem "focusdesk/internal/repository/user/inmemory"
	"focusdesk/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAuthService_LoginWithGoogle тестирует создание и обновление пользователя
func TestAuthService_LoginWithGoogle(t *testing.T) {
	ctx := context.Background()
	users := userinmem.NewUserStorage()
	sessions := sessioninmem.NewSessionStorage()

	svc := service.NewAuthService(users, sessions, 24*time.Hour)

	// первый вход создаёт пользователя
	sess, err := svc.LoginWithGoogle(ctx, &google.Identity{
		GoogleID:     "g-123",
		Email:        "user@example.com",
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
	})
	require.NoError(t, err)

	created, err := users.GetByGoogleID(ctx, "g-123")
	require.NoError(t, err)
	assert.Equal(t, "access-1", created.AccessToken)
	assert.Equal(t, "refresh-1", created.RefreshToken)
	assert.Equal(t, created.ID, sess.UserID)

	// повторный вход без refresh token не затирает сохранённый
	_, err = svc.LoginWithGoogle(ctx, &google.Identity{
		GoogleID:    "g-123",
		Email:       "user@example.com",
		AccessToken: "access-2",
	})
	require.NoError(t, err)

	updated, err := users.GetByGoogleID(ctx, "g-123")
	require.NoError(t, err)
	assert.Equal(t, "access-2", updated.AccessToken)
	assert.Equal(t, "refresh-1", updated.RefreshToken)
	assert.Equal(t, created.ID, updated.ID, "повторный вход не создаёт второго пользователя")

	// новый refresh token перезаписывает старый
	_, err = svc.LoginWithGoogle(ctx, &google.Identity{
		GoogleID:     "g-123",
		Email:        "user@example.com",
		AccessToken:  "access-3",
		RefreshToken: "refresh-3",
	})
	require.NoError(t, err)

	updated, err = users.GetByGoogleID(ctx, "g-123")
	require.NoError(t, err)
	assert.Equal(t, "refresh-3", updated.RefreshToken)
}

// TestAuthService_UserFromSession тестирует проверку сессий
func TestAuthService_UserFromSession(t *testing.T) {
	ctx := context.Background()
	users := userinmem.NewUserStorage()
	sessions := sessioninmem.NewSessionStorage()

	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	svc := service.NewAuthService(users, sessions, time.Hour).
		WithClock(func() time.Time { return now })

	sess, err := svc.LoginWithGoogle(ctx, &google.Identity{
		GoogleID:    "g-123",
		Email:       "user@example.com",
		AccessToken: "access",
	})
	require.NoError(t, err)

	u, err := svc.UserFromSession(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", u.Email)

	// просроченная сессия даёт Unauthenticated
	now = now.Add(2 * time.Hour)
	_, err = svc.UserFromSession(ctx, sess.Token)
	var busErr *service.BusinessError
	require.ErrorAs(t, err, &busErr)
	assert.Equal(t, service.CodeUnauthenticated, busErr.Code)

	// после выхода сессия не работает
	sess2, err := svc.LoginWithGoogle(ctx, &google.Identity{
		GoogleID:    "g-123",
		Email:       "user@example.com",
		AccessToken: "access",
	})
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, sess2.Token))

	_, err = svc.UserFromSession(ctx, sess2.Token)
	require.ErrorAs(t, err, &busErr)
	assert.Equal(t, service.CodeUnauthenticated, busErr.Code)
}
