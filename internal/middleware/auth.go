package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"focusdesk/internal/logger"
	"focusdesk/internal/models/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const SessionCookie = "focusdesk_session"

const UserIdKey contextKey = "user_id"

// SessionResolver сопоставляет токен сессии с пользователем
type SessionResolver interface {
	UserFromSession(ctx context.Context, token uuid.UUID) (*user.User, error)
}

// Auth пускает дальше только запросы с живой сессией и кладёт
// id владельца в контекст запроса
func Auth(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				unauthenticated(w, r)
				return
			}

			token, err := uuid.Parse(cookie.Value)
			if err != nil {
				unauthenticated(w, r)
				return
			}

			u, err := resolver.UserFromSession(r.Context(), token)
			if err != nil {
				unauthenticated(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserIdKey, u.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIdKey).(uuid.UUID)
	return id, ok
}

func unauthenticated(w http.ResponseWriter, r *http.Request) {
	logger.Warn("HTTP: Запрос без действующей сессии",
		zap.String("path", r.URL.Path),
		zap.String("client_ip", r.RemoteAddr))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"error": "Not authenticated",
	})
}
