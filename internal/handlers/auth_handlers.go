package handlers

import (
	"context"
	"net/http"
	"time"

	"focusdesk/internal/google"
	"focusdesk/internal/handlers/dto"
	"focusdesk/internal/logger"
	"focusdesk/internal/middleware"
	"focusdesk/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const stateCookie = "focusdesk_oauth_state"

// OAuthProvider обменивает код авторизации на личность пользователя
type OAuthProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*google.Identity, error)
}

type AuthHandler struct {
	AuthService *service.AuthService
	OAuth       OAuthProvider
	FrontendURL string
	SessionTTL  time.Duration
	Secure      bool
}

func NewAuthHandler(authService *service.AuthService, oauth OAuthProvider, frontendURL string, ttl time.Duration, secure bool) AuthHandler {
	return AuthHandler{
		AuthService: authService,
		OAuth:       oauth,
		FrontendURL: frontendURL,
		SessionTTL:  ttl,
		Secure:      secure,
	}
}

// GoogleLogin отдаёт ссылку на страницу согласия Google.
// Случайный state уходит в короткоживущую куку и сверяется в колбэке.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: h.sameSite(),
		MaxAge:   int((10 * time.Minute).Seconds()),
	})

	responseWithJSON(w, http.StatusOK, dto.AuthURLResponse{URL: h.OAuth.AuthURL(state)})
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		logger.Warn("HTTP: Неверный state при колбэке OAuth",
			zap.String("client_ip", r.RemoteAddr))
		h.redirectFailed(w, r)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		logger.Warn("HTTP: Колбэк OAuth без кода авторизации")
		h.redirectFailed(w, r)
		return
	}

	identity, err := h.OAuth.Exchange(r.Context(), code)
	if err != nil {
		logger.Error("HTTP: Обмен кода авторизации не удался", err)
		h.redirectFailed(w, r)
		return
	}

	sess, err := h.AuthService.LoginWithGoogle(r.Context(), identity)
	if err != nil {
		logger.Error("HTTP: Вход через Google не удался", err)
		h.redirectFailed(w, r)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.Token.String(),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: h.sameSite(),
		MaxAge:   int(h.SessionTTL.Seconds()),
	})

	logger.Info("HTTP_OUT: Пользователь вошёл",
		zap.String("email", identity.Email))

	http.Redirect(w, r, h.FrontendURL+"?auth=success", http.StatusFound)
}

// Status никогда не отвечает 401: фронтенд опрашивает его до логина
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	cookie, err := r.Cookie(middleware.SessionCookie)
	if err != nil {
		responseWithJSON(w, http.StatusOK, dto.AuthStatusResponse{Authenticated: false})
		return
	}

	token, err := uuid.Parse(cookie.Value)
	if err != nil {
		responseWithJSON(w, http.StatusOK, dto.AuthStatusResponse{Authenticated: false})
		return
	}

	u, err := h.AuthService.UserFromSession(r.Context(), token)
	if err != nil {
		responseWithJSON(w, http.StatusOK, dto.AuthStatusResponse{Authenticated: false})
		return
	}

	responseWithJSON(w, http.StatusOK, dto.AuthStatusResponse{
		Authenticated: true,
		Email:         u.Email,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
		if token, err := uuid.Parse(cookie.Value); err == nil {
			if err := h.AuthService.Logout(r.Context(), token); err != nil {
				logger.Warn("HTTP: Не удалось удалить сессию", zap.Error(err))
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: h.sameSite(),
		MaxAge:   -1,
	})

	responseWithPayloads(w, http.StatusOK, toPayload("success", true))
}

func (h *AuthHandler) redirectFailed(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.FrontendURL+"?auth=failed", http.StatusFound)
}

// в продакшене фронтенд живёт на другом домене, кука должна быть SameSite=None
func (h *AuthHandler) sameSite() http.SameSite {
	if h.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
