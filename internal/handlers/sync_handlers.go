package handlers

import (
	"net/http"
	"time"

	"focusdesk/internal/logger"
	"focusdesk/internal/middleware"
	"focusdesk/internal/service"

	"go.uber.org/zap"
)

type SyncHandler struct {
	SyncService *service.SyncService
}

func NewSyncHandler(syncService *service.SyncService) SyncHandler {
	return SyncHandler{
		SyncService: syncService,
	}
}

// TriggerSync обслуживает интерактивную кнопку "Sync" на доске
func (s *SyncHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	logger.Info("HTTP: Запуск синхронизации календаря",
		zap.String("user_id", userID.String()))

	result, err := s.SyncService.SyncUser(r.Context(), userID)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}

		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "sync"),
			zap.String("client_addr", r.RemoteAddr))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Синхронизация завершена",
		zap.Int("synced", result.Synced),
		zap.Int("total", result.Total),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, result)
}
