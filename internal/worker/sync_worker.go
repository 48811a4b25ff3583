package worker

import (
	"context"
	"time"

	"focusdesk/internal/logger"
	"focusdesk/internal/models/user"
	"focusdesk/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserLister interface {
	GetAll(context.Context) ([]*user.User, error)
}

type UserSyncer interface {
	SyncUser(context.Context, uuid.UUID) (*service.SyncResult, error)
}

// SyncWorker гонит синхронизацию календаря для всех пользователей по таймеру
type SyncWorker struct {
	users    UserLister
	syncer   UserSyncer
	interval time.Duration
}

func NewSyncWorker(users UserLister, syncer UserSyncer, interval *time.Duration) *SyncWorker {
	var intervalToSet time.Duration
	if interval == nil {
		intervalToSet = 5 * time.Minute
	} else {
		intervalToSet = *interval
	}

	return &SyncWorker{
		users:    users,
		syncer:   syncer,
		interval: intervalToSet,
	}
}

func (w *SyncWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Info("Worker: Фоновая синхронизация календарей", zap.Time("started_at", time.Now()))
			w.RunOnce(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая синхронизация останавливается")
			return
		}
	}
}

// RunOnce выполняет один проход по всем пользователям. Ошибка одного
// пользователя (чаще всего протухшие токены) не останавливает обход остальных.
func (w *SyncWorker) RunOnce(ctx context.Context) {
	start := time.Now()

	users, err := w.users.GetAll(ctx)
	if err != nil {
		logger.Warn("Worker: ошибка получения пользователей", zap.Error(err))
		return
	}

	syncedTotal := 0
	failed := 0

	for _, u := range users {
		res, err := w.syncer.SyncUser(ctx, u.ID)
		if err != nil {
			logger.Warn("Worker: Синхронизация пользователя не удалась",
				zap.String("email", u.Email),
				zap.Error(err))
			failed++
			continue
		}
		syncedTotal += res.Synced
	}

	logger.Info("Worker: Завершение синхронизации",
		zap.Duration("ms", time.Since(start)),
		zap.Int("users", len(users)),
		zap.Int("created", syncedTotal),
		zap.Int("failed", failed),
	)
}
