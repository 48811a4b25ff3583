package service

import (
	"context"

	"focusdesk/internal/google"
	"focusdesk/internal/models/session"
	"focusdesk/internal/models/task"
	"focusdesk/internal/models/user"

	"github.com/google/uuid"
)

type TaskRepository interface {
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*task.Task, error)
	FindByEventID(ctx context.Context, userID uuid.UUID, eventID string) (*task.Task, error)
	GetActive(ctx context.Context, userID uuid.UUID) ([]*task.Task, error)
	DeleteSoft(ctx context.Context, userID, id uuid.UUID) error
	HealthCheck(context.Context) error
}

type UserRepository interface {
	Create(context.Context, *user.User) error
	Update(context.Context, *user.User) error
	GetByID(context.Context, uuid.UUID) (*user.User, error)
	GetByGoogleID(context.Context, string) (*user.User, error)
	GetAll(context.Context) ([]*user.User, error)
}

type SessionRepository interface {
	Create(context.Context, *session.Session) error
	Get(context.Context, uuid.UUID) (*session.Session, error)
	Delete(context.Context, uuid.UUID) error
}

// EventLister отдаёт ближайшие события календаря пользователя
type EventLister interface {
	ListUpcomingEvents(ctx context.Context, accessToken, refreshToken string) ([]google.Event, error)
}
