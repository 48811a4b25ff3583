package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"focusdesk/internal/google"
	"focusdesk/internal/models/task"
	"focusdesk/internal/models/user"
	repo "focusdesk/internal/repository"
	taskinmem "focusdesk/internal/repository/task/inmemory"
	userinmem "focusdesk/internal/repository/user/inmemory"
	"focusdesk/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEventLister - мок календарного коллаборатора
type MockEventLister struct {
	mock.Mock
}

func (m *MockEventLister) ListUpcomingEvents(ctx context.Context, accessToken, refreshToken string) ([]google.Event, error) {
	args := m.Called(ctx, accessToken, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]google.Event), args.Error(1)
}

var _ service.EventLister = (*MockEventLister)(nil)

func newSyncFixture(t *testing.T) (*service.SyncService, *taskinmem.TaskStorage, *userinmem.UserStorage, *MockEventLister, *user.User) {
	t.Helper()

	tasks := taskinmem.NewTaskStorage()
	users := userinmem.NewUserStorage()
	lister := new(MockEventLister)

	u := &user.User{
		ID:           uuid.New(),
		GoogleID:     "g-123",
		Email:        "user@example.com",
		AccessToken:  "access",
		RefreshToken: "refresh",
	}
	require.NoError(t, users.Create(context.Background(), u))

	return service.NewSyncService(tasks, users, lister), tasks, users, lister, u
}

func eventAt(id, title, day string) google.Event {
	start, _ := time.Parse("2006-01-02", day)
	return google.Event{ID: id, Title: title, Start: &start}
}

func titleIs(title string) func(*task.Task) bool {
	return func(t *task.Task) bool { return t.Title == title }
}

// TestSyncService_SyncUser_CreatesTask: первый прогон создаёт задачу из события
func TestSyncService_SyncUser_CreatesTask(t *testing.T) {
	ctx := context.Background()
	svc, tasks, _, lister, u := newSyncFixture(t)

	lister.On("ListUpcomingEvents", mock.Anything, "access", "refresh").
		Return([]google.Event{eventAt("g1", "Write report", "2025-01-10")}, nil)

	result, err := svc.SyncUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 1, result.Total)

	created, err := tasks.FindByEventID(ctx, u.ID, "g1")
	require.NoError(t, err)
	assert.Equal(t, "Write report", created.Title)
	assert.Equal(t, "Not Started", string(created.Progress))
	require.NotNil(t, created.DueDate)
	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), *created.DueDate)
	assert.False(t, created.Deleted)

	lister.AssertExpectations(t)
}

// TestSyncService_Reconcile_Idempotent: повторный прогон с тем же списком
// не создаёт ничего нового
func TestSyncService_Reconcile_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, tasks, _, _, u := newSyncFixture(t)

	events := []google.Event{
		eventAt("g1", "Write report", "2025-01-10"),
		eventAt("g2", "Team standup", "2025-01-11"),
	}

	first := svc.Reconcile(ctx, u.ID, events)
	assert.Equal(t, 2, first.Synced)
	assert.Equal(t, 2, first.Total)

	second := svc.Reconcile(ctx, u.ID, events)
	assert.Equal(t, 0, second.Synced)
	assert.Equal(t, 2, second.Total)

	active, err := tasks.GetActive(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

// TestSyncService_Reconcile_NoResurrection: удалённая задача не возвращается
// и не дублируется при повторной синхронизации того же события
func TestSyncService_Reconcile_NoResurrection(t *testing.T) {
	ctx := context.Background()
	svc, tasks, _, _, u := newSyncFixture(t)

	events := []google.Event{eventAt("g1", "Write report", "2025-01-10")}

	first := svc.Reconcile(ctx, u.ID, events)
	require.Equal(t, 1, first.Synced)

	created, err := tasks.FindByEventID(ctx, u.ID, "g1")
	require.NoError(t, err)
	require.NoError(t, tasks.DeleteSoft(ctx, u.ID, created.ID))

	second := svc.Reconcile(ctx, u.ID, events)
	assert.Equal(t, 0, second.Synced)
	assert.Equal(t, 1, second.Total)

	active, err := tasks.GetActive(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, active, 0)

	// запись осталась в хранилище удалённой
	deleted, err := tasks.FindByEventID(ctx, u.ID, "g1")
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)
}

// TestSyncService_Reconcile_EmptyTitle: события без названия не участвуют
func TestSyncService_Reconcile_EmptyTitle(t *testing.T) {
	ctx := context.Background()
	svc, tasks, _, _, u := newSyncFixture(t)

	result := svc.Reconcile(ctx, u.ID, []google.Event{{ID: "e1", Title: ""}})
	assert.Equal(t, 0, result.Synced)
	assert.Equal(t, 0, result.Total)

	active, err := tasks.GetActive(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, active, 0)
}

// TestSyncService_Reconcile_EventFailureIsolation: ошибка записи одного
// события не прерывает обработку остальных
func TestSyncService_Reconcile_EventFailureIsolation(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	mockRepo := new(MockTaskRepository)
	mockRepo.On("FindByEventID", mock.Anything, userID, "g1").Return(nil, repo.ErrNotFound)
	mockRepo.On("FindByEventID", mock.Anything, userID, "g2").Return(nil, repo.ErrNotFound)

	// первое событие падает при записи, второе проходит
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(titleIs("Broken"))).
		Return(errors.New("сбой хранилища"))
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(titleIs("Healthy"))).
		Return(nil)

	svc := service.NewSyncService(mockRepo, userinmem.NewUserStorage(), new(MockEventLister))

	result := svc.Reconcile(ctx, userID, []google.Event{
		eventAt("g1", "Broken", "2025-01-10"),
		eventAt("g2", "Healthy", "2025-01-11"),
	})

	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 2, result.Total)

	mockRepo.AssertExpectations(t)
}

// TestSyncService_Reconcile_DuplicateRace: конфликт уникальности означает,
// что параллельный прогон успел первым, и это не ошибка
func TestSyncService_Reconcile_DuplicateRace(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	mockRepo := new(MockTaskRepository)
	mockRepo.On("FindByEventID", mock.Anything, userID, "g1").Return(nil, repo.ErrNotFound)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(repo.ErrDuplicateRemoteEvent)

	svc := service.NewSyncService(mockRepo, userinmem.NewUserStorage(), new(MockEventLister))

	result := svc.Reconcile(ctx, userID, []google.Event{eventAt("g1", "Write report", "2025-01-10")})
	assert.Equal(t, 0, result.Synced)
	assert.Equal(t, 1, result.Total)

	mockRepo.AssertExpectations(t)
}

// TestSyncService_SyncUser_Errors тестирует таксономию ошибок синхронизации
func TestSyncService_SyncUser_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		userTokens bool
		listErr    error
		expectCode string
	}{
		{
			name:       "error - no stored credential",
			userTokens: false,
			expectCode: service.CodeAuthRequired,
		},
		{
			name:       "error - credential rejected upstream",
			userTokens: true,
			listErr:    fmt.Errorf("%w: token revoked", google.ErrAuthRequired),
			expectCode: service.CodeAuthRequired,
		},
		{
			name:       "error - calendar unavailable",
			userTokens: true,
			listErr:    fmt.Errorf("%w: quota exceeded", google.ErrUnavailable),
			expectCode: service.CodeUpstreamUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := taskinmem.NewTaskStorage()
			users := userinmem.NewUserStorage()
			lister := new(MockEventLister)

			u := &user.User{ID: uuid.New(), GoogleID: "g-1", Email: "user@example.com"}
			if tt.userTokens {
				u.AccessToken = "access"
				u.RefreshToken = "refresh"
				lister.On("ListUpcomingEvents", mock.Anything, "access", "refresh").
					Return(nil, tt.listErr)
			}
			require.NoError(t, users.Create(ctx, u))

			svc := service.NewSyncService(tasks, users, lister)
			_, err := svc.SyncUser(ctx, u.ID)

			var busErr *service.BusinessError
			require.ErrorAs(t, err, &busErr)
			assert.Equal(t, tt.expectCode, busErr.Code)

			lister.AssertExpectations(t)
		})
	}
}
