package inmemory_test

import (
	"context"
	"testing"
	"time"

	"focusdesk/internal/models/task"
	repo "focusdesk/internal/repository"
	"focusdesk/internal/repository/task/inmemory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func newTask(userID uuid.UUID, title string, eventID *string) *task.Task {
	return &task.Task{
		ID:            uuid.New(),
		UserID:        userID,
		Title:         title,
		Progress:      task.ProgressNotStarted,
		GoogleEventID: eventID,
	}
}

// TestTaskStorage_EventUniqueness: уникальность (user_id, google_event_id)
// действует и на мягко удалённые записи
func TestTaskStorage_EventUniqueness(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewTaskStorage()
	userID := uuid.New()

	first := newTask(userID, "Write report", strPtr("g1"))
	require.NoError(t, store.Create(ctx, first))

	// прямой дубликат
	err := store.Create(ctx, newTask(userID, "Write report copy", strPtr("g1")))
	assert.ErrorIs(t, err, repo.ErrDuplicateRemoteEvent)

	// дубликат после мягкого удаления
	require.NoError(t, store.DeleteSoft(ctx, userID, first.ID))
	err = store.Create(ctx, newTask(userID, "Write report again", strPtr("g1")))
	assert.ErrorIs(t, err, repo.ErrDuplicateRemoteEvent)

	// у другого пользователя то же событие создаётся свободно
	otherID := uuid.New()
	require.NoError(t, store.Create(ctx, newTask(otherID, "Write report", strPtr("g1"))))

	// задачи без события между собой не конфликтуют
	require.NoError(t, store.Create(ctx, newTask(userID, "Manual 1", nil)))
	require.NoError(t, store.Create(ctx, newTask(userID, "Manual 2", nil)))
}

// TestTaskStorage_FindByEventID видит удалённые записи, а GetActive нет
func TestTaskStorage_FindByEventID(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewTaskStorage()
	userID := uuid.New()

	created := newTask(userID, "Write report", strPtr("g1"))
	require.NoError(t, store.Create(ctx, created))
	require.NoError(t, store.DeleteSoft(ctx, userID, created.ID))

	found, err := store.FindByEventID(ctx, userID, "g1")
	require.NoError(t, err)
	assert.True(t, found.Deleted)

	_, err = store.FindByEventID(ctx, userID, "missing")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	active, err := store.GetActive(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, active, 0)

	_, err = store.GetByID(ctx, userID, created.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound, "GetByID не отдаёт удалённые задачи")
}

// TestTaskStorage_OwnerScoping: чужой владелец всегда получает "не найдено"
func TestTaskStorage_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewTaskStorage()
	ownerID := uuid.New()
	otherID := uuid.New()

	created := newTask(ownerID, "Private", nil)
	require.NoError(t, store.Create(ctx, created))

	_, err := store.GetByID(ctx, otherID, created.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	hijacked := *created
	hijacked.UserID = otherID
	assert.ErrorIs(t, store.Update(ctx, &hijacked), repo.ErrNotFound)

	assert.ErrorIs(t, store.DeleteSoft(ctx, otherID, created.ID), repo.ErrNotFound)

	// задача осталась живой у владельца
	got, err := store.GetByID(ctx, ownerID, created.ID)
	require.NoError(t, err)
	assert.False(t, got.Deleted)
}

// TestTaskStorage_GetActive_Order: срок по возрастанию, задачи без срока
// в конце, при равенстве новые раньше
func TestTaskStorage_GetActive_Order(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewTaskStorage()
	userID := uuid.New()

	late := newTask(userID, "late", nil)
	late.DueDate = timePtr(time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.Create(ctx, late))

	early := newTask(userID, "early", nil)
	early.DueDate = timePtr(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.Create(ctx, early))

	undated := newTask(userID, "undated", nil)
	require.NoError(t, store.Create(ctx, undated))

	active, err := store.GetActive(ctx, userID)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, "early", active[0].Title)
	assert.Equal(t, "late", active[1].Title)
	assert.Equal(t, "undated", active[2].Title)
}

// TestTaskStorage_DeleteSoft_Twice: повторное удаление возвращает "не найдено"
func TestTaskStorage_DeleteSoft_Twice(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewTaskStorage()
	userID := uuid.New()

	created := newTask(userID, "Write report", nil)
	require.NoError(t, store.Create(ctx, created))

	require.NoError(t, store.DeleteSoft(ctx, userID, created.ID))
	assert.ErrorIs(t, store.DeleteSoft(ctx, userID, created.ID), repo.ErrNotFound)
}
