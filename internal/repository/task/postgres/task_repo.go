package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"focusdesk/internal/logger"
	"focusdesk/internal/models/task"
	repo "focusdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, connString string) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool}, nil
}

func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	query := `INSERT INTO tasks
				(id, user_id, title, progress, completed, completed_at, due_date, duration, pomodoro_count, google_event_id, deleted, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
				RETURNING created_at`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.ID,
		taskToCreate.UserID,
		taskToCreate.Title,
		taskToCreate.Progress,
		taskToCreate.Completed,
		taskToCreate.CompletedAt,
		taskToCreate.DueDate,
		taskToCreate.Duration,
		taskToCreate.PomodoroCount,
		taskToCreate.GoogleEventID,
		taskToCreate.Deleted,
	).Scan(&taskToCreate.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// индекс (user_id, google_event_id) действует и на удалённые строки
			logger.Warn("Repository: Событие календаря уже привязано к задаче",
				zap.String("user_id", taskToCreate.UserID.String()))
			return repo.ErrDuplicateRemoteEvent
		}

		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()

	query := `UPDATE tasks
			SET title = $1,
				progress = $2,
				completed = $3,
				completed_at = $4,
				due_date = $5,
				duration = $6,
				pomodoro_count = $7,
				updated_at = NOW()
			WHERE id = $8 AND user_id = $9 AND deleted = FALSE
			RETURNING updated_at`

	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Progress,
		taskToUpdate.Completed,
		taskToUpdate.CompletedAt,
		taskToUpdate.DueDate,
		taskToUpdate.Duration,
		taskToUpdate.PomodoroCount,
		taskToUpdate.ID,
		taskToUpdate.UserID,
	).Scan(&taskToUpdate.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

// мягкое удаление: строка остаётся в таблице и продолжает блокировать
// повторное создание задачи по тому же событию календаря
func (s *Storage) DeleteSoft(ctx context.Context, userID, id uuid.UUID) error {
	start := time.Now()

	query := `UPDATE tasks
				SET deleted = TRUE,
				updated_at = NOW()
			WHERE id = $1 AND user_id = $2 AND deleted = FALSE`

	tag, err := s.pool.Exec(ctx, query, id, userID)
	if err != nil {
		logger.Error("Repository: Мягкое удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("мягкое удаление: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, userID, id uuid.UUID) (*task.Task, error) {
	query := `SELECT
				id, user_id, title, progress, completed, completed_at, due_date,
				duration, pomodoro_count, google_event_id, deleted, created_at, updated_at
				FROM tasks
				WHERE id = $1 AND user_id = $2 AND deleted = FALSE`

	t, err := s.scanTask(s.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err)
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

// FindByEventID ищет задачу по id события календаря, включая удалённые
func (s *Storage) FindByEventID(ctx context.Context, userID uuid.UUID, eventID string) (*task.Task, error) {
	query := `SELECT
				id, user_id, title, progress, completed, completed_at, due_date,
				duration, pomodoro_count, google_event_id, deleted, created_at, updated_at
				FROM tasks
				WHERE user_id = $1 AND google_event_id = $2`

	t, err := s.scanTask(s.pool.QueryRow(ctx, query, userID, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось найти задачу по событию", err)
		return nil, fmt.Errorf("поиск задачи по событию: %w", err)
	}
	return t, nil
}

// GetActive возвращает неудалённые задачи пользователя для доски
func (s *Storage) GetActive(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	start := time.Now()

	query := `SELECT
				id, user_id, title, progress, completed, completed_at, due_date,
				duration, pomodoro_count, google_event_id, deleted, created_at, updated_at
				FROM tasks
				WHERE user_id = $1 AND deleted = FALSE
				ORDER BY due_date ASC NULLS LAST, created_at DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err)
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := s.scanTask(rows)
		if err != nil {
			logger.Error("Repository: Ошибка чтения строки", err)
			return nil, fmt.Errorf("чтение задачи: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return tasks, nil
}

func (s *Storage) scanTask(row pgx.Row) (*task.Task, error) {
	var t task.Task
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Progress,
		&t.Completed,
		&t.CompletedAt,
		&t.DueDate,
		&t.Duration,
		&t.PomodoroCount,
		&t.GoogleEventID,
		&t.Deleted,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
