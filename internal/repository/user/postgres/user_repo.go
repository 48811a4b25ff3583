package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"focusdesk/internal/logger"
	"focusdesk/internal/models/user"
	repo "focusdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Storage struct {
	pool *pgxpool.Pool
}

func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) Create(ctx context.Context, userToCreate *user.User) error {
	start := time.Now()

	query := `INSERT INTO users
				(id, google_id, email, access_token, refresh_token, created_at)
				VALUES ($1, $2, $3, $4, $5, NOW())
				RETURNING created_at`

	err := s.pool.QueryRow(ctx, query,
		userToCreate.ID,
		userToCreate.GoogleID,
		userToCreate.Email,
		userToCreate.AccessToken,
		userToCreate.RefreshToken,
	).Scan(&userToCreate.CreatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить пользователя", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление пользователя: %w", err)
	}
	return nil
}

// Update перезаписывает почту и токены при каждом повторном логине
func (s *Storage) Update(ctx context.Context, userToUpdate *user.User) error {
	query := `UPDATE users
			SET email = $1,
				access_token = $2,
				refresh_token = $3,
				updated_at = NOW()
			WHERE id = $4
			RETURNING updated_at`

	err := s.pool.QueryRow(ctx, query,
		userToUpdate.Email,
		userToUpdate.AccessToken,
		userToUpdate.RefreshToken,
		userToUpdate.ID,
	).Scan(&userToUpdate.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить пользователя", err)
		return fmt.Errorf("обновление пользователя: %w", err)
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT id, google_id, email, access_token, refresh_token, created_at, updated_at
				FROM users
				WHERE id = $1`

	u, err := s.scanUser(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить пользователя", err)
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}

func (s *Storage) GetByGoogleID(ctx context.Context, googleID string) (*user.User, error) {
	query := `SELECT id, google_id, email, access_token, refresh_token, created_at, updated_at
				FROM users
				WHERE google_id = $1`

	u, err := s.scanUser(s.pool.QueryRow(ctx, query, googleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить пользователя", err)
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}

// GetAll отдаёт всех пользователей для фоновой синхронизации
func (s *Storage) GetAll(ctx context.Context) ([]*user.User, error) {
	query := `SELECT id, google_id, email, access_token, refresh_token, created_at, updated_at
				FROM users
				ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		logger.Error("Repository: Не удалось получить пользователей", err)
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	defer rows.Close()

	users := []*user.User{}
	for rows.Next() {
		u, err := s.scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение пользователя: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	return users, nil
}

func (s *Storage) scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.GoogleID,
		&u.Email,
		&u.AccessToken,
		&u.RefreshToken,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
