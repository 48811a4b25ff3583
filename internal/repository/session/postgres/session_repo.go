package postgres

import (
	"context"
	"errors"
	"fmt"

	"focusdesk/internal/logger"
	"focusdesk/internal/models/session"
	repo "focusdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Storage struct {
	pool *pgxpool.Pool
}

func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) Create(ctx context.Context, sess *session.Session) error {
	query := `INSERT INTO sessions (token, user_id, created_at, expires_at)
				VALUES ($1, $2, $3, $4)`

	_, err := s.pool.Exec(ctx, query, sess.Token, sess.UserID, sess.CreatedAt, sess.ExpiresAt)
	if err != nil {
		logger.Error("Repository: Не удалось создать сессию", err)
		return fmt.Errorf("создание сессии: %w", err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, token uuid.UUID) (*session.Session, error) {
	query := `SELECT token, user_id, created_at, expires_at
				FROM sessions
				WHERE token = $1`

	var sess session.Session
	err := s.pool.QueryRow(ctx, query, token).Scan(
		&sess.Token,
		&sess.UserID,
		&sess.CreatedAt,
		&sess.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить сессию", err)
		return nil, fmt.Errorf("получение сессии: %w", err)
	}
	return &sess, nil
}

func (s *Storage) Delete(ctx context.Context, token uuid.UUID) error {
	query := `DELETE FROM sessions WHERE token = $1`

	_, err := s.pool.Exec(ctx, query, token)
	if err != nil {
		logger.Error("Repository: Не удалось удалить сессию", err)
		return fmt.Errorf("удаление сессии: %w", err)
	}
	return nil
}
