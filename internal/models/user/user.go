package user

import (
	"time"

	"github.com/google/uuid"
)

// токены никогда не попадают в JSON-ответы
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	GoogleID     string     `json:"googleId" db:"google_id"`
	Email        string     `json:"email" db:"email"`
	AccessToken  string     `json:"-" db:"access_token"`
	RefreshToken string     `json:"-" db:"refresh_token"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty" db:"updated_at"`
}
