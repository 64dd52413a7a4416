package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity is the authenticated subject established by a successful login.
type Identity struct {
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
}

// Session is a server-side login record. The identity fields are written once,
// in the same insert that creates the row.
type Session struct {
	ID        string    `json:"-" gorm:"column:session_id;primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null"`
	Username  string    `json:"username" gorm:"not null"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Session) TableName() string {
	return "sessions"
}

// Expired reports whether the session is no longer valid at t.
func (s *Session) Expired(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}
