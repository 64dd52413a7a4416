package repository

import (
	"context"
	"time"

	"github.com/dom/personal-services-api/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	// GetActive returns the session only if it has not expired at now.
	GetActive(ctx context.Context, id string, now time.Time) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type SettingRepository interface {
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Setting, error)
	// UpsertMany writes every value in a single transaction.
	UpsertMany(ctx context.Context, userID uuid.UUID, values map[string]string) error
}

type Repositories struct {
	User    UserRepository
	Session SessionRepository
	Setting SettingRepository
}
