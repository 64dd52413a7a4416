package postgres

import (
	"context"
	"time"

	"github.com/dom/personal-services-api/internal/domain"
	"gorm.io/gorm"
)

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) GetActive(ctx context.Context, id string, now time.Time) (*domain.Session, error) {
	var session domain.Session
	err := r.db.WithContext(ctx).First(&session, "session_id = ? AND expires_at > ?", id, now).Error
	if err != nil {
		return nil, notFound(err, domain.ErrSessionNotFound)
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Session{}, "session_id = ?", id).Error
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Session{}, "expires_at <= ?", now)
	return result.RowsAffected, result.Error
}
