package postgres

import (
	"context"
	"sort"
	"time"

	"github.com/dom/personal-services-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *settingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Setting, error) {
	var settings []*domain.Setting
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("key ASC").Find(&settings).Error
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *settingRepository) UpsertMany(ctx context.Context, userID uuid.UUID, values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	// stable lock order across concurrent patches
	sort.Strings(keys)

	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, k := range keys {
			setting := &domain.Setting{
				UserID:    userID,
				Key:       k,
				Value:     values[k],
				UpdatedAt: now,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(setting).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
