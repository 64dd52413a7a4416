package service

import (
	"context"
	"fmt"

	"github.com/dom/personal-services-api/internal/domain"
	"github.com/dom/personal-services-api/internal/repository"
	"github.com/google/uuid"
)

type SettingsService struct {
	settingRepo repository.SettingRepository
}

func NewSettingsService(settingRepo repository.SettingRepository) *SettingsService {
	return &SettingsService{settingRepo: settingRepo}
}

// Get returns every recognized key, using the default where the user has no
// stored value.
func (s *SettingsService) Get(ctx context.Context, userID uuid.UUID) (map[string]string, error) {
	stored, err := s.settingRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}

	settings := domain.DefaultSettings()
	for _, st := range stored {
		// rows for keys that were later retired are not reported
		if _, ok := settings[st.Key]; ok {
			settings[st.Key] = st.Value
		}
	}
	return settings, nil
}

// Patch validates the whole update, writes it atomically and returns the
// resulting settings. Nothing is written when any key or value is refused.
func (s *SettingsService) Patch(ctx context.Context, userID uuid.UUID, updates map[string]any) (map[string]string, error) {
	values, err := domain.ValidateSettings(updates)
	if err != nil {
		return nil, err
	}

	if err := s.settingRepo.UpsertMany(ctx, userID, values); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	return s.Get(ctx, userID)
}
