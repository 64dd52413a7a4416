package postgres_test

import (
	"context"
	"testing"

	"github.com/dom/personal-services-api/internal/domain"
	"github.com/dom/personal-services-api/internal/repository/postgres"
	"github.com/dom/personal-services-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingRepository_UpsertMany(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewSettingRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	require.NoError(t, repo.UpsertMany(ctx, user.ID, map[string]string{
		domain.SettingTheme:       domain.ThemeDark,
		domain.SettingDisplayName: "Ann",
	}))
	require.NoError(t, repo.UpsertMany(ctx, user.ID, map[string]string{
		domain.SettingTheme: domain.ThemeLight,
	}))

	settings, err := repo.ListByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, settings, 2, "one row per key")

	got := map[string]string{}
	for _, s := range settings {
		got[s.Key] = s.Value
	}
	assert.Equal(t, map[string]string{"theme": "light", "display_name": "Ann"}, got)
}

func TestSettingRepository_UpsertManyIsAtomic(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewSettingRepository(testDB.DB)
	ctx := context.Background()

	// no such user: the foreign key rejects every row
	err := repo.UpsertMany(ctx, uuid.New(), map[string]string{
		domain.SettingTheme:       domain.ThemeDark,
		domain.SettingDisplayName: "Ann",
	})
	assert.Error(t, err)

	var count int64
	require.NoError(t, testDB.DB.Model(&domain.Setting{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSettingRepository_CascadeOnUserDelete(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewSettingRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	require.NoError(t, repo.UpsertMany(ctx, user.ID, map[string]string{domain.SettingTheme: domain.ThemeDark}))

	require.NoError(t, testDB.DB.Delete(&domain.User{}, "id = ?", user.ID).Error)

	settings, err := repo.ListByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, settings)
}
