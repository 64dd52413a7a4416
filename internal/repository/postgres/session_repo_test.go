package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/personal-services-api/internal/domain"
	"github.com/dom/personal-services-api/internal/repository/postgres"
	"github.com/dom/personal-services-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_Lifecycle(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewSessionRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	now := time.Now()

	session := &domain.Session{
		ID:        "session-1",
		UserID:    user.ID,
		Username:  user.Username,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.GetActive(ctx, "session-1", now)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)
	assert.Equal(t, user.Username, got.Username)

	// past its expiry the row no longer resolves
	_, err = repo.GetActive(ctx, "session-1", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, repo.Delete(ctx, "session-1"))
	_, err = repo.GetActive(ctx, "session-1", now)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// deleting again is harmless
	assert.NoError(t, repo.Delete(ctx, "session-1"))
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewSessionRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	now := time.Now()

	for _, s := range []*domain.Session{
		{ID: "expired-1", ExpiresAt: now.Add(-time.Hour)},
		{ID: "expired-2", ExpiresAt: now.Add(-time.Minute)},
		{ID: "live", ExpiresAt: now.Add(time.Hour)},
	} {
		s.UserID = user.ID
		s.Username = user.Username
		s.CreatedAt = now
		require.NoError(t, repo.Create(ctx, s))
	}

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.GetActive(ctx, "live", now)
	assert.NoError(t, err)
}
