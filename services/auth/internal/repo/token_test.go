package repo

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	r := &GormRepo{DB: db}
	require.NoError(t, r.Migrate(context.Background()))
	return r
}

func TestRevokeRefreshToken_Idempotent(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, r.CreateRefreshToken(ctx, userID, "tok-1", time.Now().Add(time.Hour)))

	revoked, err := r.RevokeRefreshToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = r.RevokeRefreshToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	row, err := r.FindRefreshToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, row.Revoked)
}

func TestCreateRefreshToken_DuplicateFailsLoudly(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.CreateRefreshToken(ctx, uuid.New(), "tok-1", time.Now().Add(time.Hour)))
	err := r.CreateRefreshToken(ctx, uuid.New(), "tok-1", time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestIsBlacklisted_ExpiredRowCountsAsAbsent(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.AddToBlacklist(ctx, "dead-token", time.Now().Add(-time.Minute)))
	hit, err := r.IsBlacklisted(ctx, "dead-token")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, r.AddToBlacklist(ctx, "live-token", time.Now().Add(time.Minute)))
	hit, err = r.IsBlacklisted(ctx, "live-token")
	require.NoError(t, err)
	assert.True(t, hit)

	// Blacklisting the same token twice is a no-op.
	require.NoError(t, r.AddToBlacklist(ctx, "live-token", time.Now().Add(time.Minute)))
}

func TestDeleteExpiredSweeps(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.CreateRefreshToken(ctx, uuid.New(), "old", time.Now().Add(-time.Hour)))
	require.NoError(t, r.CreateRefreshToken(ctx, uuid.New(), "new", time.Now().Add(time.Hour)))
	require.NoError(t, r.AddToBlacklist(ctx, "old-access", time.Now().Add(-time.Hour)))

	n, err := r.DeleteExpiredRefreshTokens(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = r.DeleteExpiredBlacklistedTokens(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = r.FindRefreshToken(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.FindRefreshToken(ctx, "new")
	assert.NoError(t, err)
}
