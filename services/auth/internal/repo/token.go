package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/natjoub/factory/services/auth/internal/models"
)

// CreateRefreshToken persists a newly issued refresh token. The token
// column is unique; a collision fails loudly rather than overwriting.
func (r *GormRepo) CreateRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	row := models.RefreshToken{
		UserID:    userID,
		Token:     hashToken(token),
		ExpiresAt: expiresAt,
	}
	if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *GormRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var row models.RefreshToken
	err := r.DB.WithContext(ctx).
		Where("token = ?", hashToken(token)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// RevokeRefreshToken marks the token revoked. Idempotent: the boolean
// reports whether a live token was actually revoked by this call.
func (r *GormRepo) RevokeRefreshToken(ctx context.Context, token string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ? AND revoked = ?", hashToken(token), false).
		Update("revoked", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RevokeAllForUser revokes every refresh token of the account: logout
// from one device kills refresh capability everywhere.
func (r *GormRepo) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}

func (r *GormRepo) AddToBlacklist(ctx context.Context, token string, expiresAt time.Time) error {
	row := models.BlacklistedToken{
		Token:     hashToken(token),
		ExpiresAt: expiresAt,
	}
	if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
		// Blacklisting the same token twice is a no-op.
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}

// IsBlacklisted compares expiry against now at query time, so an
// expired row counts as absent even before housekeeping deletes it.
// Satisfies authgate.BlacklistChecker.
func (r *GormRepo) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.BlacklistedToken{}).
		Where("token = ? AND expires_at > ?", hashToken(token), time.Now().UTC()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Housekeeping sweeps. Correctness never depends on them running.

func (r *GormRepo) DeleteExpiredRefreshTokens(ctx context.Context) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) DeleteExpiredBlacklistedTokens(ctx context.Context) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&models.BlacklistedToken{})
	return res.RowsAffected, res.Error
}
