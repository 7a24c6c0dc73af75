package repo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/natjoub/factory/services/auth/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type GormRepo struct {
	DB *gorm.DB
}

// Migrate creates the schema and seeds the fixed role set.
func (r *GormRepo) Migrate(ctx context.Context) error {
	if err := r.DB.WithContext(ctx).AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Credential{},
		&models.RefreshToken{},
		&models.BlacklistedToken{},
	); err != nil {
		return err
	}

	for _, name := range []string{models.RoleAdmin, models.RoleEmployee, models.RoleCustomer} {
		role := models.Role{Name: name}
		if err := r.DB.WithContext(ctx).
			Where("name = ?", name).
			FirstOrCreate(&role).Error; err != nil {
			return err
		}
	}
	return nil
}

// hashToken is the stored form of every JWT: tokens never land in the
// database in the clear.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// gorm's duplicate translation depends on the dialect; fall back to
	// the raw message for drivers that don't translate.
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
