package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/natjoub/factory/services/auth/internal/models"
)

// UserWithCredential is the joined view most flows need: the account,
// its single credential row and the resolved role name.
type UserWithCredential struct {
	User       models.User
	Credential models.Credential
}

func (r *GormRepo) RoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.DB.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// CreateUserWithCredential inserts the account and its credential in
// one transaction; a uniqueness violation on any credential field maps
// to ErrAlreadyExists.
func (r *GormRepo) CreateUserWithCredential(ctx context.Context, user *models.User, cred *models.Credential) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyExists
			}
			return err
		}
		cred.UserID = user.ID
		if err := tx.Create(cred).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyExists
			}
			return err
		}
		return nil
	})
}

func (r *GormRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Credential{}).
		Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *GormRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Credential{}).
		Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *GormRepo) PhoneNumberExists(ctx context.Context, phone string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Credential{}).
		Where("phone_number = ?", phone).Count(&count).Error
	return count > 0, err
}

// CredentialByIdentifier resolves a login identifier against email,
// username and phone in a single query. Each field is independently
// unique; a cross-field collision is assumed impossible by
// construction.
func (r *GormRepo) CredentialByIdentifier(ctx context.Context, identifier string) (*models.Credential, error) {
	var cred models.Credential
	err := r.DB.WithContext(ctx).
		Where("email = ? OR username = ? OR phone_number = ?", identifier, identifier, identifier).
		First(&cred).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cred, nil
}

func (r *GormRepo) UserWithCredential(ctx context.Context, userID uuid.UUID) (*UserWithCredential, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Preload("Role").
		Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var cred models.Credential
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).First(&cred).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &UserWithCredential{User: user, Credential: cred}, nil
}

func (r *GormRepo) ListUsers(ctx context.Context, roleID *uint, limit, offset int) (int64, []UserWithCredential, error) {
	q := r.DB.WithContext(ctx).Model(&models.User{})
	if roleID != nil {
		q = q.Where("role_id = ?", *roleID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var users []models.User
	if err := q.Preload("Role").Order("created_at ASC").
		Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return 0, nil, err
	}

	out := make([]UserWithCredential, 0, len(users))
	for _, u := range users {
		var cred models.Credential
		if err := r.DB.WithContext(ctx).
			Where("user_id = ?", u.ID).First(&cred).Error; err != nil {
			return 0, nil, err
		}
		out = append(out, UserWithCredential{User: u, Credential: cred})
	}
	return total, out, nil
}

func (r *GormRepo) UpdateUser(ctx context.Context, userID uuid.UUID, updates map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) UpdateCredential(ctx context.Context, userID uuid.UUID, updates map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&models.Credential{}).
		Where("user_id = ?", userID).Updates(updates)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return ErrAlreadyExists
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) SetUserActive(ctx context.Context, userID uuid.UUID, active bool) error {
	return r.UpdateUser(ctx, userID, map[string]any{"is_active": active})
}

func (r *GormRepo) SetOTP(ctx context.Context, userID uuid.UUID, code string, expiresAt time.Time) error {
	return r.UpdateCredential(ctx, userID, map[string]any{
		"otp_code":       code,
		"otp_expires_at": expiresAt,
	})
}

func (r *GormRepo) ClearOTP(ctx context.Context, userID uuid.UUID) error {
	return r.UpdateCredential(ctx, userID, map[string]any{
		"otp_code":       nil,
		"otp_expires_at": nil,
	})
}

func (r *GormRepo) SetVerified(ctx context.Context, userID uuid.UUID) error {
	return r.UpdateCredential(ctx, userID, map[string]any{"is_verified": true})
}
