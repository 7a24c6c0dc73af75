package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/natjoub/factory/pkg/apierr"
	"github.com/natjoub/factory/services/auth/internal/repo"
	"github.com/natjoub/factory/services/auth/internal/transport"
)

func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*transport.UserDTO, error) {
	uc, err := s.Repo.UserWithCredential(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apierr.ErrUserNotFound
		}
		return nil, err
	}
	dto := userDTO(uc)
	return &dto, nil
}

// UpdateProfile applies the non-nil fields of the request. Email, role
// and password are not updatable here.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req transport.UpdateProfileRequest) (*transport.UserDTO, error) {
	userUpdates := map[string]any{}
	if req.FirstName != nil {
		userUpdates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		userUpdates["last_name"] = *req.LastName
	}
	if req.Gender != nil {
		userUpdates["gender"] = *req.Gender
	}
	if req.DOB != nil {
		parsed, err := time.Parse("2006-01-02", *req.DOB)
		if err != nil {
			return nil, apierr.BadRequest("dob", "must be a date in YYYY-MM-DD format")
		}
		userUpdates["dob"] = parsed
	}

	credUpdates := map[string]any{}
	if req.Username != nil {
		credUpdates["username"] = *req.Username
	}
	if req.PhoneNumber != nil {
		credUpdates["phone_number"] = *req.PhoneNumber
	}

	if len(userUpdates) > 0 {
		if err := s.Repo.UpdateUser(ctx, userID, userUpdates); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, apierr.ErrUserNotFound
			}
			return nil, err
		}
	}
	if len(credUpdates) > 0 {
		if err := s.Repo.UpdateCredential(ctx, userID, credUpdates); err != nil {
			switch {
			case errors.Is(err, repo.ErrAlreadyExists):
				return nil, apierr.ErrUserAlreadyExists
			case errors.Is(err, repo.ErrNotFound):
				return nil, apierr.ErrUserNotFound
			}
			return nil, err
		}
	}

	return s.Profile(ctx, userID)
}

// ListUsers is the admin listing, optionally filtered by role name.
func (s *Service) ListUsers(ctx context.Context, roleName string, limit, offset int) (*transport.UserListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var roleID *uint
	if roleName != "" {
		role, err := s.Repo.RoleByName(ctx, roleName)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, apierr.ErrInvalidRole
			}
			return nil, err
		}
		roleID = &role.ID
	}

	total, users, err := s.Repo.ListUsers(ctx, roleID, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]transport.UserDTO, 0, len(users))
	for i := range users {
		out = append(out, userDTO(&users[i]))
	}
	return &transport.UserListResponse{
		Users:  out,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// UpdateStatus activates or deactivates an account. Deactivation also
// revokes every refresh token, so the account cannot outlive its last
// access token.
func (s *Service) UpdateStatus(ctx context.Context, userID uuid.UUID, isActive bool) (*transport.UserDTO, error) {
	if err := s.Repo.SetUserActive(ctx, userID, isActive); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apierr.ErrUserNotFound
		}
		return nil, err
	}

	if !isActive {
		if err := s.Repo.RevokeAllForUser(ctx, userID); err != nil {
			return nil, err
		}
		s.publish(ctx, userEvent{
			Type:      "user_deactivated",
			UserID:    userID.String(),
			Timestamp: time.Now().UTC(),
		})
	}

	return s.Profile(ctx, userID)
}

// DeleteUser is a soft delete: the account is deactivated and its
// sessions revoked, but the rows stay for audit.
func (s *Service) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.UpdateStatus(ctx, userID, false)
	return err
}

// ValidateUser is the service-to-service existence check. An inactive
// or missing account is a plain valid=false, never an error the caller
// has to branch on.
func (s *Service) ValidateUser(ctx context.Context, userID uuid.UUID) (*transport.UserValidationResponse, error) {
	uc, err := s.Repo.UserWithCredential(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return &transport.UserValidationResponse{Valid: false, UserID: userID.String()}, nil
		}
		return nil, err
	}
	if !uc.User.IsActive {
		return &transport.UserValidationResponse{Valid: false, UserID: userID.String()}, nil
	}
	return &transport.UserValidationResponse{
		Valid:  true,
		UserID: uc.User.ID.String(),
		Role:   uc.User.Role.Name,
	}, nil
}
