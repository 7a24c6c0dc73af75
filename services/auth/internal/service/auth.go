package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/natjoub/factory/pkg/apierr"
	"github.com/natjoub/factory/pkg/hash"
	"github.com/natjoub/factory/pkg/logging"
	"github.com/natjoub/factory/pkg/tokens"
	"github.com/natjoub/factory/services/auth/internal/models"
	"github.com/natjoub/factory/services/auth/internal/repo"
	"github.com/natjoub/factory/services/auth/internal/transport"
)

// Register creates an unverified account, issues its first OTP and
// logs the caller straight in. Verification restricts nothing by
// itself; it only flips the account's verified flag. Only employee and
// customer may self-register; asking for admin is an explicit
// INVALID_ROLE, same as an unknown role.
func (s *Service) Register(ctx context.Context, req transport.RegisterRequest) (*transport.AuthResponse, error) {
	if !slices.Contains(models.SelfRegisterRoles, req.Role) {
		return nil, apierr.ErrInvalidRole
	}
	if !hash.IsStrong(req.Password) {
		return nil, apierr.BadRequest("password",
			"password must be at least 8 characters with uppercase, lowercase, digit and special character")
	}

	var dob *time.Time
	if req.DOB != nil {
		parsed, err := time.Parse("2006-01-02", *req.DOB)
		if err != nil {
			return nil, apierr.BadRequest("dob", "must be a date in YYYY-MM-DD format")
		}
		dob = &parsed
	}

	role, err := s.Repo.RoleByName(ctx, req.Role)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apierr.ErrInvalidRole
		}
		return nil, err
	}

	pwHash, err := hash.Password(req.Password)
	if err != nil {
		return nil, err
	}

	otp, err := generateOTP()
	if err != nil {
		return nil, err
	}
	otpExpiry := time.Now().UTC().Add(otpTTL)

	user := models.User{
		ID:        uuid.New(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		RoleID:    role.ID,
		DOB:       dob,
		Gender:    req.Gender,
		IsActive:  true,
	}
	cred := models.Credential{
		Email:        req.Email,
		Username:     req.Username,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: pwHash,
		OTPCode:      &otp,
		OTPExpiresAt: &otpExpiry,
	}

	if err := s.Repo.CreateUserWithCredential(ctx, &user, &cred); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, apierr.ErrUserAlreadyExists
		}
		return nil, err
	}

	s.deliverOTP(ctx, cred.Email, otp)
	s.publish(ctx, userEvent{
		Type:      "user_registered",
		UserID:    user.ID.String(),
		Role:      req.Role,
		Timestamp: time.Now().UTC(),
	})

	user.Role = *role
	pair, err := s.issueTokenPair(ctx, user.ID, role.Name)
	if err != nil {
		return nil, err
	}

	return &transport.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         userDTO(&repo.UserWithCredential{User: user, Credential: cred}),
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// Login authenticates by email, username or phone number. The password
// is always checked before activation state, so a caller probing
// accounts learns nothing without valid credentials. An unverified
// account may log in; verification gates nothing on its own.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (*transport.AuthResponse, error) {
	cred, err := s.Repo.CredentialByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apierr.ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.Check(cred.PasswordHash, req.Password) {
		return nil, apierr.ErrInvalidCredentials
	}

	uc, err := s.Repo.UserWithCredential(ctx, cred.UserID)
	if err != nil {
		return nil, err
	}
	if !uc.User.IsActive {
		return nil, apierr.ErrAccountDeactivated
	}

	pair, err := s.issueTokenPair(ctx, uc.User.ID, uc.User.Role.Name)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, userEvent{
		Type:      "user_logged_in",
		UserID:    uc.User.ID.String(),
		Role:      uc.User.Role.Name,
		Timestamp: time.Now().UTC(),
	})

	return &transport.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         userDTO(uc),
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// VerifyOTP confirms the code sent at registration and marks the
// account verified. A wrong, expired or already-consumed code is the
// same INVALID_OTP.
func (s *Service) VerifyOTP(ctx context.Context, req transport.VerifyOTPRequest) error {
	cred, err := s.Repo.CredentialByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apierr.ErrUserNotFound
		}
		return err
	}
	if cred.OTPCode == nil || cred.OTPExpiresAt == nil {
		return apierr.ErrInvalidOTP
	}
	if *cred.OTPCode != req.OTP || time.Now().UTC().After(*cred.OTPExpiresAt) {
		return apierr.ErrInvalidOTP
	}

	if err := s.Repo.SetVerified(ctx, cred.UserID); err != nil {
		return err
	}
	if err := s.Repo.ClearOTP(ctx, cred.UserID); err != nil {
		return err
	}

	s.publish(ctx, userEvent{
		Type:      "user_verified",
		UserID:    cred.UserID.String(),
		Timestamp: time.Now().UTC(),
	})
	return nil
}

// ResendOTP replaces the pending code with a fresh one. Already
// verified accounts get a flat 400.
func (s *Service) ResendOTP(ctx context.Context, req transport.ResendOTPRequest) error {
	cred, err := s.Repo.CredentialByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apierr.ErrUserNotFound
		}
		return err
	}
	if cred.IsVerified {
		return apierr.BadRequest("identifier", "account is already verified")
	}

	otp, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.Repo.SetOTP(ctx, cred.UserID, otp, time.Now().UTC().Add(otpTTL)); err != nil {
		return err
	}

	s.deliverOTP(ctx, cred.Email, otp)
	return nil
}

// Refresh rotates a refresh token: the presented token is revoked and
// a fresh pair comes back. Presenting an already-revoked token is
// treated as replay and kills every session of the account.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*transport.TokenResponse, error) {
	claims, err := s.Codec.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apierr.ErrInvalidRefreshToken
	}

	stored, err := s.Repo.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apierr.ErrInvalidRefreshToken
		}
		return nil, err
	}
	if stored.Revoked {
		if err := s.Repo.RevokeAllForUser(ctx, stored.UserID); err != nil {
			return nil, err
		}
		logging.FromContext(ctx).Warn("refresh token replay detected, all sessions revoked",
			"userId", stored.UserID.String())
		return nil, apierr.ErrInvalidRefreshToken
	}
	if time.Now().UTC().After(stored.ExpiresAt) {
		return nil, apierr.ErrInvalidRefreshToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apierr.ErrInvalidRefreshToken
	}
	uc, err := s.Repo.UserWithCredential(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apierr.ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !uc.User.IsActive {
		return nil, apierr.ErrAccountDeactivated
	}

	if _, err := s.Repo.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return nil, err
	}

	pair, err := s.issueTokenPair(ctx, uc.User.ID, uc.User.Role.Name)
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout blacklists the presented access token until its natural
// expiry and revokes every refresh token of the account.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID, accessToken string) error {
	claims, err := s.Codec.ParseAccess(accessToken)
	if err != nil {
		return apierr.ErrInvalidToken
	}
	if err := s.Repo.AddToBlacklist(ctx, accessToken, claims.ExpiresAt.Time); err != nil {
		return err
	}
	if err := s.Repo.RevokeAllForUser(ctx, userID); err != nil {
		return err
	}

	s.publish(ctx, userEvent{
		Type:      "user_logged_out",
		UserID:    userID.String(),
		Timestamp: time.Now().UTC(),
	})
	return nil
}

func (s *Service) issueTokenPair(ctx context.Context, userID uuid.UUID, role string) (*transport.TokenResponse, error) {
	now := time.Now().UTC()
	access, err := s.Codec.IssueAccess(userID.String(), role, now)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Codec.IssueRefresh(userID.String(), now)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.CreateRefreshToken(ctx, userID, refresh, now.Add(tokens.RefreshTokenTTL)); err != nil {
		return nil, err
	}
	return &transport.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(tokens.AccessTokenTTL.Seconds()),
	}, nil
}

// deliverOTP stands in for the SMS/email channel: the code goes to the
// structured log where a delivery worker would pick it up.
func (s *Service) deliverOTP(ctx context.Context, email, otp string) {
	logging.FromContext(ctx).Info("OTP issued", "email", email, "otp", otp)
}

func (s *Service) publish(ctx context.Context, event userEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishEvent(ctx, UserEventsTopic, event.UserID, event); err != nil {
		logging.FromContext(ctx).Error("failed to publish user event",
			"type", event.Type, "error", err)
	}
}
