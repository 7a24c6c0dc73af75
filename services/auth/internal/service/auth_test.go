package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/natjoub/factory/pkg/apierr"
	"github.com/natjoub/factory/pkg/tokens"
	"github.com/natjoub/factory/services/auth/internal/repo"
	"github.com/natjoub/factory/services/auth/internal/transport"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	r := &repo.GormRepo{DB: db}
	require.NoError(t, r.Migrate(context.Background()))

	codec := tokens.Codec{
		Secret:   []byte("test-jwt-secret"),
		Issuer:   "factory-auth",
		Audience: "factory-services",
	}
	return New(r, codec, nil)
}

func registerRequest() transport.RegisterRequest {
	username := "jdoe42"
	phone := "+15550001111"
	return transport.RegisterRequest{
		FirstName:   "John",
		LastName:    "Doe",
		Email:       "jdoe@example.com",
		Username:    &username,
		PhoneNumber: &phone,
		Password:    "Str0ng!pass",
		Role:        "customer",
	}
}

// registerVerified registers and verifies an account so login tests
// can start from a usable state.
func registerVerified(t *testing.T, svc *Service) transport.UserDTO {
	t.Helper()
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	cred, err := svc.Repo.CredentialByIdentifier(ctx, resp.User.Email)
	require.NoError(t, err)
	require.NotNil(t, cred.OTPCode)

	require.NoError(t, svc.VerifyOTP(ctx, transport.VerifyOTPRequest{
		Identifier: resp.User.Email,
		OTP:        *cred.OTPCode,
	}))
	return resp.User
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	resp, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	assert.Equal(t, "jdoe@example.com", resp.User.Email)
	assert.Equal(t, "customer", resp.User.Role)
	assert.True(t, resp.User.IsActive)
	assert.False(t, resp.User.IsVerified)
	assert.NotEmpty(t, resp.User.ID)

	// Registration logs the caller in: the pair is immediately usable.
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	_, err = svc.Refresh(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
}

func TestRegister_RoleAllowList(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		role    string
		wantErr error
	}{
		{name: "admin rejected", role: "admin", wantErr: apierr.ErrInvalidRole},
		{name: "unknown rejected", role: "superuser", wantErr: apierr.ErrInvalidRole},
		{name: "employee accepted", role: "employee", wantErr: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := registerRequest()
			req.Role = tt.role
			req.Email = tt.role + "@example.com"
			req.Username = nil
			req.PhoneNumber = nil

			_, err := svc.Register(ctx, req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	req := registerRequest()
	req.Password = "weakpass"

	_, err := svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.Validation(nil))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	dup := registerRequest()
	dup.Username = nil
	dup.PhoneNumber = nil
	_, err = svc.Register(ctx, dup)
	assert.ErrorIs(t, err, apierr.ErrUserAlreadyExists)
}

func TestVerifyOTP(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	user := resp.User

	err = svc.VerifyOTP(ctx, transport.VerifyOTPRequest{Identifier: user.Email, OTP: "000000"})
	assert.ErrorIs(t, err, apierr.ErrInvalidOTP, "wrong code")

	cred, err := svc.Repo.CredentialByIdentifier(ctx, user.Email)
	require.NoError(t, err)

	err = svc.VerifyOTP(ctx, transport.VerifyOTPRequest{Identifier: user.Email, OTP: *cred.OTPCode})
	require.NoError(t, err)

	// Code is consumed; replaying it fails.
	err = svc.VerifyOTP(ctx, transport.VerifyOTPRequest{Identifier: user.Email, OTP: *cred.OTPCode})
	assert.ErrorIs(t, err, apierr.ErrInvalidOTP)
}

func TestVerifyOTP_Expired(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	user := resp.User

	cred, err := svc.Repo.CredentialByIdentifier(ctx, user.Email)
	require.NoError(t, err)

	require.NoError(t, svc.Repo.SetOTP(ctx, cred.UserID, *cred.OTPCode,
		time.Now().UTC().Add(-time.Minute)))

	err = svc.VerifyOTP(ctx, transport.VerifyOTPRequest{Identifier: user.Email, OTP: *cred.OTPCode})
	assert.ErrorIs(t, err, apierr.ErrInvalidOTP)
}

func TestResendOTP_ReplacesCode(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	user := resp.User

	before, err := svc.Repo.CredentialByIdentifier(ctx, user.Email)
	require.NoError(t, err)
	old := *before.OTPCode

	require.NoError(t, svc.ResendOTP(ctx, transport.ResendOTPRequest{Identifier: user.Email}))

	// The old code no longer verifies unless the fresh draw collided,
	// which the new code's validity distinguishes from breakage.
	after, err := svc.Repo.CredentialByIdentifier(ctx, user.Email)
	require.NoError(t, err)
	if *after.OTPCode != old {
		err = svc.VerifyOTP(ctx, transport.VerifyOTPRequest{Identifier: user.Email, OTP: old})
		assert.ErrorIs(t, err, apierr.ErrInvalidOTP)
	}
	require.NoError(t, svc.VerifyOTP(ctx, transport.VerifyOTPRequest{
		Identifier: user.Email, OTP: *after.OTPCode,
	}))
}

func TestOTP_UnknownIdentifier(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	err := svc.VerifyOTP(ctx, transport.VerifyOTPRequest{Identifier: "ghost@example.com", OTP: "123456"})
	assert.ErrorIs(t, err, apierr.ErrUserNotFound)

	err = svc.ResendOTP(ctx, transport.ResendOTPRequest{Identifier: "ghost@example.com"})
	assert.ErrorIs(t, err, apierr.ErrUserNotFound)
}

func TestLogin_UnverifiedAccountMayLogIn(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	user := resp.User

	// Verification flips a flag; it does not gate login.
	login, err := svc.Login(ctx, transport.LoginRequest{Identifier: user.Email, Password: "Str0ng!pass"})
	require.NoError(t, err)
	assert.False(t, login.User.IsVerified)
	assert.NotEmpty(t, login.AccessToken)
}

func TestLogin_InvalidCredentialsAreUniform(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	registerVerified(t, svc)

	tests := []struct {
		name       string
		identifier string
		password   string
	}{
		{name: "unknown identifier", identifier: "nobody@example.com", password: "Str0ng!pass"},
		{name: "wrong password", identifier: "jdoe@example.com", password: "Wr0ng!pass1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, transport.LoginRequest{
				Identifier: tt.identifier,
				Password:   tt.password,
			})
			assert.ErrorIs(t, err, apierr.ErrInvalidCredentials)
		})
	}
}

func TestLogin_AllIdentifierKinds(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	registerVerified(t, svc)

	for _, identifier := range []string{"jdoe@example.com", "jdoe42", "+15550001111"} {
		resp, err := svc.Login(ctx, transport.LoginRequest{
			Identifier: identifier,
			Password:   "Str0ng!pass",
		})
		require.NoError(t, err, identifier)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, int64(900), resp.ExpiresIn)
		assert.Equal(t, "customer", resp.User.Role)
	}
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	user := registerVerified(t, svc)

	cred, err := svc.Repo.CredentialByIdentifier(ctx, user.Email)
	require.NoError(t, err)
	require.NoError(t, svc.Repo.SetUserActive(ctx, cred.UserID, false))

	_, err = svc.Login(ctx, transport.LoginRequest{Identifier: user.Email, Password: "Str0ng!pass"})
	assert.ErrorIs(t, err, apierr.ErrAccountDeactivated)

	// Wrong password on the deactivated account still reads as bad
	// credentials, not as an existence probe.
	_, err = svc.Login(ctx, transport.LoginRequest{Identifier: user.Email, Password: "Wr0ng!pass1"})
	assert.ErrorIs(t, err, apierr.ErrInvalidCredentials)
}

func TestRefresh_RotatesToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	user := registerVerified(t, svc)

	login, err := svc.Login(ctx, transport.LoginRequest{Identifier: user.Email, Password: "Str0ng!pass"})
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	// The consumed token is dead.
	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, apierr.ErrInvalidRefreshToken)

	// The rotated one still works.
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
}

func TestRefresh_ReplayRevokesAllSessions(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	user := registerVerified(t, svc)

	first, err := svc.Login(ctx, transport.LoginRequest{Identifier: user.Email, Password: "Str0ng!pass"})
	require.NoError(t, err)
	second, err := svc.Login(ctx, transport.LoginRequest{Identifier: user.Email, Password: "Str0ng!pass"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)

	// Replaying the consumed token nukes every live session, including
	// the untouched second one.
	_, err = svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, apierr.ErrInvalidRefreshToken)

	_, err = svc.Refresh(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, apierr.ErrInvalidRefreshToken)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	user := registerVerified(t, svc)

	login, err := svc.Login(ctx, transport.LoginRequest{Identifier: user.Email, Password: "Str0ng!pass"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, login.AccessToken)
	assert.ErrorIs(t, err, apierr.ErrInvalidRefreshToken)
}

func TestLogout_BlacklistsAndRevokes(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	user := registerVerified(t, svc)

	login, err := svc.Login(ctx, transport.LoginRequest{Identifier: user.Email, Password: "Str0ng!pass"})
	require.NoError(t, err)

	cred, err := svc.Repo.CredentialByIdentifier(ctx, user.Email)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, cred.UserID, login.AccessToken))

	revoked, err := svc.Repo.IsBlacklisted(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, apierr.ErrInvalidRefreshToken)
}
