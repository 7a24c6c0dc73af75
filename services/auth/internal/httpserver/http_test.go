package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/natjoub/factory/pkg/apierr"
	"github.com/natjoub/factory/pkg/tokens"
	"github.com/natjoub/factory/services/auth/internal/repo"
	"github.com/natjoub/factory/services/auth/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newTestServer(t *testing.T) (*echo.Echo, *service.Service) {
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
	svc := service.New(r, codec, nil)

	e := echo.New()
	e.HTTPErrorHandler = apierr.HTTPErrorHandler
	Register(e, &Deps{
		AuthHandler: &AuthHTTP{Svc: svc},
		Codec:       codec,
		Blacklist:   r,
	})
	return e, svc
}

func doJSON(e *echo.Echo, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func registerAndLogin(t *testing.T, e *echo.Echo, svc *service.Service) (access, refresh string) {
	t.Helper()

	rec, env := doJSON(e, http.MethodPost, "/auth/register", "", map[string]any{
		"firstName": "John",
		"lastName":  "Doe",
		"email":     "jdoe@example.com",
		"password":  "Str0ng!pass",
		"role":      "customer",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.True(t, env.Success)

	cred, err := svc.Repo.CredentialByIdentifier(context.Background(), "jdoe@example.com")
	require.NoError(t, err)

	rec, _ = doJSON(e, http.MethodPost, "/auth/verify-otp", "", map[string]string{
		"identifier": "jdoe@example.com",
		"otp":        *cred.OTPCode,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = doJSON(e, http.MethodPost, "/auth/login", "", map[string]string{
		"identifier": "jdoe@example.com",
		"password":   "Str0ng!pass",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.AccessToken, data.RefreshToken
}

func TestRegister_ValidationEnvelope(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t)
	rec, env := doJSON(e, http.MethodPost, "/auth/register", "", map[string]any{
		"firstName": "J",
		"lastName":  "Doe",
		"email":     "not-an-email",
		"password":  "Str0ng!pass",
		"role":      "customer",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "email")
	assert.Contains(t, env.Error.Details, "firstName")
}

func TestRegister_DuplicateConflict(t *testing.T) {
	t.Parallel()

	e, svc := newTestServer(t)
	registerAndLogin(t, e, svc)

	rec, env := doJSON(e, http.MethodPost, "/auth/register", "", map[string]any{
		"firstName": "John",
		"lastName":  "Doe",
		"email":     "jdoe@example.com",
		"password":  "Str0ng!pass",
		"role":      "customer",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "USER_ALREADY_EXISTS", env.Error.Code)
}

func TestProfile_RequiresToken(t *testing.T) {
	t.Parallel()

	e, svc := newTestServer(t)
	access, _ := registerAndLogin(t, e, svc)

	rec, env := doJSON(e, http.MethodGet, "/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	rec, env = doJSON(e, http.MethodGet, "/auth/profile", access, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var user struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "jdoe@example.com", user.Email)
}

func TestAdminRoutes_RejectCustomer(t *testing.T) {
	t.Parallel()

	e, svc := newTestServer(t)
	access, _ := registerAndLogin(t, e, svc)

	rec, env := doJSON(e, http.MethodGet, "/auth/users", access, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestLogout_BlacklistTakesEffectImmediately(t *testing.T) {
	t.Parallel()

	e, svc := newTestServer(t)
	access, refresh := registerAndLogin(t, e, svc)

	rec, _ := doJSON(e, http.MethodPost, "/auth/logout", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Same token, same endpoint group: now blacklisted.
	rec, env := doJSON(e, http.MethodGet, "/auth/profile", access, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "TOKEN_BLACKLISTED", env.Error.Code)

	// And the refresh family is gone too.
	rec, env = doJSON(e, http.MethodPost, "/auth/refresh-token", "", map[string]string{
		"refreshToken": refresh,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", env.Error.Code)
}

func TestRefreshToken_Endpoint(t *testing.T) {
	t.Parallel()

	e, svc := newTestServer(t)
	_, refresh := registerAndLogin(t, e, svc)

	rec, env := doJSON(e, http.MethodPost, "/auth/refresh-token", "", map[string]string{
		"refreshToken": refresh,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		ExpiresIn    int64  `json:"expiresIn"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.AccessToken)
	assert.NotEqual(t, refresh, data.RefreshToken)
	assert.Equal(t, int64(900), data.ExpiresIn)
}

func TestCredentialEndpointsAreRateLimited(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t)

	body := map[string]string{"identifier": "jdoe@example.com", "password": "wrong"}
	var rec *httptest.ResponseRecorder
	var env envelope
	for i := 0; i < 6; i++ {
		rec, env = doJSON(e, http.MethodPost, "/auth/login", "", body)
	}

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", env.Error.Code)

	// Authenticated surfaces are not throttled.
	rec, _ = doJSON(e, http.MethodGet, "/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInternalValidate(t *testing.T) {
	t.Parallel()

	e, svc := newTestServer(t)
	access, _ := registerAndLogin(t, e, svc)

	cred, err := svc.Repo.CredentialByIdentifier(context.Background(), "jdoe@example.com")
	require.NoError(t, err)

	rec, env := doJSON(e, http.MethodGet, "/internal/users/"+cred.UserID.String()+"/validate", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Valid  bool   `json:"valid"`
		UserID string `json:"userId"`
		Role   string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.Valid)
	assert.Equal(t, cred.UserID.String(), data.UserID)
	assert.Equal(t, "customer", data.Role)
}
