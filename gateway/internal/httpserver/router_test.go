package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natjoub/factory/pkg/apierr"
	"github.com/natjoub/factory/pkg/tokens"
)

func newBackend(t *testing.T, name string) (*httptest.Server, *string) {
	t.Helper()
	var lastPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastPath = r.URL.Path
		w.Header().Set("X-Backend", name)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, &lastPath
}

func newGateway(t *testing.T) (*echo.Echo, tokens.Codec, *string, *string) {
	t.Helper()

	authSrv, authPath := newBackend(t, "auth")
	invSrv, _ := newBackend(t, "inventory")
	orderSrv, orderPath := newBackend(t, "order")

	codec := tokens.Codec{
		Secret:   []byte("test-jwt-secret"),
		Issuer:   "factory-auth",
		Audience: "factory-services",
	}

	e := echo.New()
	e.HTTPErrorHandler = apierr.HTTPErrorHandler
	require.NoError(t, Register(e, &Deps{
		AuthURL:      authSrv.URL,
		InventoryURL: invSrv.URL,
		OrderURL:     orderSrv.URL,
		Codec:        codec,
	}))
	return e, codec, authPath, orderPath
}

func TestAuthRoutesArePublic(t *testing.T) {
	t.Parallel()

	e, _, authPath, _ := newGateway(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "auth", rec.Header().Get("X-Backend"))
	assert.Equal(t, "/auth/login", *authPath)
}

func TestOrdersRequireTokenAtTheEdge(t *testing.T) {
	t.Parallel()

	e, codec, _, orderPath := newGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	access, err := codec.IssueAccess(uuid.New().String(), "customer", time.Now())
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "order", rec.Header().Get("X-Backend"))
	assert.Equal(t, "/orders", *orderPath)
}

func TestInternalRoutesAreNotExposed(t *testing.T) {
	t.Parallel()

	e, codec, _, _ := newGateway(t)

	access, err := codec.IssueAccess(uuid.New().String(), "admin", time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/internal/users/x/validate", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
