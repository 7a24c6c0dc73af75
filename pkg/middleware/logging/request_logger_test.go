package loggingmw

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natjoub/factory/pkg/apierr"
	"github.com/natjoub/factory/pkg/logging"
)

func newTestServer(buf *bytes.Buffer) *echo.Echo {
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	e := echo.New()
	e.HTTPErrorHandler = apierr.HTTPErrorHandler
	e.Use(RequestLogger(logger))
	return e
}

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestRequestLogger_GeneratesRequestID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := newTestServer(&buf)
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	rid := rec.Header().Get(echo.HeaderXRequestID)
	assert.NotEmpty(t, rid)

	entry := lastLogLine(t, &buf)
	assert.Equal(t, rid, entry["request_id"])
	assert.EqualValues(t, http.StatusOK, entry["status"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestRequestLogger_KeepsCallerRequestID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := newTestServer(&buf)
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-from-caller")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "rid-from-caller", rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, "rid-from-caller", lastLogLine(t, &buf)["request_id"])
}

func TestRequestLogger_DomainErrorLogsCode(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := newTestServer(&buf)
	e.GET("/missing", func(c echo.Context) error { return apierr.ErrUserNotFound })

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	entry := lastLogLine(t, &buf)
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "USER_NOT_FOUND", entry["code"])
	assert.EqualValues(t, http.StatusNotFound, entry["status"])
}

func TestRequestLogger_ScopedLoggerReachesHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := newTestServer(&buf)
	e.GET("/ok", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("from handler")
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	// The handler's line carries the request id the middleware attached.
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var handlerLine map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &handlerLine))
	assert.Equal(t, "from handler", handlerLine["msg"])
	assert.Equal(t, rec.Header().Get(echo.HeaderXRequestID), handlerLine["request_id"])
}
