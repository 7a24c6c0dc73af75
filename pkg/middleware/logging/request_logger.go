package loggingmw

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/natjoub/factory/pkg/apierr"
	"github.com/natjoub/factory/pkg/logging"
)

// RequestLogger tags every request with an id (generating one when the
// caller sent none), stashes a request-scoped logger in the context for
// handlers to pick up, and writes a single completion line. Domain
// errors log their machine code next to the HTTP status.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, rid)

			l := base.With(
				"request_id", rid,
				"method", c.Request().Method,
				"path", c.Path(),
				"remote_ip", c.RealIP(),
			)
			c.SetRequest(c.Request().WithContext(
				logging.IntoContext(c.Request().Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				// Render the envelope here so the logged status is the
				// one the client actually received.
				c.Echo().HTTPErrorHandler(err, c)
			}
			status := c.Response().Status

			attrs := []any{
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes", c.Response().Size,
			}
			var apiErr *apierr.Error
			switch {
			case errors.As(err, &apiErr):
				attrs = append(attrs, "code", apiErr.Code)
			case err != nil:
				attrs = append(attrs, "error", err.Error())
			}

			switch {
			case status >= 500:
				l.Error("request completed", attrs...)
			case status >= 400:
				l.Warn("request completed", attrs...)
			default:
				l.Info("request completed", attrs...)
			}
			return nil
		}
	}
}
