package apierr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/natjoub/factory/pkg/logging"
)

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

// OK writes the success envelope so every response, error or not, has
// the same shape.
func OK(c echo.Context, status int, data any) error {
	return c.JSON(status, envelope{Success: true, Data: data})
}

// OKMessage is for operations with no payload beyond a human message.
func OKMessage(c echo.Context, status int, msg string) error {
	return c.JSON(status, envelope{Success: true, Message: msg})
}

// HTTPErrorHandler renders every error as the uniform envelope. Domain
// errors keep their code and status; anything unexpected is logged and
// collapsed to INTERNAL_SERVER_ERROR with no internal detail.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	out := ErrInternal
	var domainErr *Error
	var echoErr *echo.HTTPError

	switch {
	case errors.As(err, &domainErr):
		out = domainErr
	case errors.As(err, &echoErr):
		msg := http.StatusText(echoErr.Code)
		if s, ok := echoErr.Message.(string); ok {
			msg = s
		}
		out = &Error{Code: codeForStatus(echoErr.Code), Message: msg, Status: echoErr.Code}
	}

	if out.Status >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("request_failed",
			"status", out.Status, "error", err)
	}

	body := envelope{Success: false, Error: &errorBody{
		Code:    out.Code,
		Message: out.Message,
		Details: out.Details,
	}}
	if writeErr := c.JSON(out.Status, body); writeErr != nil {
		logging.FromContext(c.Request().Context()).Error("error_write_failed", "error", writeErr)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "VALIDATION_ERROR"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "INSUFFICIENT_PERMISSIONS"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "USER_ALREADY_EXISTS"
	case http.StatusTooManyRequests:
		return "RATE_LIMIT_EXCEEDED"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}
