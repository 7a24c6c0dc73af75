package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a domain error carrying a stable machine-readable code and
// the HTTP status it maps to. Handlers return these; the echo error
// handler renders the uniform envelope.
type Error struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Status  int               `json:"-"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// WithMessage returns a copy with a more specific message, keeping the
// code and status so errors.Is against the sentinel still matches.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Status: e.Status, Details: e.Details}
}

// Is matches on the code, so wrapped copies compare equal to their
// sentinel.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

var (
	ErrInvalidCredentials      = &Error{Code: "INVALID_CREDENTIALS", Message: "invalid email/username/phone or password", Status: http.StatusUnauthorized}
	ErrUserNotFound            = &Error{Code: "USER_NOT_FOUND", Message: "user not found", Status: http.StatusNotFound}
	ErrUserAlreadyExists       = &Error{Code: "USER_ALREADY_EXISTS", Message: "user with this email, username, or phone number already exists", Status: http.StatusConflict}
	ErrInvalidToken            = &Error{Code: "INVALID_TOKEN", Message: "invalid or malformed token", Status: http.StatusUnauthorized}
	ErrExpiredToken            = &Error{Code: "EXPIRED_TOKEN", Message: "token has expired", Status: http.StatusUnauthorized}
	ErrInvalidRefreshToken     = &Error{Code: "INVALID_REFRESH_TOKEN", Message: "invalid or revoked refresh token", Status: http.StatusUnauthorized}
	ErrTokenBlacklisted        = &Error{Code: "TOKEN_BLACKLISTED", Message: "token has been revoked", Status: http.StatusUnauthorized}
	ErrInsufficientPermissions = &Error{Code: "INSUFFICIENT_PERMISSIONS", Message: "you do not have permission to perform this action", Status: http.StatusForbidden}
	ErrInvalidOTP              = &Error{Code: "INVALID_OTP", Message: "invalid or expired OTP", Status: http.StatusBadRequest}
	ErrAccountNotVerified      = &Error{Code: "ACCOUNT_NOT_VERIFIED", Message: "account is not verified", Status: http.StatusForbidden}
	ErrAccountDeactivated      = &Error{Code: "ACCOUNT_DEACTIVATED", Message: "account has been deactivated", Status: http.StatusForbidden}
	ErrInvalidRole             = &Error{Code: "INVALID_ROLE", Message: "invalid role specified", Status: http.StatusBadRequest}
	ErrRateLimitExceeded       = &Error{Code: "RATE_LIMIT_EXCEEDED", Message: "too many requests, please try again later", Status: http.StatusTooManyRequests}
	ErrUnauthorized            = &Error{Code: "UNAUTHORIZED", Message: "invalid or expired token", Status: http.StatusUnauthorized}
	ErrNotFound                = &Error{Code: "NOT_FOUND", Message: "resource not found", Status: http.StatusNotFound}
	ErrInternal                = &Error{Code: "INTERNAL_SERVER_ERROR", Message: "internal server error", Status: http.StatusInternalServerError}
)

// Validation builds a VALIDATION_ERROR carrying a field-level detail
// map.
func Validation(details map[string]string) *Error {
	return &Error{
		Code:    "VALIDATION_ERROR",
		Message: "validation failed",
		Status:  http.StatusBadRequest,
		Details: details,
	}
}

// BadRequest is a single-field validation failure.
func BadRequest(field, msg string) *Error {
	return Validation(map[string]string{field: msg})
}
