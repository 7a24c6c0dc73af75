package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/natjoub/factory/pkg/apierr"
	"github.com/natjoub/factory/pkg/authgate"
	"github.com/natjoub/factory/pkg/logging"
	"github.com/natjoub/factory/pkg/validate"
	"github.com/natjoub/factory/services/auth/internal/service"
	"github.com/natjoub/factory/services/auth/internal/transport"
)

type AuthHTTP struct {
	Svc *service.Service
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.Svc.Register(ctx, req)
	if err != nil {
		l.Warn("register_failed", "error", err)
		return err
	}

	l.Info("register_success", "userId", resp.User.ID)
	return apierr.OK(c, http.StatusCreated, resp)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.Svc.Login(ctx, req)
	if err != nil {
		l.Warn("login_failed", "error", err)
		return err
	}

	l.Info("login_success", "userId", resp.User.ID)
	return apierr.OK(c, http.StatusOK, resp)
}

func (h *AuthHTTP) VerifyOTP(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.verify_otp")

	var req transport.VerifyOTPRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.Svc.VerifyOTP(ctx, req); err != nil {
		l.Warn("verify_otp_failed", "error", err)
		return err
	}

	l.Info("verify_otp_success")
	return apierr.OKMessage(c, http.StatusOK, "account verified")
}

func (h *AuthHTTP) ResendOTP(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.resend_otp")

	var req transport.ResendOTPRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.Svc.ResendOTP(ctx, req); err != nil {
		l.Warn("resend_otp_failed", "error", err)
		return err
	}

	return apierr.OKMessage(c, http.StatusOK, "OTP sent")
}

func (h *AuthHTTP) RefreshToken(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh_token")

	var req transport.RefreshTokenRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		l.Warn("refresh_failed", "error", err)
		return err
	}

	return apierr.OK(c, http.StatusOK, resp)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	userID, err := principalID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Logout(ctx, userID, authgate.AccessToken(c)); err != nil {
		l.Warn("logout_failed", "error", err)
		return err
	}

	l.Info("logout_success", "userId", userID.String())
	return apierr.OKMessage(c, http.StatusOK, "logged out")
}

// principalID reads the authenticated account id set by the gate.
func principalID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(authgate.AccountID(c))
	if err != nil {
		return uuid.Nil, apierr.ErrUnauthorized
	}
	return id, nil
}
