package httpserver

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/natjoub/factory/pkg/apierr"
	"github.com/natjoub/factory/pkg/logging"
	"github.com/natjoub/factory/pkg/validate"
	"github.com/natjoub/factory/services/auth/internal/transport"
)

func (h *AuthHTTP) Profile(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := principalID(c)
	if err != nil {
		return err
	}

	user, err := h.Svc.Profile(ctx, userID)
	if err != nil {
		return err
	}
	return apierr.OK(c, http.StatusOK, user)
}

func (h *AuthHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update_profile")

	userID, err := principalID(c)
	if err != nil {
		return err
	}

	var req transport.UpdateProfileRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.Svc.UpdateProfile(ctx, userID, req)
	if err != nil {
		l.Warn("update_profile_failed", "error", err)
		return err
	}

	l.Info("update_profile_success", "userId", userID.String())
	return apierr.OK(c, http.StatusOK, user)
}

// ListUsers is admin-only; the gate enforces the role before this runs.
func (h *AuthHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	resp, err := h.Svc.ListUsers(ctx, c.QueryParam("role"), limit, offset)
	if err != nil {
		return err
	}
	return apierr.OK(c, http.StatusOK, resp)
}

func (h *AuthHTTP) GetUser(c echo.Context) error {
	ctx := c.Request().Context()

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.BadRequest("id", "must be a valid UUID")
	}

	user, err := h.Svc.Profile(ctx, targetID)
	if err != nil {
		return err
	}
	return apierr.OK(c, http.StatusOK, user)
}

func (h *AuthHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete")

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.BadRequest("id", "must be a valid UUID")
	}

	if err := h.Svc.DeleteUser(ctx, targetID); err != nil {
		l.Warn("delete_failed", "targetId", targetID.String(), "error", err)
		return err
	}

	l.Info("delete_success", "targetId", targetID.String())
	return apierr.OKMessage(c, http.StatusOK, "user deactivated")
}

func (h *AuthHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update_status")

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.BadRequest("id", "must be a valid UUID")
	}

	var req transport.UpdateStatusRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.Svc.UpdateStatus(ctx, targetID, *req.IsActive)
	if err != nil {
		l.Warn("update_status_failed", "targetId", targetID.String(), "error", err)
		return err
	}

	l.Info("update_status_success", "targetId", targetID.String(), "isActive", *req.IsActive)
	return apierr.OK(c, http.StatusOK, user)
}
