package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/natjoub/factory/pkg/apierr"
)

// ValidateUser serves the service-to-service existence check used by
// inventory and order before trusting a performedBy id.
func (h *AuthHTTP) ValidateUser(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.BadRequest("id", "must be a valid UUID")
	}

	resp, err := h.Svc.ValidateUser(ctx, userID)
	if err != nil {
		return err
	}
	return apierr.OK(c, http.StatusOK, resp)
}
