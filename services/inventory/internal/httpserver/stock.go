package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/natjoub/factory/pkg/apierr"
	"github.com/natjoub/factory/pkg/authgate"
	"github.com/natjoub/factory/pkg/logging"
	"github.com/natjoub/factory/pkg/validate"
	"github.com/natjoub/factory/services/inventory/internal/transport"
)

func (h *InventoryHTTP) GetStock(c echo.Context) error {
	var itemID, branchID *uuid.UUID
	if raw := c.QueryParam("itemId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apierr.BadRequest("itemId", "must be a valid UUID")
		}
		itemID = &id
	}
	if raw := c.QueryParam("branchId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apierr.BadRequest("branchId", "must be a valid UUID")
		}
		branchID = &id
	}

	levels, err := h.Svc.GetStock(c.Request().Context(), itemID, branchID)
	if err != nil {
		return err
	}
	return apierr.OK(c, http.StatusOK, levels)
}

func (h *InventoryHTTP) RecordMovement(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.record_movement")

	performedBy, err := uuid.Parse(authgate.AccountID(c))
	if err != nil {
		return apierr.ErrUnauthorized
	}

	var req transport.RecordMovementRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	mv, err := h.Svc.RecordMovement(ctx, req, performedBy, authgate.AccessToken(c))
	if err != nil {
		l.Warn("record_movement_failed", "type", req.Type, "error", err)
		return err
	}

	l.Info("record_movement_success", "movementId", mv.ID.String(), "type", mv.Type)
	return apierr.OK(c, http.StatusCreated, mv)
}

func (h *InventoryHTTP) ListMovements(c echo.Context) error {
	limit, offset := pageParams(c)

	var itemID *uuid.UUID
	if raw := c.QueryParam("itemId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apierr.BadRequest("itemId", "must be a valid UUID")
		}
		itemID = &id
	}

	resp, err := h.Svc.ListMovements(c.Request().Context(), itemID, limit, offset)
	if err != nil {
		return err
	}
	return apierr.OK(c, http.StatusOK, resp)
}

func (h *InventoryHTTP) ReserveStock(c echo.Context) error {
	var req transport.ReserveStockRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.Svc.ReserveStock(c.Request().Context(), req); err != nil {
		return err
	}
	return apierr.OKMessage(c, http.StatusOK, "stock reserved")
}

func (h *InventoryHTTP) ReleaseStock(c echo.Context) error {
	var req transport.ReserveStockRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.Svc.ReleaseStock(c.Request().Context(), req); err != nil {
		return err
	}
	return apierr.OKMessage(c, http.StatusOK, "stock released")
}
