package httpserver

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/natjoub/factory/pkg/apierr"
	"github.com/natjoub/factory/pkg/authgate"
	"github.com/natjoub/factory/pkg/logging"
	"github.com/natjoub/factory/pkg/validate"
	"github.com/natjoub/factory/services/order/internal/service"
	"github.com/natjoub/factory/services/order/internal/transport"
)

type OrderHTTP struct {
	Svc *service.Service
}

func principal(c echo.Context) (uuid.UUID, string, error) {
	id, err := uuid.Parse(authgate.AccountID(c))
	if err != nil {
		return uuid.Nil, "", apierr.ErrUnauthorized
	}
	return id, authgate.Role(c), nil
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apierr.BadRequest("id", "must be a valid UUID")
	}
	return id, nil
}

func (h *OrderHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	customerID, _, err := principal(c)
	if err != nil {
		return err
	}

	var req transport.CreateOrderRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.Svc.Create(ctx, customerID, req, authgate.AccessToken(c))
	if err != nil {
		l.Warn("create_order_failed", "error", err)
		return err
	}

	l.Info("create_order_success", "orderId", order.ID.String(), "total", order.Total)
	return apierr.OK(c, http.StatusCreated, order)
}

func (h *OrderHTTP) Get(c echo.Context) error {
	requesterID, role, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	order, err := h.Svc.Get(c.Request().Context(), id, requesterID, role)
	if err != nil {
		return err
	}
	return apierr.OK(c, http.StatusOK, order)
}

func (h *OrderHTTP) List(c echo.Context) error {
	requesterID, role, err := principal(c)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	resp, err := h.Svc.List(c.Request().Context(), requesterID, role, limit, offset)
	if err != nil {
		return err
	}
	return apierr.OK(c, http.StatusOK, resp)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req transport.UpdateStatusRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		l.Warn("update_status_failed", "orderId", id.String(), "error", err)
		return err
	}

	l.Info("update_status_success", "orderId", id.String(), "status", req.Status)
	return apierr.OK(c, http.StatusOK, order)
}

func (h *OrderHTTP) Cancel(c echo.Context) error {
	requesterID, role, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	order, err := h.Svc.Cancel(c.Request().Context(), id, requesterID, role)
	if err != nil {
		return err
	}
	return apierr.OK(c, http.StatusOK, order)
}

func (h *OrderHTTP) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return apierr.OKMessage(c, http.StatusOK, "order deleted")
}
