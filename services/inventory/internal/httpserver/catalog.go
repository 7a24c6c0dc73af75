package httpserver

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/natjoub/factory/pkg/apierr"
	"github.com/natjoub/factory/pkg/logging"
	"github.com/natjoub/factory/pkg/validate"
	"github.com/natjoub/factory/services/inventory/internal/service"
	"github.com/natjoub/factory/services/inventory/internal/transport"
)

type InventoryHTTP struct {
	Svc *service.Service
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apierr.BadRequest("id", "must be a valid UUID")
	}
	return id, nil
}

func pageParams(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return limit, offset
}

// Categories.

func (h *InventoryHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.create_category")

	var req transport.CreateCategoryRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	cat, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		l.Warn("create_category_failed", "error", err)
		return err
	}
	return apierr.OK(c, http.StatusCreated, cat)
}

func (h *InventoryHTTP) ListCategories(c echo.Context) error {
	cats, err := h.Svc.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return apierr.OK(c, http.StatusOK, cats)
}

func (h *InventoryHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req transport.UpdateCategoryRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	cat, err := h.Svc.UpdateCategory(ctx, id, req)
	if err != nil {
		return err
	}
	return apierr.OK(c, http.StatusOK, cat)
}

func (h *InventoryHTTP) DeleteCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteCategory(c.Request().Context(), id); err != nil {
		return err
	}
	return apierr.OKMessage(c, http.StatusOK, "category deleted")
}

// Branches.

func (h *InventoryHTTP) CreateBranch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.create_branch")

	var req transport.CreateBranchRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	br, err := h.Svc.CreateBranch(ctx, req)
	if err != nil {
		l.Warn("create_branch_failed", "error", err)
		return err
	}
	return apierr.OK(c, http.StatusCreated, br)
}

func (h *InventoryHTTP) ListBranches(c echo.Context) error {
	brs, err := h.Svc.ListBranches(c.Request().Context())
	if err != nil {
		return err
	}
	return apierr.OK(c, http.StatusOK, brs)
}

func (h *InventoryHTTP) UpdateBranch(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req transport.UpdateBranchRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	br, err := h.Svc.UpdateBranch(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return apierr.OK(c, http.StatusOK, br)
}

// Items.

func (h *InventoryHTTP) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.create_item")

	var req transport.CreateItemRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	item, err := h.Svc.CreateItem(ctx, req)
	if err != nil {
		l.Warn("create_item_failed", "error", err)
		return err
	}

	l.Info("create_item_success", "itemId", item.ID.String(), "sku", item.SKU)
	return apierr.OK(c, http.StatusCreated, item)
}

func (h *InventoryHTTP) GetItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	item, err := h.Svc.GetItem(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return apierr.OK(c, http.StatusOK, item)
}

func (h *InventoryHTTP) ListItems(c echo.Context) error {
	limit, offset := pageParams(c)

	var categoryID *uuid.UUID
	if raw := c.QueryParam("categoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apierr.BadRequest("categoryId", "must be a valid UUID")
		}
		categoryID = &id
	}
	activeOnly := c.QueryParam("includeInactive") != "true"

	resp, err := h.Svc.ListItems(c.Request().Context(), categoryID, activeOnly, limit, offset)
	if err != nil {
		return err
	}
	return apierr.OK(c, http.StatusOK, resp)
}

func (h *InventoryHTTP) SearchItems(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return apierr.BadRequest("q", "is required")
	}
	limit, offset := pageParams(c)

	resp, err := h.Svc.SearchItems(c.Request().Context(), q, limit, offset)
	if err != nil {
		return err
	}
	return apierr.OK(c, http.StatusOK, resp)
}

func (h *InventoryHTTP) UpdateItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req transport.UpdateItemRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	item, err := h.Svc.UpdateItem(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return apierr.OK(c, http.StatusOK, item)
}

func (h *InventoryHTTP) DeleteItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteItem(c.Request().Context(), id); err != nil {
		return err
	}
	return apierr.OKMessage(c, http.StatusOK, "item deactivated")
}
