package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/natjoub/factory/pkg/apierr"
	"github.com/natjoub/factory/pkg/authclient"
	"github.com/natjoub/factory/pkg/logging"
	"github.com/natjoub/factory/services/inventory/internal/models"
	"github.com/natjoub/factory/services/inventory/internal/repo"
	"github.com/natjoub/factory/services/inventory/internal/transport"
)

const StockEventsTopic = "stock_events"

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// UserValidator is the slice of the auth client the service needs; the
// indirection keeps tests off the network.
type UserValidator interface {
	ValidateUser(ctx context.Context, userID, bearerToken string) (*authclient.ValidationResult, error)
}

// Searcher mirrors the ES index. Nil-safe: without one, item search is
// unavailable but everything else works.
type Searcher interface {
	IndexItem(ctx context.Context, item *models.InventoryItem) error
	DeleteItem(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.InventoryItem, error)
}

type Service struct {
	Repo   *repo.GormRepo
	Search Searcher
	Events EventPublisher
	Auth   UserValidator
}

type stockEvent struct {
	Type        string    `json:"type"`
	ItemID      string    `json:"itemId"`
	Movement    string    `json:"movement,omitempty"`
	Quantity    int       `json:"quantity,omitempty"`
	PerformedBy string    `json:"performedBy,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Categories.

func (s *Service) CreateCategory(ctx context.Context, req transport.CreateCategoryRequest) (*models.Category, error) {
	cat := models.Category{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		ParentID:    transport.ParseOptionalUUID(req.ParentID),
	}
	if cat.ParentID != nil {
		if _, err := s.Repo.GetCategory(ctx, *cat.ParentID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, apierr.BadRequest("parentId", "parent category does not exist")
			}
			return nil, err
		}
	}
	if err := s.Repo.CreateCategory(ctx, &cat); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, apierr.BadRequest("name", "category name already in use")
		}
		return nil, err
	}
	return &cat, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, req transport.UpdateCategoryRequest) (*models.Category, error) {
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) > 0 {
		if err := s.Repo.UpdateCategory(ctx, id, updates); err != nil {
			switch {
			case errors.Is(err, repo.ErrNotFound):
				return nil, apierr.ErrNotFound
			case errors.Is(err, repo.ErrAlreadyExists):
				return nil, apierr.BadRequest("name", "category name already in use")
			}
			return nil, err
		}
	}
	cat, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apierr.ErrNotFound
		}
		return nil, err
	}
	return cat, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apierr.ErrNotFound
		}
		return err
	}
	return nil
}

// Branches.

func (s *Service) CreateBranch(ctx context.Context, req transport.CreateBranchRequest) (*models.Branch, error) {
	br := models.Branch{
		ID:       uuid.New(),
		Code:     req.Code,
		Name:     req.Name,
		Address:  req.Address,
		IsActive: true,
	}
	if err := s.Repo.CreateBranch(ctx, &br); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, apierr.BadRequest("code", "branch code already in use")
		}
		return nil, err
	}
	return &br, nil
}

func (s *Service) ListBranches(ctx context.Context) ([]models.Branch, error) {
	return s.Repo.ListBranches(ctx)
}

func (s *Service) UpdateBranch(ctx context.Context, id uuid.UUID, req transport.UpdateBranchRequest) (*models.Branch, error) {
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		if err := s.Repo.UpdateBranch(ctx, id, updates); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, apierr.ErrNotFound
			}
			return nil, err
		}
	}
	br, err := s.Repo.GetBranch(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apierr.ErrNotFound
		}
		return nil, err
	}
	return br, nil
}

// Items.

func (s *Service) CreateItem(ctx context.Context, req transport.CreateItemRequest) (*models.InventoryItem, error) {
	item := models.InventoryItem{
		ID:           uuid.New(),
		SKU:          req.SKU,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Unit:         req.Unit,
		ReorderLevel: req.ReorderLevel,
		ReorderQty:   req.ReorderQty,
		CategoryID:   transport.ParseOptionalUUID(req.CategoryID),
		IsActive:     true,
	}
	if item.Unit == "" {
		item.Unit = "pcs"
	}
	if item.CategoryID != nil {
		if _, err := s.Repo.GetCategory(ctx, *item.CategoryID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, apierr.BadRequest("categoryId", "category does not exist")
			}
			return nil, err
		}
	}
	if err := s.Repo.CreateItem(ctx, &item); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, apierr.BadRequest("sku", "sku already in use")
		}
		return nil, err
	}

	s.indexItem(ctx, &item)
	return &item, nil
}

func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	item, err := s.Repo.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apierr.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *Service) ListItems(ctx context.Context, categoryID *uuid.UUID, activeOnly bool, limit, offset int) (*transport.ItemListResponse, error) {
	limit, offset = clampPage(limit, offset)
	total, items, err := s.Repo.ListItems(ctx, categoryID, activeOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	return &transport.ItemListResponse{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *Service) UpdateItem(ctx context.Context, id uuid.UUID, req transport.UpdateItemRequest) (*models.InventoryItem, error) {
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}
	if req.ReorderLevel != nil {
		updates["reorder_level"] = *req.ReorderLevel
	}
	if req.ReorderQty != nil {
		updates["reorder_qty"] = *req.ReorderQty
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.CategoryID != nil {
		catID := transport.ParseOptionalUUID(req.CategoryID)
		if catID == nil {
			return nil, apierr.BadRequest("categoryId", "must be a valid UUID")
		}
		if _, err := s.Repo.GetCategory(ctx, *catID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, apierr.BadRequest("categoryId", "category does not exist")
			}
			return nil, err
		}
		updates["category_id"] = *catID
	}
	if len(updates) == 0 {
		return s.GetItem(ctx, id)
	}

	item, err := s.Repo.UpdateItem(ctx, id, updates)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apierr.ErrNotFound
		}
		return nil, err
	}

	s.indexItem(ctx, item)
	return item, nil
}

func (s *Service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apierr.ErrNotFound
		}
		return err
	}
	if s.Search != nil {
		if err := s.Search.DeleteItem(ctx, id.String()); err != nil {
			logging.FromContext(ctx).Error("search deindex failed", "itemId", id.String(), "error", err)
		}
	}
	return nil
}

// SearchItems proxies the ES fuzzy search.
func (s *Service) SearchItems(ctx context.Context, query string, limit, offset int) (*transport.ItemListResponse, error) {
	if s.Search == nil {
		return nil, apierr.ErrInternal.WithMessage("search is not configured")
	}
	limit, offset = clampPage(limit, offset)
	total, items, err := s.Search.Search(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	return &transport.ItemListResponse{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// indexItem mirrors a create/update into ES. Failures are logged, not
// returned: the database row is the source of truth.
func (s *Service) indexItem(ctx context.Context, item *models.InventoryItem) {
	if s.Search == nil {
		return
	}
	if err := s.Search.IndexItem(ctx, item); err != nil {
		logging.FromContext(ctx).Error("search index failed", "itemId", item.ID.String(), "error", err)
	}
}

func (s *Service) publish(ctx context.Context, event stockEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishEvent(ctx, StockEventsTopic, event.ItemID, event); err != nil {
		logging.FromContext(ctx).Error("failed to publish stock event",
			"type", event.Type, "error", err)
	}
}
