package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/natjoub/factory/pkg/apierr"
	"github.com/natjoub/factory/services/inventory/internal/models"
	"github.com/natjoub/factory/services/inventory/internal/repo"
	"github.com/natjoub/factory/services/inventory/internal/transport"
)

func (s *Service) GetStock(ctx context.Context, itemID, branchID *uuid.UUID) ([]models.StockLevel, error) {
	return s.Repo.GetStock(ctx, itemID, branchID)
}

func (s *Service) ListMovements(ctx context.Context, itemID *uuid.UUID, limit, offset int) (*transport.MovementListResponse, error) {
	limit, offset = clampPage(limit, offset)
	total, moves, err := s.Repo.ListMovements(ctx, itemID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &transport.MovementListResponse{Movements: moves, Total: total, Limit: limit, Offset: offset}, nil
}

// RecordMovement validates the actor against the auth service, checks
// the branch requirements of the movement type, and applies it. The
// stock arithmetic itself is atomic in the repo.
func (s *Service) RecordMovement(ctx context.Context, req transport.RecordMovementRequest, performedBy uuid.UUID, bearerToken string) (*models.StockMovement, error) {
	if err := s.validateActor(ctx, performedBy, bearerToken); err != nil {
		return nil, err
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return nil, apierr.BadRequest("itemId", "must be a valid UUID")
	}
	item, err := s.Repo.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apierr.BadRequest("itemId", "item does not exist")
		}
		return nil, err
	}
	if !item.IsActive {
		return nil, apierr.BadRequest("itemId", "item is inactive")
	}

	from := transport.ParseOptionalUUID(req.FromBranchID)
	to := transport.ParseOptionalUUID(req.ToBranchID)
	if err := s.checkBranches(ctx, req.Type, req.Quantity, from, to); err != nil {
		return nil, err
	}

	mv := models.StockMovement{
		ID:           uuid.New(),
		ItemID:       itemID,
		Type:         req.Type,
		Quantity:     req.Quantity,
		FromBranchID: from,
		ToBranchID:   to,
		PerformedBy:  performedBy,
		Reference:    req.Reference,
		Notes:        req.Notes,
	}
	if err := s.Repo.RecordMovement(ctx, &mv); err != nil {
		if errors.Is(err, repo.ErrInsufficientStock) {
			return nil, apierr.BadRequest("quantity", "insufficient available stock")
		}
		return nil, err
	}

	s.publish(ctx, stockEvent{
		Type:        "stock_movement",
		ItemID:      itemID.String(),
		Movement:    req.Type,
		Quantity:    req.Quantity,
		PerformedBy: performedBy.String(),
		Timestamp:   time.Now().UTC(),
	})
	return &mv, nil
}

func (s *Service) ReserveStock(ctx context.Context, req transport.ReserveStockRequest) error {
	itemID, _ := uuid.Parse(req.ItemID)
	branchID, _ := uuid.Parse(req.BranchID)
	if err := s.Repo.ReserveStock(ctx, itemID, branchID, req.Quantity); err != nil {
		if errors.Is(err, repo.ErrInsufficientStock) {
			return apierr.BadRequest("quantity", "insufficient available stock")
		}
		return err
	}
	return nil
}

func (s *Service) ReleaseStock(ctx context.Context, req transport.ReserveStockRequest) error {
	itemID, _ := uuid.Parse(req.ItemID)
	branchID, _ := uuid.Parse(req.BranchID)
	if err := s.Repo.ReleaseStock(ctx, itemID, branchID, req.Quantity); err != nil {
		if errors.Is(err, repo.ErrInsufficientStock) {
			return apierr.BadRequest("quantity", "nothing reserved to release")
		}
		return err
	}
	return nil
}

// checkBranches enforces which sides a movement type must name, and
// that the named branches exist and are active.
func (s *Service) checkBranches(ctx context.Context, movementType string, qty int, from, to *uuid.UUID) error {
	switch movementType {
	case models.MovementIn, models.MovementReturn:
		if to == nil {
			return apierr.BadRequest("toBranchId", "required for "+movementType)
		}
		if qty <= 0 {
			return apierr.BadRequest("quantity", "must be positive")
		}
	case models.MovementOut:
		if from == nil {
			return apierr.BadRequest("fromBranchId", "required for OUT")
		}
		if qty <= 0 {
			return apierr.BadRequest("quantity", "must be positive")
		}
	case models.MovementTransfer:
		if from == nil || to == nil {
			return apierr.BadRequest("fromBranchId", "TRANSFER requires both branches")
		}
		if *from == *to {
			return apierr.BadRequest("toBranchId", "cannot transfer to the same branch")
		}
		if qty <= 0 {
			return apierr.BadRequest("quantity", "must be positive")
		}
	case models.MovementAdjustment:
		if to == nil {
			return apierr.BadRequest("toBranchId", "required for ADJUSTMENT")
		}
		if qty == 0 {
			return apierr.BadRequest("quantity", "must be non-zero")
		}
	}

	for _, id := range []*uuid.UUID{from, to} {
		if id == nil {
			continue
		}
		br, err := s.Repo.GetBranch(ctx, *id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return apierr.BadRequest("branchId", "branch does not exist")
			}
			return err
		}
		if !br.IsActive {
			return apierr.BadRequest("branchId", "branch is inactive")
		}
	}
	return nil
}

// validateActor confirms the acting account with the auth service. No
// validator configured means the check is skipped, which is only meant
// for tests.
func (s *Service) validateActor(ctx context.Context, performedBy uuid.UUID, bearerToken string) error {
	if s.Auth == nil {
		return nil
	}
	res, err := s.Auth.ValidateUser(ctx, performedBy.String(), bearerToken)
	if err != nil {
		return apierr.ErrInternal.WithMessage("actor validation unavailable")
	}
	if !res.Valid {
		return apierr.ErrUnauthorized
	}
	return nil
}
