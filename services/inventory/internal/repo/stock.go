package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/natjoub/factory/services/inventory/internal/models"
)

// GetStock returns stock levels filtered by item and/or branch.
func (r *GormRepo) GetStock(ctx context.Context, itemID, branchID *uuid.UUID) ([]models.StockLevel, error) {
	q := r.DB.WithContext(ctx).Model(&models.StockLevel{})
	if itemID != nil {
		q = q.Where("item_id = ?", *itemID)
	}
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}

	var levels []models.StockLevel
	err := q.Order("item_id ASC, branch_id ASC").Find(&levels).Error
	return levels, err
}

func (r *GormRepo) ListMovements(ctx context.Context, itemID *uuid.UUID, limit, offset int) (int64, []models.StockMovement, error) {
	q := r.DB.WithContext(ctx).Model(&models.StockMovement{})
	if itemID != nil {
		q = q.Where("item_id = ?", *itemID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var moves []models.StockMovement
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&moves).Error; err != nil {
		return 0, nil, err
	}
	return total, moves, nil
}

// RecordMovement writes the movement row and adjusts the affected stock
// levels in one transaction. The subtraction is guarded in SQL, so two
// concurrent OUTs can never drive available stock negative.
func (r *GormRepo) RecordMovement(ctx context.Context, mv *models.StockMovement) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch mv.Type {
		case models.MovementIn, models.MovementReturn:
			if err := addStock(tx, mv.ItemID, *mv.ToBranchID, mv.Quantity); err != nil {
				return err
			}
		case models.MovementOut:
			if err := removeStock(tx, mv.ItemID, *mv.FromBranchID, mv.Quantity); err != nil {
				return err
			}
		case models.MovementTransfer:
			if err := removeStock(tx, mv.ItemID, *mv.FromBranchID, mv.Quantity); err != nil {
				return err
			}
			if err := addStock(tx, mv.ItemID, *mv.ToBranchID, mv.Quantity); err != nil {
				return err
			}
		case models.MovementAdjustment:
			if err := adjustStock(tx, mv.ItemID, *mv.ToBranchID, mv.Quantity); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown movement type %q", mv.Type)
		}
		return tx.Create(mv).Error
	})
}

// ReserveStock commits available stock to an order without moving it.
func (r *GormRepo) ReserveStock(ctx context.Context, itemID, branchID uuid.UUID, qty int) error {
	res := r.DB.WithContext(ctx).Model(&models.StockLevel{}).
		Where("item_id = ? AND branch_id = ? AND quantity - reserved >= ?", itemID, branchID, qty).
		Update("reserved", gorm.Expr("reserved + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *GormRepo) ReleaseStock(ctx context.Context, itemID, branchID uuid.UUID, qty int) error {
	res := r.DB.WithContext(ctx).Model(&models.StockLevel{}).
		Where("item_id = ? AND branch_id = ? AND reserved >= ?", itemID, branchID, qty).
		Update("reserved", gorm.Expr("reserved - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func addStock(tx *gorm.DB, itemID, branchID uuid.UUID, qty int) error {
	row := models.StockLevel{ItemID: itemID, BranchID: branchID}
	if err := tx.Where("item_id = ? AND branch_id = ?", itemID, branchID).
		FirstOrCreate(&row).Error; err != nil {
		return err
	}
	return tx.Model(&models.StockLevel{}).
		Where("item_id = ? AND branch_id = ?", itemID, branchID).
		Update("quantity", gorm.Expr("quantity + ?", qty)).Error
}

func removeStock(tx *gorm.DB, itemID, branchID uuid.UUID, qty int) error {
	res := tx.Model(&models.StockLevel{}).
		Where("item_id = ? AND branch_id = ? AND quantity - reserved >= ?", itemID, branchID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// adjustStock applies a signed delta; quantity may not go below zero.
func adjustStock(tx *gorm.DB, itemID, branchID uuid.UUID, delta int) error {
	if delta >= 0 {
		return addStock(tx, itemID, branchID, delta)
	}
	res := tx.Model(&models.StockLevel{}).
		Where("item_id = ? AND branch_id = ? AND quantity + ? >= 0", itemID, branchID, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}
