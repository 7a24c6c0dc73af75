package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/natjoub/factory/services/inventory/internal/models"
)

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func createOr(err error) error {
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

// Categories.

func (r *GormRepo) CreateCategory(ctx context.Context, cat *models.Category) error {
	if err := r.DB.WithContext(ctx).Create(cat).Error; err != nil {
		return createOr(err)
	}
	return nil
}

func (r *GormRepo) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var cat models.Category
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&cat).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &cat, nil
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&cats).Error
	return cats, err
}

func (r *GormRepo) UpdateCategory(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&models.Category{}).
		Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return createOr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Branches.

func (r *GormRepo) CreateBranch(ctx context.Context, br *models.Branch) error {
	if err := r.DB.WithContext(ctx).Create(br).Error; err != nil {
		return createOr(err)
	}
	return nil
}

func (r *GormRepo) GetBranch(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	var br models.Branch
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&br).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &br, nil
}

func (r *GormRepo) ListBranches(ctx context.Context) ([]models.Branch, error) {
	var brs []models.Branch
	err := r.DB.WithContext(ctx).Order("code ASC").Find(&brs).Error
	return brs, err
}

func (r *GormRepo) UpdateBranch(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&models.Branch{}).
		Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return createOr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Items.

func (r *GormRepo) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	if err := r.DB.WithContext(ctx).Create(item).Error; err != nil {
		return createOr(err)
	}
	return nil
}

func (r *GormRepo) GetItem(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &item, nil
}

func (r *GormRepo) ListItems(ctx context.Context, categoryID *uuid.UUID, activeOnly bool, limit, offset int) (int64, []models.InventoryItem, error) {
	q := r.DB.WithContext(ctx).Model(&models.InventoryItem{})
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.InventoryItem
	if err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) UpdateItem(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.InventoryItem, error) {
	res := r.DB.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, createOr(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetItem(ctx, id)
}

// DeleteItem is a soft delete; movement history keeps referencing the
// row.
func (r *GormRepo) DeleteItem(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
