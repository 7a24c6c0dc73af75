package transport

import (
	"github.com/google/uuid"

	"github.com/natjoub/factory/services/inventory/internal/models"
)

type CreateCategoryRequest struct {
	Name        string  `json:"name"        validate:"required,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	ParentID    *string `json:"parentId"    validate:"omitempty,uuid"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type CreateBranchRequest struct {
	Code    string  `json:"code"    validate:"required,min=2,max=20,alphanum"`
	Name    string  `json:"name"    validate:"required,min=2,max=100"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

type UpdateBranchRequest struct {
	Name     *string `json:"name"     validate:"omitempty,min=2,max=100"`
	Address  *string `json:"address"  validate:"omitempty,max=500"`
	IsActive *bool   `json:"isActive"`
}

type CreateItemRequest struct {
	SKU          string  `json:"sku"          validate:"required,min=2,max=50"`
	Name         string  `json:"name"         validate:"required,min=2,max=200"`
	Description  *string `json:"description"  validate:"omitempty,max=1000"`
	Price        float64 `json:"price"        validate:"required,gt=0"`
	Unit         string  `json:"unit"         validate:"omitempty,max=20"`
	ReorderLevel int     `json:"reorderLevel" validate:"omitempty,gte=0"`
	ReorderQty   int     `json:"reorderQty"   validate:"omitempty,gte=0"`
	CategoryID   *string `json:"categoryId"   validate:"omitempty,uuid"`
}

type UpdateItemRequest struct {
	Name         *string  `json:"name"         validate:"omitempty,min=2,max=200"`
	Description  *string  `json:"description"  validate:"omitempty,max=1000"`
	Price        *float64 `json:"price"        validate:"omitempty,gt=0"`
	Unit         *string  `json:"unit"         validate:"omitempty,max=20"`
	ReorderLevel *int     `json:"reorderLevel" validate:"omitempty,gte=0"`
	ReorderQty   *int     `json:"reorderQty"   validate:"omitempty,gte=0"`
	CategoryID   *string  `json:"categoryId"   validate:"omitempty,uuid"`
	IsActive     *bool    `json:"isActive"`
}

type RecordMovementRequest struct {
	ItemID       string  `json:"itemId"       validate:"required,uuid"`
	Type         string  `json:"type"         validate:"required,oneof=IN OUT TRANSFER ADJUSTMENT RETURN"`
	Quantity     int     `json:"quantity"     validate:"required"`
	FromBranchID *string `json:"fromBranchId" validate:"omitempty,uuid"`
	ToBranchID   *string `json:"toBranchId"   validate:"omitempty,uuid"`
	Reference    *string `json:"reference"    validate:"omitempty,max=100"`
	Notes        *string `json:"notes"        validate:"omitempty,max=500"`
}

type ReserveStockRequest struct {
	ItemID   string `json:"itemId"   validate:"required,uuid"`
	BranchID string `json:"branchId" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type ItemListResponse struct {
	Items  []models.InventoryItem `json:"items"`
	Total  int64                  `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

type MovementListResponse struct {
	Movements []models.StockMovement `json:"movements"`
	Total     int64                  `json:"total"`
	Limit     int                    `json:"limit"`
	Offset    int                    `json:"offset"`
}

// ParseOptionalUUID converts a validated *string id into a *uuid.UUID.
// Callers validate format first, so a parse failure is an internal bug.
func ParseOptionalUUID(s *string) *uuid.UUID {
	if s == nil {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}
