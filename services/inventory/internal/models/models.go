package models

import (
	"time"

	"github.com/google/uuid"
)

// Movement types. TRANSFER moves between branches; ADJUSTMENT applies a
// signed correction to a single branch.
const (
	MovementIn         = "IN"
	MovementOut        = "OUT"
	MovementTransfer   = "TRANSFER"
	MovementAdjustment = "ADJUSTMENT"
	MovementReturn     = "RETURN"
)

var MovementTypes = []string{
	MovementIn, MovementOut, MovementTransfer, MovementAdjustment, MovementReturn,
}

type Category struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"uniqueIndex;not null" json:"name"`
	Description *string    `json:"description,omitempty"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index"      json:"parentId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type Branch struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code      string    `gorm:"uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"not null"             json:"name"`
	Address   *string   `json:"address,omitempty"`
	IsActive  bool      `gorm:"default:true"         json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type InventoryItem struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SKU          string     `gorm:"uniqueIndex;not null" json:"sku"`
	Name         string     `gorm:"not null;index"       json:"name"`
	Description  *string    `json:"description,omitempty"`
	Price        float64    `gorm:"not null"             json:"price"`
	Unit         string     `gorm:"default:pcs"          json:"unit"`
	ReorderLevel int        `gorm:"default:0"            json:"reorderLevel"`
	ReorderQty   int        `gorm:"default:0"            json:"reorderQty"`
	CategoryID   *uuid.UUID `gorm:"type:uuid;index"      json:"categoryId,omitempty"`
	IsActive     bool       `gorm:"default:true"         json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// StockLevel is one item's quantity at one branch. Reserved counts
// stock committed to orders but not yet shipped; available stock is
// quantity minus reserved.
type StockLevel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                        json:"-"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_item_branch"  json:"itemId"`
	BranchID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_item_branch"  json:"branchId"`
	Quantity  int       `gorm:"not null;default:0"                              json:"quantity"`
	Reserved  int       `gorm:"not null;default:0"                              json:"reserved"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StockMovement is the append-only audit trail; stock levels are the
// derived current state.
type StockMovement struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"     json:"id"`
	ItemID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"itemId"`
	Type         string     `gorm:"not null"                 json:"type"`
	Quantity     int        `gorm:"not null"                 json:"quantity"`
	FromBranchID *uuid.UUID `gorm:"type:uuid"                json:"fromBranchId,omitempty"`
	ToBranchID   *uuid.UUID `gorm:"type:uuid"                json:"toBranchId,omitempty"`
	PerformedBy  uuid.UUID  `gorm:"type:uuid;not null;index" json:"performedBy"`
	Reference    *string    `json:"reference,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}
