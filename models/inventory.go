package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock statuses.
const (
	StockInStock    = "in_stock"
	StockLowStock   = "low_stock"
	StockOutOfStock = "out_of_stock"
)

// Stock movement types.
const (
	MovementIn         = "in"
	MovementOut        = "out"
	MovementAdjustment = "adjustment"
	MovementTransfer   = "transfer"
)

// InventoryItem holds a running quantity. Status and TotalValue are caches of
// pure functions of Quantity/MinQuantity/UnitPrice and are recomputed on
// every write.
type InventoryItem struct {
	Document

	EstablishmentID string          `gorm:"type:varchar(36);not null;index" json:"establishmentId"`
	Name            string          `gorm:"size:255;not null" json:"name"`
	Category        string          `gorm:"size:80;index" json:"category"`
	SKU             string          `gorm:"size:80" json:"sku,omitempty"`
	Unit            string          `gorm:"size:30" json:"unit"`
	Quantity        int             `json:"quantity"`
	MinQuantity     int             `json:"minQuantity"`
	MaxQuantity     *int            `json:"maxQuantity,omitempty"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2)" json:"unitPrice"`
	TotalValue      decimal.Decimal `gorm:"type:decimal(14,2)" json:"totalValue"`
	Status          string          `gorm:"size:20;index" json:"status"`
	SupplierID      *string         `gorm:"type:varchar(36)" json:"supplierId,omitempty"`
	Location        string          `gorm:"size:255" json:"location,omitempty"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	LastMovementAt  *time.Time      `json:"lastMovementAt,omitempty"`
}

func (InventoryItem) TableName() string { return "inventory" }

// StockMovement is an append-only ledger entry.
type StockMovement struct {
	Document

	EstablishmentID  string `gorm:"type:varchar(36);not null;index" json:"establishmentId"`
	ItemID           string `gorm:"type:varchar(36);not null;index" json:"itemId"`
	ItemName         string `gorm:"size:255" json:"itemName"`
	Type             string `gorm:"size:20;not null" json:"type"`
	Quantity         int    `json:"quantity"`
	PreviousQuantity int    `json:"previousQuantity"`
	NewQuantity      int    `json:"newQuantity"`
	Reason           string `gorm:"type:text" json:"reason,omitempty"`
	Reference        string `gorm:"size:120" json:"reference,omitempty"`
	Destination      string `gorm:"size:255" json:"destination,omitempty"`
	UserID           string `gorm:"type:varchar(36)" json:"userId"`
	UserName         string `gorm:"size:255" json:"userName"`
}

func (StockMovement) TableName() string { return "stock_movements" }

// IsValidMovementType reports whether t is a known movement type.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjustment, MovementTransfer:
		return true
	}
	return false
}
