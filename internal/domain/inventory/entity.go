// internal/domain/inventory/entity.go
package inventory

import (
	"time"
)

// MovementType represents the direction of a stock movement
type MovementType string

const (
	MovementTypeInbound     MovementType = "inbound"     // Restock or adjustment increase
	MovementTypeOutbound    MovementType = "outbound"    // Adjustment decrease
	MovementTypeReservation MovementType = "reservation" // Order placement
	MovementTypeRelease     MovementType = "release"     // Order cancellation
)

// MovementReason represents why stock moved
type MovementReason string

const (
	ReasonReservation MovementReason = "reservation"
	ReasonRelease     MovementReason = "release"
	ReasonAdjustment  MovementReason = "adjustment"
)

// Reference types recorded on movements
const (
	ReferenceOrder   = "order"
	ReferenceProduct = "product"
)

// InventoryMovement is an append-only record of a stock change on a product.
type InventoryMovement struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ProductID        uint           `gorm:"not null;index" json:"product_id"`
	MovementType     MovementType   `gorm:"not null;size:20" json:"movement_type"`
	Reason           MovementReason `gorm:"not null;size:20" json:"reason"`
	Delta            int            `gorm:"not null" json:"delta"`
	PreviousQuantity int            `gorm:"not null" json:"previous_quantity"`
	NewQuantity      int            `gorm:"not null" json:"new_quantity"`
	ReferenceType    string         `gorm:"size:50" json:"reference_type"`
	ReferenceID      uint           `json:"reference_id"`
	Notes            string         `gorm:"type:text" json:"notes"`
	CreatedBy        uint           `gorm:"index" json:"created_by"`
	CreatedAt        time.Time      `json:"created_at"`
}

// TableName overrides the table name
func (InventoryMovement) TableName() string { return "inventory_movements" }

// TypeForDelta picks the movement type for an admin adjustment
func TypeForDelta(delta int) MovementType {
	if delta < 0 {
		return MovementTypeOutbound
	}
	return MovementTypeInbound
}
