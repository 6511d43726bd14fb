// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront/internal/domain/user"
)

// Order represents the order entity
type Order struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	AddressID *uint  `gorm:"index" json:"address_id"`
	Status    Status `gorm:"size:20;not null;default:PLACED;index" json:"status"`

	// Financial information. TotalAmount is the sum of the item snapshots;
	// the delivery fee charged at checkout is kept alongside.
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	DeliveryFee decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"delivery_fee"`

	// Shipping information
	CourierName    string     `gorm:"size:100" json:"courier_name"`
	TrackingNumber string     `gorm:"size:100" json:"tracking_number"`
	DispatchedAt   *time.Time `json:"dispatched_at"`
	DeliveredAt    *time.Time `json:"delivered_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Address       *user.Address        `gorm:"foreignKey:AddressID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"address,omitempty"`
	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem is a line of an order with the name and price captured at
// placement time
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	ProductID   uint            `gorm:"not null;index" json:"product_id"`
	ProductName string          `gorm:"not null;size:255" json:"product_name"`
	Quantity    int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	CreatedAt   time.Time       `json:"created_at"`
}

// OrderStatusHistory is an append-only trail of status changes. OldStatus
// is nil on the row written when the order is placed.
type OrderStatusHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	OldStatus *Status   `gorm:"size:20" json:"old_status"`
	NewStatus Status    `gorm:"size:20;not null" json:"new_status"`
	ChangedBy uint      `gorm:"index" json:"changed_by"`
	Remark    string    `gorm:"type:text" json:"remark"`
	ChangedAt time.Time `gorm:"not null" json:"changed_at"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// CanBeCancelled checks if order can be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status.Cancellable()
}

// ItemCount returns the number of units in the order
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// GrandTotal returns what the customer pays
func (o *Order) GrandTotal() decimal.Decimal {
	return o.TotalAmount.Add(o.DeliveryFee)
}
