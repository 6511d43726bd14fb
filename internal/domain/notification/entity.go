package notification

import "time"

// StockNotification is a customer's request to hear when an out of stock
// product becomes available again
type StockNotification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_stock_notifications_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_stock_notifications_user_product;index" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the table name
func (StockNotification) TableName() string {
	return "stock_notifications"
}

// PendingSummary is the admin overview of subscribers waiting on a product
type PendingSummary struct {
	ProductID     uint   `json:"product_id"`
	ProductName   string `json:"product_name"`
	StockQuantity int    `json:"stock_quantity"`
	Subscribers   int64  `json:"subscribers"`
}
