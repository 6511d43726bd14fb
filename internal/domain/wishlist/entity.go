package wishlist

import (
	"time"

	"github.com/your-org/storefront/internal/domain/product"
)

// WishlistItem represents a wishlist item
type WishlistItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product;index" json:"product_id"`
	CreatedAt time.Time `json:"added_at"`

	Product *product.Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE;" json:"product,omitempty"`
}

// TableName overrides the table name
func (WishlistItem) TableName() string {
	return "wishlist_items"
}
