// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionCart represents a cart session (stored in Redis)
type SessionCart struct {
	Token     string            `json:"token"`
	Items     []SessionCartItem `json:"items"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// SessionCartItem is one product line. The snapshot fields are for display
// only; checkout always charges the live catalog price.
type SessionCartItem struct {
	ProductID  uint            `json:"product_id"`
	Quantity   int             `json:"quantity"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	FinalPrice decimal.Decimal `json:"final_price"`
	Image      string          `json:"image,omitempty"`
	AddedAt    time.Time       `json:"added_at"`
}

// Line is a raw (product, quantity) pair handed to checkout
type Line struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// CartItem is a cart line joined against the live catalog
type CartItem struct {
	ProductID  uint            `json:"product_id"`
	Name       string          `json:"name"`
	Slug       string          `json:"slug"`
	Image      string          `json:"image,omitempty"`
	Quantity   int             `json:"quantity"`
	Stock      int             `json:"stock"`
	Price      decimal.Decimal `json:"price"`
	FinalPrice decimal.Decimal `json:"final_price"`
	LineTotal  decimal.Decimal `json:"line_total"`
}

// CartTotals represents calculated cart totals
type CartTotals struct {
	ItemCount     int             `json:"item_count"`     // Number of unique items
	TotalQuantity int             `json:"total_quantity"` // Sum of all quantities
	SubTotal      decimal.Decimal `json:"sub_total"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// CartResponse represents a cart with items and summary
type CartResponse struct {
	Token  string     `json:"token"`
	Items  []CartItem `json:"items"`
	Totals CartTotals `json:"totals"`
}

func (c *SessionCart) find(productID uint) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *SessionCart) remove(productID uint) bool {
	idx := c.find(productID)
	if idx < 0 {
		return false
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	return true
}
