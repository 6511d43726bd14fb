// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiscountType represents how a product discount is applied
type DiscountType string

const (
	DiscountNone    DiscountType = "none"
	DiscountPercent DiscountType = "percent"
	DiscountFlat    DiscountType = "flat"
)

// Valid reports whether the discount type is known
func (d DiscountType) Valid() bool {
	switch d {
	case DiscountNone, DiscountPercent, DiscountFlat:
		return true
	}
	return false
}

// Product represents the product entity
type Product struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"not null;size:255" json:"name"`
	Slug          string          `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	DiscountType  DiscountType    `gorm:"size:10;not null;default:none" json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount_value"`
	StockQuantity int             `gorm:"not null;default:0;check:stock_quantity >= 0" json:"stock_quantity"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	CategoryID    uint            `gorm:"not null;index" json:"category_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	// Computed on load
	CurrentPrice decimal.Decimal `gorm:"-" json:"final_price"`

	// Relationships
	Category *Category     `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category,omitempty"`
	Images   []ProductImage `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images,omitempty"`
}

// Category represents product categories
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"size:500" json:"description"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// ProductImage represents product images
type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Path      string    `gorm:"not null;size:500" json:"path"`
	AltText   string    `gorm:"size:255" json:"alt_text"`
	IsPrimary bool      `gorm:"default:false" json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (Product) TableName() string      { return "products" }
func (Category) TableName() string     { return "categories" }
func (ProductImage) TableName() string { return "product_images" }

// AfterFind fills the computed price
func (p *Product) AfterFind(tx *gorm.DB) error {
	p.CurrentPrice = p.FinalPrice()
	return nil
}

// FinalPrice applies the discount rule, never going below zero
func (p *Product) FinalPrice() decimal.Decimal {
	price := p.Price
	switch p.DiscountType {
	case DiscountPercent:
		price = price.Sub(price.Mul(p.DiscountValue).Div(decimal.NewFromInt(100)))
	case DiscountFlat:
		price = price.Sub(p.DiscountValue)
	}
	if price.IsNegative() {
		price = decimal.Zero
	}
	return price.Round(2)
}

// IsInStock reports whether the product can currently be sold
func (p *Product) IsInStock() bool {
	return p.IsActive && p.StockQuantity > 0
}

// PrimaryImage returns the primary image path, falling back to the first image
func (p *Product) PrimaryImage() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.Path
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].Path
	}
	return ""
}
