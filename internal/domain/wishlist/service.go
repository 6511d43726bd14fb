package wishlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/your-org/storefront/internal/domain/product"
	"gorm.io/gorm"
)

// Catalog checks that a wished-for product exists
type Catalog interface {
	GetProduct(ctx context.Context, id uint) (*product.Product, error)
}

// Service handles wishlist business logic
type Service struct {
	db      *gorm.DB
	catalog Catalog
}

// NewService creates a new wishlist service
func NewService(db *gorm.DB, catalog Catalog) *Service {
	return &Service{
		db:      db,
		catalog: catalog,
	}
}

// ToggleResult reports the state of the product after a toggle
type ToggleResult struct {
	ProductID  uint `json:"product_id"`
	Wishlisted bool `json:"wishlisted"`
}

// Toggle adds the product to the wishlist, or removes it when present
func (s *Service) Toggle(ctx context.Context, userID, productID uint) (*ToggleResult, error) {
	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	result := &ToggleResult{ProductID: productID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item WishlistItem
		err := tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
		switch {
		case err == nil:
			if err := tx.Delete(&item).Error; err != nil {
				return fmt.Errorf("failed to remove wishlist item: %w", err)
			}
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&WishlistItem{UserID: userID, ProductID: productID}).Error; err != nil {
				return fmt.Errorf("failed to add wishlist item: %w", err)
			}
			result.Wishlisted = true
			return nil
		default:
			return fmt.Errorf("failed to check wishlist: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// List returns the user's wishlist, newest first. search matches the
// product or category name.
func (s *Service) List(ctx context.Context, userID uint, search string) ([]WishlistItem, error) {
	query := s.db.WithContext(ctx).
		Joins("JOIN products ON products.id = wishlist_items.product_id AND products.deleted_at IS NULL").
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Where("wishlist_items.user_id = ?", userID)

	if term := strings.TrimSpace(search); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(products.name) LIKE ? OR LOWER(categories.name) LIKE ?", pattern, pattern)
	}

	var items []WishlistItem
	err := query.
		Preload("Product.Category").
		Preload("Product.Images").
		Order("wishlist_items.created_at DESC, wishlist_items.id DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve wishlist: %w", err)
	}
	return items, nil
}

// ProductIDs returns the ids of every wishlisted product of the user
func (s *Service) ProductIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&WishlistItem{}).
		Where("user_id = ?", userID).
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve wishlist: %w", err)
	}
	return ids, nil
}
