// internal/domain/inventory/service.go
package inventory

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Service records and lists stock movements
type Service struct {
	db *gorm.DB
}

// NewService creates a new inventory service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// MovementListRequest represents movement list query parameters
type MovementListRequest struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=50"`
}

// Record appends a movement using the caller's transaction so the ledger
// commits or rolls back together with the stock change it describes.
func Record(tx *gorm.DB, movement *InventoryMovement) error {
	if movement.Delta == 0 {
		return nil
	}
	if err := tx.Create(movement).Error; err != nil {
		return fmt.Errorf("failed to record inventory movement: %w", err)
	}
	return nil
}

// ListByProduct returns the movements of a product, newest first
func (s *Service) ListByProduct(ctx context.Context, productID uint, req *MovementListRequest) ([]InventoryMovement, int64, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 200 {
		req.Limit = 50
	}

	query := s.db.WithContext(ctx).Model(&InventoryMovement{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count movements: %w", err)
	}

	var movements []InventoryMovement
	err := query.Order("created_at DESC, id DESC").
		Offset((req.Page - 1) * req.Limit).
		Limit(req.Limit).
		Find(&movements).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve movements: %w", err)
	}

	return movements, total, nil
}
