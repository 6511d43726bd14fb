// internal/domain/product/store.go
package product

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/your-org/storefront/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the catalog accessor used by the cart and order engine.
// Stock is only ever mutated through AdjustStock inside a transaction that
// already holds the row lock from LockProducts.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new catalog store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// GetProduct loads a product with its images
func (s *Store) GetProduct(ctx context.Context, id uint) (*Product, error) {
	var p Product
	err := s.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, id ASC")
		}).
		First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "product %d not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &p, nil
}

// GetProducts loads several products keyed by id. Missing ids are absent
// from the result.
func (s *Store) GetProducts(ctx context.Context, ids []uint) (map[uint]*Product, error) {
	result := make(map[uint]*Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var products []Product
	err := s.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, id ASC")
		}).
		Where("id IN ?", ids).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	for i := range products {
		result[products[i].ID] = &products[i]
	}
	return result, nil
}

// LockProducts takes row locks on the given products inside tx, always in
// ascending id order so concurrent checkouts cannot deadlock.
func (s *Store) LockProducts(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]*Product, error) {
	distinct := uniqueSorted(ids)

	var products []Product
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", distinct).
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}

	locked := make(map[uint]*Product, len(products))
	for i := range products {
		locked[products[i].ID] = &products[i]
	}
	return locked, nil
}

// AdjustStock changes stock by delta. The update is conditional so the
// quantity can never go below zero even if a caller skipped the lock.
func (s *Store) AdjustStock(ctx context.Context, tx *gorm.DB, id uint, delta int) error {
	result := tx.WithContext(ctx).
		Model(&Product{}).
		Where("id = ? AND stock_quantity + ? >= 0", id, delta).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("failed to adjust stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.ErrStockConflict, "stock for product %d could not be adjusted by %d", id, delta)
	}
	return nil
}

func uniqueSorted(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
