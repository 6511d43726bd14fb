// internal/domain/product/category_service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/your-org/storefront/internal/pkg/apperr"
	"gorm.io/gorm"
)

// CategoryService handles category business logic
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new category service
func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// CategoryCreateRequest represents category creation data
type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

// CategoryUpdateRequest represents category update data
type CategoryUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// CategoryWithProductCount represents category with product count
type CategoryWithProductCount struct {
	Category
	ProductCount int64 `json:"product_count"`
}

// GetCategories retrieves categories with the number of active products in each
func (s *CategoryService) GetCategories(ctx context.Context, includeInactive bool) ([]CategoryWithProductCount, error) {
	var categories []Category
	query := s.db.WithContext(ctx).Order("name ASC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}

	result := make([]CategoryWithProductCount, len(categories))
	for i, category := range categories {
		var count int64
		err := s.db.WithContext(ctx).Model(&Product{}).
			Where("category_id = ? AND is_active = ?", category.ID, true).
			Count(&count).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count products: %w", err)
		}
		result[i] = CategoryWithProductCount{Category: category, ProductCount: count}
	}

	return result, nil
}

// CreateCategory creates a new category
func (s *CategoryService) CreateCategory(ctx context.Context, req *CategoryCreateRequest) (*Category, error) {
	name := strings.TrimSpace(req.Name)
	slug := Slugify(name)
	if slug == "" {
		return nil, apperr.New(apperr.ErrInvalidInput, "category name must contain letters or digits")
	}

	if err := s.ensureUnique(ctx, name, slug, 0); err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	category := Category{
		Name:        name,
		Slug:        slug,
		Description: req.Description,
		IsActive:    isActive,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&category).Error; err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}
		if !isActive {
			return tx.Model(&category).Update("is_active", false).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &category, nil
}

// UpdateCategory updates an existing category
func (s *CategoryService) UpdateCategory(ctx context.Context, id uint, req *CategoryUpdateRequest) (*Category, error) {
	var category Category
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&category)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "category not found")
		}
		return nil, fmt.Errorf("failed to find category: %w", result.Error)
	}

	updates := make(map[string]interface{})

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		slug := Slugify(name)
		if slug == "" {
			return nil, apperr.New(apperr.ErrInvalidInput, "category name must contain letters or digits")
		}
		if err := s.ensureUnique(ctx, name, slug, category.ID); err != nil {
			return nil, err
		}
		updates["name"] = name
		updates["slug"] = slug
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&category).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update category: %w", err)
		}
	}

	if err := s.db.WithContext(ctx).First(&category, category.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload category: %w", err)
	}
	return &category, nil
}

// DeleteCategory soft deletes a category that no longer owns products
func (s *CategoryService) DeleteCategory(ctx context.Context, id uint) error {
	var productCount int64
	if err := s.db.WithContext(ctx).Model(&Product{}).Where("category_id = ?", id).Count(&productCount).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if productCount > 0 {
		return apperr.New(apperr.ErrConflict, "cannot delete category with existing products")
	}

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Category{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.ErrNotFound, "category not found")
	}
	return nil
}

func (s *CategoryService) ensureUnique(ctx context.Context, name, slug string, exceptID uint) error {
	var count int64
	err := s.db.WithContext(ctx).Unscoped().Model(&Category{}).
		Where("(LOWER(name) = ? OR slug = ?) AND id <> ?", strings.ToLower(name), slug, exceptID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check category name: %w", err)
	}
	if count > 0 {
		return apperr.New(apperr.ErrConflict, "category with similar name already exists")
	}
	return nil
}
