// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/inventory"
	"github.com/your-org/storefront/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RestockListener is told about products whose stock moved from zero to a
// positive quantity. It runs after the edit has committed.
type RestockListener interface {
	ProductRestocked(ctx context.Context, p *Product) error
}

// Service handles product business logic
type Service struct {
	db       *gorm.DB
	log      *logrus.Logger
	listener RestockListener
}

// NewService creates a new product service
func NewService(db *gorm.DB, log *logrus.Logger) *Service {
	return &Service{
		db:  db,
		log: log,
	}
}

// SetRestockListener registers the back-in-stock hook
func (s *Service) SetRestockListener(l RestockListener) {
	s.listener = l
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page            int    `form:"page,default=1"`
	Limit           int    `form:"limit,default=20"`
	CategoryID      uint   `form:"category_id"`
	CategorySlug    string `form:"category"`
	Search          string `form:"search"`
	SortBy          string `form:"sort_by,default=created_at"`
	SortOrder       string `form:"sort_order,default=desc"`
	IncludeInactive bool   `form:"-"`
}

// ProductCreateRequest represents product creation data
type ProductCreateRequest struct {
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	StockQuantity int             `json:"stock_quantity"`
	CategoryID    uint            `json:"category_id" binding:"required"`
	IsActive      *bool           `json:"is_active"`
}

// ProductUpdateRequest represents product update data
type ProductUpdateRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	DiscountType  *DiscountType    `json:"discount_type"`
	DiscountValue *decimal.Decimal `json:"discount_value"`
	StockQuantity *int             `json:"stock_quantity"`
	CategoryID    *uint            `json:"category_id"`
	IsActive      *bool            `json:"is_active"`
}

// ImageCreateRequest represents a new product image
type ImageCreateRequest struct {
	Path      string `json:"path" binding:"required"`
	AltText   string `json:"alt_text"`
	IsPrimary bool   `json:"is_primary"`
}

// ProductResponse represents product response with pagination
type ProductResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewPagination builds pagination info
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// GetProducts retrieves products with filtering and pagination
func (s *Service) GetProducts(ctx context.Context, req *ProductListRequest) (*ProductResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	var products []Product
	var total int64

	query := s.db.WithContext(ctx).Model(&Product{}).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, id ASC")
		})

	if !req.IncludeInactive {
		query = query.Where("products.is_active = ?", true)
	}

	if req.CategoryID > 0 {
		query = query.Where("products.category_id = ?", req.CategoryID)
	}

	if req.CategorySlug != "" {
		query = query.Where("products.category_id IN (?)",
			s.db.Model(&Category{}).Select("id").Where("slug = ?", req.CategorySlug))
	}

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(products.name) LIKE ?", search)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	query = query.Order(s.buildOrderClause(req.SortBy, req.SortOrder))

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	return &ProductResponse{
		Products:   products,
		Pagination: NewPagination(req.Page, req.Limit, total),
	}, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	var product Product
	result := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, id ASC")
		}).
		Where("id = ?", id).
		First(&product)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &product, nil
}

// GetProductBySlug retrieves a single active product by slug
func (s *Service) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	var product Product
	result := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, id ASC")
		}).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &product, nil
}

// CreateProduct creates a new product and records its opening stock
func (s *Service) CreateProduct(ctx context.Context, req *ProductCreateRequest, actorID uint) (*Product, error) {
	if req.DiscountType == "" {
		req.DiscountType = DiscountNone
	}
	if err := validatePricing(req.Price, req.DiscountType, req.DiscountValue); err != nil {
		return nil, err
	}
	if req.StockQuantity < 0 {
		return nil, apperr.New(apperr.ErrInvalidInput, "stock quantity cannot be negative")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	product := Product{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Price:         req.Price.Round(2),
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue.Round(2),
		StockQuantity: req.StockQuantity,
		CategoryID:    req.CategoryID,
		IsActive:      isActive,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCategory(tx, req.CategoryID); err != nil {
			return err
		}

		slug, err := uniqueSlug(tx, &Product{}, product.Name, 0)
		if err != nil {
			return err
		}
		product.Slug = slug

		if err := tx.Create(&product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		// gorm skips a false bool that has a column default
		if !isActive {
			if err := tx.Model(&product).Update("is_active", false).Error; err != nil {
				return fmt.Errorf("failed to deactivate product: %w", err)
			}
		}

		return inventory.Record(tx, &inventory.InventoryMovement{
			ProductID:        product.ID,
			MovementType:     inventory.MovementTypeInbound,
			Reason:           inventory.ReasonAdjustment,
			Delta:            product.StockQuantity,
			PreviousQuantity: 0,
			NewQuantity:      product.StockQuantity,
			ReferenceType:    inventory.ReferenceProduct,
			ReferenceID:      product.ID,
			Notes:            "opening stock",
			CreatedBy:        actorID,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetProduct(ctx, product.ID)
}

// UpdateProduct updates an existing product. The row is locked while the
// edit is applied; a 0 -> positive stock change fires the restock hook once
// the transaction has committed.
func (s *Service) UpdateProduct(ctx context.Context, id uint, req *ProductUpdateRequest, actorID uint) (*Product, error) {
	var previousStock, newStock int

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.ErrNotFound, "product not found")
			}
			return fmt.Errorf("failed to find product: %w", err)
		}

		previousStock = product.StockQuantity
		newStock = product.StockQuantity

		price, discountType, discountValue := product.Price, product.DiscountType, product.DiscountValue
		if req.Price != nil {
			price = *req.Price
		}
		if req.DiscountType != nil {
			discountType = *req.DiscountType
		}
		if req.DiscountValue != nil {
			discountValue = *req.DiscountValue
		}
		if err := validatePricing(price, discountType, discountValue); err != nil {
			return err
		}

		updates := make(map[string]interface{})

		if req.Name != nil && strings.TrimSpace(*req.Name) != product.Name {
			name := strings.TrimSpace(*req.Name)
			slug, err := uniqueSlug(tx, &Product{}, name, product.ID)
			if err != nil {
				return err
			}
			updates["name"] = name
			updates["slug"] = slug
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Price != nil {
			updates["price"] = price.Round(2)
		}
		if req.DiscountType != nil {
			updates["discount_type"] = discountType
		}
		if req.DiscountValue != nil {
			updates["discount_value"] = discountValue.Round(2)
		}
		if req.CategoryID != nil {
			if err := ensureCategory(tx, *req.CategoryID); err != nil {
				return err
			}
			updates["category_id"] = *req.CategoryID
		}
		if req.IsActive != nil {
			updates["is_active"] = *req.IsActive
		}
		if req.StockQuantity != nil {
			if *req.StockQuantity < 0 {
				return apperr.New(apperr.ErrInvalidInput, "stock quantity cannot be negative")
			}
			newStock = *req.StockQuantity
			updates["stock_quantity"] = newStock
		}

		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&product).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		delta := newStock - previousStock
		return inventory.Record(tx, &inventory.InventoryMovement{
			ProductID:        product.ID,
			MovementType:     inventory.TypeForDelta(delta),
			Reason:           inventory.ReasonAdjustment,
			Delta:            delta,
			PreviousQuantity: previousStock,
			NewQuantity:      newStock,
			ReferenceType:    inventory.ReferenceProduct,
			ReferenceID:      product.ID,
			CreatedBy:        actorID,
		})
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if previousStock == 0 && newStock > 0 && s.listener != nil {
		if err := s.listener.ProductRestocked(ctx, updated); err != nil {
			s.log.WithError(err).WithField("product_id", id).Error("Failed to notify restock subscribers")
		}
	}

	return updated, nil
}

// DeleteProduct soft deletes a product
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Product{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.ErrNotFound, "product not found")
	}
	return nil
}

// AddImage attaches an image to a product. The first image of a product
// becomes its primary image.
func (s *Service) AddImage(ctx context.Context, productID uint, req *ImageCreateRequest) (*ProductImage, error) {
	image := ProductImage{
		ProductID: productID,
		Path:      req.Path,
		AltText:   req.AltText,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to find product: %w", err)
		}
		if count == 0 {
			return apperr.New(apperr.ErrNotFound, "product not found")
		}

		var existing int64
		if err := tx.Model(&ProductImage{}).Where("product_id = ?", productID).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to count images: %w", err)
		}

		if err := tx.Create(&image).Error; err != nil {
			return fmt.Errorf("failed to create image: %w", err)
		}

		if req.IsPrimary || existing == 0 {
			return setPrimary(tx, productID, image.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).First(&image, image.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload image: %w", err)
	}
	return &image, nil
}

// SetPrimaryImage marks one image as primary and clears the flag on the
// product's other images
func (s *Service) SetPrimaryImage(ctx context.Context, imageID uint) (*ProductImage, error) {
	var image ProductImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&image, imageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.ErrNotFound, "image not found")
			}
			return fmt.Errorf("failed to find image: %w", err)
		}
		return setPrimary(tx, image.ProductID, image.ID)
	})
	if err != nil {
		return nil, err
	}
	image.IsPrimary = true
	return &image, nil
}

func setPrimary(tx *gorm.DB, productID, imageID uint) error {
	if err := tx.Model(&ProductImage{}).
		Where("product_id = ? AND id <> ?", productID, imageID).
		Update("is_primary", false).Error; err != nil {
		return fmt.Errorf("failed to clear primary image: %w", err)
	}
	if err := tx.Model(&ProductImage{}).
		Where("id = ?", imageID).
		Update("is_primary", true).Error; err != nil {
		return fmt.Errorf("failed to set primary image: %w", err)
	}
	return nil
}

func validatePricing(price decimal.Decimal, discountType DiscountType, discountValue decimal.Decimal) error {
	if price.IsNegative() {
		return apperr.New(apperr.ErrInvalidInput, "price cannot be negative")
	}
	if !discountType.Valid() {
		return apperr.New(apperr.ErrInvalidInput, "unknown discount type %q", discountType)
	}
	if discountValue.IsNegative() {
		return apperr.New(apperr.ErrInvalidInput, "discount value cannot be negative")
	}
	if discountType == DiscountPercent && discountValue.GreaterThan(decimal.NewFromInt(100)) {
		return apperr.New(apperr.ErrInvalidInput, "percent discount cannot exceed 100")
	}
	return nil
}

func ensureCategory(tx *gorm.DB, categoryID uint) error {
	var count int64
	if err := tx.Model(&Category{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to find category: %w", err)
	}
	if count == 0 {
		return apperr.New(apperr.ErrInvalidInput, "category %d does not exist", categoryID)
	}
	return nil
}

// buildOrderClause builds ORDER BY clause for sorting
func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"name":           true,
		"price":          true,
		"created_at":     true,
		"updated_at":     true,
		"stock_quantity": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("products.%s %s, products.id %s", sortBy, sortOrder, sortOrder)
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify generates a URL-friendly slug from name
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// uniqueSlug returns a slug for name that no other row of model uses,
// suffixing -2, -3 ... on collision. Soft deleted rows still hold their slug.
func uniqueSlug(tx *gorm.DB, model interface{}, name string, exceptID uint) (string, error) {
	base := Slugify(name)
	if base == "" {
		return "", apperr.New(apperr.ErrInvalidInput, "name must contain letters or digits")
	}

	candidate := base
	for i := 2; ; i++ {
		var count int64
		err := tx.Unscoped().Model(model).
			Where("slug = ? AND id <> ?", candidate, exceptID).
			Count(&count).Error
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
