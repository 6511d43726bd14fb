package review

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/pkg/apperr"
	"gorm.io/gorm"
)

// Catalog checks that the reviewed product exists
type Catalog interface {
	GetProduct(ctx context.Context, id uint) (*product.Product, error)
}

// PurchaseVerifier tells whether a user received a product
type PurchaseVerifier interface {
	HasDeliveredProduct(ctx context.Context, userID, productID uint) (bool, error)
}

// Service handles review business logic
type Service struct {
	db        *gorm.DB
	catalog   Catalog
	purchases PurchaseVerifier
	log       *logrus.Logger
}

// NewService creates a new review service
func NewService(db *gorm.DB, catalog Catalog, purchases PurchaseVerifier, log *logrus.Logger) *Service {
	return &Service{
		db:        db,
		catalog:   catalog,
		purchases: purchases,
		log:       log,
	}
}

// CreateReview records a review. Only customers with a delivered order
// containing the product may review it, once.
func (s *Service) CreateReview(ctx context.Context, userID, productID uint, req *CreateReviewRequest) (*ProductReview, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperr.New(apperr.ErrInvalidInput, "rating must be between 1 and 5")
	}
	comment := strings.TrimSpace(req.Comment)
	if comment == "" {
		return nil, apperr.New(apperr.ErrInvalidInput, "comment is required")
	}

	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	delivered, err := s.purchases.HasDeliveredProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !delivered {
		return nil, apperr.New(apperr.ErrUnauthorized, "you can only review %s after it has been delivered", p.Name)
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&ProductReview{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if existing > 0 {
		return nil, apperr.New(apperr.ErrConflict, "you have already reviewed %s", p.Name)
	}

	review := ProductReview{
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Title:     strings.TrimSpace(req.Title),
		Comment:   comment,
	}
	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"review_id":  review.ID,
		"product_id": productID,
		"rating":     review.Rating,
	}).Info("Review created")

	return &review, nil
}

// GetReview retrieves a single review by ID
func (s *Service) GetReview(ctx context.Context, reviewID uint) (*ProductReview, error) {
	var review ProductReview
	err := s.db.WithContext(ctx).Preload("User").First(&review, reviewID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "review not found")
		}
		return nil, fmt.Errorf("failed to retrieve review: %w", err)
	}
	return &review, nil
}

// ListProductReviews returns a page of a product's reviews, newest first,
// with the rating summary over all of them
func (s *Service) ListProductReviews(ctx context.Context, productID uint, page, limit int) (*ReviewListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	query := s.db.WithContext(ctx).Model(&ProductReview{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	var reviews []ProductReview
	err := query.
		Preload("User").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve reviews: %w", err)
	}

	summary, err := s.summary(ctx, productID)
	if err != nil {
		return nil, err
	}

	return &ReviewListResponse{
		Reviews:    reviews,
		Summary:    *summary,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (s *Service) summary(ctx context.Context, productID uint) (*ReviewSummary, error) {
	var rows []struct {
		Rating int
		Count  int
	}
	err := s.db.WithContext(ctx).Model(&ProductReview{}).
		Select("rating, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize reviews: %w", err)
	}

	summary := &ReviewSummary{RatingBreakdown: map[string]int{}}
	for i := 1; i <= 5; i++ {
		summary.RatingBreakdown[strconv.Itoa(i)] = 0
	}

	sum := 0
	for _, row := range rows {
		summary.RatingBreakdown[strconv.Itoa(row.Rating)] = row.Count
		summary.TotalReviews += int64(row.Count)
		sum += row.Rating * row.Count
	}
	if summary.TotalReviews > 0 {
		summary.AverageRating = math.Round(float64(sum)/float64(summary.TotalReviews)*10) / 10
	}
	return summary, nil
}
