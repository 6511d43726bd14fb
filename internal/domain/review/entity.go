package review

import (
	"time"

	"github.com/your-org/storefront/internal/domain/user"
)

// ProductReview is a customer's rating of a product they received
type ProductReview struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_product_reviews_product_user;index" json:"product_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_product_reviews_product_user" json:"user_id"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Title     string    `gorm:"size:255" json:"title"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *user.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName overrides the table name
func (ProductReview) TableName() string {
	return "product_reviews"
}

// CreateReviewRequest represents the request to create a review
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Title   string `json:"title" binding:"max=255"`
	Comment string `json:"comment"`
}

// ReviewListResponse represents paginated review list
type ReviewListResponse struct {
	Reviews    []ProductReview `json:"reviews"`
	Summary    ReviewSummary   `json:"summary"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Total      int64           `json:"total"`
	TotalPages int             `json:"total_pages"`
}

// ReviewSummary provides review statistics
type ReviewSummary struct {
	TotalReviews    int64          `json:"total_reviews"`
	AverageRating   float64        `json:"average_rating"`
	RatingBreakdown map[string]int `json:"rating_breakdown"`
}
