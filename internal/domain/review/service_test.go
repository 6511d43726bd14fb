package review

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/pkg/apperr"
	"github.com/your-org/storefront/internal/pkg/logger"
	"github.com/your-org/storefront/internal/pkg/testutil"
)

type deliveries map[[2]uint]bool

func (d deliveries) HasDeliveredProduct(ctx context.Context, userID, productID uint) (bool, error) {
	return d[[2]uint{userID, productID}], nil
}

func TestCreateReview(t *testing.T) {
	db := testutil.NewTestDB(t, &user.User{}, &product.Category{}, &product.Product{}, &product.ProductImage{}, &ProductReview{})
	ctx := context.Background()

	buyer := user.User{Email: "buyer@example.com", FirstName: "Meera"}
	browser := user.User{Email: "browser@example.com"}
	require.NoError(t, db.Create(&buyer).Error)
	require.NoError(t, db.Create(&browser).Error)
	category := product.Category{Name: "Kitchen", Slug: "kitchen"}
	require.NoError(t, db.Create(&category).Error)
	kettle := product.Product{Name: "Kettle", Slug: "kettle", Price: decimal.NewFromInt(900), DiscountType: product.DiscountNone, StockQuantity: 4, CategoryID: category.ID}
	require.NoError(t, db.Create(&kettle).Error)

	svc := NewService(db, product.NewStore(db), deliveries{{buyer.ID, kettle.ID}: true}, logger.Discard())

	_, err := svc.CreateReview(ctx, buyer.ID, kettle.ID, &CreateReviewRequest{Rating: 6, Comment: "great"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.CreateReview(ctx, buyer.ID, kettle.ID, &CreateReviewRequest{Rating: 5, Comment: "  "})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.CreateReview(ctx, browser.ID, kettle.ID, &CreateReviewRequest{Rating: 4, Comment: "looks nice"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.CreateReview(ctx, buyer.ID, 404, &CreateReviewRequest{Rating: 4, Comment: "?"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	created, err := svc.CreateReview(ctx, buyer.ID, kettle.ID, &CreateReviewRequest{Rating: 4, Title: " Solid ", Comment: "Boils fast"})
	require.NoError(t, err)
	assert.Equal(t, "Solid", created.Title)

	_, err = svc.CreateReview(ctx, buyer.ID, kettle.ID, &CreateReviewRequest{Rating: 5, Comment: "again"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	list, err := svc.ListProductReviews(ctx, kettle.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, list.Reviews, 1)
	assert.Equal(t, "Meera", list.Reviews[0].User.FirstName)
	assert.Equal(t, int64(1), list.Summary.TotalReviews)
	assert.Equal(t, 4.0, list.Summary.AverageRating)
	assert.Equal(t, 1, list.Summary.RatingBreakdown["4"])
	assert.Equal(t, 0, list.Summary.RatingBreakdown["5"])
}
