// internal/interfaces/http/handlers/review.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/review"
)

// ReviewHandler handles product review endpoints
type ReviewHandler struct {
	reviewService *review.Service
	log           *logrus.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *review.Service, log *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		log:           log,
	}
}

// CreateReview handles POST /products/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	productID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req review.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	created, err := h.reviewService.CreateReview(c.Request.Context(), actor.UserID, productID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Review submitted",
		"data":    created,
	})
}

// GetProductReviews handles GET /products/:id/reviews
func (h *ReviewHandler) GetProductReviews(c *gin.Context) {
	productID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	response, err := h.reviewService.ListProductReviews(c.Request.Context(), productID, queryInt(c, "page", 1), queryInt(c, "limit", 10))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": response,
	})
}
