// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/checkout"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
)

// CheckoutHandler serves the pre-order review page
type CheckoutHandler struct {
	checkoutService *checkout.Service
	log             *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, log *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		log:             log,
	}
}

// GetSummary handles GET /checkout
func (h *CheckoutHandler) GetSummary(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	summary, err := h.checkoutService.Summary(c.Request.Context(), actor.UserID, middleware.CartTokenFromContext(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": summary,
	})
}
