// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/wishlist"
)

// WishlistHandler handles wishlist endpoints
type WishlistHandler struct {
	wishlistService *wishlist.Service
	log             *logrus.Logger
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlistService *wishlist.Service, log *logrus.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlistService,
		log:             log,
	}
}

// Toggle handles POST /wishlist/:productID/toggle
func (h *WishlistHandler) Toggle(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	productID, ok := uintParam(c, "productID")
	if !ok {
		return
	}

	result, err := h.wishlistService.Toggle(c.Request.Context(), actor.UserID, productID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": result,
	})
}

// GetWishlist handles GET /wishlist
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	items, err := h.wishlistService.List(c.Request.Context(), actor.UserID, c.Query("search"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": items,
	})
}
