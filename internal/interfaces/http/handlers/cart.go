// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints. Carts belong to the session token,
// never to a user account.
type CartHandler struct {
	cartService *cart.Service
	log         *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, log *logrus.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		log:         log,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	h.respondCart(c, http.StatusOK, "")
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	token := middleware.CartTokenFromContext(c)
	if err := h.cartService.Add(c.Request.Context(), token, req.ProductID, req.Quantity); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.respondCart(c, http.StatusOK, "Item added to cart")
}

// UpdateCartItem handles PUT /cart/items/:productID
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	productID, ok := uintParam(c, "productID")
	if !ok {
		return
	}

	var req cart.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	token := middleware.CartTokenFromContext(c)
	if err := h.cartService.Update(c.Request.Context(), token, productID, req.Quantity); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.respondCart(c, http.StatusOK, "Cart updated")
}

// RemoveFromCart handles DELETE /cart/items/:productID
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	productID, ok := uintParam(c, "productID")
	if !ok {
		return
	}

	token := middleware.CartTokenFromContext(c)
	if err := h.cartService.Remove(c.Request.Context(), token, productID); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.respondCart(c, http.StatusOK, "Item removed from cart")
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	token := middleware.CartTokenFromContext(c)
	if err := h.cartService.Clear(c.Request.Context(), token); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
	})
}

func (h *CartHandler) respondCart(c *gin.Context, status int, message string) {
	response, err := h.cartService.GetCart(c.Request.Context(), middleware.CartTokenFromContext(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	body := gin.H{"data": response}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}
