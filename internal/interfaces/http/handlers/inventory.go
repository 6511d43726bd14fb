package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/inventory"
	"github.com/your-org/storefront/internal/domain/product"
)

// InventoryHandler exposes the stock movement ledger
type InventoryHandler struct {
	inventoryService *inventory.Service
	log              *logrus.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *inventory.Service, log *logrus.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		log:              log,
	}
}

// GetMovements handles GET /admin/products/:id/movements
func (h *InventoryHandler) GetMovements(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req inventory.MovementListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	movements, total, err := h.inventoryService.ListByProduct(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       movements,
		"pagination": product.NewPagination(req.Page, req.Limit, total),
	})
}
