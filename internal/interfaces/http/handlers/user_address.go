// internal/interfaces/http/handlers/user_address.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/user"
)

// AddressHandler handles the caller's delivery addresses
type AddressHandler struct {
	addressService *user.AddressService
	log            *logrus.Logger
}

// NewAddressHandler creates a new address handler
func NewAddressHandler(addressService *user.AddressService, log *logrus.Logger) *AddressHandler {
	return &AddressHandler{
		addressService: addressService,
		log:            log,
	}
}

// GetAddresses handles GET /addresses
func (h *AddressHandler) GetAddresses(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	addresses, err := h.addressService.GetUserAddresses(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": addresses,
	})
}

// CreateAddress handles POST /addresses
func (h *AddressHandler) CreateAddress(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req user.CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	address, err := h.addressService.CreateAddress(c.Request.Context(), actor.UserID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Address created successfully",
		"data":    address,
	})
}

// DeleteAddress handles DELETE /addresses/:id
func (h *AddressHandler) DeleteAddress(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.addressService.DeleteAddress(c.Request.Context(), actor.UserID, id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Address deleted successfully",
	})
}
