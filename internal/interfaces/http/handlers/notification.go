package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/notification"
)

// NotificationHandler handles back-in-stock subscriptions
type NotificationHandler struct {
	notificationService *notification.Service
	log                 *logrus.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *notification.Service, log *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		log:                 log,
	}
}

// NotifyMe handles POST /products/:id/notify-me
func (h *NotificationHandler) NotifyMe(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	productID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	subscription, err := h.notificationService.Subscribe(c.Request.Context(), actor.UserID, productID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "We'll email you when this product is back in stock",
		"data":    subscription,
	})
}

// GetPending handles GET /admin/stock-notifications
func (h *NotificationHandler) GetPending(c *gin.Context) {
	pending, err := h.notificationService.PendingByProduct(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": pending,
	})
}
