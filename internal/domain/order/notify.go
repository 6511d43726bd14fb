package order

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/pkg/email"
)

// sendConfirmation queues the order confirmation. Failures are logged and
// never undo the order.
func (s *Service) sendConfirmation(ctx context.Context, order *Order) {
	if s.mailer == nil {
		return
	}

	customer, err := s.users.GetUser(ctx, order.UserID)
	if err != nil {
		s.log.WithError(err).WithField("order_id", order.ID).Warn("Skipping confirmation email, customer lookup failed")
		return
	}

	data := &email.OrderConfirmationData{
		EmailTemplateData: email.EmailTemplateData{UserName: customer.GetDisplayName()},
		OrderID:           order.ID,
		OrderDate:         order.CreatedAt.Format("02 Jan 2006"),
		OrderTotal:        order.GrandTotal().StringFixed(2),
		DeliveryFee:       order.DeliveryFee.StringFixed(2),
		Items:             emailItems(order),
	}
	if order.Address != nil {
		data.Address = order.Address.Lines()
	}

	if err := s.mailer.Notify(ctx, customer.Email, email.TemplateOrderConfirmation, data); err != nil {
		s.log.WithError(err).WithField("order_id", order.ID).Warn("Failed to queue confirmation email")
	}
}

// sendCancellation tells the customer their order was cancelled by the shop
func (s *Service) sendCancellation(ctx context.Context, order *Order, reason string, actor user.Actor) {
	if s.mailer == nil {
		return
	}

	customer, err := s.users.GetUser(ctx, order.UserID)
	if err != nil {
		s.log.WithError(err).WithField("order_id", order.ID).Warn("Skipping cancellation email, customer lookup failed")
		return
	}

	cancelledBy := "customer"
	if actor.IsAdmin() {
		cancelledBy = "store"
	}

	data := &email.OrderCancelledData{
		EmailTemplateData: email.EmailTemplateData{UserName: customer.GetDisplayName()},
		OrderID:           order.ID,
		OrderTotal:        order.GrandTotal().StringFixed(2),
		Reason:            reason,
		CancelledBy:       cancelledBy,
		Items:             emailItems(order),
	}

	if err := s.mailer.Notify(ctx, customer.Email, email.TemplateOrderCancelled, data); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"order_id": order.ID,
			"actor_id": actor.UserID,
		}).Warn("Failed to queue cancellation email")
	}
}

func emailItems(order *Order) []email.OrderItem {
	items := make([]email.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, email.OrderItem{
			Name:     item.ProductName,
			Quantity: item.Quantity,
			Price:    item.Price.StringFixed(2),
			Total:    item.Subtotal.StringFixed(2),
		})
	}
	return items
}
