// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/inventory"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/pkg/apperr"
	"github.com/your-org/storefront/internal/pkg/email"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Catalog is the product accessor the order engine reserves stock through
type Catalog interface {
	GetProducts(ctx context.Context, ids []uint) (map[uint]*product.Product, error)
	LockProducts(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]*product.Product, error)
	AdjustStock(ctx context.Context, tx *gorm.DB, id uint, delta int) error
}

// CartStore supplies and clears the session cart
type CartStore interface {
	Lines(ctx context.Context, token string) ([]cart.Line, error)
	Clear(ctx context.Context, token string) error
}

// AddressResolver loads shipping addresses
type AddressResolver interface {
	GetAddressByID(ctx context.Context, addressID uint) (*user.Address, error)
}

// UserDirectory resolves the customer behind an order
type UserDirectory interface {
	GetUser(ctx context.Context, userID uint) (*user.User, error)
}

// Service handles order business logic
type Service struct {
	db        *gorm.DB
	catalog   Catalog
	carts     CartStore
	addresses AddressResolver
	users     UserDirectory
	mailer    email.Gateway
	pricing   config.CartConfig
	log       *logrus.Logger
}

// NewService creates a new order service
func NewService(
	db *gorm.DB,
	catalog Catalog,
	carts CartStore,
	addresses AddressResolver,
	users UserDirectory,
	mailer email.Gateway,
	pricing config.CartConfig,
	log *logrus.Logger,
) *Service {
	return &Service{
		db:        db,
		catalog:   catalog,
		carts:     carts,
		addresses: addresses,
		users:     users,
		mailer:    mailer,
		pricing:   pricing,
		log:       log,
	}
}

// PlaceOrderRequest carries everything needed to turn lines into an order
type PlaceOrderRequest struct {
	UserID    uint
	AddressID uint
	Lines     []cart.Line
}

// CheckoutRequest represents the checkout request body
type CheckoutRequest struct {
	AddressID uint `json:"address_id" binding:"required"`
}

// CancelOrderRequest represents the cancel request body
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// UpdateStatusRequest represents an admin status change
type UpdateStatusRequest struct {
	Status         string `json:"status" binding:"required"`
	Remark         string `json:"remark"`
	CourierName    string `json:"courier_name"`
	TrackingNumber string `json:"tracking_number"`
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Status    string `form:"status"`
	UserID    uint   `form:"user_id"`
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
}

// OrderResponse represents order response with pagination
type OrderResponse struct {
	Orders     []Order            `json:"orders"`
	Pagination product.Pagination `json:"pagination"`
}

// Checkout places an order from the session cart, clears the cart once the
// order is committed and sends the confirmation email
func (s *Service) Checkout(ctx context.Context, userID, addressID uint, token string) (*Order, error) {
	lines, err := s.carts.Lines(ctx, token)
	if err != nil {
		return nil, err
	}

	order, err := s.PlaceOrder(ctx, PlaceOrderRequest{
		UserID:    userID,
		AddressID: addressID,
		Lines:     lines,
	})
	if err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, token); err != nil {
		s.log.WithError(err).WithField("order_id", order.ID).Warn("Failed to clear cart after checkout")
	}

	s.sendConfirmation(ctx, order)

	return order, nil
}

// PlaceOrder validates the lines, then in one transaction locks every
// product row, re-checks stock, creates the order with its items and
// history, and decrements stock. Nothing is written when any step fails.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	lines, err := normalizeLines(req.Lines)
	if err != nil {
		return nil, err
	}

	address, err := s.addresses.GetAddressByID(ctx, req.AddressID)
	if err != nil {
		return nil, err
	}
	if address.UserID != req.UserID {
		return nil, apperr.New(apperr.ErrUnauthorized, "address does not belong to you")
	}

	if err := s.ValidateStock(ctx, lines); err != nil {
		return nil, err
	}

	addressID := address.ID
	order := &Order{
		UserID:    req.UserID,
		AddressID: &addressID,
		Status:    StatusPlaced,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, len(lines))
		for i, line := range lines {
			ids[i] = line.ProductID
		}

		locked, err := s.catalog.LockProducts(ctx, tx, ids)
		if err != nil {
			return err
		}

		total := decimal.Zero
		items := make([]OrderItem, 0, len(lines))
		for _, line := range lines {
			p, ok := locked[line.ProductID]
			if !ok || !p.IsActive {
				return apperr.New(apperr.ErrStockConflict, "Product %d is no longer available", line.ProductID)
			}
			if p.StockQuantity < line.Quantity {
				return apperr.New(apperr.ErrStockConflict,
					"Not enough stock for %s: only %d left", p.Name, p.StockQuantity)
			}

			price := p.FinalPrice()
			subtotal := price.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
			total = total.Add(subtotal)
			items = append(items, OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    line.Quantity,
				Price:       price,
				Subtotal:    subtotal,
			})
		}

		order.TotalAmount = total.Round(2)
		order.DeliveryFee = s.deliveryFee(order.TotalAmount)
		order.Items = items

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, item := range items {
			p := locked[item.ProductID]
			if err := s.catalog.AdjustStock(ctx, tx, p.ID, -item.Quantity); err != nil {
				return err
			}
			if err := inventory.Record(tx, &inventory.InventoryMovement{
				ProductID:        p.ID,
				MovementType:     inventory.MovementTypeReservation,
				Reason:           inventory.ReasonReservation,
				Delta:            -item.Quantity,
				PreviousQuantity: p.StockQuantity,
				NewQuantity:      p.StockQuantity - item.Quantity,
				ReferenceType:    inventory.ReferenceOrder,
				ReferenceID:      order.ID,
				CreatedBy:        req.UserID,
			}); err != nil {
				return err
			}
		}

		return addHistory(tx, order.ID, nil, StatusPlaced, req.UserID, "Order placed")
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"total":    order.TotalAmount.StringFixed(2),
		"items":    len(order.Items),
	}).Info("Order placed")

	return s.loadOrder(ctx, s.db, order.ID)
}

// ValidateStock checks lines against the current catalog without locking
func (s *Service) ValidateStock(ctx context.Context, lines []cart.Line) error {
	ids := make([]uint, len(lines))
	for i, line := range lines {
		ids[i] = line.ProductID
	}

	products, err := s.catalog.GetProducts(ctx, ids)
	if err != nil {
		return err
	}

	for _, line := range lines {
		p, ok := products[line.ProductID]
		if !ok {
			return apperr.New(apperr.ErrNotFound, "Product %d is no longer available", line.ProductID)
		}
		if !p.IsActive {
			return apperr.New(apperr.ErrOutOfStock, "%s is no longer available", p.Name)
		}
		if p.StockQuantity <= 0 {
			return apperr.New(apperr.ErrOutOfStock, "%s is out of stock", p.Name)
		}
		if p.StockQuantity < line.Quantity {
			return apperr.New(apperr.ErrInsufficientStock, "Only %d item(s) left for %s", p.StockQuantity, p.Name)
		}
	}
	return nil
}

// CancelOrder cancels an order on behalf of its owner or an admin and puts
// the reserved stock back
func (s *Service) CancelOrder(ctx context.Context, orderID uint, actor user.Actor, reason string) (*Order, error) {
	existing, err := s.loadOrder(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && existing.UserID != actor.UserID {
		return nil, apperr.New(apperr.ErrUnauthorized, "you cannot cancel this order")
	}
	if !existing.CanBeCancelled() {
		return nil, apperr.New(apperr.ErrCannotCancel, "Order #%d cannot be cancelled once it is %s", orderID, existing.Status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.New(apperr.ErrReasonRequired, "Please provide a reason for cancellation")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !locked.CanBeCancelled() {
			return apperr.New(apperr.ErrCannotCancel, "Order #%d cannot be cancelled once it is %s", orderID, locked.Status)
		}

		if err := s.restoreStock(ctx, tx, locked, actor.UserID); err != nil {
			return err
		}

		return transition(tx, locked, StatusCancelled, actor.UserID, reason, nil)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"actor_id": actor.UserID,
		"admin":    actor.IsAdmin(),
	}).Info("Order cancelled")

	order, err := s.loadOrder(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}

	if actor.IsAdmin() {
		s.sendCancellation(ctx, order, reason, actor)
	}

	return order, nil
}

// UpdateStatus moves an order along the lifecycle. Only admins may do this.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, req UpdateStatusRequest, actor user.Actor) (*Order, error) {
	if !actor.IsAdmin() {
		return nil, apperr.New(apperr.ErrUnauthorized, "admin access required")
	}

	target, err := ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	remark := strings.TrimSpace(req.Remark)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !locked.Status.CanTransition(target) {
			return apperr.New(apperr.ErrInvalidTransition,
				"Cannot change order #%d from %s to %s", orderID, locked.Status, target)
		}

		extra := map[string]interface{}{}
		now := time.Now().UTC()
		switch target {
		case StatusCancelled:
			if err := s.restoreStock(ctx, tx, locked, actor.UserID); err != nil {
				return err
			}
		case StatusShipped:
			extra["dispatched_at"] = now
			if courier := strings.TrimSpace(req.CourierName); courier != "" {
				extra["courier_name"] = courier
			}
			if tracking := strings.TrimSpace(req.TrackingNumber); tracking != "" {
				extra["tracking_number"] = tracking
			}
		case StatusDelivered:
			extra["delivered_at"] = now
		}

		return transition(tx, locked, target, actor.UserID, remark, extra)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"status":   target,
		"actor_id": actor.UserID,
	}).Info("Order status updated")

	order, err := s.loadOrder(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}

	if target == StatusCancelled {
		s.sendCancellation(ctx, order, remark, actor)
	}

	return order, nil
}

// GetOrder returns an order visible to the actor
func (s *Service) GetOrder(ctx context.Context, orderID uint, actor user.Actor) (*Order, error) {
	order, err := s.loadOrder(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && order.UserID != actor.UserID {
		return nil, apperr.New(apperr.ErrUnauthorized, "you cannot view this order")
	}
	return order, nil
}

// History returns the status trail of an order, oldest first
func (s *Service) History(ctx context.Context, orderID uint, actor user.Actor) ([]OrderStatusHistory, error) {
	order, err := s.GetOrder(ctx, orderID, actor)
	if err != nil {
		return nil, err
	}
	return order.StatusHistory, nil
}

// ListUserOrders returns the orders of one customer, newest first
func (s *Service) ListUserOrders(ctx context.Context, userID uint, page, limit int) (*OrderResponse, error) {
	return s.ListOrders(ctx, &OrderListRequest{
		Page:   page,
		Limit:  limit,
		UserID: userID,
	})
}

// ListOrders retrieves orders with filtering and pagination
func (s *Service) ListOrders(ctx context.Context, req *OrderListRequest) (*OrderResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.WithContext(ctx).Model(&Order{})

	if req.Status != "" {
		status, err := ParseStatus(req.Status)
		if err != nil {
			return nil, apperr.New(apperr.ErrInvalidInput, "unknown order status %q", req.Status)
		}
		query = query.Where("status = ?", status)
	}

	if req.UserID > 0 {
		query = query.Where("user_id = ?", req.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	err := query.
		Preload("Items").
		Order(s.buildOrderClause(req.SortBy, req.SortOrder)).
		Offset((req.Page - 1) * req.Limit).
		Limit(req.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	return &OrderResponse{
		Orders:     orders,
		Pagination: product.NewPagination(req.Page, req.Limit, total),
	}, nil
}

// HasDeliveredProduct reports whether the user received the product in any
// delivered order
func (s *Service) HasDeliveredProduct(ctx context.Context, userID, productID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?", userID, StatusDelivered, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check delivered orders: %w", err)
	}
	return count > 0, nil
}

// restoreStock returns every item's quantity to its product. Products that
// no longer exist are skipped.
func (s *Service) restoreStock(ctx context.Context, tx *gorm.DB, order *Order, actorID uint) error {
	ids := make([]uint, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	if len(ids) == 0 {
		return nil
	}

	locked, err := s.catalog.LockProducts(ctx, tx, ids)
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		p, ok := locked[item.ProductID]
		if !ok {
			s.log.WithFields(logrus.Fields{
				"order_id":   order.ID,
				"product_id": item.ProductID,
			}).Warn("Product gone, stock not restored")
			continue
		}

		if err := s.catalog.AdjustStock(ctx, tx, p.ID, item.Quantity); err != nil {
			return err
		}
		if err := inventory.Record(tx, &inventory.InventoryMovement{
			ProductID:        p.ID,
			MovementType:     inventory.MovementTypeRelease,
			Reason:           inventory.ReasonRelease,
			Delta:            item.Quantity,
			PreviousQuantity: p.StockQuantity,
			NewQuantity:      p.StockQuantity + item.Quantity,
			ReferenceType:    inventory.ReferenceOrder,
			ReferenceID:      order.ID,
			CreatedBy:        actorID,
		}); err != nil {
			return err
		}
		p.StockQuantity += item.Quantity
	}
	return nil
}

func (s *Service) deliveryFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.LessThan(s.pricing.FreeDeliveryThreshold) {
		return s.pricing.DeliveryFee
	}
	return decimal.Zero
}

func (s *Service) loadOrder(ctx context.Context, db *gorm.DB, orderID uint) (*Order, error) {
	var order Order
	result := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("changed_at ASC, id ASC")
		}).
		Preload("Address").
		Where("id = ?", orderID).
		First(&order)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "order %d not found", orderID)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}
	return &order, nil
}

func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"total_amount": true,
		"status":       true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s, id %s", sortBy, sortOrder, sortOrder)
}

// lockOrder loads the order row with a row lock, plus its items
func lockOrder(ctx context.Context, tx *gorm.DB, orderID uint) (*Order, error) {
	var order Order
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "order %d not found", orderID)
		}
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	if err := tx.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&order.Items).Error; err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	return &order, nil
}

// transition writes the history row and the new status in the caller's tx
func transition(tx *gorm.DB, order *Order, next Status, actorID uint, remark string, extra map[string]interface{}) error {
	previous := order.Status
	if err := addHistory(tx, order.ID, &previous, next, actorID, remark); err != nil {
		return err
	}

	updates := map[string]interface{}{"status": next}
	for k, v := range extra {
		updates[k] = v
	}
	result := tx.Model(&Order{}).
		Where("id = ? AND status = ?", order.ID, previous).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.ErrInvalidTransition, "Order #%d changed concurrently", order.ID)
	}
	order.Status = next
	return nil
}

func addHistory(tx *gorm.DB, orderID uint, oldStatus *Status, newStatus Status, actorID uint, remark string) error {
	entry := OrderStatusHistory{
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		ChangedBy: actorID,
		Remark:    remark,
		ChangedAt: time.Now().UTC(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record status history: %w", err)
	}
	return nil
}

// normalizeLines merges duplicate products and orders lines by product id
func normalizeLines(lines []cart.Line) ([]cart.Line, error) {
	if len(lines) == 0 {
		return nil, apperr.New(apperr.ErrEmptyCart, "Your cart is empty")
	}

	merged := make(map[uint]int, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, apperr.New(apperr.ErrInvalidInput, "quantity for product %d must be at least 1", line.ProductID)
		}
		merged[line.ProductID] += line.Quantity
	}

	out := make([]cart.Line, 0, len(merged))
	for id, qty := range merged {
		out = append(out, cart.Line{ProductID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}
