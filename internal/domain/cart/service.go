// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/pkg/apperr"
)

const maxWatchRetries = 5

// Catalog is the product lookup the cart validates against
type Catalog interface {
	GetProduct(ctx context.Context, id uint) (*product.Product, error)
	GetProducts(ctx context.Context, ids []uint) (map[uint]*product.Product, error)
}

// Service handles cart business logic. All state lives in Redis under the
// session token; the service itself is stateless.
type Service struct {
	redisClient *redis.Client
	catalog     Catalog
	config      config.CartConfig
	log         *logrus.Logger
}

// NewService creates a new cart service
func NewService(redisClient *redis.Client, catalog Catalog, cfg config.CartConfig, log *logrus.Logger) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &Service{
		redisClient: redisClient,
		catalog:     catalog,
		config:      cfg,
		log:         log,
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// Add puts qty units of a product in the cart, merging with an existing line
func (s *Service) Add(ctx context.Context, token string, productID uint, qty int) error {
	if qty < 1 {
		return apperr.New(apperr.ErrInvalidInput, "quantity must be at least 1")
	}

	prod, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if !prod.IsInStock() {
		return apperr.New(apperr.ErrOutOfStock, "Product is out of stock")
	}

	return s.mutate(ctx, token, func(c *SessionCart) error {
		idx := c.find(productID)
		inCart := 0
		if idx >= 0 {
			inCart = c.Items[idx].Quantity
		}

		if inCart+qty > prod.StockQuantity {
			if inCart >= prod.StockQuantity {
				return apperr.New(apperr.ErrInsufficientStock, "Only %d item(s) available", prod.StockQuantity)
			}
			return apperr.New(apperr.ErrInsufficientStock,
				"You already have %d in cart. Only %d available.", inCart, prod.StockQuantity)
		}

		if idx >= 0 {
			c.Items[idx].Quantity += qty
			return nil
		}

		c.Items = append(c.Items, SessionCartItem{
			ProductID:  prod.ID,
			Quantity:   qty,
			Name:       prod.Name,
			Price:      prod.Price,
			FinalPrice: prod.FinalPrice(),
			Image:      prod.PrimaryImage(),
			AddedAt:    time.Now().UTC(),
		})
		return nil
	})
}

// Update sets a line's quantity, clamped into [1, stock]. A line whose
// product is gone, inactive or at zero stock is dropped. Missing lines are
// left alone.
func (s *Service) Update(ctx context.Context, token string, productID uint, qty int) error {
	cart, err := s.getCart(ctx, token)
	if err != nil {
		return err
	}
	if cart.find(productID) < 0 {
		return nil
	}

	prod, lookupErr := s.catalog.GetProduct(ctx, productID)
	if lookupErr != nil && !errors.Is(lookupErr, apperr.ErrNotFound) {
		return lookupErr
	}

	err = s.mutate(ctx, token, func(c *SessionCart) error {
		idx := c.find(productID)
		if idx < 0 {
			return nil
		}
		if prod == nil || !prod.IsInStock() {
			c.remove(productID)
			return nil
		}

		if qty < 1 {
			qty = 1
		}
		if qty > prod.StockQuantity {
			qty = prod.StockQuantity
		}
		c.Items[idx].Quantity = qty
		return nil
	})
	if err != nil {
		return err
	}

	return lookupErr
}

// Remove deletes a line. Removing a missing line is not an error.
func (s *Service) Remove(ctx context.Context, token string, productID uint) error {
	return s.mutate(ctx, token, func(c *SessionCart) error {
		c.remove(productID)
		return nil
	})
}

// Clear empties the cart
func (s *Service) Clear(ctx context.Context, token string) error {
	if token == "" {
		return apperr.New(apperr.ErrInvalidInput, "cart session is required")
	}
	if err := s.redisClient.Del(ctx, cartKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Lines returns the raw (product, quantity) pairs of the cart
func (s *Service) Lines(ctx context.Context, token string) ([]Line, error) {
	cart, err := s.getCart(ctx, token)
	if err != nil {
		return nil, err
	}
	lines := make([]Line, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines, nil
}

// Items returns the cart lines joined against live products, skipping
// products that vanished or were deactivated
func (s *Service) Items(ctx context.Context, token string) ([]CartItem, error) {
	cart, err := s.getCart(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return []CartItem{}, nil
	}

	ids := make([]uint, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.GetProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]CartItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		prod, ok := products[line.ProductID]
		if !ok || !prod.IsActive {
			continue
		}
		final := prod.FinalPrice()
		items = append(items, CartItem{
			ProductID:  prod.ID,
			Name:       prod.Name,
			Slug:       prod.Slug,
			Image:      prod.PrimaryImage(),
			Quantity:   line.Quantity,
			Stock:      prod.StockQuantity,
			Price:      prod.Price,
			FinalPrice: final,
			LineTotal:  final.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2),
		})
	}

	if err := s.redisClient.Expire(ctx, cartKey(token), s.config.SessionTTL).Err(); err != nil {
		s.log.WithError(err).Debug("Failed to refresh cart TTL")
	}

	return items, nil
}

// Totals computes the cart totals from live prices
func (s *Service) Totals(ctx context.Context, token string) (CartTotals, error) {
	items, err := s.Items(ctx, token)
	if err != nil {
		return CartTotals{}, err
	}
	return s.CalculateTotals(items), nil
}

// GetCart returns items and totals in one call
func (s *Service) GetCart(ctx context.Context, token string) (*CartResponse, error) {
	items, err := s.Items(ctx, token)
	if err != nil {
		return nil, err
	}
	return &CartResponse{
		Token:  token,
		Items:  items,
		Totals: s.CalculateTotals(items),
	}, nil
}

// CalculateTotals applies the delivery fee rule to a set of lines
func (s *Service) CalculateTotals(items []CartItem) CartTotals {
	totals := CartTotals{
		ItemCount:   len(items),
		SubTotal:    decimal.Zero,
		DeliveryFee: decimal.Zero,
	}

	for _, item := range items {
		totals.TotalQuantity += item.Quantity
		totals.SubTotal = totals.SubTotal.Add(item.FinalPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	totals.SubTotal = totals.SubTotal.Round(2)

	if totals.SubTotal.LessThan(s.config.FreeDeliveryThreshold) {
		totals.DeliveryFee = s.config.DeliveryFee
	}
	totals.GrandTotal = totals.SubTotal.Add(totals.DeliveryFee).Round(2)

	return totals
}

// mutate applies fn to the cart under an optimistic WATCH so concurrent
// requests on the same session do not lose each other's writes
func (s *Service) mutate(ctx context.Context, token string, fn func(*SessionCart) error) error {
	if token == "" {
		return apperr.New(apperr.ErrInvalidInput, "cart session is required")
	}
	key := cartKey(token)

	txf := func(tx *redis.Tx) error {
		cart, err := s.loadCart(ctx, tx, token)
		if err != nil {
			return err
		}
		if err := fn(cart); err != nil {
			return err
		}
		cart.UpdatedAt = time.Now().UTC()

		data, err := json.Marshal(cart)
		if err != nil {
			return fmt.Errorf("failed to encode cart: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(cart.Items) == 0 {
				pipe.Del(ctx, key)
				return nil
			}
			pipe.Set(ctx, key, data, s.config.SessionTTL)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := s.redisClient.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			var appErr *apperr.Error
			if errors.As(err, &appErr) {
				return err
			}
			return fmt.Errorf("failed to save cart: %w", err)
		}
		return nil
	}
	return apperr.New(apperr.ErrConflict, "cart is being modified concurrently, please retry")
}

func (s *Service) getCart(ctx context.Context, token string) (*SessionCart, error) {
	if token == "" {
		return nil, apperr.New(apperr.ErrInvalidInput, "cart session is required")
	}
	return s.loadCart(ctx, s.redisClient, token)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *Service) loadCart(ctx context.Context, r getter, token string) (*SessionCart, error) {
	cartData, err := r.Get(ctx, cartKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		now := time.Now().UTC()
		return &SessionCart{
			Token:     token,
			Items:     []SessionCartItem{},
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var cart SessionCart
	if err := json.Unmarshal([]byte(cartData), &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return &cart, nil
}

func cartKey(token string) string {
	return fmt.Sprintf("cart:session:%s", token)
}
