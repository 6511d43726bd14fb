// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"

	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/pkg/apperr"
)

// CartReader supplies the session cart
type CartReader interface {
	GetCart(ctx context.Context, token string) (*cart.CartResponse, error)
	Lines(ctx context.Context, token string) ([]cart.Line, error)
}

// AddressLister supplies the customer's saved addresses
type AddressLister interface {
	GetUserAddresses(ctx context.Context, userID uint) ([]user.Address, error)
}

// StockValidator checks lines against live stock without reserving it
type StockValidator interface {
	ValidateStock(ctx context.Context, lines []cart.Line) error
}

// Service assembles the pre-placement checkout view
type Service struct {
	carts     CartReader
	addresses AddressLister
	stock     StockValidator
}

// NewService creates a new checkout service
func NewService(carts CartReader, addresses AddressLister, stock StockValidator) *Service {
	return &Service{
		carts:     carts,
		addresses: addresses,
		stock:     stock,
	}
}

// Issue is a problem with one cart line that would block placement
type Issue struct {
	ProductID uint   `json:"product_id"`
	Message   string `json:"message"`
}

// CheckoutSummary represents complete checkout summary
type CheckoutSummary struct {
	Cart             *cart.CartResponse `json:"cart"`
	Addresses        []user.Address     `json:"addresses"`
	DefaultAddressID *uint              `json:"default_address_id,omitempty"`
	Issues           []Issue            `json:"issues"`
	CanPlaceOrder    bool               `json:"can_place_order"`
}

// Summary returns the cart with totals, the customer's addresses and every
// stock problem found in the cart
func (s *Service) Summary(ctx context.Context, userID uint, token string) (*CheckoutSummary, error) {
	cartView, err := s.carts.GetCart(ctx, token)
	if err != nil {
		return nil, err
	}

	addresses, err := s.addresses.GetUserAddresses(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines, err := s.carts.Lines(ctx, token)
	if err != nil {
		return nil, err
	}

	issues := make([]Issue, 0)
	for _, line := range lines {
		err := s.stock.ValidateStock(ctx, []cart.Line{line})
		if err == nil {
			continue
		}
		var appErr *apperr.Error
		if !errors.As(err, &appErr) {
			return nil, err
		}
		issues = append(issues, Issue{ProductID: line.ProductID, Message: appErr.Error()})
	}

	summary := &CheckoutSummary{
		Cart:      cartView,
		Addresses: addresses,
		Issues:    issues,
	}
	for i := range addresses {
		if addresses[i].IsDefault {
			id := addresses[i].ID
			summary.DefaultAddressID = &id
			break
		}
	}
	summary.CanPlaceOrder = len(lines) > 0 && len(issues) == 0 && len(addresses) > 0

	return summary, nil
}
