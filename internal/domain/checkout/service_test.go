package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/pkg/apperr"
)

type stubCart []cart.Line

func (c stubCart) GetCart(ctx context.Context, token string) (*cart.CartResponse, error) {
	return &cart.CartResponse{Token: token}, nil
}

func (c stubCart) Lines(ctx context.Context, token string) ([]cart.Line, error) {
	return c, nil
}

type stubAddresses []user.Address

func (a stubAddresses) GetUserAddresses(ctx context.Context, userID uint) ([]user.Address, error) {
	return a, nil
}

type stubStock map[uint]error

func (s stubStock) ValidateStock(ctx context.Context, lines []cart.Line) error {
	return s[lines[0].ProductID]
}

func TestSummaryCollectsEveryIssue(t *testing.T) {
	svc := NewService(
		stubCart{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 4}, {ProductID: 3, Quantity: 1}},
		stubAddresses{{ID: 10}, {ID: 11, IsDefault: true}},
		stubStock{
			2: apperr.New(apperr.ErrInsufficientStock, "Only 1 item(s) left for Lamp"),
			3: apperr.New(apperr.ErrOutOfStock, "Mug is out of stock"),
		},
	)

	summary, err := svc.Summary(context.Background(), 5, "tok")
	require.NoError(t, err)
	assert.False(t, summary.CanPlaceOrder)
	require.NotNil(t, summary.DefaultAddressID)
	assert.Equal(t, uint(11), *summary.DefaultAddressID)
	assert.Equal(t, []Issue{
		{ProductID: 2, Message: "Only 1 item(s) left for Lamp"},
		{ProductID: 3, Message: "Mug is out of stock"},
	}, summary.Issues)
}

func TestSummaryReadyToPlace(t *testing.T) {
	svc := NewService(stubCart{{ProductID: 1, Quantity: 1}}, stubAddresses{{ID: 10}}, stubStock{})

	summary, err := svc.Summary(context.Background(), 5, "tok")
	require.NoError(t, err)
	assert.True(t, summary.CanPlaceOrder)
	assert.Nil(t, summary.DefaultAddressID)

	empty := NewService(stubCart{}, stubAddresses{{ID: 10}}, stubStock{})
	summary, err = empty.Summary(context.Background(), 5, "tok")
	require.NoError(t, err)
	assert.False(t, summary.CanPlaceOrder)
}
