package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/pkg/apperr"
	"github.com/your-org/storefront/internal/pkg/logger"
)

type memCatalog map[uint]*product.Product

func (m memCatalog) GetProduct(ctx context.Context, id uint) (*product.Product, error) {
	p, ok := m[id]
	if !ok {
		return nil, apperr.New(apperr.ErrNotFound, "product %d not found", id)
	}
	cp := *p
	return &cp, nil
}

func (m memCatalog) GetProducts(ctx context.Context, ids []uint) (map[uint]*product.Product, error) {
	out := make(map[uint]*product.Product)
	for _, id := range ids {
		if p, ok := m[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setupCart(t *testing.T) (*Service, memCatalog, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	catalog := memCatalog{
		1: {ID: 1, Name: "Ceramic Mug", Slug: "ceramic-mug", Price: price("150"), DiscountType: product.DiscountNone, StockQuantity: 5, IsActive: true},
		2: {ID: 2, Name: "Desk Lamp", Slug: "desk-lamp", Price: price("400"), DiscountType: product.DiscountPercent, DiscountValue: price("10"), StockQuantity: 2, IsActive: true},
		3: {ID: 3, Name: "Sold Out Tee", Slug: "sold-out-tee", Price: price("300"), DiscountType: product.DiscountNone, StockQuantity: 0, IsActive: true},
		4: {ID: 4, Name: "Hidden Item", Slug: "hidden-item", Price: price("99"), DiscountType: product.DiscountNone, StockQuantity: 9, IsActive: false},
	}

	svc := NewService(rdb, catalog, config.CartConfig{
		SessionTTL:            time.Hour,
		DeliveryFee:           decimal.NewFromInt(49),
		FreeDeliveryThreshold: decimal.NewFromInt(500),
	}, logger.Discard())
	return svc, catalog, mr
}

func TestAddValidatesStock(t *testing.T) {
	svc, _, _ := setupCart(t)
	ctx := context.Background()

	err := svc.Add(ctx, "tok", 3, 1)
	assert.ErrorIs(t, err, apperr.ErrOutOfStock)
	assert.Equal(t, "Product is out of stock", err.Error())

	err = svc.Add(ctx, "tok", 4, 1)
	assert.ErrorIs(t, err, apperr.ErrOutOfStock)

	err = svc.Add(ctx, "tok", 99, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = svc.Add(ctx, "tok", 2, 3)
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Equal(t, "You already have 0 in cart. Only 2 available.", err.Error())

	require.NoError(t, svc.Add(ctx, "tok", 2, 1))
	err = svc.Add(ctx, "tok", 2, 2)
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Equal(t, "You already have 1 in cart. Only 2 available.", err.Error())

	require.NoError(t, svc.Add(ctx, "tok", 2, 1))
	err = svc.Add(ctx, "tok", 2, 1)
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Equal(t, "Only 2 item(s) available", err.Error())

	assert.ErrorIs(t, svc.Add(ctx, "tok", 1, 0), apperr.ErrInvalidInput)
}

func TestAddMergesLines(t *testing.T) {
	svc, _, mr := setupCart(t)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "tok", 1, 2))
	require.NoError(t, svc.Add(ctx, "tok", 1, 3))

	lines, err := svc.Lines(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, []Line{{ProductID: 1, Quantity: 5}}, lines)

	assert.True(t, mr.Exists("cart:session:tok"))
	assert.Equal(t, time.Hour, mr.TTL("cart:session:tok"))
}

func TestUpdateClampsQuantity(t *testing.T) {
	svc, catalog, _ := setupCart(t)
	ctx := context.Background()
	require.NoError(t, svc.Add(ctx, "tok", 1, 2))

	require.NoError(t, svc.Update(ctx, "tok", 1, 50))
	lines, _ := svc.Lines(ctx, "tok")
	assert.Equal(t, 5, lines[0].Quantity)

	require.NoError(t, svc.Update(ctx, "tok", 1, -3))
	lines, _ = svc.Lines(ctx, "tok")
	assert.Equal(t, 1, lines[0].Quantity)

	// absent line is a no-op
	require.NoError(t, svc.Update(ctx, "tok", 2, 1))
	lines, _ = svc.Lines(ctx, "tok")
	assert.Len(t, lines, 1)

	catalog[1].StockQuantity = 0
	require.NoError(t, svc.Update(ctx, "tok", 1, 1))
	lines, _ = svc.Lines(ctx, "tok")
	assert.Empty(t, lines)
}

func TestUpdateDropsVanishedProduct(t *testing.T) {
	svc, catalog, _ := setupCart(t)
	ctx := context.Background()
	require.NoError(t, svc.Add(ctx, "tok", 1, 1))

	delete(catalog, 1)
	err := svc.Update(ctx, "tok", 1, 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	lines, _ := svc.Lines(ctx, "tok")
	assert.Empty(t, lines)
}

func TestRemoveIsIdempotent(t *testing.T) {
	svc, _, _ := setupCart(t)
	ctx := context.Background()
	require.NoError(t, svc.Add(ctx, "tok", 1, 1))

	require.NoError(t, svc.Remove(ctx, "tok", 1))
	require.NoError(t, svc.Remove(ctx, "tok", 1))
	require.NoError(t, svc.Remove(ctx, "other", 7))

	lines, _ := svc.Lines(ctx, "tok")
	assert.Empty(t, lines)
}

func TestItemsAndTotalsUseLivePrices(t *testing.T) {
	svc, catalog, _ := setupCart(t)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "tok", 1, 2)) // 2 x 150
	require.NoError(t, svc.Add(ctx, "tok", 2, 1)) // 1 x 360

	totals, err := svc.Totals(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, 3, totals.TotalQuantity)
	assert.Equal(t, "660", totals.SubTotal.String())
	assert.True(t, totals.DeliveryFee.IsZero())
	assert.Equal(t, "660", totals.GrandTotal.String())

	// price drops under the threshold and a product is hidden
	catalog[1].Price = price("100")
	catalog[2].IsActive = false

	items, err := svc.Items(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint(1), items[0].ProductID)
	assert.Equal(t, 5, items[0].Stock)
	assert.Equal(t, "200", items[0].LineTotal.String())

	totals, err = svc.Totals(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "200", totals.SubTotal.String())
	assert.Equal(t, "49", totals.DeliveryFee.String())
	assert.Equal(t, "249", totals.GrandTotal.String())
}

func TestEmptyCartStillQuotesDeliveryFee(t *testing.T) {
	svc, _, _ := setupCart(t)

	totals, err := svc.Totals(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Equal(t, 0, totals.TotalQuantity)
	assert.True(t, totals.SubTotal.IsZero())
	assert.Equal(t, "49", totals.DeliveryFee.String())
	assert.Equal(t, "49", totals.GrandTotal.String())
}

func TestClearAndSessionIsolation(t *testing.T) {
	svc, _, mr := setupCart(t)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "a", 1, 1))
	require.NoError(t, svc.Add(ctx, "b", 2, 1))

	require.NoError(t, svc.Clear(ctx, "a"))
	assert.False(t, mr.Exists("cart:session:a"))

	lines, err := svc.Lines(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []Line{{ProductID: 2, Quantity: 1}}, lines)

	_, err = svc.Lines(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}
