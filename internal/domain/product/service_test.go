package product

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/domain/inventory"
	"github.com/your-org/storefront/internal/pkg/apperr"
	"github.com/your-org/storefront/internal/pkg/logger"
	"github.com/your-org/storefront/internal/pkg/testutil"
	"gorm.io/gorm"
)

type restockRecorder struct {
	restocked []uint
	err       error
}

func (r *restockRecorder) ProductRestocked(ctx context.Context, p *Product) error {
	r.restocked = append(r.restocked, p.ID)
	return r.err
}

type fixture struct {
	db         *gorm.DB
	products   *Service
	categories *CategoryService
	kitchen    *Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t, &Category{}, &Product{}, &ProductImage{}, &inventory.InventoryMovement{})

	categories := NewCategoryService(db)
	kitchen, err := categories.CreateCategory(context.Background(), &CategoryCreateRequest{Name: "Kitchen"})
	require.NoError(t, err)

	return &fixture{
		db:         db,
		products:   NewService(db, logger.Discard()),
		categories: categories,
		kitchen:    kitchen,
	}
}

func (f *fixture) create(t *testing.T, name string, price int64, stock int) *Product {
	t.Helper()
	p, err := f.products.CreateProduct(context.Background(), &ProductCreateRequest{
		Name:          name,
		Price:         decimal.NewFromInt(price),
		StockQuantity: stock,
		CategoryID:    f.kitchen.ID,
	}, 1)
	require.NoError(t, err)
	return p
}

func TestFinalPrice(t *testing.T) {
	cases := []struct {
		name     string
		kind     DiscountType
		value    string
		expected string
	}{
		{"no discount", DiscountNone, "0", "250"},
		{"percent", DiscountPercent, "10", "225"},
		{"percent with fraction", DiscountPercent, "33", "167.5"},
		{"flat", DiscountFlat, "40", "210"},
		{"flat above price", DiscountFlat, "300", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Product{
				Price:         decimal.NewFromInt(250),
				DiscountType:  tc.kind,
				DiscountValue: decimal.RequireFromString(tc.value),
			}
			assert.Equal(t, tc.expected, p.FinalPrice().String())
		})
	}
}

func TestCreateProductSlugsAndOpeningStock(t *testing.T) {
	f := newFixture(t)

	first := f.create(t, "Ceramic Mug", 150, 8)
	second := f.create(t, "Ceramic  Mug!", 150, 0)

	assert.Equal(t, "ceramic-mug", first.Slug)
	assert.Equal(t, "ceramic-mug-2", second.Slug)
	assert.NotNil(t, first.Category)

	var movements []inventory.InventoryMovement
	require.NoError(t, f.db.Order("id").Find(&movements).Error)
	require.Len(t, movements, 1, "zero opening stock writes no movement")
	assert.Equal(t, first.ID, movements[0].ProductID)
	assert.Equal(t, 8, movements[0].Delta)
	assert.Equal(t, inventory.MovementTypeInbound, movements[0].MovementType)

	_, err := f.products.CreateProduct(context.Background(), &ProductCreateRequest{
		Name:         "Broken",
		Price:        decimal.NewFromInt(10),
		DiscountType: DiscountPercent, DiscountValue: decimal.NewFromInt(120),
		CategoryID:   f.kitchen.ID,
	}, 1)
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))

	_, err = f.products.CreateProduct(context.Background(), &ProductCreateRequest{
		Name: "Orphan", Price: decimal.NewFromInt(10), CategoryID: 999,
	}, 1)
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
}

func TestListingHidesInactiveProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.create(t, "Ceramic Mug", 150, 8)
	inactive := false
	_, err := f.products.CreateProduct(ctx, &ProductCreateRequest{
		Name: "Retired Teapot", Price: decimal.NewFromInt(900), CategoryID: f.kitchen.ID, IsActive: &inactive,
	}, 1)
	require.NoError(t, err)

	storefront, err := f.products.GetProducts(ctx, &ProductListRequest{CategorySlug: "kitchen"})
	require.NoError(t, err)
	require.Len(t, storefront.Products, 1)
	assert.Equal(t, "Ceramic Mug", storefront.Products[0].Name)
	assert.True(t, storefront.Products[0].CurrentPrice.Equal(decimal.NewFromInt(150)))

	admin, err := f.products.GetProducts(ctx, &ProductListRequest{IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), admin.Pagination.Total)

	found, err := f.products.GetProducts(ctx, &ProductListRequest{Search: "TEAPOT", IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, found.Products, 1)

	_, err = f.products.GetProductBySlug(ctx, "retired-teapot")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestImagesKeepOnePrimary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, "Linen Throw", 800, 2)

	first, err := f.products.AddImage(ctx, p.ID, &ImageCreateRequest{Path: "/img/throw-1.jpg"})
	require.NoError(t, err)
	assert.True(t, first.IsPrimary, "first image becomes primary")

	second, err := f.products.AddImage(ctx, p.ID, &ImageCreateRequest{Path: "/img/throw-2.jpg"})
	require.NoError(t, err)
	assert.False(t, second.IsPrimary)

	_, err = f.products.SetPrimaryImage(ctx, second.ID)
	require.NoError(t, err)

	loaded, err := f.products.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "/img/throw-2.jpg", loaded.PrimaryImage())

	var primaries int64
	require.NoError(t, f.db.Model(&ProductImage{}).Where("product_id = ? AND is_primary = ?", p.ID, true).Count(&primaries).Error)
	assert.Equal(t, int64(1), primaries)

	_, err = f.products.AddImage(ctx, 999, &ImageCreateRequest{Path: "/img/none.jpg"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestUpdateProductRestockHook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listener := &restockRecorder{err: errors.New("mail queue full")}
	f.products.SetRestockListener(listener)

	p := f.create(t, "Copper Kettle", 1500, 0)

	name := "Copper Kettle XL"
	updated, err := f.products.UpdateProduct(ctx, p.ID, &ProductUpdateRequest{Name: &name}, 1)
	require.NoError(t, err)
	assert.Equal(t, "copper-kettle-xl", updated.Slug)
	assert.Empty(t, listener.restocked, "no stock change, no restock")

	stock := 4
	_, err = f.products.UpdateProduct(ctx, p.ID, &ProductUpdateRequest{StockQuantity: &stock}, 1)
	require.NoError(t, err, "listener failures do not fail the edit")
	assert.Equal(t, []uint{p.ID}, listener.restocked)

	stock = 9
	_, err = f.products.UpdateProduct(ctx, p.ID, &ProductUpdateRequest{StockQuantity: &stock}, 1)
	require.NoError(t, err)
	assert.Len(t, listener.restocked, 1, "positive to positive is not a restock")

	var deltas []int
	require.NoError(t, f.db.Model(&inventory.InventoryMovement{}).Where("product_id = ?", p.ID).Order("id").Pluck("delta", &deltas).Error)
	assert.Equal(t, []int{4, 5}, deltas)

	negative := -1
	_, err = f.products.UpdateProduct(ctx, p.ID, &ProductUpdateRequest{StockQuantity: &negative}, 1)
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
}

func TestAdjustStockNeverGoesNegative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := NewStore(f.db)
	p := f.create(t, "Ceramic Mug", 150, 2)

	err := f.db.Transaction(func(tx *gorm.DB) error {
		return store.AdjustStock(ctx, tx, p.ID, -3)
	})
	assert.True(t, errors.Is(err, apperr.ErrStockConflict))

	err = f.db.Transaction(func(tx *gorm.DB) error {
		locked, err := store.LockProducts(ctx, tx, []uint{p.ID, p.ID})
		if err != nil {
			return err
		}
		require.Len(t, locked, 1)
		return store.AdjustStock(ctx, tx, p.ID, -2)
	})
	require.NoError(t, err)

	reloaded, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.StockQuantity)
	assert.False(t, reloaded.IsInStock())
}

func TestCategoryRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.categories.CreateCategory(ctx, &CategoryCreateRequest{Name: "kitchen"})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	hidden := false
	apparel, err := f.categories.CreateCategory(ctx, &CategoryCreateRequest{Name: "Apparel", IsActive: &hidden})
	require.NoError(t, err)
	assert.False(t, apparel.IsActive)

	visible, err := f.categories.GetCategories(ctx, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "kitchen", visible[0].Slug)

	f.create(t, "Ceramic Mug", 150, 2)
	err = f.categories.DeleteCategory(ctx, f.kitchen.ID)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	require.NoError(t, f.categories.DeleteCategory(ctx, apparel.ID))
	assert.True(t, errors.Is(f.categories.DeleteCategory(ctx, apparel.ID), apperr.ErrNotFound))
}
