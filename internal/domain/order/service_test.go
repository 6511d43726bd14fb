package order

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/inventory"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/pkg/apperr"
	"github.com/your-org/storefront/internal/pkg/email"
	"github.com/your-org/storefront/internal/pkg/logger"
	"github.com/your-org/storefront/internal/pkg/testutil"
	"gorm.io/gorm"
)

type sentMail struct {
	to   string
	tpl  email.Template
	data interface{}
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Notify(ctx context.Context, recipient string, tpl email.Template, data interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: recipient, tpl: tpl, data: data})
	return nil
}

func (m *fakeMailer) templates() []email.Template {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]email.Template, 0, len(m.sent))
	for _, s := range m.sent {
		out = append(out, s.tpl)
	}
	return out
}

type fakeCarts struct {
	lines   map[string][]cart.Line
	cleared []string
}

func (c *fakeCarts) Lines(ctx context.Context, token string) ([]cart.Line, error) {
	return c.lines[token], nil
}

func (c *fakeCarts) Clear(ctx context.Context, token string) error {
	c.cleared = append(c.cleared, token)
	delete(c.lines, token)
	return nil
}

// failingCatalog breaks stock adjustment for one product to force a
// rollback half way through an order
type failingCatalog struct {
	*product.Store
	failOn uint
}

func (f failingCatalog) AdjustStock(ctx context.Context, tx *gorm.DB, id uint, delta int) error {
	if id == f.failOn {
		return errors.New("disk on fire")
	}
	return f.Store.AdjustStock(ctx, tx, id, delta)
}

type fixture struct {
	db       *gorm.DB
	svc      *Service
	carts    *fakeCarts
	mailer   *fakeMailer
	customer user.User
	other    user.User
	address  user.Address
	mug      product.Product
	lamp     product.Product
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t,
		&user.User{}, &user.Address{},
		&product.Category{}, &product.Product{}, &product.ProductImage{},
		&inventory.InventoryMovement{},
		&Order{}, &OrderItem{}, &OrderStatusHistory{},
	)

	f := &fixture{
		db:     db,
		carts:  &fakeCarts{lines: map[string][]cart.Line{}},
		mailer: &fakeMailer{},
	}

	f.customer = user.User{Email: "Asha@Example.com", FirstName: "Asha", Role: user.RoleCustomer}
	f.other = user.User{Email: "ravi@example.com", FirstName: "Ravi", Role: user.RoleCustomer}
	require.NoError(t, db.Create(&f.customer).Error)
	require.NoError(t, db.Create(&f.other).Error)

	f.address = user.Address{
		UserID: f.customer.ID, FullName: "Asha K", Phone: "9999999999",
		AddressLine1: "12 MG Road", City: "Bengaluru", State: "KA", PostalCode: "560001", Country: "India",
	}
	require.NoError(t, db.Create(&f.address).Error)

	category := product.Category{Name: "Home", Slug: "home"}
	require.NoError(t, db.Create(&category).Error)

	f.mug = product.Product{
		Name: "Ceramic Mug", Slug: "ceramic-mug", Price: decimal.NewFromInt(150),
		DiscountType: product.DiscountNone, StockQuantity: 5, CategoryID: category.ID,
	}
	f.lamp = product.Product{
		Name: "Desk Lamp", Slug: "desk-lamp", Price: decimal.NewFromInt(400),
		DiscountType: product.DiscountPercent, DiscountValue: decimal.NewFromInt(10),
		StockQuantity: 2, CategoryID: category.ID,
	}
	require.NoError(t, db.Create(&f.mug).Error)
	require.NoError(t, db.Create(&f.lamp).Error)

	f.svc = f.newService(product.NewStore(db))
	return f
}

func (f *fixture) newService(catalog Catalog) *Service {
	return NewService(f.db, catalog, f.carts, user.NewAddressService(f.db), user.NewService(f.db), f.mailer,
		config.CartConfig{DeliveryFee: decimal.NewFromInt(49), FreeDeliveryThreshold: decimal.NewFromInt(500)},
		logger.Discard())
}

func (f *fixture) stock(t *testing.T, id uint) int {
	t.Helper()
	var p product.Product
	require.NoError(t, f.db.First(&p, id).Error)
	return p.StockQuantity
}

func (f *fixture) place(t *testing.T, lines ...cart.Line) *Order {
	t.Helper()
	o, err := f.svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		UserID: f.customer.ID, AddressID: f.address.ID, Lines: lines,
	})
	require.NoError(t, err)
	return o
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestPlaceOrderSnapshotsPricesAndReservesStock(t *testing.T) {
	f := setup(t)

	o := f.place(t, cart.Line{ProductID: f.lamp.ID, Quantity: 1}, cart.Line{ProductID: f.mug.ID, Quantity: 2})

	assert.Equal(t, StatusPlaced, o.Status)
	assert.Equal(t, "660", o.TotalAmount.String())
	assert.True(t, o.DeliveryFee.IsZero())
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Ceramic Mug", o.Items[0].ProductName)
	assert.Equal(t, "300", o.Items[0].Subtotal.String())
	assert.Equal(t, "360", o.Items[1].Price.String())

	assert.Equal(t, 3, f.stock(t, f.mug.ID))
	assert.Equal(t, 1, f.stock(t, f.lamp.ID))

	require.Len(t, o.StatusHistory, 1)
	assert.Nil(t, o.StatusHistory[0].OldStatus)
	assert.Equal(t, StatusPlaced, o.StatusHistory[0].NewStatus)

	var movements []inventory.InventoryMovement
	require.NoError(t, f.db.Order("id").Find(&movements).Error)
	require.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, inventory.MovementTypeReservation, m.MovementType)
		assert.Equal(t, inventory.ReferenceOrder, m.ReferenceType)
		assert.Equal(t, o.ID, m.ReferenceID)
	}

	// the snapshot survives later price edits
	require.NoError(t, f.db.Model(&product.Product{}).Where("id = ?", f.mug.ID).Update("price", decimal.NewFromInt(999)).Error)
	reloaded, err := f.svc.GetOrder(context.Background(), o.ID, user.Customer(f.customer.ID))
	require.NoError(t, err)
	assert.Equal(t, "150", reloaded.Items[0].Price.String())
}

func TestPlaceOrderChargesDeliveryBelowThreshold(t *testing.T) {
	f := setup(t)

	o := f.place(t, cart.Line{ProductID: f.mug.ID, Quantity: 1}, cart.Line{ProductID: f.mug.ID, Quantity: 1})

	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, "300", o.TotalAmount.String())
	assert.Equal(t, "49", o.DeliveryFee.String())
	assert.Equal(t, "349", o.GrandTotal().String())
}

func TestPlaceOrderRejectsBadInput(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.PlaceOrder(ctx, PlaceOrderRequest{UserID: f.customer.ID, AddressID: f.address.ID})
	assert.ErrorIs(t, err, apperr.ErrEmptyCart)

	_, err = f.svc.PlaceOrder(ctx, PlaceOrderRequest{
		UserID: f.customer.ID, AddressID: f.address.ID,
		Lines: []cart.Line{{ProductID: f.mug.ID, Quantity: 0}},
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = f.svc.PlaceOrder(ctx, PlaceOrderRequest{
		UserID: f.other.ID, AddressID: f.address.ID,
		Lines: []cart.Line{{ProductID: f.mug.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = f.svc.PlaceOrder(ctx, PlaceOrderRequest{
		UserID: f.customer.ID, AddressID: 9999,
		Lines: []cart.Line{{ProductID: f.mug.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Zero(t, count(t, f.db, &Order{}))
}

func TestPlaceOrderStockValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	req := func(lines ...cart.Line) PlaceOrderRequest {
		return PlaceOrderRequest{UserID: f.customer.ID, AddressID: f.address.ID, Lines: lines}
	}

	_, err := f.svc.PlaceOrder(ctx, req(cart.Line{ProductID: f.lamp.ID, Quantity: 3}))
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Equal(t, "Only 2 item(s) left for Desk Lamp", err.Error())

	require.NoError(t, f.db.Model(&product.Product{}).Where("id = ?", f.lamp.ID).Update("stock_quantity", 0).Error)
	_, err = f.svc.PlaceOrder(ctx, req(cart.Line{ProductID: f.lamp.ID, Quantity: 1}))
	assert.ErrorIs(t, err, apperr.ErrOutOfStock)
	assert.Equal(t, "Desk Lamp is out of stock", err.Error())

	require.NoError(t, f.db.Model(&product.Product{}).Where("id = ?", f.mug.ID).Update("is_active", false).Error)
	_, err = f.svc.PlaceOrder(ctx, req(cart.Line{ProductID: f.mug.ID, Quantity: 1}))
	assert.ErrorIs(t, err, apperr.ErrOutOfStock)
	assert.Equal(t, "Ceramic Mug is no longer available", err.Error())

	_, err = f.svc.PlaceOrder(ctx, req(cart.Line{ProductID: 4242, Quantity: 1}))
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Zero(t, count(t, f.db, &Order{}))
}

func TestPlaceOrderIsAtomic(t *testing.T) {
	f := setup(t)
	svc := f.newService(failingCatalog{Store: product.NewStore(f.db), failOn: f.lamp.ID})

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		UserID: f.customer.ID, AddressID: f.address.ID,
		Lines: []cart.Line{{ProductID: f.mug.ID, Quantity: 2}, {ProductID: f.lamp.ID, Quantity: 1}},
	})
	require.Error(t, err)

	assert.Equal(t, 5, f.stock(t, f.mug.ID))
	assert.Equal(t, 2, f.stock(t, f.lamp.ID))
	assert.Zero(t, count(t, f.db, &Order{}))
	assert.Zero(t, count(t, f.db, &OrderItem{}))
	assert.Zero(t, count(t, f.db, &OrderStatusHistory{}))
	assert.Zero(t, count(t, f.db, &inventory.InventoryMovement{}))
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	const buyers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failures  []error
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.PlaceOrder(ctx, PlaceOrderRequest{
				UserID: f.customer.ID, AddressID: f.address.ID,
				Lines: []cart.Line{{ProductID: f.lamp.ID, Quantity: 1}},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			failures = append(failures, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 0, f.stock(t, f.lamp.ID))
	for _, err := range failures {
		assert.True(t,
			errors.Is(err, apperr.ErrOutOfStock) ||
				errors.Is(err, apperr.ErrInsufficientStock) ||
				errors.Is(err, apperr.ErrStockConflict),
			"unexpected error: %v", err)
	}
}

// gatedCatalog holds every stock pre-check until all buyers have made it,
// so each of them reaches the locked re-check with stale numbers
type gatedCatalog struct {
	*product.Store
	gate *sync.WaitGroup
}

func (g gatedCatalog) GetProducts(ctx context.Context, ids []uint) (map[uint]*product.Product, error) {
	products, err := g.Store.GetProducts(ctx, ids)
	g.gate.Done()
	g.gate.Wait()
	return products, err
}

func TestSimultaneousOrdersForLastUnitsConflict(t *testing.T) {
	f := setup(t)
	const buyers = 2
	gate := &sync.WaitGroup{}
	gate.Add(buyers)
	svc := f.newService(gatedCatalog{Store: product.NewStore(f.db), gate: gate})

	errs := make([]error, buyers)
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.PlaceOrder(context.Background(), PlaceOrderRequest{
				UserID: f.customer.ID, AddressID: f.address.ID,
				Lines: []cart.Line{{ProductID: f.lamp.ID, Quantity: 2}},
			})
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperr.ErrStockConflict)
		assert.Contains(t, err.Error(), "Desk Lamp")
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, f.stock(t, f.lamp.ID))
	assert.Equal(t, int64(1), count(t, f.db, &Order{}))
}

func TestCheckoutClearsCartAndSendsConfirmation(t *testing.T) {
	f := setup(t)
	f.carts.lines["sess"] = []cart.Line{{ProductID: f.mug.ID, Quantity: 1}}

	o, err := f.svc.Checkout(context.Background(), f.customer.ID, f.address.ID, "sess")
	require.NoError(t, err)
	assert.Equal(t, StatusPlaced, o.Status)
	assert.Equal(t, []string{"sess"}, f.carts.cleared)
	assert.Equal(t, []email.Template{email.TemplateOrderConfirmation}, f.mailer.templates())
	assert.Equal(t, "asha@example.com", f.mailer.sent[0].to)

	_, err = f.svc.Checkout(context.Background(), f.customer.ID, f.address.ID, "sess")
	assert.ErrorIs(t, err, apperr.ErrEmptyCart)
}

func TestCancelOrderRestoresStockOnce(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	o := f.place(t, cart.Line{ProductID: f.mug.ID, Quantity: 2})
	require.Equal(t, 3, f.stock(t, f.mug.ID))

	_, err := f.svc.CancelOrder(ctx, o.ID, user.Customer(f.other.ID), "mine now")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = f.svc.CancelOrder(ctx, o.ID, user.Customer(f.customer.ID), "   ")
	assert.ErrorIs(t, err, apperr.ErrReasonRequired)

	cancelled, err := f.svc.CancelOrder(ctx, o.ID, user.Customer(f.customer.ID), "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, 5, f.stock(t, f.mug.ID))

	require.Len(t, cancelled.StatusHistory, 2)
	last := cancelled.StatusHistory[1]
	require.NotNil(t, last.OldStatus)
	assert.Equal(t, StatusPlaced, *last.OldStatus)
	assert.Equal(t, StatusCancelled, last.NewStatus)
	assert.Equal(t, "changed my mind", last.Remark)

	_, err = f.svc.CancelOrder(ctx, o.ID, user.Customer(f.customer.ID), "again")
	assert.ErrorIs(t, err, apperr.ErrCannotCancel)
	assert.Equal(t, 5, f.stock(t, f.mug.ID))

	// customer cancellations are not emailed
	assert.Empty(t, f.mailer.templates())

	var releases int64
	require.NoError(t, f.db.Model(&inventory.InventoryMovement{}).
		Where("movement_type = ?", inventory.MovementTypeRelease).Count(&releases).Error)
	assert.Equal(t, int64(1), releases)
}

func TestCancelAfterShippingIsRejected(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	o := f.place(t, cart.Line{ProductID: f.mug.ID, Quantity: 1})
	require.NoError(t, f.db.Model(&Order{}).Where("id = ?", o.ID).Update("status", StatusShipped).Error)

	_, err := f.svc.CancelOrder(ctx, o.ID, user.Admin(f.other.ID), "too late")
	assert.ErrorIs(t, err, apperr.ErrCannotCancel)
	assert.Equal(t, 4, f.stock(t, f.mug.ID))
}

func TestAdminCancelEmailsCustomer(t *testing.T) {
	f := setup(t)
	o := f.place(t, cart.Line{ProductID: f.lamp.ID, Quantity: 1})

	_, err := f.svc.CancelOrder(context.Background(), o.ID, user.Admin(f.other.ID), "courier unavailable")
	require.NoError(t, err)
	assert.Equal(t, 2, f.stock(t, f.lamp.ID))
	assert.Equal(t, []email.Template{email.TemplateOrderCancelled}, f.mailer.templates())
}

func TestCancelRestoreSkipsDeletedProducts(t *testing.T) {
	f := setup(t)
	o := f.place(t, cart.Line{ProductID: f.mug.ID, Quantity: 1}, cart.Line{ProductID: f.lamp.ID, Quantity: 1})
	require.NoError(t, f.db.Delete(&product.Product{}, f.lamp.ID).Error)

	_, err := f.svc.CancelOrder(context.Background(), o.ID, user.Customer(f.customer.ID), "no longer needed")
	require.NoError(t, err)
	assert.Equal(t, 5, f.stock(t, f.mug.ID))
}

func TestUpdateStatusTransitionTable(t *testing.T) {
	legal := map[Status]map[Status]bool{
		StatusPlaced:    {StatusConfirmed: true, StatusCancelled: true},
		StatusConfirmed: {StatusPacked: true, StatusCancelled: true},
		StatusPacked:    {StatusShipped: true},
		StatusShipped:   {StatusDelivered: true},
	}

	for _, from := range AllStatuses {
		for _, to := range AllStatuses {
			from, to := from, to
			t.Run(string(from)+"_to_"+string(to), func(t *testing.T) {
				f := setup(t)
				o := f.place(t, cart.Line{ProductID: f.mug.ID, Quantity: 1})
				require.NoError(t, f.db.Model(&Order{}).Where("id = ?", o.ID).Update("status", from).Error)

				updated, err := f.svc.UpdateStatus(context.Background(), o.ID,
					UpdateStatusRequest{Status: string(to)}, user.Admin(f.other.ID))

				if legal[from][to] {
					require.NoError(t, err)
					assert.Equal(t, to, updated.Status)
					assert.Equal(t, int64(2), count(t, f.db, &OrderStatusHistory{}))
					return
				}
				assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

				var current Order
				require.NoError(t, f.db.First(&current, o.ID).Error)
				assert.Equal(t, from, current.Status)
				assert.Equal(t, int64(1), count(t, f.db, &OrderStatusHistory{}))
				assert.Equal(t, 4, f.stock(t, f.mug.ID))
			})
		}
	}
}

func TestDeliveredOrderCannotBeCancelled(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	admin := user.Admin(f.other.ID)
	o := f.place(t, cart.Line{ProductID: f.mug.ID, Quantity: 2})

	for _, s := range []string{"CONFIRMED", "PACKED", "SHIPPED", "DELIVERED"} {
		_, err := f.svc.UpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: s}, admin)
		require.NoError(t, err)
	}
	require.Equal(t, int64(5), count(t, f.db, &OrderStatusHistory{}))

	_, err := f.svc.UpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: "CANCELLED", Remark: "late refund"}, admin)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	assert.Equal(t, int64(5), count(t, f.db, &OrderStatusHistory{}))
	assert.Equal(t, 3, f.stock(t, f.mug.ID))
	assert.Empty(t, f.mailer.templates())
}

func TestUpdateStatusSideEffects(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	admin := user.Admin(f.other.ID)
	o := f.place(t, cart.Line{ProductID: f.mug.ID, Quantity: 1})

	_, err := f.svc.UpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: "confirmed"}, user.Customer(f.customer.ID))
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = f.svc.UpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: "teleported"}, admin)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	_, err = f.svc.UpdateStatus(ctx, 777, UpdateStatusRequest{Status: "confirmed"}, admin)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	for _, s := range []string{"confirmed", "PACKED"} {
		_, err = f.svc.UpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: s}, admin)
		require.NoError(t, err)
	}

	shipped, err := f.svc.UpdateStatus(ctx, o.ID, UpdateStatusRequest{
		Status: "SHIPPED", CourierName: "BlueDart", TrackingNumber: "BD123", Remark: "left warehouse",
	}, admin)
	require.NoError(t, err)
	assert.NotNil(t, shipped.DispatchedAt)
	assert.Equal(t, "BlueDart", shipped.CourierName)
	assert.Equal(t, "BD123", shipped.TrackingNumber)

	delivered, err := f.svc.UpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: "DELIVERED"}, admin)
	require.NoError(t, err)
	assert.NotNil(t, delivered.DeliveredAt)

	history, err := f.svc.History(ctx, o.ID, user.Customer(f.customer.ID))
	require.NoError(t, err)
	got := make([]Status, 0, len(history))
	for _, h := range history {
		got = append(got, h.NewStatus)
	}
	assert.Equal(t, []Status{StatusPlaced, StatusConfirmed, StatusPacked, StatusShipped, StatusDelivered}, got)
	assert.Equal(t, "left warehouse", history[3].Remark)

	ok, err := f.svc.HasDeliveredProduct(ctx, f.customer.ID, f.mug.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.svc.HasDeliveredProduct(ctx, f.customer.ID, f.lamp.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateStatusCancelRestoresStockAndEmails(t *testing.T) {
	f := setup(t)
	o := f.place(t, cart.Line{ProductID: f.lamp.ID, Quantity: 2})
	require.Equal(t, 0, f.stock(t, f.lamp.ID))

	_, err := f.svc.UpdateStatus(context.Background(), o.ID,
		UpdateStatusRequest{Status: "CANCELLED", Remark: "  payment failed \n"}, user.Admin(f.other.ID))
	require.NoError(t, err)
	assert.Equal(t, 2, f.stock(t, f.lamp.ID))
	assert.Equal(t, []email.Template{email.TemplateOrderCancelled}, f.mailer.templates())

	data, ok := f.mailer.sent[0].data.(*email.OrderCancelledData)
	require.True(t, ok)
	assert.Equal(t, "payment failed", data.Reason)
	assert.Equal(t, "store", data.CancelledBy)

	history, err := f.svc.History(context.Background(), o.ID, user.Admin(f.other.ID))
	require.NoError(t, err)
	assert.Equal(t, "payment failed", history[len(history)-1].Remark)
}

func TestOrderVisibilityAndListing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	first := f.place(t, cart.Line{ProductID: f.mug.ID, Quantity: 1})
	f.place(t, cart.Line{ProductID: f.mug.ID, Quantity: 1})
	_, err := f.svc.UpdateStatus(ctx, first.ID, UpdateStatusRequest{Status: "CONFIRMED"}, user.Admin(f.other.ID))
	require.NoError(t, err)

	_, err = f.svc.GetOrder(ctx, first.ID, user.Customer(f.other.ID))
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = f.svc.GetOrder(ctx, first.ID, user.Admin(f.other.ID))
	assert.NoError(t, err)

	mine, err := f.svc.ListUserOrders(ctx, f.customer.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), mine.Pagination.Total)

	theirs, err := f.svc.ListUserOrders(ctx, f.other.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, theirs.Orders)

	confirmed, err := f.svc.ListOrders(ctx, &OrderListRequest{Status: "confirmed"})
	require.NoError(t, err)
	require.Len(t, confirmed.Orders, 1)
	assert.Equal(t, first.ID, confirmed.Orders[0].ID)

	_, err = f.svc.ListOrders(ctx, &OrderListRequest{Status: "lost"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}
