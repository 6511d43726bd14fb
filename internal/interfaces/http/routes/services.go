package routes

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/checkout"
	"github.com/your-org/storefront/internal/domain/content"
	"github.com/your-org/storefront/internal/domain/inventory"
	"github.com/your-org/storefront/internal/domain/notification"
	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/domain/review"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/domain/wishlist"
	"github.com/your-org/storefront/internal/pkg/auth"
	"github.com/your-org/storefront/internal/pkg/email"
	"gorm.io/gorm"
)

// NewServices wires the domain services together. Restocks made through
// the product service fan out to back-in-stock subscribers.
func NewServices(db *gorm.DB, redisClient *redis.Client, mailer email.Gateway, cfg *config.Config, log *logrus.Logger) *Services {
	catalog := product.NewStore(db)
	users := user.NewService(db)
	addresses := user.NewAddressService(db)

	products := product.NewService(db, log)
	carts := cart.NewService(redisClient, catalog, cfg.Cart, log)
	orders := order.NewService(db, catalog, carts, addresses, users, mailer, cfg.Cart, log)
	notifications := notification.NewService(db, catalog, users, mailer, cfg.App.BaseURL, log)
	products.SetRestockListener(notifications)

	return &Services{
		Tokens:        auth.NewJWTManager(cfg.JWT),
		Users:         users,
		Addresses:     addresses,
		Products:      products,
		Categories:    product.NewCategoryService(db),
		Inventory:     inventory.NewService(db),
		Carts:         carts,
		Checkout:      checkout.NewService(carts, addresses, orders),
		Orders:        orders,
		Reviews:       review.NewService(db, catalog, orders, log),
		Wishlist:      wishlist.NewService(db, catalog),
		Notifications: notifications,
		Content:       content.NewService(db, log),
	}
}
