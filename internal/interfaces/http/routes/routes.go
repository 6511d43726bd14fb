// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
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
	"github.com/your-org/storefront/internal/interfaces/http/handlers"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
)

// Services holds everything the HTTP layer calls into
type Services struct {
	Tokens        middleware.TokenValidator
	Users         *user.Service
	Addresses     *user.AddressService
	Products      *product.Service
	Categories    *product.CategoryService
	Inventory     *inventory.Service
	Carts         *cart.Service
	Checkout      *checkout.Service
	Orders        *order.Service
	Reviews       *review.Service
	Wishlist      *wishlist.Service
	Notifications *notification.Service
	Content       *content.Service
}

// SetupRoutes configures all API routes
func SetupRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config, log *logrus.Logger) {
	productHandler := handlers.NewProductHandler(svc.Products, log)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories, log)
	inventoryHandler := handlers.NewInventoryHandler(svc.Inventory, log)
	cartHandler := handlers.NewCartHandler(svc.Carts, log)
	checkoutHandler := handlers.NewCheckoutHandler(svc.Checkout, log)
	orderHandler := handlers.NewOrderHandler(svc.Orders, log)
	reviewHandler := handlers.NewReviewHandler(svc.Reviews, log)
	wishlistHandler := handlers.NewWishlistHandler(svc.Wishlist, log)
	addressHandler := handlers.NewAddressHandler(svc.Addresses, log)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications, log)
	contentHandler := handlers.NewContentHandler(svc.Content, log)

	requireAuth := middleware.AuthMiddleware(svc.Tokens, svc.Users, log)
	cartSession := middleware.CartSession(cfg.Cart.SessionTTL, cfg.IsProduction())

	// Public catalogue
	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/slug/:slug", productHandler.GetProductBySlug)
		products.GET("/:id/reviews", reviewHandler.GetProductReviews)
		products.POST("/:id/reviews", requireAuth, reviewHandler.CreateReview)
		products.POST("/:id/notify-me", requireAuth, notificationHandler.NotifyMe)
	}
	rg.GET("/categories", categoryHandler.GetCategories)

	rg.GET("/faqs", contentHandler.GetFAQs)
	rg.GET("/pages/:kind", contentHandler.GetPage)

	// Session cart, no login needed
	cartRoutes := rg.Group("/cart")
	cartRoutes.Use(cartSession)
	{
		cartRoutes.GET("", cartHandler.GetCart)
		cartRoutes.POST("/items", cartHandler.AddToCart)
		cartRoutes.PUT("/items/:productID", cartHandler.UpdateCartItem)
		cartRoutes.DELETE("/items/:productID", cartHandler.RemoveFromCart)
		cartRoutes.DELETE("", cartHandler.ClearCart)
	}

	// Authenticated customer routes
	protected := rg.Group("")
	protected.Use(requireAuth)
	{
		protected.GET("/checkout", cartSession, checkoutHandler.GetSummary)

		orders := protected.Group("/orders")
		{
			orders.POST("", cartSession, orderHandler.CreateOrder)
			orders.GET("", orderHandler.GetUserOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("/:id/cancel", orderHandler.CancelOrder)
		}

		wishlistRoutes := protected.Group("/wishlist")
		{
			wishlistRoutes.GET("", wishlistHandler.GetWishlist)
			wishlistRoutes.POST("/:productID/toggle", wishlistHandler.Toggle)
		}

		addresses := protected.Group("/addresses")
		{
			addresses.GET("", addressHandler.GetAddresses)
			addresses.POST("", addressHandler.CreateAddress)
			addresses.DELETE("/:id", addressHandler.DeleteAddress)
		}
	}

	// Admin routes
	admin := rg.Group("/admin")
	admin.Use(requireAuth, middleware.AdminMiddleware())
	{
		adminOrders := admin.Group("/orders")
		{
			adminOrders.GET("", orderHandler.ListOrders)
			adminOrders.GET("/:id", orderHandler.GetOrder)
			adminOrders.PUT("/:id/status", orderHandler.UpdateOrderStatus)
		}

		adminProducts := admin.Group("/products")
		{
			adminProducts.GET("", productHandler.ListAllProducts)
			adminProducts.GET("/:id", productHandler.AdminGetProduct)
			adminProducts.POST("", productHandler.CreateProduct)
			adminProducts.PUT("/:id", productHandler.UpdateProduct)
			adminProducts.DELETE("/:id", productHandler.DeleteProduct)
			adminProducts.POST("/:id/images", productHandler.AddImage)
			adminProducts.PUT("/images/:imageID/primary", productHandler.SetPrimaryImage)
			adminProducts.GET("/:id/movements", inventoryHandler.GetMovements)
		}

		adminCategories := admin.Group("/categories")
		{
			adminCategories.GET("", categoryHandler.ListAllCategories)
			adminCategories.POST("", categoryHandler.CreateCategory)
			adminCategories.PUT("/:id", categoryHandler.UpdateCategory)
			adminCategories.DELETE("/:id", categoryHandler.DeleteCategory)
		}

		admin.GET("/stock-notifications", notificationHandler.GetPending)

		admin.GET("/faqs", contentHandler.ListAllFAQs)
		admin.POST("/faqs", contentHandler.CreateFAQ)
		admin.PUT("/faqs/:id", contentHandler.UpdateFAQ)
		admin.PUT("/pages/:kind", contentHandler.UpdatePage)
	}
}
