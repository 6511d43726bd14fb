// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/content"
	"github.com/your-org/storefront/internal/domain/inventory"
	"github.com/your-org/storefront/internal/domain/notification"
	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/domain/review"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/domain/wishlist"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log *logrus.Logger) *Migration {
	return &Migration{
		db:  db,
		log: log,
	}
}

// Models lists every persisted model in dependency order
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&user.Address{},

		&product.Category{},
		&product.Product{},
		&product.ProductImage{},

		&inventory.InventoryMovement{},

		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},

		&notification.StockNotification{},
		&review.ProductReview{},
		&wishlist.WishlistItem{},

		&content.FAQ{},
		&content.PolicyDocument{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("Running database auto-migrations")

	for _, model := range Models() {
		m.log.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.log.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates indexes the struct tags cannot express
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_product_images_one_primary ON product_images(product_id) WHERE is_primary = true",

		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order_changed ON order_status_history(order_id, changed_at)",

		"CREATE INDEX IF NOT EXISTS idx_inventory_movements_product_created ON inventory_movements(product_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_inventory_movements_reference ON inventory_movements(reference_type, reference_id)",

		"CREATE INDEX IF NOT EXISTS idx_faqs_active_order ON faqs(is_active, display_order)",
	}

	failed := 0
	for _, ddl := range indexes {
		if err := m.db.Exec(ddl).Error; err != nil {
			failed++
			m.log.WithError(err).WithField("ddl", ddl).Warn("Failed to create index")
		}
	}

	m.log.WithFields(logrus.Fields{
		"created": len(indexes) - failed,
		"failed":  failed,
	}).Info("Additional indexes processed")

	if failed > 0 {
		return fmt.Errorf("%d of %d indexes failed", failed, len(indexes))
	}
	return nil
}

// SeedInitialData inserts development data. Existing rows are left alone so
// the seed can run on every start.
func (m *Migration) SeedInitialData(bcryptCost int) error {
	m.log.Info("Seeding initial data")

	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := m.seedUsers(bcryptCost); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	if err := m.seedProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	if err := m.seedContent(); err != nil {
		return fmt.Errorf("failed to seed content: %w", err)
	}

	m.log.Info("Initial data seeded")
	return nil
}

func (m *Migration) seedCategories() error {
	categories := []product.Category{
		{Name: "Home Decor", Slug: "home-decor", Description: "Decor, lighting and accents"},
		{Name: "Kitchen", Slug: "kitchen", Description: "Cookware and serveware"},
		{Name: "Apparel", Slug: "apparel", Description: "Clothing and accessories"},
	}

	for _, category := range categories {
		created, err := m.createIfMissing(&product.Category{}, "slug = ?", category.Slug, &category)
		if err != nil {
			return err
		}
		if created {
			m.log.WithField("category", category.Name).Info("Created category")
		}
	}
	return nil
}

func (m *Migration) seedUsers(bcryptCost int) error {
	accounts := []struct {
		user     user.User
		password string
	}{
		{user.User{Email: "admin@example.com", FirstName: "Admin", LastName: "User", Role: user.RoleAdmin, IsActive: true}, "admin123"},
		{user.User{Email: "test1@example.com", FirstName: "Test", LastName: "User", Role: user.RoleCustomer, IsActive: true}, "test123"},
	}

	for _, account := range accounts {
		hashed, err := bcrypt.GenerateFromPassword([]byte(account.password), bcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		u := account.user
		u.Password = string(hashed)

		created, err := m.createIfMissing(&user.User{}, "email = ?", u.Email, &u)
		if err != nil {
			return err
		}
		if created {
			m.log.WithFields(logrus.Fields{
				"email": u.Email,
				"role":  u.Role,
			}).Info("Created user")
		}
	}
	return nil
}

func (m *Migration) seedProducts() error {
	var decor, kitchen product.Category
	if err := m.db.Where("slug = ?", "home-decor").First(&decor).Error; err != nil {
		return err
	}
	if err := m.db.Where("slug = ?", "kitchen").First(&kitchen).Error; err != nil {
		return err
	}

	products := []product.Product{
		{
			Name: "Brass Table Lamp", Slug: "brass-table-lamp", CategoryID: decor.ID,
			Description: "Hand finished brass lamp with linen shade",
			Price:       decimal.NewFromInt(2499), DiscountType: product.DiscountPercent, DiscountValue: decimal.NewFromInt(10),
			StockQuantity: 12, IsActive: true,
		},
		{
			Name: "Ceramic Mug", Slug: "ceramic-mug", CategoryID: kitchen.ID,
			Description: "Stoneware mug, 350ml",
			Price:       decimal.NewFromInt(349), DiscountType: product.DiscountNone,
			StockQuantity: 40, IsActive: true,
		},
		{
			Name: "Cast Iron Skillet", Slug: "cast-iron-skillet", CategoryID: kitchen.ID,
			Description: "Pre-seasoned 10 inch skillet",
			Price:       decimal.NewFromInt(1899), DiscountType: product.DiscountFlat, DiscountValue: decimal.NewFromInt(200),
			StockQuantity: 0, IsActive: true,
		},
	}

	for _, p := range products {
		created, err := m.createIfMissing(&product.Product{}, "slug = ?", p.Slug, &p)
		if err != nil {
			return err
		}
		if created {
			m.log.WithField("product", p.Name).Info("Created product")
		}
	}
	return nil
}

func (m *Migration) seedContent() error {
	faqs := []content.FAQ{
		{Question: "How long does delivery take?", Answer: "Orders are delivered within 3 to 5 business days.", IsActive: true, DisplayOrder: 1},
		{Question: "Can I cancel my order?", Answer: "Orders can be cancelled until they are packed.", IsActive: true, DisplayOrder: 2},
	}
	for _, faq := range faqs {
		if _, err := m.createIfMissing(&content.FAQ{}, "question = ?", faq.Question, &faq); err != nil {
			return err
		}
	}
	return nil
}

// createIfMissing inserts row unless a record matching the condition exists
func (m *Migration) createIfMissing(model interface{}, cond string, arg interface{}, row interface{}) (bool, error) {
	err := m.db.Unscoped().Where(cond, arg).First(model).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := m.db.Create(row).Error; err != nil {
		return false, err
	}
	return true, nil
}
