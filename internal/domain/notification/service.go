package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/pkg/apperr"
	"github.com/your-org/storefront/internal/pkg/email"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Catalog looks up the product being subscribed to
type Catalog interface {
	GetProduct(ctx context.Context, id uint) (*product.Product, error)
}

// UserDirectory resolves subscribers to their email addresses
type UserDirectory interface {
	GetUsers(ctx context.Context, ids []uint) (map[uint]*user.User, error)
}

// Service manages back-in-stock subscriptions and fans out the emails when
// a product is restocked
type Service struct {
	db      *gorm.DB
	catalog Catalog
	users   UserDirectory
	mailer  email.Gateway
	siteURL string
	log     *logrus.Logger
}

// NewService creates a new notification service
func NewService(db *gorm.DB, catalog Catalog, users UserDirectory, mailer email.Gateway, siteURL string, log *logrus.Logger) *Service {
	return &Service{
		db:      db,
		catalog: catalog,
		users:   users,
		mailer:  mailer,
		siteURL: strings.TrimRight(siteURL, "/"),
		log:     log,
	}
}

// Subscribe records that the user wants to be told when the product is back.
// Subscribing twice is a no-op.
func (s *Service) Subscribe(ctx context.Context, userID, productID uint) (*StockNotification, error) {
	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.StockQuantity > 0 {
		return nil, apperr.New(apperr.ErrAlreadyAvailable, "%s is already in stock", p.Name)
	}

	sub := StockNotification{UserID: userID, ProductID: productID}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&sub).Error
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	var existing StockNotification
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"product_id": productID,
	}).Debug("Stock notification subscribed")

	return &existing, nil
}

// ProductRestocked claims every subscription for the product and emails each
// subscriber once. A claimed subscription is gone even if its email fails.
func (s *Service) ProductRestocked(ctx context.Context, p *product.Product) error {
	var claimed []StockNotification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product_id = ?", p.ID).
			Order("id ASC").
			Find(&claimed).Error; err != nil {
			return fmt.Errorf("failed to load subscriptions: %w", err)
		}
		if len(claimed) == 0 {
			return nil
		}

		ids := make([]uint, len(claimed))
		for i, sub := range claimed {
			ids[i] = sub.ID
		}
		if err := tx.Where("id IN ?", ids).Delete(&StockNotification{}).Error; err != nil {
			return fmt.Errorf("failed to claim subscriptions: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(claimed) == 0 {
		return nil
	}

	userIDs := make([]uint, len(claimed))
	for i, sub := range claimed {
		userIDs[i] = sub.UserID
	}
	recipients, err := s.users.GetUsers(ctx, userIDs)
	if err != nil {
		return err
	}

	sent := 0
	for _, sub := range claimed {
		entry := s.log.WithFields(logrus.Fields{
			"product_id": p.ID,
			"user_id":    sub.UserID,
		})

		u, ok := recipients[sub.UserID]
		if !ok {
			entry.Warn("Subscriber no longer exists")
			continue
		}

		data := &email.BackInStockData{
			EmailTemplateData: email.EmailTemplateData{UserName: u.GetDisplayName()},
			ProductName:       p.Name,
			ProductURL:        fmt.Sprintf("%s/products/%s", s.siteURL, p.Slug),
			Price:             p.FinalPrice().StringFixed(2),
		}
		if err := s.mailer.Notify(ctx, u.Email, email.TemplateBackInStock, data); err != nil {
			entry.WithError(err).Warn("Failed to queue back in stock email")
			continue
		}
		sent++
	}

	s.log.WithFields(logrus.Fields{
		"product_id":  p.ID,
		"subscribers": len(claimed),
		"queued":      sent,
	}).Info("Back in stock notifications dispatched")

	return nil
}

// PendingByProduct lists products with waiting subscribers, most wanted first
func (s *Service) PendingByProduct(ctx context.Context) ([]PendingSummary, error) {
	var summaries []PendingSummary
	err := s.db.WithContext(ctx).
		Table("stock_notifications").
		Select("stock_notifications.product_id, products.name AS product_name, products.stock_quantity, COUNT(*) AS subscribers").
		Joins("JOIN products ON products.id = stock_notifications.product_id").
		Group("stock_notifications.product_id, products.name, products.stock_quantity").
		Order("subscribers DESC, stock_notifications.product_id ASC").
		Scan(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize stock notifications: %w", err)
	}
	return summaries, nil
}
