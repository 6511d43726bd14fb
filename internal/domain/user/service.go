// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/storefront/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service reads the user directory
type Service struct {
	db *gorm.DB
}

// NewService creates a new user service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GetUser loads a user by id
func (s *Service) GetUser(ctx context.Context, userID uint) (*User, error) {
	var user User
	result := s.db.WithContext(ctx).Where("id = ?", userID).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "user not found")
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", result.Error)
	}
	return &user, nil
}

// GetUsers loads several users keyed by id
func (s *Service) GetUsers(ctx context.Context, ids []uint) (map[uint]*User, error) {
	users := make(map[uint]*User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	var list []User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}
	for i := range list {
		users[list[i].ID] = &list[i]
	}
	return users, nil
}

// EnsureUser mirrors an identity provider account into the users table so
// foreign keys from orders and reviews resolve. Concurrent first requests for
// the same account both succeed.
func (s *Service) EnsureUser(ctx context.Context, actor Actor) error {
	if actor.UserID == 0 {
		return apperr.New(apperr.ErrUnauthorized, "user not authenticated")
	}

	var count int64
	if err := s.db.WithContext(ctx).Unscoped().Model(&User{}).Where("id = ?", actor.UserID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if count > 0 {
		return nil
	}

	email := actor.Email
	if email == "" {
		email = fmt.Sprintf("user-%d@users.invalid", actor.UserID)
	}

	user := User{
		ID:       actor.UserID,
		Email:    email,
		Role:     actor.Role,
		IsActive: true,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&user).Error
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
