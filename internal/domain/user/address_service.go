// internal/domain/user/address_service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/your-org/storefront/internal/pkg/apperr"
	"gorm.io/gorm"
)

// AddressService handles address business logic
type AddressService struct {
	db *gorm.DB
}

// NewAddressService creates a new address service
func NewAddressService(db *gorm.DB) *AddressService {
	return &AddressService{db: db}
}

// CreateAddressRequest represents address creation data
type CreateAddressRequest struct {
	FullName     string `json:"full_name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	AddressLine1 string `json:"address_line1" binding:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	PostalCode   string `json:"postal_code" binding:"required"`
	Country      string `json:"country"`
}

// GetUserAddresses retrieves all addresses for a user, default first
func (s *AddressService) GetUserAddresses(ctx context.Context, userID uint) ([]Address, error) {
	var addresses []Address

	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC, id DESC").
		Find(&addresses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve addresses: %w", err)
	}

	return addresses, nil
}

// GetAddressByID loads an address regardless of owner. Ownership is the
// caller's decision.
func (s *AddressService) GetAddressByID(ctx context.Context, addressID uint) (*Address, error) {
	var address Address
	result := s.db.WithContext(ctx).Where("id = ?", addressID).First(&address)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "address not found")
		}
		return nil, fmt.Errorf("failed to retrieve address: %w", result.Error)
	}

	return &address, nil
}

// CreateAddress creates a new address for a user. The new address becomes
// the default and any previous default is unset.
func (s *AddressService) CreateAddress(ctx context.Context, userID uint, req *CreateAddressRequest) (*Address, error) {
	country := strings.TrimSpace(req.Country)
	if country == "" {
		country = "India"
	}

	address := Address{
		UserID:       userID,
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        strings.TrimSpace(req.Phone),
		AddressLine1: strings.TrimSpace(req.AddressLine1),
		AddressLine2: strings.TrimSpace(req.AddressLine2),
		City:         strings.TrimSpace(req.City),
		State:        strings.TrimSpace(req.State),
		PostalCode:   strings.TrimSpace(req.PostalCode),
		Country:      country,
		IsDefault:    true,
	}

	if err := s.ValidateAddress(&address); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := s.unsetDefaultAddresses(tx, userID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Create(&address).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &address, nil
}

// DeleteAddress deletes an address owned by the user
func (s *AddressService) DeleteAddress(ctx context.Context, userID, addressID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", addressID, userID).Delete(&Address{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete address: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.ErrNotFound, "address not found")
	}
	return nil
}

func (s *AddressService) unsetDefaultAddresses(tx *gorm.DB, userID uint) error {
	return tx.Model(&Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}

// ValidateAddress validates address data
func (s *AddressService) ValidateAddress(address *Address) error {
	if address.FullName == "" {
		return apperr.New(apperr.ErrInvalidInput, "full name is required")
	}
	if address.AddressLine1 == "" {
		return apperr.New(apperr.ErrInvalidInput, "address line 1 is required")
	}
	if address.City == "" {
		return apperr.New(apperr.ErrInvalidInput, "city is required")
	}
	if address.PostalCode == "" {
		return apperr.New(apperr.ErrInvalidInput, "postal code is required")
	}
	for _, r := range address.Phone {
		if (r < '0' || r > '9') && r != '+' && r != ' ' && r != '-' {
			return apperr.New(apperr.ErrInvalidInput, "phone number contains invalid characters")
		}
	}
	return nil
}
