package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AddressFilter narrows List. Nil fields are ignored.
type AddressFilter struct {
	UserID *uint
	Type   *models.AddressType
}

type AddressInput struct {
	UserID      uint
	Street      string
	City        string
	State       string
	ZipCode     string
	Country     string
	AddressType models.AddressType
}

type UpdateAddressInput struct {
	Street      *string
	City        *string
	State       *string
	ZipCode     *string
	Country     *string
	AddressType *models.AddressType
}

// AddressService manages user postal addresses. Only the owner and admins can
// see or change an address.
type AddressService struct {
	db *gorm.DB
}

func NewAddressService(db *gorm.DB) *AddressService {
	return &AddressService{db: db}
}

// List returns addresses matching f. Non-admin callers only ever see their own.
func (s *AddressService) List(ctx context.Context, p models.Principal, f AddressFilter) ([]models.Address, error) {
	q := s.db.WithContext(ctx).Order("id")
	if !p.IsAdmin() {
		q = q.Where("user_id = ?", p.UserID)
	} else if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Type != nil {
		if !f.Type.Valid() {
			return nil, badRequest("INVALID_ADDRESS_TYPE", "invalid address type %q", *f.Type)
		}
		q = q.Where("address_type = ?", *f.Type)
	}

	var addresses []models.Address
	if err := q.Find(&addresses).Error; err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

func (s *AddressService) Get(ctx context.Context, p models.Principal, id uint) (*models.Address, error) {
	var address models.Address
	if err := s.db.WithContext(ctx).First(&address, id).Error; err != nil {
		return nil, lookupError(err, "address", "id", id)
	}
	if !p.CanActFor(address.UserID) {
		return nil, forbidden("address %d belongs to another user", id)
	}
	return &address, nil
}

// Primary returns the oldest PRIMARY address of a user, or nil if there is none
func (s *AddressService) Primary(ctx context.Context, userID uint) (*models.Address, error) {
	var address models.Address
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND address_type = ?", userID, models.AddressTypePrimary).
		Order("id").
		First(&address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load primary address: %w", err)
	}
	return &address, nil
}

// Create stores an address for an existing user. The type defaults to PRIMARY.
func (s *AddressService) Create(ctx context.Context, p models.Principal, in AddressInput) (*models.Address, error) {
	if !p.CanActFor(in.UserID) {
		return nil, forbidden("cannot add addresses for another user")
	}
	if in.AddressType == "" {
		in.AddressType = models.AddressTypePrimary
	}
	if !in.AddressType.Valid() {
		return nil, badRequest("INVALID_ADDRESS_TYPE", "invalid address type %q", in.AddressType)
	}

	address := models.Address{
		Street:      in.Street,
		City:        in.City,
		State:       in.State,
		ZipCode:     in.ZipCode,
		Country:     in.Country,
		AddressType: in.AddressType,
		UserID:      in.UserID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.User{}, in.UserID).Error; err != nil {
			return lookupError(err, "user", "id", in.UserID)
		}
		if err := tx.Omit(clause.Associations).Create(&address).Error; err != nil {
			return fmt.Errorf("failed to create address: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"address_id": address.ID, "user_id": address.UserID}).Info("Address created")
	return &address, nil
}

func (s *AddressService) Update(ctx context.Context, p models.Principal, id uint, in UpdateAddressInput) (*models.Address, error) {
	if in.AddressType != nil && !in.AddressType.Valid() {
		return nil, badRequest("INVALID_ADDRESS_TYPE", "invalid address type %q", *in.AddressType)
	}

	address, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	for column, value := range map[string]*string{
		"street":   in.Street,
		"city":     in.City,
		"state":    in.State,
		"zip_code": in.ZipCode,
		"country":  in.Country,
	} {
		if value != nil {
			updates[column] = *value
		}
	}
	if in.AddressType != nil {
		updates["address_type"] = *in.AddressType
	}
	if len(updates) == 0 {
		return address, nil
	}

	if err := s.db.WithContext(ctx).Model(address).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	return s.Get(ctx, p, id)
}

func (s *AddressService) Delete(ctx context.Context, p models.Principal, id uint) error {
	address, err := s.Get(ctx, p, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(address).Error; err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	logrus.WithFields(logrus.Fields{"address_id": id, "user_id": address.UserID}).Info("Address deleted")
	return nil
}
