package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartService keeps one cart row per (user, product) pair
type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

func cartNotFound(userID, productID uint) error {
	return newError(ErrNotFound, "CART_NOT_FOUND", "cart entry for user %d and product %d not found", userID, productID)
}

// List returns cart rows, optionally for one user. Non-admin callers only see
// their own.
func (s *CartService) List(ctx context.Context, p models.Principal, userID *uint) ([]models.Cart, error) {
	q := s.db.WithContext(ctx).Preload("Product.ProductCategory").Order("user_id, product_id")
	if !p.IsAdmin() {
		q = q.Where("user_id = ?", p.UserID)
	} else if userID != nil {
		if err := s.db.WithContext(ctx).Select("id").First(&models.User{}, *userID).Error; err != nil {
			return nil, lookupError(err, "user", "id", *userID)
		}
		q = q.Where("user_id = ?", *userID)
	}

	var carts []models.Cart
	if err := q.Find(&carts).Error; err != nil {
		return nil, fmt.Errorf("failed to list carts: %w", err)
	}
	return carts, nil
}

// AddProduct puts one unit of a product in the user's cart, creating the row
// with quantity 1 or incrementing an existing one.
func (s *CartService) AddProduct(ctx context.Context, p models.Principal, userID, productID uint) (*models.Cart, error) {
	if !p.CanActFor(userID) {
		return nil, forbidden("cannot change another user's cart")
	}

	var cart models.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&cart.Product, productID).Error; err != nil {
			return lookupError(err, "product", "id", productID)
		}
		if err := tx.Select("id").First(&models.User{}, userID).Error; err != nil {
			return lookupError(err, "user", "id", userID)
		}

		// insert or increment in one statement
		row := models.Cart{UserID: userID, ProductID: productID, Quantity: 1}
		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("carts.quantity + 1"),
				"updated_at": time.Now(),
			}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("failed to add product to cart: %w", err)
		}

		product := cart.Product
		if err := tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&cart).Error; err != nil {
			return fmt.Errorf("failed to reload cart: %w", err)
		}
		cart.Product = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user_id": userID, "product_id": productID, "quantity": cart.Quantity}).Info("Product added to cart")
	return &cart, nil
}

// SetQuantity overwrites the quantity of an existing cart row
func (s *CartService) SetQuantity(ctx context.Context, p models.Principal, userID, productID uint, quantity int) (*models.Cart, error) {
	if !p.CanActFor(userID) {
		return nil, forbidden("cannot change another user's cart")
	}
	if quantity < 1 {
		return nil, badRequest("INVALID_QUANTITY", "quantity must be at least 1")
	}

	var cart models.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Product").Where("user_id = ? AND product_id = ?", userID, productID).First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cartNotFound(userID, productID)
		}
		if err != nil {
			return fmt.Errorf("failed to load cart: %w", err)
		}
		cart.Quantity = quantity
		return tx.Model(&models.Cart{}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			Update("quantity", quantity).Error
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveProduct deletes the cart row for a product
func (s *CartService) RemoveProduct(ctx context.Context, p models.Principal, userID, productID uint) error {
	if !p.CanActFor(userID) {
		return forbidden("cannot change another user's cart")
	}

	res := s.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.Cart{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove product from cart: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return cartNotFound(userID, productID)
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "product_id": productID}).Info("Product removed from cart")
	return nil
}
