package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateProductInput struct {
	Name              string
	Description       string
	Price             decimal.Decimal
	Stock             int
	ProductCategoryID uint
}

type UpdateProductInput struct {
	Name              *string
	Description       *string
	Price             *decimal.Decimal
	Stock             *int
	ProductCategoryID *uint
}

// ProductService manages the product catalogue and product images
type ProductService struct {
	db     *gorm.DB
	images *ImageService
}

func NewProductService(db *gorm.DB, images *ImageService) *ProductService {
	return &ProductService{db: db, images: images}
}

func validProduct(price *decimal.Decimal, stock *int) error {
	if price != nil && price.IsNegative() {
		return badRequest("INVALID_PRICE", "price must not be negative")
	}
	if stock != nil && *stock < 0 {
		return badRequest("INVALID_STOCK", "stock must not be negative")
	}
	return nil
}

// ensureProductNameFree also checks soft-deleted products, which still hold
// the unique index on name
func ensureProductNameFree(tx *gorm.DB, name string, exceptID uint) error {
	var count int64
	if err := tx.Unscoped().Model(&models.Product{}).Where("name = ? AND id <> ?", name, exceptID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check product name: %w", err)
	}
	if count > 0 {
		return alreadyExists("product", "name", name)
	}
	return nil
}

// List returns all products, or those of one category
func (s *ProductService) List(ctx context.Context, categoryID *uint) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Preload("ProductCategory").Order("id")
	if categoryID != nil {
		if err := s.db.WithContext(ctx).Select("id").First(&models.ProductCategory{}, *categoryID).Error; err != nil {
			return nil, lookupError(err, "product category", "id", *categoryID)
		}
		q = q.Where("product_category_id = ?", *categoryID)
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Preload("ProductCategory").First(&product, id).Error; err != nil {
		return nil, lookupError(err, "product", "id", id)
	}
	return &product, nil
}

func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	if in.Name == "" {
		return nil, badRequest("INVALID_NAME", "product name is required")
	}
	if err := validProduct(&in.Price, &in.Stock); err != nil {
		return nil, err
	}

	product := models.Product{
		Name:              in.Name,
		Description:       in.Description,
		Price:             in.Price,
		Stock:             in.Stock,
		ProductCategoryID: in.ProductCategoryID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product.ProductCategory, in.ProductCategoryID).Error; err != nil {
			return lookupError(err, "product category", "id", in.ProductCategoryID)
		}
		if err := ensureProductNameFree(tx, in.Name, 0); err != nil {
			return err
		}
		err := tx.Omit(clause.Associations).Create(&product).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return alreadyExists("product", "name", in.Name)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"product_id": product.ID, "name": product.Name}).Info("Product created")
	return &product, nil
}

func (s *ProductService) Update(ctx context.Context, id uint, in UpdateProductInput) (*models.Product, error) {
	if err := validProduct(in.Price, in.Stock); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, id).Error; err != nil {
			return lookupError(err, "product", "id", id)
		}

		updates := map[string]interface{}{}
		if in.Name != nil && *in.Name != product.Name {
			if err := ensureProductNameFree(tx, *in.Name, id); err != nil {
				return err
			}
			updates["name"] = *in.Name
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.Price != nil {
			updates["price"] = *in.Price
		}
		if in.Stock != nil {
			updates["stock"] = *in.Stock
		}
		if in.ProductCategoryID != nil {
			if err := tx.Select("id").First(&models.ProductCategory{}, *in.ProductCategoryID).Error; err != nil {
				return lookupError(err, "product category", "id", *in.ProductCategoryID)
			}
			updates["product_category_id"] = *in.ProductCategoryID
		}
		if len(updates) == 0 {
			return nil
		}
		err := tx.Model(&product).Updates(updates).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return alreadyExists("product", "name", updates["name"])
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete soft-deletes the product. Invoices keep their line items and prices.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("product", "id", id)
	}
	logrus.WithField("product_id", id).Info("Product deleted")
	return nil
}

// SetImage uploads a new product image and replaces the previous one
func (s *ProductService) SetImage(ctx context.Context, id uint, fh *multipart.FileHeader) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name, err := s.images.UploadImage(ctx, fh)
	if err != nil {
		return nil, err
	}

	previous := product.ImageName
	if err := s.db.WithContext(ctx).Model(&models.Product{ID: id}).Update("image_name", name).Error; err != nil {
		if cleanupErr := s.images.DeleteImage(ctx, name); cleanupErr != nil {
			logrus.WithError(cleanupErr).WithField("name", name).Warn("Failed to remove orphaned image")
		}
		return nil, fmt.Errorf("failed to set product image: %w", err)
	}

	if previous != nil {
		if err := s.images.DeleteImage(ctx, *previous); err != nil {
			logrus.WithError(err).WithField("name", *previous).Warn("Failed to remove previous product image")
		}
	}
	return s.Get(ctx, id)
}

// RemoveImage clears the product image and deletes the stored file
func (s *ProductService) RemoveImage(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.ImageName == nil {
		return product, nil
	}

	name := *product.ImageName
	if err := s.db.WithContext(ctx).Model(&models.Product{ID: id}).Update("image_name", nil).Error; err != nil {
		return nil, fmt.Errorf("failed to remove product image: %w", err)
	}
	if err := s.images.DeleteImage(ctx, name); err != nil {
		logrus.WithError(err).WithField("name", name).Warn("Failed to remove product image file")
	}
	return s.Get(ctx, id)
}
