package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AppointmentCategoryUpdate struct {
	Name         *string
	QuotePerHour *decimal.Decimal
}

type ProductCategoryUpdate struct {
	Name          *string
	VATPercentage *decimal.Decimal
}

type CourseCategoryUpdate struct {
	Name        *string
	Description *string
}

// CategoryService manages appointment, product and course categories.
// Names are unique within each kind.
type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func validQuote(q decimal.Decimal) error {
	if q.IsNegative() {
		return badRequest("INVALID_QUOTE", "quote per hour must not be negative")
	}
	return nil
}

func validVAT(v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(decimal.NewFromInt(1)) {
		return badRequest("INVALID_VAT", "vat percentage must be a fraction between 0 and 1")
	}
	return nil
}

// Appointment categories

func (s *CategoryService) ListAppointmentCategories(ctx context.Context) ([]models.AppointmentCategory, error) {
	return listCategories[models.AppointmentCategory](ctx, s.db)
}

func (s *CategoryService) GetAppointmentCategory(ctx context.Context, id uint) (*models.AppointmentCategory, error) {
	return getCategory[models.AppointmentCategory](ctx, s.db, "appointment category", id)
}

func (s *CategoryService) CreateAppointmentCategory(ctx context.Context, c models.AppointmentCategory) (*models.AppointmentCategory, error) {
	if err := validQuote(c.QuotePerHour); err != nil {
		return nil, err
	}
	c.ID = 0
	if err := createCategory(ctx, s.db, "appointment category", c.Name, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CategoryService) UpdateAppointmentCategory(ctx context.Context, id uint, in AppointmentCategoryUpdate) (*models.AppointmentCategory, error) {
	updates := map[string]interface{}{}
	if in.QuotePerHour != nil {
		if err := validQuote(*in.QuotePerHour); err != nil {
			return nil, err
		}
		updates["quote_per_hour"] = *in.QuotePerHour
	}
	if err := updateCategory[models.AppointmentCategory](ctx, s.db, "appointment category", id, in.Name, updates); err != nil {
		return nil, err
	}
	return s.GetAppointmentCategory(ctx, id)
}

func (s *CategoryService) DeleteAppointmentCategory(ctx context.Context, id uint) error {
	return deleteCategory[models.AppointmentCategory](ctx, s.db, "appointment category", id)
}

// Product categories

func (s *CategoryService) ListProductCategories(ctx context.Context) ([]models.ProductCategory, error) {
	return listCategories[models.ProductCategory](ctx, s.db)
}

func (s *CategoryService) GetProductCategory(ctx context.Context, id uint) (*models.ProductCategory, error) {
	return getCategory[models.ProductCategory](ctx, s.db, "product category", id)
}

func (s *CategoryService) CreateProductCategory(ctx context.Context, c models.ProductCategory) (*models.ProductCategory, error) {
	if err := validVAT(c.VATPercentage); err != nil {
		return nil, err
	}
	c.ID = 0
	if err := createCategory(ctx, s.db, "product category", c.Name, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CategoryService) UpdateProductCategory(ctx context.Context, id uint, in ProductCategoryUpdate) (*models.ProductCategory, error) {
	updates := map[string]interface{}{}
	if in.VATPercentage != nil {
		if err := validVAT(*in.VATPercentage); err != nil {
			return nil, err
		}
		updates["vat_percentage"] = *in.VATPercentage
	}
	if err := updateCategory[models.ProductCategory](ctx, s.db, "product category", id, in.Name, updates); err != nil {
		return nil, err
	}
	return s.GetProductCategory(ctx, id)
}

func (s *CategoryService) DeleteProductCategory(ctx context.Context, id uint) error {
	return deleteCategory[models.ProductCategory](ctx, s.db, "product category", id)
}

// Course categories

func (s *CategoryService) ListCourseCategories(ctx context.Context) ([]models.CourseCategory, error) {
	return listCategories[models.CourseCategory](ctx, s.db)
}

func (s *CategoryService) GetCourseCategory(ctx context.Context, id uint) (*models.CourseCategory, error) {
	return getCategory[models.CourseCategory](ctx, s.db, "course category", id)
}

func (s *CategoryService) CreateCourseCategory(ctx context.Context, c models.CourseCategory) (*models.CourseCategory, error) {
	c.ID = 0
	if err := createCategory(ctx, s.db, "course category", c.Name, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CategoryService) UpdateCourseCategory(ctx context.Context, id uint, in CourseCategoryUpdate) (*models.CourseCategory, error) {
	updates := map[string]interface{}{}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if err := updateCategory[models.CourseCategory](ctx, s.db, "course category", id, in.Name, updates); err != nil {
		return nil, err
	}
	return s.GetCourseCategory(ctx, id)
}

func (s *CategoryService) DeleteCourseCategory(ctx context.Context, id uint) error {
	return deleteCategory[models.CourseCategory](ctx, s.db, "course category", id)
}

// The three kinds share one shape: id, unique name, a few attributes.

func listCategories[T any](ctx context.Context, db *gorm.DB) ([]T, error) {
	var out []T
	if err := db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return out, nil
}

func getCategory[T any](ctx context.Context, db *gorm.DB, entity string, id uint) (*T, error) {
	var c T
	if err := db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, lookupError(err, entity, "id", id)
	}
	return &c, nil
}

func nameTaken[T any](tx *gorm.DB, name string, exceptID uint) (bool, error) {
	var count int64
	q := tx.Model(new(T)).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check category name: %w", err)
	}
	return count > 0, nil
}

func createCategory[T any](ctx context.Context, db *gorm.DB, entity, name string, c *T) error {
	if name == "" {
		return badRequest("INVALID_NAME", "%s name is required", entity)
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := nameTaken[T](tx, name, 0)
		if err != nil {
			return err
		}
		if taken {
			return alreadyExists(entity, "name", name)
		}
		err = tx.Create(c).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return alreadyExists(entity, "name", name)
		}
		return err
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"entity": entity, "name": name}).Info("Category created")
	return nil
}

func updateCategory[T any](ctx context.Context, db *gorm.DB, entity string, id uint, name *string, updates map[string]interface{}) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c T
		if err := tx.First(&c, id).Error; err != nil {
			return lookupError(err, entity, "id", id)
		}
		if name != nil {
			if *name == "" {
				return badRequest("INVALID_NAME", "%s name is required", entity)
			}
			taken, err := nameTaken[T](tx, *name, id)
			if err != nil {
				return err
			}
			if taken {
				return alreadyExists(entity, "name", *name)
			}
			updates["name"] = *name
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&c).Updates(updates).Error
	})
}

func deleteCategory[T any](ctx context.Context, db *gorm.DB, entity string, id uint) error {
	res := db.WithContext(ctx).Delete(new(T), id)
	if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
		return badRequest("CATEGORY_IN_USE", "%s %d is still referenced", entity, id)
	}
	if res.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", entity, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(entity, "id", id)
	}
	logrus.WithFields(logrus.Fields{"entity": entity, "id": id}).Info("Category deleted")
	return nil
}
