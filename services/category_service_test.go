package services

import (
	"context"
	"errors"
	"testing"

	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/kendall-kelly/kendalls-studio-api/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_AppointmentCategories(t *testing.T) {
	svc := NewCategoryService(testutil.SetupTestDB(t))
	ctx := context.Background()

	manicure, err := svc.CreateAppointmentCategory(ctx, models.AppointmentCategory{
		Name:         "Manicure",
		QuotePerHour: decimal.RequireFromString("60.00"),
	})
	require.NoError(t, err)
	assert.NotZero(t, manicure.ID)

	_, err = svc.CreateAppointmentCategory(ctx, models.AppointmentCategory{Name: "Manicure", QuotePerHour: decimal.NewFromInt(1)})
	assert.True(t, errors.Is(err, ErrAlreadyExists))
	assert.Equal(t, "APPOINTMENT_CATEGORY_ALREADY_EXISTS", ErrorCode(err))

	_, err = svc.CreateAppointmentCategory(ctx, models.AppointmentCategory{Name: "Free", QuotePerHour: decimal.NewFromInt(-1)})
	assert.Equal(t, "INVALID_QUOTE", ErrorCode(err))

	quote := decimal.RequireFromString("75.50")
	updated, err := svc.UpdateAppointmentCategory(ctx, manicure.ID, AppointmentCategoryUpdate{QuotePerHour: &quote})
	require.NoError(t, err)
	assert.Equal(t, "Manicure", updated.Name)
	assert.True(t, updated.QuotePerHour.Equal(quote))

	list, err := svc.ListAppointmentCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteAppointmentCategory(ctx, manicure.ID))
	_, err = svc.GetAppointmentCategory(ctx, manicure.ID)
	assert.Equal(t, "APPOINTMENT_CATEGORY_NOT_FOUND", ErrorCode(err))
	assert.True(t, errors.Is(svc.DeleteAppointmentCategory(ctx, manicure.ID), ErrNotFound))
}

func TestCategoryService_ProductCategories(t *testing.T) {
	svc := NewCategoryService(testutil.SetupTestDB(t))
	ctx := context.Background()

	polish, err := svc.CreateProductCategory(ctx, models.ProductCategory{Name: "Polish", VATPercentage: decimal.RequireFromString("0.21")})
	require.NoError(t, err)
	_, err = svc.CreateProductCategory(ctx, models.ProductCategory{Name: "Tools", VATPercentage: decimal.RequireFromString("0.10")})
	require.NoError(t, err)

	_, err = svc.CreateProductCategory(ctx, models.ProductCategory{Name: "Taxed", VATPercentage: decimal.RequireFromString("1.5")})
	assert.Equal(t, "INVALID_VAT", ErrorCode(err))

	taken := "Tools"
	_, err = svc.UpdateProductCategory(ctx, polish.ID, ProductCategoryUpdate{Name: &taken})
	assert.True(t, errors.Is(err, ErrAlreadyExists))

	same := "Polish"
	renamed, err := svc.UpdateProductCategory(ctx, polish.ID, ProductCategoryUpdate{Name: &same})
	require.NoError(t, err, "keeping the current name is not a conflict")
	assert.Equal(t, "Polish", renamed.Name)

	_, err = svc.UpdateProductCategory(ctx, 4242, ProductCategoryUpdate{Name: &same})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCategoryService_CourseCategories(t *testing.T) {
	svc := NewCategoryService(testutil.SetupTestDB(t))
	ctx := context.Background()

	_, err := svc.CreateCourseCategory(ctx, models.CourseCategory{Name: ""})
	assert.Equal(t, "INVALID_NAME", ErrorCode(err))

	art, err := svc.CreateCourseCategory(ctx, models.CourseCategory{Name: "Nail art", Description: "Beginner"})
	require.NoError(t, err)

	desc := "Advanced"
	updated, err := svc.UpdateCourseCategory(ctx, art.ID, CourseCategoryUpdate{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Advanced", updated.Description)

	list, err := svc.ListCourseCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Nail art", list[0].Name)
}
