package services

import (
	"context"
	"errors"
	"testing"

	"github.com/kendall-kelly/kendalls-studio-api/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_CRUD(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewProductService(db, NewImageService(NewMockFileStorage()))
	ctx := context.Background()
	polish := testutil.CreateProductCategory(t, db, "Polish", "0.21")
	tools := testutil.CreateProductCategory(t, db, "Tools", "0.10")

	red, err := svc.Create(ctx, CreateProductInput{
		Name:              "Red polish",
		Description:       "Glossy red",
		Price:             decimal.RequireFromString("18.00"),
		Stock:             5,
		ProductCategoryID: polish.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Polish", red.ProductCategory.Name)

	_, err = svc.Create(ctx, CreateProductInput{Name: "Red polish", Price: decimal.NewFromInt(1), ProductCategoryID: polish.ID})
	assert.Equal(t, "PRODUCT_ALREADY_EXISTS", ErrorCode(err))

	_, err = svc.Create(ctx, CreateProductInput{Name: "Orphan", Price: decimal.NewFromInt(1), ProductCategoryID: 4242})
	assert.Equal(t, "PRODUCT_CATEGORY_NOT_FOUND", ErrorCode(err))

	_, err = svc.Create(ctx, CreateProductInput{Name: "Cheap", Price: decimal.NewFromInt(-1), ProductCategoryID: polish.ID})
	assert.Equal(t, "INVALID_PRICE", ErrorCode(err))

	testutil.CreateProduct(t, db, "File", "4.00", tools)

	byCategory, err := svc.List(ctx, uintPtr(tools.ID))
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "File", byCategory[0].Name)

	_, err = svc.List(ctx, uintPtr(4242))
	assert.True(t, errors.Is(err, ErrNotFound))

	price := decimal.RequireFromString("19.50")
	updated, err := svc.Update(ctx, red.ID, UpdateProductInput{Price: &price, ProductCategoryID: &tools.ID})
	require.NoError(t, err)
	assert.Equal(t, "19.50", updated.Price.StringFixed(2))
	assert.Equal(t, "Tools", updated.ProductCategory.Name)

	taken := "File"
	_, err = svc.Update(ctx, red.ID, UpdateProductInput{Name: &taken})
	assert.True(t, errors.Is(err, ErrAlreadyExists))

	require.NoError(t, svc.Delete(ctx, red.ID))
	assert.True(t, errors.Is(svc.Delete(ctx, red.ID), ErrNotFound))
}

func TestProductService_Images(t *testing.T) {
	db := testutil.SetupTestDB(t)
	storage := NewMockFileStorage()
	svc := NewProductService(db, NewImageService(storage))
	ctx := context.Background()
	product := testutil.CreateProduct(t, db, "Top coat", "9.99", testutil.CreateProductCategory(t, db, "Polish", "0.21"))

	withImage, err := svc.SetImage(ctx, product.ID, newFileHeader(t, "top.png", []byte("first")))
	require.NoError(t, err)
	require.NotNil(t, withImage.ImageName)
	first := *withImage.ImageName
	assert.True(t, storage.FileExists(first))

	replaced, err := svc.SetImage(ctx, product.ID, newFileHeader(t, "top.webp", []byte("second")))
	require.NoError(t, err)
	require.NotNil(t, replaced.ImageName)
	assert.NotEqual(t, first, *replaced.ImageName)
	assert.False(t, storage.FileExists(first), "previous image is deleted")
	assert.True(t, storage.FileExists(*replaced.ImageName), "new image is kept")
	assert.Equal(t, 1, storage.Count())

	_, err = svc.SetImage(ctx, product.ID, newFileHeader(t, "top.txt", []byte("nope")))
	assert.Equal(t, "INVALID_FILE_FORMAT", ErrorCode(err))

	_, err = svc.SetImage(ctx, 4242, newFileHeader(t, "x.png", []byte("x")))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, 1, storage.Count(), "nothing is uploaded for a missing product")

	current := *replaced.ImageName
	cleared, err := svc.RemoveImage(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.ImageName)
	assert.Empty(t, cleared.ImageURL)
	assert.False(t, storage.FileExists(current))
	assert.Zero(t, storage.Count())

	again, err := svc.RemoveImage(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, again.ImageName)
}

func TestProductService_DeletedProductKeepsItsName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewProductService(db, NewImageService(NewMockFileStorage()))
	ctx := context.Background()
	category := testutil.CreateProductCategory(t, db, "Polish", "0.21")
	retired := testutil.CreateProduct(t, db, "Old coat", "5.00", category)
	current := testutil.CreateProduct(t, db, "New coat", "6.00", category)
	require.NoError(t, svc.Delete(ctx, retired.ID))

	_, err := svc.Create(ctx, CreateProductInput{Name: "Old coat", Price: decimal.NewFromInt(5), ProductCategoryID: category.ID})
	assert.True(t, errors.Is(err, ErrAlreadyExists))
	assert.Equal(t, "PRODUCT_ALREADY_EXISTS", ErrorCode(err))

	name := "Old coat"
	_, err = svc.Update(ctx, current.ID, UpdateProductInput{Name: &name})
	assert.True(t, errors.Is(err, ErrAlreadyExists))
	assert.Equal(t, "PRODUCT_ALREADY_EXISTS", ErrorCode(err))

	same := "New coat"
	updated, err := svc.Update(ctx, current.ID, UpdateProductInput{Name: &same})
	require.NoError(t, err)
	assert.Equal(t, "New coat", updated.Name)
}
