package services

import (
	"context"
	"errors"
	"testing"

	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/kendall-kelly/kendalls-studio-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_AddMergesRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "shopper", models.RoleUser)
	product := testutil.CreateProduct(t, db, "Cuticle oil", "7.50", testutil.CreateProductCategory(t, db, "Care", "0.21"))

	first, err := svc.AddProduct(ctx, principalOf(user), user.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Quantity)
	assert.Equal(t, "Cuticle oil", first.Product.Name)

	second, err := svc.AddProduct(ctx, principalOf(user), user.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Quantity)

	var rows []models.Cart
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1, "one row per (user, product)")
	assert.Equal(t, 2, rows[0].Quantity)
}

func TestCartService_AddValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "shopper", models.RoleUser)
	other := testutil.CreateUser(t, db, "other", models.RoleUser)
	product := testutil.CreateProduct(t, db, "Cuticle oil", "7.50", testutil.CreateProductCategory(t, db, "Care", "0.21"))

	_, err := svc.AddProduct(ctx, principalOf(user), user.ID, 4242)
	assert.Equal(t, "PRODUCT_NOT_FOUND", ErrorCode(err))

	_, err = svc.AddProduct(ctx, adminPrincipal(), 4242, product.ID)
	assert.Equal(t, "USER_NOT_FOUND", ErrorCode(err))

	_, err = svc.AddProduct(ctx, principalOf(other), user.ID, product.ID)
	assert.True(t, errors.Is(err, ErrForbidden))

	var count int64
	require.NoError(t, db.Model(&models.Cart{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCartService_SetQuantityAndRemove(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "shopper", models.RoleUser)
	other := testutil.CreateUser(t, db, "other", models.RoleUser)
	cat := testutil.CreateProductCategory(t, db, "Care", "0.21")
	oil := testutil.CreateProduct(t, db, "Cuticle oil", "7.50", cat)
	cream := testutil.CreateProduct(t, db, "Hand cream", "12.00", cat)

	_, err := svc.AddProduct(ctx, principalOf(user), user.ID, oil.ID)
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, principalOf(other), other.ID, cream.ID)
	require.NoError(t, err)

	updated, err := svc.SetQuantity(ctx, principalOf(user), user.ID, oil.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)

	_, err = svc.SetQuantity(ctx, principalOf(user), user.ID, oil.ID, 0)
	assert.Equal(t, "INVALID_QUANTITY", ErrorCode(err))

	_, err = svc.SetQuantity(ctx, principalOf(user), user.ID, cream.ID, 2)
	assert.Equal(t, "CART_NOT_FOUND", ErrorCode(err))

	mine, err := svc.List(ctx, principalOf(user), nil)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 5, mine[0].Quantity)

	all, err := svc.List(ctx, adminPrincipal(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	theirs, err := svc.List(ctx, adminPrincipal(), uintPtr(other.ID))
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, cream.ID, theirs[0].ProductID)

	require.NoError(t, svc.RemoveProduct(ctx, principalOf(user), user.ID, oil.ID))
	err = svc.RemoveProduct(ctx, principalOf(user), user.ID, oil.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	all, err = svc.List(ctx, adminPrincipal(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 1, "removing a missing row leaves the store unchanged")
}
