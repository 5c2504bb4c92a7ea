package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/kendalls-studio-api/services"
)

// AddToCartRequest adds one unit of a product. UserID defaults to the caller.
type AddToCartRequest struct {
	UserID    uint `json:"user_id"`
	ProductID uint `json:"product_id" binding:"required"`
}

type SetCartQuantityRequest struct {
	UserID   uint `json:"user_id"`
	Quantity int  `json:"quantity" binding:"required,gte=1"`
}

type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

// cartOwner resolves the optional user_id query parameter, defaulting to the
// caller
func cartOwner(c *gin.Context, fallback uint) (uint, bool) {
	userID, ok := queryID(c, "user_id")
	if !ok {
		return 0, false
	}
	if userID == nil {
		return fallback, true
	}
	return *userID, true
}

// ListCart handles GET /api/v1/cart?user_id=
func (ctl *CartController) ListCart(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	userID, ok := queryID(c, "user_id")
	if !ok {
		return
	}

	carts, err := ctl.carts.List(c.Request.Context(), p, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, carts)
}

// AddToCart handles POST /api/v1/cart/items
func (ctl *CartController) AddToCart(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if req.UserID == 0 {
		req.UserID = p.UserID
	}

	cart, err := ctl.carts.AddProduct(c.Request.Context(), p, req.UserID, req.ProductID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, cart)
}

// SetCartQuantity handles PATCH /api/v1/cart/items/:product_id
func (ctl *CartController) SetCartQuantity(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	productID, ok := pathID(c, "product_id")
	if !ok {
		return
	}

	var req SetCartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if req.UserID == 0 {
		req.UserID = p.UserID
	}

	cart, err := ctl.carts.SetQuantity(c.Request.Context(), p, req.UserID, productID, req.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, cart)
}

// RemoveFromCart handles DELETE /api/v1/cart/items/:product_id?user_id=
func (ctl *CartController) RemoveFromCart(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	productID, ok := pathID(c, "product_id")
	if !ok {
		return
	}
	userID, ok := cartOwner(c, p.UserID)
	if !ok {
		return
	}

	if err := ctl.carts.RemoveProduct(c.Request.Context(), p, userID, productID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
