package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/kendalls-studio-api/services"
	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name              string           `json:"name" binding:"required,max=255"`
	Description       string           `json:"description"`
	Price             *decimal.Decimal `json:"price" binding:"required"`
	Stock             int              `json:"stock" binding:"gte=0"`
	ProductCategoryID uint             `json:"product_category_id" binding:"required"`
}

type UpdateProductRequest struct {
	Name              *string          `json:"name" binding:"omitempty,min=1,max=255"`
	Description       *string          `json:"description"`
	Price             *decimal.Decimal `json:"price"`
	Stock             *int             `json:"stock" binding:"omitempty,gte=0"`
	ProductCategoryID *uint            `json:"product_category_id"`
}

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

// ListProducts handles GET /api/v1/products?category_id=
func (ctl *ProductController) ListProducts(c *gin.Context) {
	categoryID, ok := queryID(c, "category_id")
	if !ok {
		return
	}

	products, err := ctl.products.List(c.Request.Context(), categoryID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, products)
}

// GetProduct handles GET /api/v1/products/:id
func (ctl *ProductController) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := ctl.products.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, product)
}

// CreateProduct handles POST /api/v1/products (admin)
func (ctl *ProductController) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	product, err := ctl.products.Create(c.Request.Context(), services.CreateProductInput{
		Name:              req.Name,
		Description:       req.Description,
		Price:             *req.Price,
		Stock:             req.Stock,
		ProductCategoryID: req.ProductCategoryID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, product)
}

// UpdateProduct handles PATCH /api/v1/products/:id (admin)
func (ctl *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	product, err := ctl.products.Update(c.Request.Context(), id, services.UpdateProductInput{
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		Stock:             req.Stock,
		ProductCategoryID: req.ProductCategoryID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/:id (admin)
func (ctl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := ctl.products.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetProductImage handles PUT /api/v1/products/:id/image (admin, multipart
// field "image")
func (ctl *ProductController) SetProductImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "Image file is required")
		return
	}

	product, err := ctl.products.SetImage(c.Request.Context(), id, fileHeader)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, product)
}

// RemoveProductImage handles DELETE /api/v1/products/:id/image (admin)
func (ctl *ProductController) RemoveProductImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := ctl.products.RemoveImage(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, product)
}
