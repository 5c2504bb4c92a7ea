package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/kendall-kelly/kendalls-studio-api/services"
	"github.com/shopspring/decimal"
)

type AppointmentCategoryRequest struct {
	Name         string           `json:"name" binding:"required,max=100"`
	QuotePerHour *decimal.Decimal `json:"quote_per_hour" binding:"required"`
}

type UpdateAppointmentCategoryRequest struct {
	Name         *string          `json:"name" binding:"omitempty,min=1,max=100"`
	QuotePerHour *decimal.Decimal `json:"quote_per_hour"`
}

type ProductCategoryRequest struct {
	Name          string           `json:"name" binding:"required,max=100"`
	VATPercentage *decimal.Decimal `json:"vat_percentage" binding:"required"`
}

type UpdateProductCategoryRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=100"`
	VATPercentage *decimal.Decimal `json:"vat_percentage"`
}

type CourseCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

type UpdateCourseCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
}

// CategoryController serves appointment, product and course categories
type CategoryController struct {
	categories *services.CategoryService
}

func NewCategoryController(categories *services.CategoryService) *CategoryController {
	return &CategoryController{categories: categories}
}

// ListAppointmentCategories handles GET /api/v1/appointment-categories
func (ctl *CategoryController) ListAppointmentCategories(c *gin.Context) {
	categories, err := ctl.categories.ListAppointmentCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, categories)
}

func (ctl *CategoryController) GetAppointmentCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	category, err := ctl.categories.GetAppointmentCategory(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, category)
}

func (ctl *CategoryController) CreateAppointmentCategory(c *gin.Context) {
	var req AppointmentCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	category, err := ctl.categories.CreateAppointmentCategory(c.Request.Context(), models.AppointmentCategory{
		Name:         req.Name,
		QuotePerHour: *req.QuotePerHour,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, category)
}

func (ctl *CategoryController) UpdateAppointmentCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateAppointmentCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	category, err := ctl.categories.UpdateAppointmentCategory(c.Request.Context(), id, services.AppointmentCategoryUpdate{
		Name:         req.Name,
		QuotePerHour: req.QuotePerHour,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, category)
}

func (ctl *CategoryController) DeleteAppointmentCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := ctl.categories.DeleteAppointmentCategory(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListProductCategories handles GET /api/v1/product-categories
func (ctl *CategoryController) ListProductCategories(c *gin.Context) {
	categories, err := ctl.categories.ListProductCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, categories)
}

func (ctl *CategoryController) GetProductCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	category, err := ctl.categories.GetProductCategory(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, category)
}

func (ctl *CategoryController) CreateProductCategory(c *gin.Context) {
	var req ProductCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	category, err := ctl.categories.CreateProductCategory(c.Request.Context(), models.ProductCategory{
		Name:          req.Name,
		VATPercentage: *req.VATPercentage,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, category)
}

func (ctl *CategoryController) UpdateProductCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateProductCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	category, err := ctl.categories.UpdateProductCategory(c.Request.Context(), id, services.ProductCategoryUpdate{
		Name:          req.Name,
		VATPercentage: req.VATPercentage,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, category)
}

func (ctl *CategoryController) DeleteProductCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := ctl.categories.DeleteProductCategory(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListCourseCategories handles GET /api/v1/course-categories
func (ctl *CategoryController) ListCourseCategories(c *gin.Context) {
	categories, err := ctl.categories.ListCourseCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, categories)
}

func (ctl *CategoryController) GetCourseCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	category, err := ctl.categories.GetCourseCategory(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, category)
}

func (ctl *CategoryController) CreateCourseCategory(c *gin.Context) {
	var req CourseCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	category, err := ctl.categories.CreateCourseCategory(c.Request.Context(), models.CourseCategory{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, category)
}

func (ctl *CategoryController) UpdateCourseCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateCourseCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	category, err := ctl.categories.UpdateCourseCategory(c.Request.Context(), id, services.CourseCategoryUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, category)
}

func (ctl *CategoryController) DeleteCourseCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := ctl.categories.DeleteCourseCategory(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
