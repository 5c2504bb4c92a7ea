package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/kendall-kelly/kendalls-studio-api/services"
	"github.com/shopspring/decimal"
)

type CreateCourseRequest struct {
	StartDate       string           `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate         string           `json:"end_date" binding:"required,datetime=2006-01-02"`
	EnrollmentPrice *decimal.Decimal `json:"enrollment_price" binding:"required"`
	Description     string           `json:"description" binding:"required,max=5000"`
	CategoryID      uint             `json:"category_id" binding:"required"`
}

type UpdateCourseRequest struct {
	StartDate       *string          `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate         *string          `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	EnrollmentPrice *decimal.Decimal `json:"enrollment_price"`
	Description     *string          `json:"description" binding:"omitempty,max=5000"`
	CategoryID      *uint            `json:"category_id"`
}

// EnrollRequest enrolls a user on a course. UserID defaults to the caller.
type EnrollRequest struct {
	UserID uint `json:"user_id"`
}

type EnrollmentStatusRequest struct {
	Status models.EnrollmentStatus `json:"status" binding:"required,oneof=WAITING ACCEPTED REJECTED CANCELLED"`
}

type CourseController struct {
	courses *services.CourseService
}

func NewCourseController(courses *services.CourseService) *CourseController {
	return &CourseController{courses: courses}
}

// ListCourses handles GET /api/v1/courses?user_id=&category_id=
func (ctl *CourseController) ListCourses(c *gin.Context) {
	userID, ok := queryID(c, "user_id")
	if !ok {
		return
	}
	categoryID, ok := queryID(c, "category_id")
	if !ok {
		return
	}

	courses, err := ctl.courses.List(c.Request.Context(), services.CourseFilter{UserID: userID, CategoryID: categoryID})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, courses)
}

// GetCourse handles GET /api/v1/courses/:id
func (ctl *CourseController) GetCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	course, err := ctl.courses.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, course)
}

// CreateCourse handles POST /api/v1/courses (admin)
func (ctl *CourseController) CreateCourse(c *gin.Context) {
	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	course, err := ctl.courses.Create(c.Request.Context(), services.CreateCourseInput{
		StartDate:       parseDate(req.StartDate),
		EndDate:         parseDate(req.EndDate),
		EnrollmentPrice: *req.EnrollmentPrice,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, course)
}

// UpdateCourse handles PATCH /api/v1/courses/:id (admin)
func (ctl *CourseController) UpdateCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	course, err := ctl.courses.Update(c.Request.Context(), id, services.UpdateCourseInput{
		StartDate:       parseDatePtr(req.StartDate),
		EndDate:         parseDatePtr(req.EndDate),
		EnrollmentPrice: req.EnrollmentPrice,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, course)
}

// DeleteCourse handles DELETE /api/v1/courses/:id (admin)
func (ctl *CourseController) DeleteCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := ctl.courses.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Enroll handles POST /api/v1/courses/:id/enrollments
func (ctl *CourseController) Enroll(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondValidationError(c, err)
		return
	}
	if req.UserID == 0 {
		req.UserID = p.UserID
	}

	enrollment, err := ctl.courses.Enroll(c.Request.Context(), p, id, req.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, enrollment)
}

// ChangeEnrollmentStatus handles PATCH /api/v1/courses/:id/enrollments/:user_id (admin)
func (ctl *CourseController) ChangeEnrollmentStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	var req EnrollmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	enrollment, err := ctl.courses.ChangeEnrollmentStatus(c.Request.Context(), id, userID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, enrollment)
}

// AddCourseImage handles POST /api/v1/courses/:id/images (admin, multipart
// field "image")
func (ctl *CourseController) AddCourseImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "Image file is required")
		return
	}

	course, err := ctl.courses.AddImage(c.Request.Context(), id, fileHeader)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, course)
}

// RemoveCourseImage handles DELETE /api/v1/courses/:id/images/:name (admin)
func (ctl *CourseController) RemoveCourseImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	course, err := ctl.courses.RemoveImage(c.Request.Context(), id, c.Param("name"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, course)
}
