package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/kendall-kelly/kendalls-studio-api/services"
)

// CreateAppointmentRequest books an appointment. UserID defaults to the caller.
type CreateAppointmentRequest struct {
	UserID      uint   `json:"user_id"`
	CategoryID  uint   `json:"category_id" binding:"required"`
	Date        string `json:"date" binding:"required,datetime=2006-01-02"`
	Duration    int    `json:"duration" binding:"required,gt=0"`
	Description string `json:"description" binding:"max=500"`
}

type UpdateAppointmentRequest struct {
	Date        *string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Duration    *int    `json:"duration" binding:"omitempty,gt=0"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

type AppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required,oneof=WAITING CONFIRMED CANCELLED COMPLETED"`
}

type AppointmentController struct {
	appointments *services.AppointmentService
}

func NewAppointmentController(appointments *services.AppointmentService) *AppointmentController {
	return &AppointmentController{appointments: appointments}
}

// ListAppointments handles GET /api/v1/appointments?user_id=
func (ctl *AppointmentController) ListAppointments(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	userID, ok := queryID(c, "user_id")
	if !ok {
		return
	}

	appointments, err := ctl.appointments.List(c.Request.Context(), p, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, appointments)
}

// BookedDays handles GET /api/v1/appointments/booked-days
func (ctl *AppointmentController) BookedDays(c *gin.Context) {
	days, err := ctl.appointments.BookedDays(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	formatted := make([]string, 0, len(days))
	for _, d := range days {
		formatted = append(formatted, d.Format(DateLayout))
	}
	respond(c, http.StatusOK, formatted)
}

// GetAppointment handles GET /api/v1/appointments/:id
func (ctl *AppointmentController) GetAppointment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	appointment, err := ctl.appointments.Get(c.Request.Context(), p, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, appointment)
}

// CreateAppointment handles POST /api/v1/appointments
func (ctl *AppointmentController) CreateAppointment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if req.UserID == 0 {
		req.UserID = p.UserID
	}

	appointment, err := ctl.appointments.Create(c.Request.Context(), p, services.CreateAppointmentInput{
		UserID:      req.UserID,
		CategoryID:  req.CategoryID,
		Date:        parseDate(req.Date),
		Duration:    req.Duration,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, appointment)
}

// UpdateAppointment handles PATCH /api/v1/appointments/:id
func (ctl *AppointmentController) UpdateAppointment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	appointment, err := ctl.appointments.Update(c.Request.Context(), p, id, services.UpdateAppointmentInput{
		Date:        parseDatePtr(req.Date),
		Duration:    req.Duration,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, appointment)
}

// ChangeAppointmentStatus handles PATCH /api/v1/appointments/:id/status (admin)
func (ctl *AppointmentController) ChangeAppointmentStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req AppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	appointment, err := ctl.appointments.ChangeStatus(c.Request.Context(), p, id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, appointment)
}

// DeleteAppointment handles DELETE /api/v1/appointments/:id
func (ctl *AppointmentController) DeleteAppointment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := ctl.appointments.Delete(c.Request.Context(), p, id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
