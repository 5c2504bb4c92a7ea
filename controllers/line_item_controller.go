package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/kendalls-studio-api/services"
)

// AddLineItemRequest references exactly one billable. Quantity applies to
// products; appointments and courses always count once.
type AddLineItemRequest struct {
	InvoiceID     uint  `json:"invoice_id" binding:"required"`
	AppointmentID *uint `json:"appointment_id"`
	ProductID     *uint `json:"product_id"`
	CourseID      *uint `json:"course_id"`
	Quantity      int   `json:"quantity" binding:"gte=0"`
}

type LineItemController struct {
	lineItems *services.LineItemService
}

func NewLineItemController(lineItems *services.LineItemService) *LineItemController {
	return &LineItemController{lineItems: lineItems}
}

// ListLineItems handles GET /api/v1/line-items?invoice_id=
func (ctl *LineItemController) ListLineItems(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	invoiceID, ok := queryID(c, "invoice_id")
	if !ok {
		return
	}

	items, err := ctl.lineItems.List(c.Request.Context(), p, invoiceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, items)
}

// GetLineItem handles GET /api/v1/line-items/:id
func (ctl *LineItemController) GetLineItem(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	item, err := ctl.lineItems.Get(c.Request.Context(), p, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, item)
}

// CreateLineItem handles POST /api/v1/line-items - prices the billable and
// updates the invoice total
func (ctl *LineItemController) CreateLineItem(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req AddLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	item, err := ctl.lineItems.Create(c.Request.Context(), p, services.AddLineItemInput{
		InvoiceID:     req.InvoiceID,
		AppointmentID: req.AppointmentID,
		ProductID:     req.ProductID,
		CourseID:      req.CourseID,
		Quantity:      req.Quantity,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, item)
}

// DeleteLineItem handles DELETE /api/v1/line-items/:id (admin)
func (ctl *LineItemController) DeleteLineItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := ctl.lineItems.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
