package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/kendall-kelly/kendalls-studio-api/services"
)

// CreateInvoiceRequest opens an empty invoice. UserID defaults to the caller.
type CreateInvoiceRequest struct {
	UserID        uint   `json:"user_id"`
	PaymentMethod string `json:"payment_method" binding:"max=50"`
	Notes         string `json:"notes" binding:"max=1000"`
}

type UpdateInvoiceRequest struct {
	PaymentMethod *string `json:"payment_method" binding:"omitempty,max=50"`
	Notes         *string `json:"notes" binding:"omitempty,max=1000"`
}

type InvoiceStatusRequest struct {
	Status models.InvoiceStatus `json:"status" binding:"required,oneof=WAITING PAID CANCELLED"`
}

type InvoiceController struct {
	invoices *services.InvoiceService
}

func NewInvoiceController(invoices *services.InvoiceService) *InvoiceController {
	return &InvoiceController{invoices: invoices}
}

// ListInvoices handles GET /api/v1/invoices?user_id=&status=&billable_id=
func (ctl *InvoiceController) ListInvoices(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var filter services.InvoiceFilter
	if filter.UserID, ok = queryID(c, "user_id"); !ok {
		return
	}
	if filter.BillableID, ok = queryID(c, "billable_id"); !ok {
		return
	}
	if raw := c.Query("status"); raw != "" {
		status := models.InvoiceStatus(raw)
		filter.Status = &status
	}

	invoices, err := ctl.invoices.List(c.Request.Context(), p, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, invoices)
}

// ListPaidInvoices handles GET /api/v1/invoices/paid (admin)
func (ctl *InvoiceController) ListPaidInvoices(c *gin.Context) {
	invoices, err := ctl.invoices.ListPaid(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, invoices)
}

// GetInvoice handles GET /api/v1/invoices/:id
func (ctl *InvoiceController) GetInvoice(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	invoice, err := ctl.invoices.Get(c.Request.Context(), p, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, invoice)
}

// GetInvoicePDF handles GET /api/v1/invoices/:id/pdf
func (ctl *InvoiceController) GetInvoicePDF(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	data, err := ctl.invoices.RenderPDF(c.Request.Context(), p, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%d.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", data)
}

// CreateInvoice handles POST /api/v1/invoices
func (ctl *InvoiceController) CreateInvoice(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if req.UserID == 0 {
		req.UserID = p.UserID
	}

	invoice, err := ctl.invoices.Create(c.Request.Context(), p, services.CreateInvoiceInput{
		UserID:        req.UserID,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, invoice)
}

// UpdateInvoice handles PATCH /api/v1/invoices/:id
func (ctl *InvoiceController) UpdateInvoice(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	invoice, err := ctl.invoices.Update(c.Request.Context(), p, id, services.UpdateInvoiceInput{
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, invoice)
}

// ChangeInvoiceStatus handles PATCH /api/v1/invoices/:id/status (admin)
func (ctl *InvoiceController) ChangeInvoiceStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req InvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	invoice, err := ctl.invoices.ChangeStatus(c.Request.Context(), p, id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, invoice)
}

// DeleteInvoice handles DELETE /api/v1/invoices/:id (admin)
func (ctl *InvoiceController) DeleteInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := ctl.invoices.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
