package services

import (
	"context"
	"fmt"
	"time"

	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceFilter narrows List. Nil fields are ignored.
type InvoiceFilter struct {
	UserID *uint
	Status *models.InvoiceStatus
	// BillableID matches invoices with a line item referencing an
	// appointment, product or course with this id
	BillableID *uint
}

type CreateInvoiceInput struct {
	UserID        uint
	PaymentMethod string
	Notes         string
}

type UpdateInvoiceInput struct {
	PaymentMethod *string
	Notes         *string
}

// InvoiceService manages invoices. Totals are never written directly; they are
// derived from line items by recalculateTotal.
type InvoiceService struct {
	db *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db}
}

func withLineItems(db *gorm.DB) *gorm.DB {
	return db.Preload("LineItems", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("line_items.id")
	}).Preload("LineItems.Appointment").Preload("LineItems.Product").Preload("LineItems.Course")
}

// List returns invoices matching f. Non-admin callers only ever see their own.
func (s *InvoiceService) List(ctx context.Context, p models.Principal, f InvoiceFilter) ([]models.Invoice, error) {
	q := withLineItems(s.db.WithContext(ctx)).Model(&models.Invoice{})

	if !p.IsAdmin() {
		q = q.Where("invoices.user_id = ?", p.UserID)
	} else if f.UserID != nil {
		q = q.Where("invoices.user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		if !f.Status.Valid() {
			return nil, badRequest("INVALID_STATUS", "invalid invoice status %q", *f.Status)
		}
		q = q.Where("invoices.status = ?", *f.Status)
	}
	if f.BillableID != nil {
		sub := s.db.Model(&models.LineItem{}).Select("invoice_id").
			Where("appointment_id = ? OR product_id = ? OR course_id = ?", *f.BillableID, *f.BillableID, *f.BillableID)
		q = q.Where("invoices.id IN (?)", sub)
	}

	var invoices []models.Invoice
	if err := q.Order("invoices.id").Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

// ListPaid returns every PAID invoice
func (s *InvoiceService) ListPaid(ctx context.Context) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := withLineItems(s.db.WithContext(ctx)).
		Where("status = ?", models.InvoiceStatusPaid).
		Order("id").
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list paid invoices: %w", err)
	}
	return invoices, nil
}

// Get loads an invoice with its line items
func (s *InvoiceService) Get(ctx context.Context, p models.Principal, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := withLineItems(s.db.WithContext(ctx)).First(&invoice, id).Error; err != nil {
		return nil, lookupError(err, "invoice", "id", id)
	}
	if !p.CanActFor(invoice.UserID) {
		return nil, forbidden("invoice %d belongs to another user", id)
	}
	return &invoice, nil
}

// Create stores an empty WAITING invoice with a zero total
func (s *InvoiceService) Create(ctx context.Context, p models.Principal, in CreateInvoiceInput) (*models.Invoice, error) {
	if !p.CanActFor(in.UserID) {
		return nil, forbidden("cannot create invoices for another user")
	}

	invoice := models.Invoice{
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
		UserID:        in.UserID,
		Status:        models.InvoiceStatusWaiting,
		TotalPrice:    decimal.Zero,
		LineItems:     []models.LineItem{},
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.User{}, in.UserID).Error; err != nil {
			return lookupError(err, "user", "id", in.UserID)
		}
		if err := tx.Omit(clause.Associations).Create(&invoice).Error; err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"invoice_id": invoice.ID, "user_id": invoice.UserID}).Info("Invoice created")
	return &invoice, nil
}

// Update changes payment method and notes
func (s *InvoiceService) Update(ctx context.Context, p models.Principal, id uint, in UpdateInvoiceInput) (*models.Invoice, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := lockInvoice(tx, id)
		if err != nil {
			return err
		}
		if !p.CanActFor(invoice.UserID) {
			return forbidden("invoice %d belongs to another user", id)
		}

		updates := map[string]interface{}{}
		if in.PaymentMethod != nil {
			updates["payment_method"] = *in.PaymentMethod
		}
		if in.Notes != nil {
			updates["notes"] = *in.Notes
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(invoice).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, p, id)
}

// ChangeStatus sets any valid status; there is no transition table
func (s *InvoiceService) ChangeStatus(ctx context.Context, p models.Principal, id uint, status models.InvoiceStatus) (*models.Invoice, error) {
	if !status.Valid() {
		return nil, badRequest("INVALID_STATUS", "invalid invoice status %q", status)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := lockInvoice(tx, id)
		if err != nil {
			return err
		}
		return tx.Model(invoice).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, p, id)
}

// Delete removes the invoice and all of its line items
func (s *InvoiceService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := lockInvoice(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.LineItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete line items: %w", err)
		}
		if err := tx.Delete(invoice).Error; err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}
		logrus.WithField("invoice_id", id).Info("Invoice deleted")
		return nil
	})
}

// lockInvoice loads the invoice row FOR UPDATE. SQLite ignores the lock.
func lockInvoice(tx *gorm.DB, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&invoice, id).Error; err != nil {
		return nil, lookupError(err, "invoice", "id", id)
	}
	return &invoice, nil
}

// recalculateTotal sets the invoice total to the sum of all of its line item
// subtotals. It must run inside the transaction holding the invoice lock.
func recalculateTotal(tx *gorm.DB, invoiceID uint) (decimal.Decimal, error) {
	var items []models.LineItem
	if err := tx.Select("subtotal").Where("invoice_id = ?", invoiceID).Find(&items).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to load line items: %w", err)
	}

	total := models.SumSubtotals(items).Round(2)
	err := tx.Model(&models.Invoice{}).
		Where("id = ?", invoiceID).
		Updates(map[string]interface{}{"total_price": total, "updated_at": time.Now()}).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to update invoice total: %w", err)
	}
	return total, nil
}
