package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/kendall-kelly/kendalls-studio-api/metrics"
	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AddLineItemInput asks for one billable to be added to an invoice. Exactly
// one of AppointmentID, ProductID and CourseID must be set.
type AddLineItemInput struct {
	InvoiceID     uint
	AppointmentID *uint
	ProductID     *uint
	CourseID      *uint
	Quantity      int
}

// Validate checks the exactly-one rule and the product quantity
func (in AddLineItemInput) Validate() error {
	n := 0
	for _, id := range []*uint{in.AppointmentID, in.ProductID, in.CourseID} {
		if id != nil {
			n++
		}
	}
	if n != 1 {
		return badRequest("INVALID_LINE_ITEM", "line item must reference exactly one of appointment, product or course, got %d", n)
	}
	if in.ProductID != nil && in.Quantity <= 0 {
		return badRequest("INVALID_QUANTITY", "quantity must be a positive integer")
	}
	return nil
}

// LineItemService adds and removes invoice line items, keeping the invoice
// total equal to the sum of its line item subtotals.
type LineItemService struct {
	db *gorm.DB
}

func NewLineItemService(db *gorm.DB) *LineItemService {
	return &LineItemService{db: db}
}

// Create prices the referenced billable, stores the line item and recomputes
// the invoice total, all in one transaction.
func (s *LineItemService) Create(ctx context.Context, p models.Principal, in AddLineItemInput) (*models.LineItem, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var created *models.LineItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := lockInvoice(tx, in.InvoiceID)
		if err != nil {
			return err
		}
		if !p.CanActFor(invoice.UserID) {
			return forbidden("invoice %d belongs to another user", invoice.ID)
		}

		item, err := loadBillable(tx, in)
		if err != nil {
			return err
		}

		draft, err := models.NewLineItemDraft(invoice.ID, item, in.Quantity)
		if err != nil {
			return badRequest("INVALID_LINE_ITEM", "%v", err)
		}
		unit, subtotal, err := PriceLine(draft.Item, draft.Quantity)
		if err != nil {
			return err
		}
		li, err := draft.Record(unit, subtotal)
		if err != nil {
			return consistency("%v", err)
		}

		if err := tx.Omit(clause.Associations).Create(li).Error; err != nil {
			if errors.Is(err, models.ErrLineItemRelationship) {
				return consistency("%v", err)
			}
			return fmt.Errorf("failed to create line item: %w", err)
		}

		total, err := recalculateTotal(tx, invoice.ID)
		if err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"invoice_id":   invoice.ID,
			"line_item_id": li.ID,
			"kind":         li.Kind(),
			"subtotal":     li.Subtotal.StringFixed(2),
			"total":        total.StringFixed(2),
		}).Info("Line item added")
		created = li
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.LineItemsCreated.WithLabelValues(string(created.Kind())).Inc()
	return s.Get(ctx, p, created.ID)
}

// Delete removes a line item and recomputes its invoice total
func (s *LineItemService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var li models.LineItem
		if err := tx.First(&li, id).Error; err != nil {
			return lookupError(err, "line item", "id", id)
		}
		if _, err := lockInvoice(tx, li.InvoiceID); err != nil {
			return err
		}
		if err := tx.Delete(&li).Error; err != nil {
			return fmt.Errorf("failed to delete line item: %w", err)
		}
		total, err := recalculateTotal(tx, li.InvoiceID)
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"invoice_id":   li.InvoiceID,
			"line_item_id": id,
			"total":        total.StringFixed(2),
		}).Info("Line item removed")
		return nil
	})
	if err != nil {
		return err
	}
	metrics.LineItemsDeleted.Inc()
	return nil
}

// List returns line items, optionally for one invoice. Non-admin callers
// only see line items on their own invoices.
func (s *LineItemService) List(ctx context.Context, p models.Principal, invoiceID *uint) ([]models.LineItem, error) {
	q := s.db.WithContext(ctx).Model(&models.LineItem{}).
		Preload("Appointment").Preload("Product").Preload("Course")

	if invoiceID != nil {
		q = q.Where("line_items.invoice_id = ?", *invoiceID)
	}
	if !p.IsAdmin() {
		q = q.Joins("JOIN invoices ON invoices.id = line_items.invoice_id").
			Where("invoices.user_id = ?", p.UserID)
	}

	var items []models.LineItem
	if err := q.Order("line_items.id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list line items: %w", err)
	}
	return items, nil
}

// Get loads one line item with the billable it references
func (s *LineItemService) Get(ctx context.Context, p models.Principal, id uint) (*models.LineItem, error) {
	var li models.LineItem
	err := s.db.WithContext(ctx).
		Preload("Invoice").Preload("Appointment").Preload("Product").Preload("Course").
		First(&li, id).Error
	if err != nil {
		return nil, lookupError(err, "line item", "id", id)
	}
	if li.Invoice == nil || !p.CanActFor(li.Invoice.UserID) {
		return nil, forbidden("line item %d belongs to another user", id)
	}
	return &li, nil
}

func loadBillable(tx *gorm.DB, in AddLineItemInput) (models.Billable, error) {
	switch {
	case in.AppointmentID != nil:
		var a models.Appointment
		if err := tx.First(&a, *in.AppointmentID).Error; err != nil {
			return nil, lookupError(err, "appointment", "id", *in.AppointmentID)
		}
		return &a, nil
	case in.ProductID != nil:
		var pr models.Product
		if err := tx.Preload("ProductCategory").First(&pr, *in.ProductID).Error; err != nil {
			return nil, lookupError(err, "product", "id", *in.ProductID)
		}
		return &pr, nil
	case in.CourseID != nil:
		var c models.Course
		if err := tx.First(&c, *in.CourseID).Error; err != nil {
			return nil, lookupError(err, "course", "id", *in.CourseID)
		}
		return &c, nil
	}
	return nil, badRequest("INVALID_LINE_ITEM", "line item must reference exactly one of appointment, product or course")
}
