package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BillableKind names the kind of thing a line item bills for.
type BillableKind string

const (
	BillableAppointment BillableKind = "appointment"
	BillableProduct     BillableKind = "product"
	BillableCourse      BillableKind = "course"
)

// Billable is the closed set of records a line item can reference:
// *Appointment, *Product and *Course.
type Billable interface {
	BillableID() uint
	BillableKind() BillableKind
	billable()
}

var (
	// ErrLineItemRelationship is returned when a line item would not reference
	// exactly one billable record.
	ErrLineItemRelationship = errors.New("line item must reference exactly one of appointment, product or course")

	// ErrUnsavedBillable is returned when a draft is built from a record that
	// has not been persisted yet.
	ErrUnsavedBillable = errors.New("billable record has not been saved")
)

// LineItem is a persisted billable entry on an invoice. It is never updated
// after creation.
type LineItem struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Quantity        int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	PriceAtPurchase decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_at_purchase"`
	InvoiceID       uint            `gorm:"not null;index" json:"invoice_id"`
	Invoice         *Invoice        `gorm:"foreignKey:InvoiceID" json:"-"`
	AppointmentID   *uint           `gorm:"index" json:"appointment_id,omitempty"`
	Appointment     *Appointment    `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
	ProductID       *uint           `gorm:"index" json:"product_id,omitempty"`
	Product         *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CourseID        *uint           `gorm:"index" json:"course_id,omitempty"`
	Course          *Course         `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TableName specifies the table name for the LineItem model
func (LineItem) TableName() string {
	return "line_items"
}

// BeforeSave rejects any write of a line item that does not reference
// exactly one billable record.
func (l *LineItem) BeforeSave(tx *gorm.DB) error {
	if n := l.relationCount(); n != 1 {
		return fmt.Errorf("%w: found %d", ErrLineItemRelationship, n)
	}
	return nil
}

// Kind reports which billable kind the line item references, or "" when the
// row is inconsistent.
func (l *LineItem) Kind() BillableKind {
	if l.relationCount() != 1 {
		return ""
	}
	switch {
	case l.AppointmentID != nil:
		return BillableAppointment
	case l.ProductID != nil:
		return BillableProduct
	default:
		return BillableCourse
	}
}

func (l *LineItem) relationCount() int {
	n := 0
	for _, id := range []*uint{l.AppointmentID, l.ProductID, l.CourseID} {
		if id != nil {
			n++
		}
	}
	return n
}

// LineItemDraft is a line item that has not been stored yet. It has no id and
// holds exactly one billable record.
type LineItemDraft struct {
	InvoiceID uint
	Item      Billable
	Quantity  int
}

// NewLineItemDraft builds a draft for item on the given invoice. Appointments
// and courses are single units, so their quantity is always 1.
func NewLineItemDraft(invoiceID uint, item Billable, quantity int) (*LineItemDraft, error) {
	if item == nil {
		return nil, ErrLineItemRelationship
	}
	if item.BillableID() == 0 {
		return nil, ErrUnsavedBillable
	}
	if item.BillableKind() != BillableProduct {
		quantity = 1
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	return &LineItemDraft{InvoiceID: invoiceID, Item: item, Quantity: quantity}, nil
}

// Record turns the draft into the row to insert, with its frozen unit price
// and subtotal.
func (d *LineItemDraft) Record(priceAtPurchase, subtotal decimal.Decimal) (*LineItem, error) {
	li := &LineItem{
		InvoiceID:       d.InvoiceID,
		Quantity:        d.Quantity,
		PriceAtPurchase: priceAtPurchase,
		Subtotal:        subtotal,
	}
	id := d.Item.BillableID()
	switch d.Item.(type) {
	case *Appointment:
		li.AppointmentID = &id
	case *Product:
		li.ProductID = &id
	case *Course:
		li.CourseID = &id
	default:
		return nil, ErrLineItemRelationship
	}
	return li, nil
}

// SumSubtotals adds up line item subtotals.
func SumSubtotals(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(li.Subtotal)
	}
	return total
}
