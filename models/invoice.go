package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice represents a billing invoice owned by a user. Its line items live
// and die with it.
type Invoice struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	PaymentMethod string          `gorm:"size:50;not null" json:"payment_method"`
	Notes         string          `gorm:"type:text" json:"notes"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	User          User            `gorm:"foreignKey:UserID" json:"-"`
	Status        InvoiceStatus   `gorm:"size:20;not null;default:'WAITING';index" json:"status"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_price"`
	LineItems     []LineItem      `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"line_items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// SumSubtotals adds up the subtotals of the loaded line items.
func (i *Invoice) SumSubtotals() decimal.Decimal {
	return SumSubtotals(i.LineItems)
}

// IsPaid returns true if the invoice has been paid.
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}
