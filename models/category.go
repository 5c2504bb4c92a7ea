package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AppointmentCategory is a kind of appointment with its hourly rate
type AppointmentCategory struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:100;uniqueIndex;not null" json:"name"`
	QuotePerHour decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"quote_per_hour"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the AppointmentCategory model
func (AppointmentCategory) TableName() string {
	return "appointment_categories"
}

// ProductCategory groups products and carries the VAT applied to them.
// VATPercentage is a fraction: 0.21 means 21%.
type ProductCategory struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:100;uniqueIndex;not null" json:"name"`
	VATPercentage decimal.Decimal `gorm:"type:decimal(5,4);not null" json:"vat_percentage"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the ProductCategory model
func (ProductCategory) TableName() string {
	return "product_categories"
}

// CourseCategory groups courses
type CourseCategory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the CourseCategory model
func (CourseCategory) TableName() string {
	return "course_categories"
}
