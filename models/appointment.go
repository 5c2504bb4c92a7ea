package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Appointment represents a booked appointment for a user
type Appointment struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	Date        time.Time           `gorm:"type:date;not null;index" json:"date"`
	Duration    int                 `gorm:"not null;check:duration > 0" json:"duration"` // minutes
	Status      AppointmentStatus   `gorm:"size:20;not null;default:'WAITING'" json:"status"`
	Price       decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"price"` // computed at creation
	Description string              `gorm:"size:500;not null" json:"description"`
	UserID      uint                `gorm:"not null;index" json:"user_id"`
	User        User                `gorm:"foreignKey:UserID" json:"-"`
	CategoryID  uint                `gorm:"not null;index" json:"category_id"`
	Category    AppointmentCategory `gorm:"foreignKey:CategoryID" json:"category"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	DeletedAt   gorm.DeletedAt      `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Appointment model
func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) BillableID() uint          { return a.ID }
func (a *Appointment) BillableKind() BillableKind { return BillableAppointment }
func (*Appointment) billable()                    {}
