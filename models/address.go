package models

import "time"

// AddressType distinguishes a user's main address from additional ones
type AddressType string

const (
	AddressTypePrimary   AddressType = "PRIMARY"
	AddressTypeSecondary AddressType = "SECONDARY"
)

// Address is a postal address owned by a user
type Address struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Street      string      `gorm:"size:255;not null" json:"street"`
	City        string      `gorm:"size:100;not null" json:"city"`
	State       string      `gorm:"size:100" json:"state"`
	ZipCode     string      `gorm:"size:20;not null" json:"zip_code"`
	Country     string      `gorm:"size:100;not null" json:"country"`
	AddressType AddressType `gorm:"size:20;not null;default:'PRIMARY'" json:"address_type"`
	UserID      uint        `gorm:"not null;index" json:"user_id"`
	User        User        `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TableName specifies the table name for the Address model
func (Address) TableName() string {
	return "addresses"
}

// Valid reports whether t is a known address type
func (t AddressType) Valid() bool {
	return t == AddressTypePrimary || t == AddressTypeSecondary
}

// Lines formats the address for printing
func (a *Address) Lines() []string {
	lines := []string{a.Street}
	city := a.ZipCode + " " + a.City
	if a.State != "" {
		city += ", " + a.State
	}
	return append(lines, city, a.Country)
}
