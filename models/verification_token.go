package models

import "time"

// VerificationToken is a one-time code used to confirm a user's email address
type VerificationToken struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Token      string    `gorm:"size:16;uniqueIndex;not null" json:"-"`
	UserID     uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"-"`
	Expiration time.Time `gorm:"not null;index" json:"expiration"`
}

// TableName specifies the table name for the VerificationToken model
func (VerificationToken) TableName() string {
	return "verification_tokens"
}

// Expired reports whether the token is no longer usable at now
func (v VerificationToken) Expired(now time.Time) bool {
	return v.Expiration.Before(now)
}
