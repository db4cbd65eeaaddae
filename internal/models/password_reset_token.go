package models

import "time"

// PasswordResetToken is a single-use credential for resetting a password.
type PasswordResetToken struct {
	Token  string    `gorm:"primaryKey;size:64" json:"-"`
	Email  string    `gorm:"size:255;not null;index" json:"email"`
	Expiry time.Time `gorm:"not null" json:"expiry"`
}

// TableName returns the reset token table name.
func (PasswordResetToken) TableName() string {
	return "password_reset_token"
}

// Expired reports whether the token can no longer be redeemed at now.
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.Expiry)
}
