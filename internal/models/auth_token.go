package models

import (
	"time"

	"gorm.io/gorm"
)

// Auth token purposes.
const (
	TokenConfirm = "confirm" // email confirmation link
	TokenOTP     = "otp"     // passwordless login code
	TokenReset   = "reset"   // password reset link
)

// AuthToken is a single-use emailed credential. Only the SHA-256 hash
// of the token is stored.
type AuthToken struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     string     `gorm:"size:36;index;not null" json:"user_id"`
	Purpose    string     `gorm:"size:20;index;not null" json:"purpose"` // confirm, otp, reset
	TokenHash  string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (AuthToken) TableName() string { return "auth_tokens" }

// Usable reports whether the token is unconsumed and unexpired.
func (t *AuthToken) Usable() bool {
	return t.ConsumedAt == nil && time.Now().Before(t.ExpiresAt)
}

// PurgeExpiredTokens deletes tokens past expiry or already consumed.
func PurgeExpiredTokens(db *gorm.DB) (int64, error) {
	res := db.Where("expires_at < ? OR consumed_at IS NOT NULL", time.Now()).Delete(&AuthToken{})
	return res.RowsAffected, res.Error
}
