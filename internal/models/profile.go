package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is a registered user. The ID doubles as the authentication
// subject; credential fields never leave the server.
type Profile struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	FullName     *string    `gorm:"size:255" json:"full_name"`
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	UserRole     string     `gorm:"size:20;default:employee" json:"user_role"` // admin, employee
	PasswordHash string     `gorm:"size:255" json:"-"`
	ConfirmedAt  *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// IsAdmin reports whether the profile carries the admin role.
func (p *Profile) IsAdmin() bool { return p.UserRole == RoleAdmin }

// IsConfirmed reports whether the account's email has been confirmed.
func (p *Profile) IsConfirmed() bool { return p.ConfirmedAt != nil }

// Label returns the display name: trimmed full name, else email.
func (p *Profile) Label() string {
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return p.Email
}
