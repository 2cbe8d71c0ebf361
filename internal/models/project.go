package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a unit of work owned by its creator. Only admins may
// create projects; admins may also edit or delete anyone's.
type Project struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description *string   `json:"description"`
	Status      string    `gorm:"size:20;default:in_progress" json:"status"` // in_progress, review, testing, complete
	StartDate   string    `gorm:"size:10" json:"start_date"`
	EndDate     *string   `gorm:"size:10" json:"end_date"`
	UserID      string    `gorm:"size:36;index" json:"user_id"` // creator
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
