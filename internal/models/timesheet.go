package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Timesheet records hours worked on a project over one week. Unlike
// projects and tasks, the admin role grants no override here: only the
// creator may edit or delete a timesheet.
type Timesheet struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	ProjectID   string    `gorm:"size:36;index;not null" json:"project_id"`
	WeekStart   string    `gorm:"size:10;not null" json:"week_start"`
	WeekEnd     string    `gorm:"size:10;not null" json:"week_end"`
	HoursWorked *float64  `json:"hours_worked"`
	Notes       *string   `json:"notes"`
	UserID      string    `gorm:"size:36;index" json:"user_id"` // creator
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Timesheet) TableName() string { return "timesheets" }

func (t *Timesheet) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
