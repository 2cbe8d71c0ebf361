package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task belongs to a project and optionally to an assignee. The creator,
// the assignee and admins may move its status; edit and delete follow
// the creator-or-admin rule.
type Task struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	ProjectID   string    `gorm:"size:36;index;not null" json:"project_id"`
	TaskName    string    `gorm:"size:255;not null" json:"task_name"`
	AssignDate  string    `gorm:"size:10" json:"assign_date"`
	DueDate     *string   `gorm:"size:10" json:"due_date"`
	Status      string    `gorm:"size:20;default:todo" json:"status"` // todo, in_progress, done
	Description *string   `json:"description"`
	AssigneeID  *string   `gorm:"size:36;index" json:"assignee_id"`
	UserID      string    `gorm:"size:36;index" json:"user_id"` // creator
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
