package models

import "time"

// AuditLog records one settled mutation against a tracked table.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ActorID   string    `gorm:"size:36;index" json:"actor_id"`
	TableName string    `gorm:"size:50;index" json:"table_name"` // projects, tasks, timesheets
	RowID     string    `gorm:"size:36;index" json:"row_id"`
	Action    string    `gorm:"size:20" json:"action"` // insert, update, delete
	Detail    string    `json:"detail"`                // JSON patch or row snapshot
	IP        string    `gorm:"size:45" json:"ip"`
	CreatedAt time.Time `json:"created_at"`
}
