package services

import (
	"encoding/json"
	"time"

	"github.com/khoward/worktrack/internal/models"
	"github.com/khoward/worktrack/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// AuditService records who changed which row, and prunes old entries
// on a nightly schedule.
type AuditService struct {
	db            *gorm.DB
	retentionDays int
	cron          *cron.Cron
}

func NewAuditService(db *gorm.DB, retentionDays int) *AuditService {
	return &AuditService{db: db, retentionDays: retentionDays}
}

// Record writes one audit entry. Failures are logged, not propagated:
// an audit miss must never fail the mutation it describes.
func (s *AuditService) Record(actorID, table, rowID, action string, detail interface{}, ip string) {
	entry := models.AuditLog{
		ActorID:   actorID,
		TableName: table,
		RowID:     rowID,
		Action:    action,
		IP:        ip,
	}
	if detail != nil {
		if buf, err := json.Marshal(detail); err == nil {
			entry.Detail = string(buf)
		}
	}
	if err := s.db.Create(&entry).Error; err != nil {
		logger.Errorf("[Audit] Failed to record %s on %s/%s: %v", action, table, rowID, err)
	}
}

type AuditListRequest struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	TableName string `form:"table_name"`
	ActorID   string `form:"actor_id"`
}

type AuditListResponse struct {
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Items    []models.AuditLog `json:"items"`
}

// List returns paginated audit entries, newest first. Admin only at
// the route level.
func (s *AuditService) List(req *AuditListRequest) (*AuditListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	var entries []models.AuditLog
	var total int64

	query := s.db.Model(&models.AuditLog{})
	if req.TableName != "" {
		query = query.Where("table_name = ?", req.TableName)
	}
	if req.ActorID != "" {
		query = query.Where("actor_id = ?", req.ActorID)
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}

	return &AuditListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    entries,
	}, nil
}

// Cleanup removes entries older than the retention window and expired
// auth tokens.
func (s *AuditService) Cleanup() {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	if result.Error != nil {
		logger.Errorf("[Audit] Cleanup failed: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		logger.Infof("[Audit] Removed %d entries older than %d days", result.RowsAffected, s.retentionDays)
	}

	purged, err := models.PurgeExpiredTokens(s.db)
	if err != nil {
		logger.Errorf("[Audit] Token purge failed: %v", err)
		return
	}
	if purged > 0 {
		logger.Infof("[Audit] Purged %d expired auth tokens", purged)
	}
}

// StartScheduler runs Cleanup nightly. Call StopScheduler on shutdown.
func (s *AuditService) StartScheduler() error {
	if s.cron != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc("0 3 * * *", s.Cleanup); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	logger.Infof("[Audit] Cleanup scheduler started")
	return nil
}

// StopScheduler stops the cleanup schedule.
func (s *AuditService) StopScheduler() {
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
}
