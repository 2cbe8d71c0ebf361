package services

import (
	"errors"

	"github.com/khoward/worktrack/internal/models"
	"github.com/khoward/worktrack/pkg/response"
	"gorm.io/gorm"
)

// TimesheetService owns the timesheets table. Ownership is absolute
// here: the admin role grants no override, only the creator may edit
// or delete a row.
type TimesheetService struct {
	db    *gorm.DB
	hub   *ChangeHub
	audit *AuditService
}

func NewTimesheetService(db *gorm.DB, hub *ChangeHub, audit *AuditService) *TimesheetService {
	return &TimesheetService{db: db, hub: hub, audit: audit}
}

var timesheetFilterColumns = map[string]bool{
	"project_id": true,
	"user_id":    true,
}

var timesheetOrderColumns = map[string]bool{
	"created_at": true,
	"week_start": true,
	"week_end":   true,
}

var timesheetPatchColumns = map[string]bool{
	"project_id":   true,
	"week_start":   true,
	"week_end":     true,
	"hours_worked": true,
	"notes":        true,
}

type CreateTimesheetRequest struct {
	ProjectID   string   `json:"project_id" binding:"required"`
	WeekStart   string   `json:"week_start" binding:"required"`
	WeekEnd     string   `json:"week_end" binding:"required"`
	HoursWorked *float64 `json:"hours_worked"`
	Notes       *string  `json:"notes"`
}

// List returns timesheets matching the filters.
func (s *TimesheetService) List(filters map[string]string, order string) ([]models.Timesheet, error) {
	var sheets []models.Timesheet
	q := applyFilters(s.db.Model(&models.Timesheet{}), filters, timesheetFilterColumns)
	q = applyOrder(q, order, timesheetOrderColumns, "week_start DESC")
	if err := q.Find(&sheets).Error; err != nil {
		return nil, err
	}
	return sheets, nil
}

// GetByID returns a timesheet by identity.
func (s *TimesheetService) GetByID(id string) (*models.Timesheet, error) {
	var sheet models.Timesheet
	if err := s.db.Where("id = ?", id).First(&sheet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("Timesheet not found.")
		}
		return nil, err
	}
	return &sheet, nil
}

// Create inserts a timesheet owned by the actor.
func (s *TimesheetService) Create(userID string, req *CreateTimesheetRequest, ip string) (*models.Timesheet, error) {
	if err := validateWeek(req.WeekStart, req.WeekEnd, req.HoursWorked); err != nil {
		return nil, err
	}

	var count int64
	s.db.Model(&models.Project{}).Where("id = ?", req.ProjectID).Count(&count)
	if count == 0 {
		return nil, response.NewValidation("Please select a project.")
	}

	sheet := models.Timesheet{
		ProjectID:   req.ProjectID,
		WeekStart:   req.WeekStart,
		WeekEnd:     req.WeekEnd,
		HoursWorked: req.HoursWorked,
		Notes:       req.Notes,
		UserID:      userID,
	}

	if err := s.db.Create(&sheet).Error; err != nil {
		return nil, err
	}

	s.hub.PublishInsert("timesheets", sheet)
	s.audit.Record(userID, "timesheets", sheet.ID, "insert", sheet, ip)
	return &sheet, nil
}

// Update applies a partial patch to a timesheet. Creator only.
func (s *TimesheetService) Update(userID, id string, patch map[string]interface{}, ip string) (*models.Timesheet, error) {
	sheet, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sheet.UserID != userID {
		return nil, response.NewForbidden("Only creator can edit.")
	}

	updates := filterPatch(patch, timesheetPatchColumns)
	if err := validateWeekPatch(sheet, updates); err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := s.db.Model(sheet).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	updated, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.hub.PublishUpdate("timesheets", *updated)
	s.audit.Record(userID, "timesheets", id, "update", updates, ip)
	return updated, nil
}

// Delete removes a timesheet. Creator only.
func (s *TimesheetService) Delete(userID, id string, ip string) error {
	sheet, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if sheet.UserID != userID {
		return response.NewForbidden("Only creator can delete.")
	}

	if err := s.db.Delete(&models.Timesheet{}, "id = ?", id).Error; err != nil {
		return err
	}

	s.hub.PublishDelete("timesheets", id)
	s.audit.Record(userID, "timesheets", id, "delete", sheet, ip)
	return nil
}

func validateWeek(weekStart, weekEnd string, hours *float64) error {
	if weekStart == "" || weekEnd == "" {
		return response.NewValidation("Please fill in the week range.")
	}
	if !models.ValidDate(weekStart) || !models.ValidDate(weekEnd) {
		return response.NewValidation("Invalid week range.")
	}
	if models.DateBefore(weekEnd, weekStart) {
		return response.NewValidation("Week end cannot be before the week start.")
	}
	if hours != nil && *hours < 0 {
		return response.NewValidation("Hours must be a non-negative number.")
	}
	return nil
}

// validateWeekPatch checks a partial update against the row's current
// values for the fields the patch does not touch.
func validateWeekPatch(sheet *models.Timesheet, updates map[string]interface{}) error {
	weekStart := sheet.WeekStart
	if v, ok := stringField(updates, "week_start"); ok {
		weekStart = v
	}
	weekEnd := sheet.WeekEnd
	if v, ok := stringField(updates, "week_end"); ok {
		weekEnd = v
	}

	hours := sheet.HoursWorked
	if v, ok := updates["hours_worked"]; ok {
		if v == nil {
			hours = nil
		} else if f, ok := v.(float64); ok {
			hours = &f
		}
	}

	return validateWeek(weekStart, weekEnd, hours)
}
