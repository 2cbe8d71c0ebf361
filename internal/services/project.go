package services

import (
	"errors"
	"strings"

	"github.com/khoward/worktrack/internal/models"
	"github.com/khoward/worktrack/pkg/response"
	"gorm.io/gorm"
)

// ProjectService owns the projects table. Creation is admin-only;
// edits and deletes require the creator or an admin. The same rules
// exist client-side, both layers enforce them independently.
type ProjectService struct {
	db    *gorm.DB
	hub   *ChangeHub
	audit *AuditService
}

func NewProjectService(db *gorm.DB, hub *ChangeHub, audit *AuditService) *ProjectService {
	return &ProjectService{db: db, hub: hub, audit: audit}
}

var projectFilterColumns = map[string]bool{
	"status":  true,
	"user_id": true,
}

var projectOrderColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"start_date": true,
	"end_date":   true,
}

var projectPatchColumns = map[string]bool{
	"name":        true,
	"description": true,
	"status":      true,
	"start_date":  true,
	"end_date":    true,
}

type CreateProjectRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

// List returns projects matching the exact-match filters, ordered per
// the order spec.
func (s *ProjectService) List(filters map[string]string, order string) ([]models.Project, error) {
	var projects []models.Project
	q := applyFilters(s.db.Model(&models.Project{}), filters, projectFilterColumns)
	q = applyOrder(q, order, projectOrderColumns, "created_at DESC")
	if err := q.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// GetByID returns a project by identity.
func (s *ProjectService) GetByID(id string) (*models.Project, error) {
	var project models.Project
	if err := s.db.Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("Project not found.")
		}
		return nil, err
	}
	return &project, nil
}

// Create inserts a project owned by the actor. Admin only.
func (s *ProjectService) Create(userID, role string, req *CreateProjectRequest, ip string) (*models.Project, error) {
	if role != models.RoleAdmin {
		return nil, response.NewForbidden("Only admins can create projects.")
	}
	if err := validateProjectFields(req.Name, req.Status, req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	project := models.Project{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Status:      req.Status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		UserID:      userID,
	}
	if project.Status == "" {
		project.Status = models.ProjectInProgress
	}
	if project.StartDate == "" {
		project.StartDate = models.Today()
	}

	if err := s.db.Create(&project).Error; err != nil {
		return nil, err
	}

	s.hub.PublishInsert("projects", project)
	s.audit.Record(userID, "projects", project.ID, "insert", project, ip)
	return &project, nil
}

// Update applies a partial patch to a project the actor may edit.
func (s *ProjectService) Update(userID, role, id string, patch map[string]interface{}, ip string) (*models.Project, error) {
	project, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && project.UserID != userID {
		return nil, response.NewForbidden("You can only edit your own project.")
	}

	updates := filterPatch(patch, projectPatchColumns)
	if err := validateProjectPatch(updates); err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := s.db.Model(project).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	updated, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.hub.PublishUpdate("projects", *updated)
	s.audit.Record(userID, "projects", id, "update", updates, ip)
	return updated, nil
}

// Delete removes a project the actor may delete, along with its tasks
// and timesheets.
func (s *ProjectService) Delete(userID, role, id string, ip string) error {
	project, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if role != models.RoleAdmin && project.UserID != userID {
		return response.NewForbidden("You can only delete your own project.")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Timesheet{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	s.hub.PublishDelete("projects", id)
	s.audit.Record(userID, "projects", id, "delete", project, ip)
	return nil
}

func validateProjectFields(name, status, startDate string, endDate *string) error {
	if strings.TrimSpace(name) == "" {
		return response.NewValidation("Please enter a project name.")
	}
	if status != "" && !models.ValidProjectStatus(status) {
		return response.NewValidation("Unknown project status.")
	}
	if startDate != "" && !models.ValidDate(startDate) {
		return response.NewValidation("Invalid start date.")
	}
	if endDate != nil && *endDate != "" {
		if !models.ValidDate(*endDate) {
			return response.NewValidation("Invalid end date.")
		}
		if startDate != "" && models.DateBefore(*endDate, startDate) {
			return response.NewValidation("End date cannot be before the start date.")
		}
	}
	return nil
}

func validateProjectPatch(updates map[string]interface{}) error {
	if name, ok := stringField(updates, "name"); ok && strings.TrimSpace(name) == "" {
		return response.NewValidation("Please enter a project name.")
	}
	if status, ok := stringField(updates, "status"); ok && !models.ValidProjectStatus(status) {
		return response.NewValidation("Unknown project status.")
	}
	start, hasStart := stringField(updates, "start_date")
	end, hasEnd := stringField(updates, "end_date")
	if hasStart && !models.ValidDate(start) {
		return response.NewValidation("Invalid start date.")
	}
	if hasEnd && end != "" && !models.ValidDate(end) {
		return response.NewValidation("Invalid end date.")
	}
	if hasStart && hasEnd && models.DateBefore(end, start) {
		return response.NewValidation("End date cannot be before the start date.")
	}
	return nil
}

// filterPatch keeps only whitelisted columns of a raw JSON patch.
func filterPatch(patch map[string]interface{}, allowed map[string]bool) map[string]interface{} {
	updates := make(map[string]interface{}, len(patch))
	for k, v := range patch {
		if allowed[k] {
			updates[k] = v
		}
	}
	return updates
}

// stringField extracts a non-null string value from a patch.
func stringField(patch map[string]interface{}, key string) (string, bool) {
	v, ok := patch[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
