package services

import (
	"errors"
	"strings"

	"github.com/khoward/worktrack/internal/models"
	"github.com/khoward/worktrack/pkg/response"
	"gorm.io/gorm"
)

// TaskService owns the tasks table. Edits and deletes follow the
// creator-or-admin rule; the status-only change is also open to the
// assignee; non-admins may only attach tasks to projects they created.
type TaskService struct {
	db    *gorm.DB
	hub   *ChangeHub
	audit *AuditService
}

func NewTaskService(db *gorm.DB, hub *ChangeHub, audit *AuditService) *TaskService {
	return &TaskService{db: db, hub: hub, audit: audit}
}

var taskFilterColumns = map[string]bool{
	"status":      true,
	"project_id":  true,
	"assignee_id": true,
	"user_id":     true,
}

var taskOrderColumns = map[string]bool{
	"created_at":  true,
	"updated_at":  true,
	"assign_date": true,
	"due_date":    true,
}

var taskPatchColumns = map[string]bool{
	"project_id":  true,
	"task_name":   true,
	"assign_date": true,
	"due_date":    true,
	"status":      true,
	"description": true,
	"assignee_id": true,
}

type CreateTaskRequest struct {
	ProjectID   string  `json:"project_id" binding:"required"`
	TaskName    string  `json:"task_name"`
	AssignDate  string  `json:"assign_date"`
	DueDate     *string `json:"due_date"`
	Status      string  `json:"status"`
	Description *string `json:"description"`
	AssigneeID  *string `json:"assignee_id"`
}

// List returns tasks matching the filters.
func (s *TaskService) List(filters map[string]string, order string) ([]models.Task, error) {
	var tasks []models.Task
	q := applyFilters(s.db.Model(&models.Task{}), filters, taskFilterColumns)
	q = applyOrder(q, order, taskOrderColumns, "assign_date DESC, created_at DESC")
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetByID returns a task by identity.
func (s *TaskService) GetByID(id string) (*models.Task, error) {
	var task models.Task
	if err := s.db.Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("Task not found.")
		}
		return nil, err
	}
	return &task, nil
}

// Create inserts a task owned by the actor, attached to a project the
// actor may use.
func (s *TaskService) Create(userID, role string, req *CreateTaskRequest, ip string) (*models.Task, error) {
	project, err := s.attachGate(userID, role, req.ProjectID, "You can only add tasks to your own projects.")
	if err != nil {
		return nil, err
	}
	if req.Status != "" && !models.ValidTaskStatus(req.Status) {
		return nil, response.NewValidation("Unknown task status.")
	}
	if err := validateTaskDates(req.AssignDate, req.DueDate); err != nil {
		return nil, err
	}

	task := models.Task{
		ProjectID:   req.ProjectID,
		TaskName:    strings.TrimSpace(req.TaskName),
		AssignDate:  req.AssignDate,
		DueDate:     req.DueDate,
		Status:      req.Status,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		UserID:      userID,
	}
	if task.TaskName == "" {
		task.TaskName = project.Name + " - Task"
	}
	if task.Status == "" {
		task.Status = models.TaskTodo
	}
	if task.AssignDate == "" {
		task.AssignDate = models.Today()
	}

	if err := s.db.Create(&task).Error; err != nil {
		return nil, err
	}

	s.hub.PublishInsert("tasks", task)
	s.audit.Record(userID, "tasks", task.ID, "insert", task, ip)
	return &task, nil
}

// Update applies a partial patch to a task the actor may edit. Moving
// the task to another project re-checks the attach rule.
func (s *TaskService) Update(userID, role, id string, patch map[string]interface{}, ip string) (*models.Task, error) {
	task, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && task.UserID != userID {
		return nil, response.NewForbidden("You can only edit your own task.")
	}

	updates := filterPatch(patch, taskPatchColumns)
	if status, ok := stringField(updates, "status"); ok && !models.ValidTaskStatus(status) {
		return nil, response.NewValidation("Unknown task status.")
	}
	if projectID, ok := stringField(updates, "project_id"); ok && projectID != task.ProjectID {
		if _, err := s.attachGate(userID, role, projectID, "You can only move tasks to your own projects."); err != nil {
			return nil, err
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(task).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	updated, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.hub.PublishUpdate("tasks", *updated)
	s.audit.Record(userID, "tasks", id, "update", updates, ip)
	return updated, nil
}

// SetStatus is the restricted status-only change, open to the creator,
// the assignee or an admin.
func (s *TaskService) SetStatus(userID, role, id, status string, ip string) (*models.Task, error) {
	task, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !models.ValidTaskStatus(status) {
		return nil, response.NewValidation("Unknown task status.")
	}

	allowed := role == models.RoleAdmin || task.UserID == userID ||
		(task.AssigneeID != nil && *task.AssigneeID == userID)
	if !allowed {
		return nil, response.NewForbidden("You can only update your own task.")
	}

	if err := s.db.Model(task).Update("status", status).Error; err != nil {
		return nil, err
	}

	updated, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.hub.PublishUpdate("tasks", *updated)
	s.audit.Record(userID, "tasks", id, "update", map[string]string{"status": status}, ip)
	return updated, nil
}

// Delete removes a task the actor may delete.
func (s *TaskService) Delete(userID, role, id string, ip string) error {
	task, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if role != models.RoleAdmin && task.UserID != userID {
		return response.NewForbidden("You can only delete your own task.")
	}

	if err := s.db.Delete(&models.Task{}, "id = ?", id).Error; err != nil {
		return err
	}

	s.hub.PublishDelete("tasks", id)
	s.audit.Record(userID, "tasks", id, "delete", task, ip)
	return nil
}

// attachGate loads the target project and checks the actor may attach
// tasks to it.
func (s *TaskService) attachGate(userID, role, projectID, message string) (*models.Project, error) {
	var project models.Project
	if err := s.db.Where("id = ?", projectID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewValidation("Please select a project.")
		}
		return nil, err
	}
	if role != models.RoleAdmin && project.UserID != userID {
		return nil, response.NewForbidden(message)
	}
	return &project, nil
}

func validateTaskDates(assignDate string, dueDate *string) error {
	if assignDate != "" && !models.ValidDate(assignDate) {
		return response.NewValidation("Invalid assign date.")
	}
	if dueDate != nil && *dueDate != "" {
		if !models.ValidDate(*dueDate) {
			return response.NewValidation("Invalid due date.")
		}
		assign := assignDate
		if assign == "" {
			assign = models.Today()
		}
		if models.DateBefore(*dueDate, assign) {
			return response.NewValidation("End date cannot be before the assign date.")
		}
	}
	return nil
}
