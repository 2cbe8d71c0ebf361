package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/khoward/worktrack/internal/middleware"
	"github.com/khoward/worktrack/internal/services"
	"github.com/khoward/worktrack/pkg/response"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// List returns tasks matching the query filters.
// GET /api/tasks
func (h *TaskHandler) List(c *gin.Context) {
	filters, order := listParams(c)
	tasks, err := h.taskService.List(filters, order)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, tasks)
}

// GetByID returns one task.
// GET /api/tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	task, err := h.taskService.GetByID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, task)
}

// Create creates a task on a project the caller may attach to.
// POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Create(middleware.GetUserID(c), middleware.GetRole(c), &req, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, task)
}

// Update applies a partial update to a task.
// PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Update(middleware.GetUserID(c), middleware.GetRole(c), c.Param("id"), patch, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, task)
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus moves a task between columns. Assignees may do this even
// when they cannot edit the rest of the task.
// PUT /api/tasks/:id/status
func (h *TaskHandler) SetStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.SetStatus(middleware.GetUserID(c), middleware.GetRole(c), c.Param("id"), req.Status, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, task)
}

// Delete removes a task.
// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.taskService.Delete(middleware.GetUserID(c), middleware.GetRole(c), c.Param("id"), c.ClientIP()); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Task deleted."})
}
