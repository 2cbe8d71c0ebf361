package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/khoward/worktrack/internal/middleware"
	"github.com/khoward/worktrack/internal/services"
	"github.com/khoward/worktrack/pkg/response"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// List returns projects matching the query filters.
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	filters, order := listParams(c)
	projects, err := h.projectService.List(filters, order)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, projects)
}

// GetByID returns one project.
// GET /api/projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	project, err := h.projectService.GetByID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, project)
}

// Create creates a project. Admin only, enforced in the service.
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Create(middleware.GetUserID(c), middleware.GetRole(c), &req, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, project)
}

// Update applies a partial update. The body is taken as a raw map so
// explicit JSON nulls clear optional columns.
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Update(middleware.GetUserID(c), middleware.GetRole(c), c.Param("id"), patch, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, project)
}

// Delete removes a project and its tasks and timesheets.
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.projectService.Delete(middleware.GetUserID(c), middleware.GetRole(c), c.Param("id"), c.ClientIP()); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Project deleted."})
}
