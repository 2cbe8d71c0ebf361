package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/khoward/worktrack/internal/client"
	"github.com/khoward/worktrack/internal/services"
	"github.com/khoward/worktrack/pkg/response"
)

// ExportHandler produces CSV downloads of the filtered collections.
// The files match what the in-app export emits byte for byte.
type ExportHandler struct {
	projectService   *services.ProjectService
	taskService      *services.TaskService
	timesheetService *services.TimesheetService
	profileService   *services.ProfileService
}

func NewExportHandler(projects *services.ProjectService, tasks *services.TaskService, timesheets *services.TimesheetService, profiles *services.ProfileService) *ExportHandler {
	return &ExportHandler{
		projectService:   projects,
		taskService:      tasks,
		timesheetService: timesheets,
		profileService:   profiles,
	}
}

func sendCSV(c *gin.Context, kind, body string) {
	filename := client.ExportFilename(kind, time.Now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(body))
}

// Projects streams the filtered project list as CSV.
// GET /api/projects/export
func (h *ExportHandler) Projects(c *gin.Context) {
	filters, order := listParams(c)
	projects, err := h.projectService.List(filters, order)
	if err != nil {
		response.Error(c, err)
		return
	}

	sendCSV(c, "projects", client.ProjectsCSV(projects))
}

// Tasks streams the filtered task list as CSV. Project names and
// assignee labels are resolved the way the client renders them.
// GET /api/tasks/export
func (h *ExportHandler) Tasks(c *gin.Context) {
	filters, order := listParams(c)
	tasks, err := h.taskService.List(filters, order)
	if err != nil {
		response.Error(c, err)
		return
	}

	labels, err := h.buildLabels()
	if err != nil {
		response.Error(c, err)
		return
	}

	sendCSV(c, "tasks", client.TasksCSV(tasks, labels))
}

// Timesheets streams the filtered timesheet list as CSV.
// GET /api/timesheets/export
func (h *ExportHandler) Timesheets(c *gin.Context) {
	filters, order := listParams(c)
	sheets, err := h.timesheetService.List(filters, order)
	if err != nil {
		response.Error(c, err)
		return
	}

	labels, err := h.buildLabels()
	if err != nil {
		response.Error(c, err)
		return
	}

	sendCSV(c, "timesheets", client.TimesheetsCSV(sheets, labels))
}

func (h *ExportHandler) buildLabels() (client.Labels, error) {
	projects, err := h.projectService.List(nil, "")
	if err != nil {
		return client.Labels{}, err
	}
	profiles, err := h.profileService.List(nil, "")
	if err != nil {
		return client.Labels{}, err
	}
	return client.BuildLabels(projects, profiles), nil
}
