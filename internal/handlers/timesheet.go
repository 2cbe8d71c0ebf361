package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/khoward/worktrack/internal/middleware"
	"github.com/khoward/worktrack/internal/services"
	"github.com/khoward/worktrack/pkg/response"
)

type TimesheetHandler struct {
	timesheetService *services.TimesheetService
}

func NewTimesheetHandler(timesheetService *services.TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{timesheetService: timesheetService}
}

// List returns timesheets matching the query filters.
// GET /api/timesheets
func (h *TimesheetHandler) List(c *gin.Context) {
	filters, order := listParams(c)
	sheets, err := h.timesheetService.List(filters, order)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, sheets)
}

// GetByID returns one timesheet.
// GET /api/timesheets/:id
func (h *TimesheetHandler) GetByID(c *gin.Context) {
	sheet, err := h.timesheetService.GetByID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, sheet)
}

// Create records a week of hours for the caller.
// POST /api/timesheets
func (h *TimesheetHandler) Create(c *gin.Context) {
	var req services.CreateTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sheet, err := h.timesheetService.Create(middleware.GetUserID(c), &req, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, sheet)
}

// Update applies a partial update. Creator only, admins included.
// PUT /api/timesheets/:id
func (h *TimesheetHandler) Update(c *gin.Context) {
	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sheet, err := h.timesheetService.Update(middleware.GetUserID(c), c.Param("id"), patch, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, sheet)
}

// Delete removes a timesheet. Creator only.
// DELETE /api/timesheets/:id
func (h *TimesheetHandler) Delete(c *gin.Context) {
	if err := h.timesheetService.Delete(middleware.GetUserID(c), c.Param("id"), c.ClientIP()); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Timesheet deleted."})
}
