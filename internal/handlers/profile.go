package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/khoward/worktrack/internal/middleware"
	"github.com/khoward/worktrack/internal/services"
	"github.com/khoward/worktrack/pkg/response"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// List returns profiles matching the query filters.
// GET /api/profiles
func (h *ProfileHandler) List(c *gin.Context) {
	filters, order := listParams(c)
	profiles, err := h.profileService.List(filters, order)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, profiles)
}

// GetByID returns one profile.
// GET /api/profiles/:id
func (h *ProfileHandler) GetByID(c *gin.Context) {
	profile, err := h.profileService.GetByID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, profile)
}

// Update renames a profile or, for admins, changes its role.
// PUT /api/profiles/:id
func (h *ProfileHandler) Update(c *gin.Context) {
	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile, err := h.profileService.Update(middleware.GetUserID(c), middleware.GetRole(c), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, profile)
}
