package services

import (
	"errors"
	"strings"

	"github.com/khoward/worktrack/internal/models"
	"github.com/khoward/worktrack/pkg/response"
	"gorm.io/gorm"
)

// ProfileService exposes the directory of registered users. Reads are
// open to everyone signed in so the client can resolve roles and
// assignee labels; role changes are admin only.
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

var profileFilterColumns = map[string]bool{
	"id":        true,
	"email":     true,
	"user_role": true,
}

var profileOrderColumns = map[string]bool{
	"created_at": true,
	"email":      true,
	"full_name":  true,
}

// List returns profiles matching the filters. Password hashes and
// confirmation timestamps never serialize.
func (s *ProfileService) List(filters map[string]string, order string) ([]models.Profile, error) {
	var profiles []models.Profile
	q := applyFilters(s.db.Model(&models.Profile{}), filters, profileFilterColumns)
	q = applyOrder(q, order, profileOrderColumns, "created_at ASC")
	if err := q.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetByID returns one profile.
func (s *ProfileService) GetByID(id string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.Where("id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("Profile not found.")
		}
		return nil, err
	}
	return &profile, nil
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
	UserRole *string `json:"user_role"`
}

// Update edits a profile. Users may rename themselves; only admins may
// touch anyone else or change a role.
func (s *ProfileService) Update(actorID, actorRole, id string, req *UpdateProfileRequest) (*models.Profile, error) {
	if actorRole != models.RoleAdmin && actorID != id {
		return nil, response.NewForbidden("You can only edit your own profile.")
	}

	profile, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			updates["full_name"] = nil
		} else {
			updates["full_name"] = name
		}
	}
	if req.UserRole != nil {
		if actorRole != models.RoleAdmin {
			return nil, response.NewForbidden("Only admins can change roles.")
		}
		role := *req.UserRole
		if role != models.RoleAdmin && role != models.RoleEmployee {
			return nil, response.NewValidation("Unknown role.")
		}
		updates["user_role"] = role
	}

	if len(updates) > 0 {
		if err := s.db.Model(profile).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(id)
}
