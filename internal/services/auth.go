package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/khoward/worktrack/internal/config"
	"github.com/khoward/worktrack/internal/models"
	"github.com/khoward/worktrack/internal/utils"
	"github.com/khoward/worktrack/pkg/response"
	"gorm.io/gorm"
)

const (
	confirmTokenTTL = 24 * time.Hour
	otpTTL          = 10 * time.Minute
	resetTokenTTL   = time.Hour
	otpDigits       = 6
)

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
	mailer    *MailService
	queue     MailQueue
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig, mailer *MailService, queue MailQueue) *AuthService {
	return &AuthService{
		db:        db,
		jwtConfig: jwtCfg,
		mailer:    mailer,
		queue:     queue,
	}
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SessionPayload is what a successful authentication returns: a signed
// token plus the identity, mirrored into the envelope's data field.
type SessionPayload struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *UserPayload `json:"user"`
}

// UserPayload is the identity block inside a session.
type UserPayload struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    *string    `json:"full_name"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
}

func userPayload(p *models.Profile) *UserPayload {
	return &UserPayload{
		ID:          p.ID,
		Email:       p.Email,
		FullName:    p.FullName,
		ConfirmedAt: p.ConfirmedAt,
	}
}

// Signup registers a new profile and emails a confirmation link. The
// account stays unusable until the link is followed.
func (s *AuthService) Signup(req *SignupRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if len(req.Password) < 6 {
		return response.NewValidation("Password must be at least 6 characters.")
	}

	var existing models.Profile
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return response.NewConflict("An account with this email already exists.")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return err
	}

	profile := models.Profile{
		Email:        email,
		PasswordHash: hash,
		UserRole:     models.RoleEmployee,
	}
	if name := strings.TrimSpace(req.FullName); name != "" {
		profile.FullName = &name
	}
	if err := s.db.Create(&profile).Error; err != nil {
		return err
	}

	return s.issueMailToken(&profile, models.TokenConfirm)
}

// Login authenticates with email and password. Unconfirmed accounts
// are rejected after the credential check so the caller can steer the
// user toward resending the confirmation email.
func (s *AuthService) Login(req *LoginRequest) (*SessionPayload, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var profile models.Profile
	if err := s.db.Where("email = ?", email).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("Invalid login credentials")
		}
		return nil, err
	}

	if profile.PasswordHash == "" || !utils.CheckPassword(req.Password, profile.PasswordHash) {
		return nil, response.NewUnauthorized("Invalid login credentials")
	}

	if !profile.IsConfirmed() {
		return nil, response.NewForbidden("Email not confirmed")
	}

	return s.issueSession(&profile)
}

// Confirm consumes a confirmation token and activates the account.
func (s *AuthService) Confirm(token string) error {
	stored, err := s.consumeToken(token, models.TokenConfirm)
	if err != nil {
		return err
	}

	now := time.Now()
	return s.db.Model(&models.Profile{}).
		Where("id = ?", stored.UserID).
		Update("confirmed_at", now).Error
}

// SendOtp emails a one-time login code. Unknown addresses return
// success so the endpoint does not leak which emails are registered.
func (s *AuthService) SendOtp(email string) error {
	profile, err := s.findByEmail(email)
	if err != nil || profile == nil {
		return err
	}
	return s.issueMailToken(profile, models.TokenOTP)
}

// VerifyOtp exchanges an emailed code for a session. A valid code also
// confirms the address, since the user proved they can read its mail.
func (s *AuthService) VerifyOtp(email, code string) (*SessionPayload, error) {
	profile, err := s.findByEmail(email)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, response.NewUnauthorized("Invalid or expired code")
	}

	stored, err := s.consumeToken(code, models.TokenOTP)
	if err != nil || stored.UserID != profile.ID {
		return nil, response.NewUnauthorized("Invalid or expired code")
	}

	if !profile.IsConfirmed() {
		now := time.Now()
		profile.ConfirmedAt = &now
		s.db.Model(profile).Update("confirmed_at", now)
	}

	return s.issueSession(profile)
}

// ResendConfirmation re-sends the confirmation link for an
// unconfirmed account. Confirmed or unknown addresses return success.
func (s *AuthService) ResendConfirmation(email string) error {
	profile, err := s.findByEmail(email)
	if err != nil || profile == nil {
		return err
	}
	if profile.IsConfirmed() {
		return nil
	}
	return s.issueMailToken(profile, models.TokenConfirm)
}

// SendPasswordReset emails a reset link. Unknown addresses return
// success.
func (s *AuthService) SendPasswordReset(email string) error {
	profile, err := s.findByEmail(email)
	if err != nil || profile == nil {
		return err
	}
	return s.issueMailToken(profile, models.TokenReset)
}

// ConfirmPasswordReset consumes a reset token and sets the new
// password.
func (s *AuthService) ConfirmPasswordReset(token, newPassword string) error {
	if len(newPassword) < 6 {
		return response.NewValidation("Password must be at least 6 characters.")
	}

	stored, err := s.consumeToken(token, models.TokenReset)
	if err != nil {
		return err
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.db.Model(&models.Profile{}).
		Where("id = ?", stored.UserID).
		Update("password_hash", hash).Error
}

// ChangePassword sets a new password for the signed-in user.
func (s *AuthService) ChangePassword(userID, newPassword string) error {
	if len(newPassword) < 6 {
		return response.NewValidation("Password must be at least 6 characters.")
	}

	var profile models.Profile
	if err := s.db.Where("id = ?", userID).First(&profile).Error; err != nil {
		return response.NewNotFound("user not found")
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.db.Model(&profile).Update("password_hash", hash).Error
}

// GetByID retrieves a profile by identity.
func (s *AuthService) GetByID(id string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateAdminIfNotExists seeds a default admin account on first boot.
func (s *AuthService) CreateAdminIfNotExists() error {
	var count int64
	s.db.Model(&models.Profile{}).Where("user_role = ?", models.RoleAdmin).Count(&count)

	if count == 0 {
		hash, err := utils.HashPassword("admin123")
		if err != nil {
			return err
		}

		now := time.Now()
		name := "Administrator"
		admin := models.Profile{
			Email:        "admin@worktrack.local",
			PasswordHash: hash,
			FullName:     &name,
			UserRole:     models.RoleAdmin,
			ConfirmedAt:  &now,
		}
		return s.db.Create(&admin).Error
	}

	return nil
}

// issueSession signs a token carrying the profile's identity and role.
func (s *AuthService) issueSession(profile *models.Profile) (*SessionPayload, error) {
	token, err := utils.GenerateToken(profile.ID, profile.Email, profile.UserRole, s.jwtConfig.ExpireHour)
	if err != nil {
		return nil, err
	}
	return &SessionPayload{
		AccessToken: token,
		ExpiresAt:   time.Now().Add(time.Duration(s.jwtConfig.ExpireHour) * time.Hour),
		User:        userPayload(profile),
	}, nil
}

// issueMailToken creates a single-use token for the given purpose and
// enqueues the matching email.
func (s *AuthService) issueMailToken(profile *models.Profile, purpose string) error {
	var token string
	var err error
	var ttl time.Duration

	switch purpose {
	case models.TokenOTP:
		token, err = generateOTPCode()
		ttl = otpTTL
	case models.TokenReset:
		token, err = generateSecret()
		ttl = resetTokenTTL
	default:
		token, err = generateSecret()
		ttl = confirmTokenTTL
	}
	if err != nil {
		return err
	}

	record := models.AuthToken{
		UserID:    profile.ID,
		Purpose:   purpose,
		TokenHash: hashToken(token),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return err
	}

	var mail *MailTask
	switch purpose {
	case models.TokenOTP:
		mail = s.mailer.OTPMail(profile.Email, token)
	case models.TokenReset:
		mail = s.mailer.ResetMail(profile.Email, token)
	default:
		mail = s.mailer.ConfirmationMail(profile.Email, token)
	}
	return s.queue.Enqueue(mail)
}

// consumeToken validates and burns a single-use token.
func (s *AuthService) consumeToken(token, purpose string) (*models.AuthToken, error) {
	var stored models.AuthToken
	err := s.db.Where("token_hash = ? AND purpose = ?", hashToken(token), purpose).First(&stored).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("Invalid or expired token")
		}
		return nil, err
	}
	if !stored.Usable() {
		return nil, response.NewUnauthorized("Invalid or expired token")
	}

	now := time.Now()
	if err := s.db.Model(&stored).Update("consumed_at", now).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *AuthService) findByEmail(email string) (*models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var profile models.Profile
	err := s.db.Where("email = ?", email).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func generateSecret() (string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(randomBytes), nil
}

func generateOTPCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
