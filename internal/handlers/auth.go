package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/khoward/worktrack/internal/middleware"
	"github.com/khoward/worktrack/internal/services"
	"github.com/khoward/worktrack/pkg/response"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Signup registers a new account and sends a confirmation mail.
// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.authService.Signup(&req); err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{"message": "Confirmation email sent."})
}

// Login exchanges credentials for a session.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	session, err := h.authService.Login(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, session)
}

// Confirm validates a mailed confirmation token.
// GET /api/auth/confirm?token=...
func (h *AuthHandler) Confirm(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.BadRequest(c, "Missing token.")
		return
	}

	if err := h.authService.Confirm(token); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Email confirmed. You can sign in now."})
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SendOtp mails a one-time sign-in code.
// POST /api/auth/otp
func (h *AuthHandler) SendOtp(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.authService.SendOtp(req.Email); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Check your email for the code."})
}

type verifyOtpRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// VerifyOtp exchanges a mailed code for a session.
// POST /api/auth/otp/verify
func (h *AuthHandler) VerifyOtp(c *gin.Context) {
	var req verifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	session, err := h.authService.VerifyOtp(req.Email, req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, session)
}

// ResendConfirmation mails a fresh confirmation link.
// POST /api/auth/resend
func (h *AuthHandler) ResendConfirmation(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.authService.ResendConfirmation(req.Email); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Confirmation email sent."})
}

// SendPasswordReset mails a reset link.
// POST /api/auth/reset
func (h *AuthHandler) SendPasswordReset(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.authService.SendPasswordReset(req.Email); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Check your email for the reset link."})
}

type resetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ConfirmPasswordReset sets a new password from a reset token.
// POST /api/auth/reset/confirm
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req resetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.authService.ConfirmPasswordReset(req.Token, req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Password updated. You can sign in now."})
}

type changePasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword updates the signed-in user's password.
// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.authService.ChangePassword(userID, req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Password updated."})
}

// Logout ends the session. Tokens are stateless so this only tells the
// client to discard its copy.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	response.Success(c, gin.H{"message": "Signed out."})
}

// Me returns the signed-in user's profile.
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)
	profile, err := h.authService.GetByID(userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, profile)
}
