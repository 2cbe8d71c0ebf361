package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/khoward/worktrack/internal/services"
	"github.com/khoward/worktrack/pkg/response"
)

type OAuthHandler struct {
	oauthService *services.OAuthService
}

func NewOAuthHandler(oauthService *services.OAuthService) *OAuthHandler {
	return &OAuthHandler{oauthService: oauthService}
}

// Authorize returns the provider's consent URL for the client to open.
// GET /api/oauth/:provider
func (h *OAuthHandler) Authorize(c *gin.Context) {
	url, err := h.oauthService.AuthURL(c.Param("provider"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"url": url})
}

// Callback completes the provider round trip and issues a session.
// GET /api/oauth/:provider/callback?code=...&state=...
func (h *OAuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		response.BadRequest(c, "Missing code or state.")
		return
	}

	session, err := h.oauthService.HandleCallback(c.Request.Context(), c.Param("provider"), code, state)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, session)
}
