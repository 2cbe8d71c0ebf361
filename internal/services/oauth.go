package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/khoward/worktrack/internal/config"
	"github.com/khoward/worktrack/internal/models"
	"github.com/khoward/worktrack/pkg/logger"
	"github.com/khoward/worktrack/pkg/response"
	"gorm.io/gorm"
)

const oauthStateTTL = 10 * time.Minute

// OAuthService drives the authorization-code flow against configured
// identity providers. Accounts created this way are confirmed from the
// start, the provider already verified the address.
type OAuthService struct {
	db        *gorm.DB
	providers map[string]config.OAuth
	baseURL   string
	auth      *AuthService
	http      *http.Client

	mu     sync.Mutex
	states map[string]time.Time
}

func NewOAuthService(db *gorm.DB, cfg *config.Config, auth *AuthService) *OAuthService {
	return &OAuthService{
		db:        db,
		providers: cfg.OAuth,
		baseURL:   cfg.Server.BaseURL,
		auth:      auth,
		http:      &http.Client{Timeout: 15 * time.Second},
		states:    make(map[string]time.Time),
	}
}

// AuthURL builds the provider authorization URL for the client to
// navigate to.
func (s *OAuthService) AuthURL(provider string) (string, error) {
	p, ok := s.providers[provider]
	if !ok || p.ClientID == "" {
		return "", response.NewBadRequest(fmt.Sprintf("OAuth provider %q is not configured", provider))
	}

	state, err := generateSecret()
	if err != nil {
		return "", err
	}
	s.rememberState(state)

	q := url.Values{}
	q.Set("client_id", p.ClientID)
	q.Set("redirect_uri", s.redirectURI(provider))
	q.Set("response_type", "code")
	q.Set("state", state)
	if p.Scopes != "" {
		q.Set("scope", p.Scopes)
	}
	return p.AuthURL + "?" + q.Encode(), nil
}

// HandleCallback exchanges the authorization code, resolves the
// provider identity and returns a session for the matching profile,
// creating it on first login.
func (s *OAuthService) HandleCallback(ctx context.Context, provider, code, state string) (*SessionPayload, error) {
	p, ok := s.providers[provider]
	if !ok {
		return nil, response.NewBadRequest(fmt.Sprintf("OAuth provider %q is not configured", provider))
	}
	if !s.checkState(state) {
		return nil, response.NewUnauthorized("Invalid OAuth state")
	}

	accessToken, err := s.exchangeCode(ctx, provider, &p, code)
	if err != nil {
		return nil, err
	}

	email, name, err := s.fetchIdentity(ctx, &p, accessToken)
	if err != nil {
		return nil, err
	}
	if email == "" {
		return nil, response.NewUnauthorized("OAuth provider returned no email address")
	}

	profile, err := s.findOrCreateProfile(email, name)
	if err != nil {
		return nil, err
	}
	return s.auth.issueSession(profile)
}

func (s *OAuthService) exchangeCode(ctx context.Context, provider string, p *config.OAuth, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", p.ClientID)
	form.Set("client_secret", p.ClientSecret)
	form.Set("redirect_uri", s.redirectURI(provider))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", response.NewServerError("OAuth token exchange failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warnf("[OAuth] Token endpoint returned %d for %s", resp.StatusCode, provider)
		return "", response.NewUnauthorized("OAuth token exchange rejected")
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.AccessToken == "" {
		return "", response.NewServerError("OAuth token response malformed")
	}
	return out.AccessToken, nil
}

func (s *OAuthService) fetchIdentity(ctx context.Context, p *config.OAuth, accessToken string) (email, name string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.http.Do(req)
	if err != nil {
		return "", "", response.NewServerError("OAuth userinfo fetch failed")
	}
	defer resp.Body.Close()

	var info struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", "", response.NewServerError("OAuth userinfo response malformed")
	}
	return strings.ToLower(strings.TrimSpace(info.Email)), strings.TrimSpace(info.Name), nil
}

func (s *OAuthService) findOrCreateProfile(email, name string) (*models.Profile, error) {
	profile, err := s.auth.findByEmail(email)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	if profile == nil {
		profile = &models.Profile{
			Email:       email,
			UserRole:    models.RoleEmployee,
			ConfirmedAt: &now,
		}
		if name != "" {
			profile.FullName = &name
		}
		if err := s.db.Create(profile).Error; err != nil {
			return nil, err
		}
		return profile, nil
	}

	// A provider login proves the address, so an unconfirmed local
	// account becomes confirmed here.
	if !profile.IsConfirmed() {
		profile.ConfirmedAt = &now
		s.db.Model(profile).Update("confirmed_at", now)
	}
	return profile, nil
}

func (s *OAuthService) redirectURI(provider string) string {
	return fmt.Sprintf("%s/api/oauth/%s/callback", s.baseURL, provider)
}

func (s *OAuthService) rememberState(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for k, exp := range s.states {
		if now.After(exp) {
			delete(s.states, k)
		}
	}
	s.states[state] = now.Add(oauthStateTTL)
}

func (s *OAuthService) checkState(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.states[state]
	if !ok {
		return false
	}
	delete(s.states, state)
	return time.Now().Before(exp)
}
