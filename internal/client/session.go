package client

import (
	"context"
	"sync"

	"github.com/khoward/worktrack/internal/models"
)

// SessionState tracks the signed-in identity and resolves its role.
// It subscribes to the store's auth feed on Init and drops the cached
// role whenever the identity changes; a failed profile fetch degrades
// to non-admin rather than blocking.
type SessionState struct {
	store Store

	mu          sync.Mutex
	user        *User
	admin       bool
	resolvedFor string // user id the cached role belongs to
	unsubscribe func()
}

// NewSessionState creates a session tracker over the store.
func NewSessionState(store Store) *SessionState {
	return &SessionState{store: store}
}

// Init loads the current identity and subscribes to auth changes.
// Call Close to tear the subscription down.
func (s *SessionState) Init(ctx context.Context) error {
	user, err := s.store.CurrentUser(ctx)
	if err != nil {
		return err
	}
	s.setUser(ctx, user)

	s.mu.Lock()
	s.unsubscribe = s.store.OnAuthStateChange(func(event AuthEvent, session *Session) {
		switch event {
		case SignedIn:
			if session != nil {
				u := session.User
				s.setUser(context.Background(), &u)
			}
		case SignedOut:
			s.setUser(context.Background(), nil)
		}
	})
	s.mu.Unlock()
	return nil
}

// Close unsubscribes from auth state changes.
func (s *SessionState) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

func (s *SessionState) setUser(ctx context.Context, user *User) {
	s.mu.Lock()
	s.user = user
	sameIdentity := user != nil && s.resolvedFor == user.ID
	if user == nil {
		s.admin = false
		s.resolvedFor = ""
	}
	s.mu.Unlock()

	if user != nil && !sameIdentity {
		s.resolveRole(ctx, user.ID)
	}
}

// resolveRole reads the user's profile row. Errors leave the role at
// employee: denying elevated privileges beats blocking the session.
func (s *SessionState) resolveRole(ctx context.Context, userID string) {
	var profiles []models.Profile
	err := s.store.Select(ctx, "profiles", []Filter{{Column: "id", Value: userID}}, nil, &profiles)

	admin := false
	if err == nil && len(profiles) == 1 {
		admin = profiles[0].UserRole == models.RoleAdmin
	}

	s.mu.Lock()
	// The identity may have changed while the fetch was in flight.
	if s.user != nil && s.user.ID == userID {
		s.admin = admin
		s.resolvedFor = userID
	}
	s.mu.Unlock()
}

// User returns the current identity, or nil when signed out.
func (s *SessionState) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// IsAdmin reports whether the current identity carries the admin role.
func (s *SessionState) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admin
}

// Actor returns the permission-check view of the current identity.
// The zero Actor (signed out) fails every gate.
func (s *SessionState) Actor() Actor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return Actor{}
	}
	return Actor{ID: s.user.ID, Admin: s.admin}
}
