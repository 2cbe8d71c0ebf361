// Package client keeps a local, filterable view of the tracker's
// projects, tasks and timesheets consistent with the remote store. All
// writes go local-then-remote: optimistic changes are rolled back when
// the store rejects them, and successful writes are reconciled against
// the authoritative row the store returns.
package client

import (
	"context"
	"encoding/json"
	"time"
)

// User is the authenticated identity as reported by the store.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    *string    `json:"full_name"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
}

// Session is an authenticated session against the remote store.
type Session struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

// AuthEvent describes an auth state transition.
type AuthEvent string

const (
	SignedIn  AuthEvent = "SIGNED_IN"
	SignedOut AuthEvent = "SIGNED_OUT"
)

// Filter is one exact-match column constraint on a select.
type Filter struct {
	Column string
	Value  string
}

// Order is one ordering term on a select.
type Order struct {
	Column string
	Desc   bool
}

// ChangeType enumerates realtime row change events.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// Change is one realtime row change notification.
type Change struct {
	Table string          `json:"table"`
	Type  ChangeType      `json:"type"`
	Row   json.RawMessage `json:"row"` // the authoritative row; id only for deletes
}

// SignUpParams are the inputs to account registration.
type SignUpParams struct {
	Email    string
	Password string
	FullName string
}

// Store is the consumed interface of the hosted backend: table CRUD,
// authentication and change subscription. Implementations must return
// *RemoteError for failures the store itself reported, so callers can
// surface the store's message to the user.
type Store interface {
	// CurrentUser returns the signed-in identity, or nil when signed out.
	CurrentUser(ctx context.Context) (*User, error)
	// CurrentSession returns the active session, or nil when signed out.
	CurrentSession(ctx context.Context) (*Session, error)
	// OnAuthStateChange registers a callback for sign-in/sign-out
	// transitions and returns an unsubscribe function.
	OnAuthStateChange(fn func(AuthEvent, *Session)) (unsubscribe func())

	// Select reads rows from a table into dest (a pointer to a slice).
	Select(ctx context.Context, table string, filters []Filter, order []Order, dest interface{}) error
	// Insert writes row and decodes the authoritative stored row into dest.
	Insert(ctx context.Context, table string, row interface{}, dest interface{}) error
	// Update applies a partial patch and decodes the authoritative row into dest.
	Update(ctx context.Context, table, id string, patch map[string]interface{}, dest interface{}) error
	// Delete removes a row by identity.
	Delete(ctx context.Context, table, id string) error

	SignUp(ctx context.Context, params SignUpParams) error
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	// SignInWithOAuth returns the provider authorization URL the caller
	// should navigate to; the session arrives through the callback flow.
	SignInWithOAuth(ctx context.Context, provider string) (string, error)
	// SignInWithOtp emails a one-time login code to the address.
	SignInWithOtp(ctx context.Context, email string) error
	// VerifyOtp exchanges an emailed one-time code for a session.
	VerifyOtp(ctx context.Context, email, code string) (*Session, error)
	SignOut(ctx context.Context) error
	ResetPasswordForEmail(ctx context.Context, email string) error
	// ResendConfirmation re-sends the account confirmation email.
	ResendConfirmation(ctx context.Context, email string) error
	// UpdatePassword sets a new password for the signed-in user.
	UpdatePassword(ctx context.Context, newPassword string) error

	// Subscribe streams row changes for the given tables until ctx is
	// cancelled. Optional: implementations without a realtime feed
	// return ErrRealtimeUnsupported.
	Subscribe(ctx context.Context, tables []string, fn func(Change)) error
}

// RemoteError is a failure reported by the remote store. Message is
// human-readable and safe to surface directly.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// ValidationError is a locally failed precondition; no remote call was
// issued and no state changed.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// AuthzError is a locally failed ownership-or-role check; no remote
// call was issued and no state changed.
type AuthzError string

func (e AuthzError) Error() string { return string(e) }

// ErrRealtimeUnsupported is returned by stores without a change feed.
var ErrRealtimeUnsupported = &RemoteError{Status: 0, Message: "realtime subscriptions not supported"}
