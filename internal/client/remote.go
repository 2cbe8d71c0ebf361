package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// envelope mirrors the API's unified response format.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// HTTPStore is the Store implementation backed by the worktrack API.
// It keeps the current session in memory and notifies registered auth
// listeners when it changes. Safe for concurrent use.
type HTTPStore struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	session      *Session
	listeners    map[int]func(AuthEvent, *Session)
	nextListener int
}

// NewHTTPStore creates a store client for the given API base URL, e.g.
// "http://localhost:8080".
func NewHTTPStore(baseURL string) *HTTPStore {
	return &HTTPStore{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
		listeners: make(map[int]func(AuthEvent, *Session)),
	}
}

func (s *HTTPStore) CurrentUser(ctx context.Context) (*User, error) {
	sess, err := s.CurrentSession(ctx)
	if err != nil || sess == nil {
		return nil, err
	}
	u := sess.User
	return &u, nil
}

func (s *HTTPStore) CurrentSession(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, nil
	}
	if !s.session.ExpiresAt.IsZero() && time.Now().After(s.session.ExpiresAt) {
		s.session = nil
		return nil, nil
	}
	sess := *s.session
	return &sess, nil
}

func (s *HTTPStore) OnAuthStateChange(fn func(AuthEvent, *Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// setSession swaps the session and fires listeners outside the lock.
func (s *HTTPStore) setSession(sess *Session, event AuthEvent) {
	s.mu.Lock()
	s.session = sess
	fns := make([]func(AuthEvent, *Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(event, sess)
	}
}

func (s *HTTPStore) accessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ""
	}
	return s.session.AccessToken
}

// do issues one API request and decodes the envelope's data into dest
// (when dest is non-nil). Non-2xx responses become *RemoteError
// carrying the server's message.
func (s *HTTPStore) do(ctx context.Context, method, path string, body interface{}, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := s.accessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return &RemoteError{Status: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		return &RemoteError{Status: resp.StatusCode, Message: fmt.Sprintf("malformed response: %v", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Message
		if msg == "" {
			msg = resp.Status
		}
		return &RemoteError{Status: resp.StatusCode, Message: msg}
	}
	if dest != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, dest); err != nil {
			return &RemoteError{Status: resp.StatusCode, Message: fmt.Sprintf("malformed row data: %v", err)}
		}
	}
	return nil
}

func (s *HTTPStore) Select(ctx context.Context, table string, filters []Filter, order []Order, dest interface{}) error {
	q := url.Values{}
	for _, f := range filters {
		q.Set(f.Column, f.Value)
	}
	if len(order) > 0 {
		terms := make([]string, 0, len(order))
		for _, o := range order {
			term := o.Column
			if o.Desc {
				term += ".desc"
			}
			terms = append(terms, term)
		}
		q.Set("order", strings.Join(terms, ","))
	}
	path := "/api/" + table
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	return s.do(ctx, http.MethodGet, path, nil, dest)
}

func (s *HTTPStore) Insert(ctx context.Context, table string, row interface{}, dest interface{}) error {
	return s.do(ctx, http.MethodPost, "/api/"+table, row, dest)
}

func (s *HTTPStore) Update(ctx context.Context, table, id string, patch map[string]interface{}, dest interface{}) error {
	return s.do(ctx, http.MethodPut, "/api/"+table+"/"+url.PathEscape(id), patch, dest)
}

func (s *HTTPStore) Delete(ctx context.Context, table, id string) error {
	return s.do(ctx, http.MethodDelete, "/api/"+table+"/"+url.PathEscape(id), nil, nil)
}

func (s *HTTPStore) SignUp(ctx context.Context, params SignUpParams) error {
	body := map[string]string{
		"email":     params.Email,
		"password":  params.Password,
		"full_name": params.FullName,
	}
	return s.do(ctx, http.MethodPost, "/api/auth/signup", body, nil)
}

func (s *HTTPStore) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var sess Session
	body := map[string]string{"email": email, "password": password}
	if err := s.do(ctx, http.MethodPost, "/api/auth/login", body, &sess); err != nil {
		return nil, err
	}
	s.setSession(&sess, SignedIn)
	return &sess, nil
}

func (s *HTTPStore) SignInWithOAuth(ctx context.Context, provider string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := s.do(ctx, http.MethodGet, "/api/oauth/"+url.PathEscape(provider), nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (s *HTTPStore) SignInWithOtp(ctx context.Context, email string) error {
	return s.do(ctx, http.MethodPost, "/api/auth/otp", map[string]string{"email": email}, nil)
}

func (s *HTTPStore) VerifyOtp(ctx context.Context, email, code string) (*Session, error) {
	var sess Session
	body := map[string]string{"email": email, "code": code}
	if err := s.do(ctx, http.MethodPost, "/api/auth/otp/verify", body, &sess); err != nil {
		return nil, err
	}
	s.setSession(&sess, SignedIn)
	return &sess, nil
}

func (s *HTTPStore) SignOut(ctx context.Context) error {
	err := s.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	// Drop the session even when the server call failed: sign-out must
	// always leave the client signed out.
	s.setSession(nil, SignedOut)
	return err
}

func (s *HTTPStore) ResetPasswordForEmail(ctx context.Context, email string) error {
	return s.do(ctx, http.MethodPost, "/api/auth/reset", map[string]string{"email": email}, nil)
}

func (s *HTTPStore) ResendConfirmation(ctx context.Context, email string) error {
	return s.do(ctx, http.MethodPost, "/api/auth/resend", map[string]string{"email": email}, nil)
}

func (s *HTTPStore) UpdatePassword(ctx context.Context, newPassword string) error {
	return s.do(ctx, http.MethodPost, "/api/auth/change-password", map[string]string{"new_password": newPassword}, nil)
}
