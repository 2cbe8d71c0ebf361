package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// fakeStore is an in-memory Store for tests. Rows live as generic maps
// so partial patches behave like the real API. Each write kind can be
// made to fail by setting the matching error.
type fakeStore struct {
	mu     sync.Mutex
	user   *User
	tables map[string][]map[string]interface{}
	nextID int

	failSelect error
	failInsert error
	failUpdate error
	failDelete error

	listeners []func(AuthEvent, *Session)
}

func newFakeStore() *fakeStore {
	return &fakeStore{tables: make(map[string][]map[string]interface{})}
}

func roundTrip(src, dest interface{}) error {
	buf, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, dest)
}

// seed adds a row without going through Insert, keeping test setup
// independent of the failure knobs.
func (s *fakeStore) seed(table string, row interface{}) {
	var m map[string]interface{}
	if err := roundTrip(row, &m); err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], m)
}

func (s *fakeStore) CurrentUser(ctx context.Context) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, nil
}

func (s *fakeStore) CurrentSession(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, nil
	}
	return &Session{AccessToken: "test-token", User: *s.user}, nil
}

func (s *fakeStore) OnAuthStateChange(fn func(AuthEvent, *Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
	return func() {}
}

func (s *fakeStore) fireAuth(event AuthEvent, sess *Session) {
	s.mu.Lock()
	fns := append(([]func(AuthEvent, *Session))(nil), s.listeners...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn(event, sess)
	}
}

func (s *fakeStore) Select(ctx context.Context, table string, filters []Filter, order []Order, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSelect != nil {
		return s.failSelect
	}
	out := make([]map[string]interface{}, 0)
	for _, row := range s.tables[table] {
		match := true
		for _, f := range filters {
			if fmt.Sprint(row[f.Column]) != f.Value {
				match = false
				break
			}
		}
		if match {
			out = append(out, row)
		}
	}
	return roundTrip(out, dest)
}

func (s *fakeStore) Insert(ctx context.Context, table string, row interface{}, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsert != nil {
		return s.failInsert
	}
	var m map[string]interface{}
	if err := roundTrip(row, &m); err != nil {
		return err
	}
	if id, _ := m["id"].(string); id == "" {
		s.nextID++
		m["id"] = fmt.Sprintf("row-%d", s.nextID)
	}
	if s.user != nil {
		if uid, _ := m["user_id"].(string); uid == "" {
			m["user_id"] = s.user.ID
		}
	}
	s.tables[table] = append(s.tables[table], m)
	return roundTrip(m, dest)
}

func (s *fakeStore) Update(ctx context.Context, table, id string, patch map[string]interface{}, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate != nil {
		return s.failUpdate
	}
	for _, row := range s.tables[table] {
		if row["id"] == id {
			for k, v := range patch {
				row[k] = v
			}
			return roundTrip(row, dest)
		}
	}
	return &RemoteError{Status: 404, Message: "row not found"}
}

func (s *fakeStore) Delete(ctx context.Context, table, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete != nil {
		return s.failDelete
	}
	rows := s.tables[table]
	for i, row := range rows {
		if row["id"] == id {
			s.tables[table] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return &RemoteError{Status: 404, Message: "row not found"}
}

func (s *fakeStore) SignUp(ctx context.Context, params SignUpParams) error { return nil }

func (s *fakeStore) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	return nil, &RemoteError{Status: 401, Message: "Invalid login credentials"}
}

func (s *fakeStore) SignInWithOAuth(ctx context.Context, provider string) (string, error) {
	return "", ErrRealtimeUnsupported
}

func (s *fakeStore) SignInWithOtp(ctx context.Context, email string) error { return nil }

func (s *fakeStore) VerifyOtp(ctx context.Context, email, code string) (*Session, error) {
	return nil, &RemoteError{Status: 401, Message: "Invalid code"}
}

func (s *fakeStore) SignOut(ctx context.Context) error { return nil }

func (s *fakeStore) ResetPasswordForEmail(ctx context.Context, email string) error { return nil }

func (s *fakeStore) ResendConfirmation(ctx context.Context, email string) error { return nil }

func (s *fakeStore) UpdatePassword(ctx context.Context, newPassword string) error { return nil }

func (s *fakeStore) Subscribe(ctx context.Context, tables []string, fn func(Change)) error {
	return ErrRealtimeUnsupported
}

// noticeLog records notices posted by facades under test.
type noticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

func (l *noticeLog) notifier() Notifier {
	return func(n Notice) {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.notices = append(l.notices, n)
	}
}

func (l *noticeLog) last() (Notice, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.notices) == 0 {
		return Notice{}, false
	}
	return l.notices[len(l.notices)-1], true
}

// testSession builds a resolved session without going through Init.
func testSession(userID string, admin bool) *SessionState {
	s := &SessionState{}
	if userID != "" {
		s.user = &User{ID: userID, Email: userID + "@example.com"}
		s.admin = admin
		s.resolvedFor = userID
	}
	return s
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
