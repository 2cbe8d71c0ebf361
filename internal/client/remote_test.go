package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/khoward/worktrack/internal/models"
)

func TestHTTPStoreSelectBuildsQuery(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(envelope{Code: 0, Message: "ok", Data: json.RawMessage(`[{"id":"t1"}]`)})
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL)
	var rows []models.Task
	err := store.Select(context.Background(), "tasks",
		[]Filter{{Column: "project_id", Value: "p1"}},
		[]Order{{Column: "assign_date", Desc: true}, {Column: "created_at"}},
		&rows)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if gotPath != "/api/tasks" {
		t.Errorf("path = %q", gotPath)
	}
	q, _ := http.NewRequest(http.MethodGet, "/?"+gotQuery, nil)
	if got := q.URL.Query().Get("project_id"); got != "p1" {
		t.Errorf("project_id = %q", got)
	}
	if got := q.URL.Query().Get("order"); got != "assign_date.desc,created_at" {
		t.Errorf("order = %q", got)
	}
	if len(rows) != 1 || rows[0].ID != "t1" {
		t.Errorf("rows = %v", rows)
	}
}

func TestHTTPStoreErrorCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(envelope{Code: 403, Message: "You can only edit your own project."})
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL)
	err := store.Update(context.Background(), "projects", "p1", map[string]interface{}{"name": "x"}, nil)

	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("err = %v, want RemoteError", err)
	}
	if remote.Status != http.StatusForbidden {
		t.Errorf("status = %d", remote.Status)
	}
	if remote.Message != "You can only edit your own project." {
		t.Errorf("message = %q", remote.Message)
	}
}

func TestHTTPStoreSignInSetsSessionAndNotifies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("path = %q", r.URL.Path)
		}
		data, _ := json.Marshal(Session{
			AccessToken: "jwt-token",
			User:        User{ID: "u1", Email: "ann@example.com"},
		})
		json.NewEncoder(w).Encode(envelope{Code: 0, Message: "ok", Data: data})
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL)
	var gotEvent AuthEvent
	unsubscribe := store.OnAuthStateChange(func(event AuthEvent, sess *Session) {
		gotEvent = event
	})
	defer unsubscribe()

	sess, err := store.SignInWithPassword(context.Background(), "ann@example.com", "pw")
	if err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}
	if sess.AccessToken != "jwt-token" {
		t.Errorf("token = %q", sess.AccessToken)
	}
	if gotEvent != SignedIn {
		t.Errorf("event = %q, want %q", gotEvent, SignedIn)
	}
	cur, err := store.CurrentSession(context.Background())
	if err != nil || cur == nil || cur.User.ID != "u1" {
		t.Errorf("CurrentSession = %+v, %v", cur, err)
	}
	user, _ := store.CurrentUser(context.Background())
	if user == nil || user.Email != "ann@example.com" {
		t.Errorf("CurrentUser = %+v", user)
	}
}

func TestHTTPStoreSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/login" {
			data, _ := json.Marshal(Session{AccessToken: "jwt-token", User: User{ID: "u1"}})
			json.NewEncoder(w).Encode(envelope{Code: 0, Message: "ok", Data: data})
			return
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(envelope{Code: 0, Message: "ok"})
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL)
	if _, err := store.SignInWithPassword(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if err := store.Delete(context.Background(), "tasks", "t1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if gotAuth != "Bearer jwt-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestHTTPStoreSignOutAlwaysClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/login" {
			data, _ := json.Marshal(Session{AccessToken: "jwt-token", User: User{ID: "u1"}})
			json.NewEncoder(w).Encode(envelope{Code: 0, Message: "ok", Data: data})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(envelope{Code: 500, Message: "boom"})
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL)
	if _, err := store.SignInWithPassword(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	var gotEvent AuthEvent
	unsubscribe := store.OnAuthStateChange(func(event AuthEvent, sess *Session) {
		gotEvent = event
	})
	defer unsubscribe()

	if err := store.SignOut(context.Background()); err == nil {
		t.Fatal("expected the server error to propagate")
	}
	if gotEvent != SignedOut {
		t.Errorf("event = %q, want %q", gotEvent, SignedOut)
	}
	sess, _ := store.CurrentSession(context.Background())
	if sess != nil {
		t.Error("session must be gone even when the logout call failed")
	}
}

func TestHTTPStoreSubscribeParsesEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/login" {
			data, _ := json.Marshal(Session{AccessToken: "jwt-token", User: User{ID: "u1"}})
			json.NewEncoder(w).Encode(envelope{Code: 0, Message: "ok", Data: data})
			return
		}
		if got := r.URL.Query().Get("access_token"); got != "jwt-token" {
			t.Errorf("access_token = %q", got)
		}
		if got := r.URL.Query().Get("tables"); got != "projects,tasks" {
			t.Errorf("tables = %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("event: change\n"))
		w.Write([]byte(`data: {"table":"tasks","type":"UPDATE","row":{"id":"t1"}}`))
		w.Write([]byte("\n\n"))
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL)
	if _, err := store.SignInWithPassword(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	var changes []Change
	err := store.Subscribe(context.Background(), []string{"projects", "tasks"}, func(c Change) {
		changes = append(changes, c)
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("got %d changes, want 1", len(changes))
	}
	if changes[0].Table != "tasks" || changes[0].Type != ChangeUpdate {
		t.Errorf("change = %+v", changes[0])
	}
}

func TestHTTPStoreSubscribeRequiresSession(t *testing.T) {
	store := NewHTTPStore("http://localhost:0")
	err := store.Subscribe(context.Background(), []string{"tasks"}, func(Change) {})
	var remote *RemoteError
	if !errors.As(err, &remote) || remote.Status != http.StatusUnauthorized {
		t.Fatalf("err = %v, want unauthorized RemoteError", err)
	}
}
