package client

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/khoward/worktrack/internal/models"
)

// Subscribe opens the server-sent events feed and dispatches row
// changes until ctx is cancelled or the stream ends. Requires an
// active session since the feed authenticates via query token.
func (s *HTTPStore) Subscribe(ctx context.Context, tables []string, fn func(Change)) error {
	token := s.accessToken()
	if token == "" {
		return &RemoteError{Status: http.StatusUnauthorized, Message: "not signed in"}
	}
	q := url.Values{}
	q.Set("tables", strings.Join(tables, ","))
	q.Set("access_token", token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/events?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	// The default client carries a timeout; streams need a client
	// without one so the feed can stay open indefinitely.
	stream := &http.Client{Transport: s.http.Transport}
	resp, err := stream.Do(req)
	if err != nil {
		return &RemoteError{Status: 0, Message: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &RemoteError{Status: resp.StatusCode, Message: resp.Status}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		var change Change
		if err := json.Unmarshal([]byte(payload), &change); err != nil {
			continue
		}
		fn(change)
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return &RemoteError{Status: 0, Message: err.Error()}
	}
	return ctx.Err()
}

// Realtime merges the store's change feed into the entity caches,
// applying the same reconciliation rule as confirmed writes: the
// authoritative row replaces the local row by identity.
type Realtime struct {
	store      Store
	projects   *Projects
	tasks      *Tasks
	timesheets *Timesheets
}

func NewRealtime(store Store, projects *Projects, tasks *Tasks, timesheets *Timesheets) *Realtime {
	return &Realtime{store: store, projects: projects, tasks: tasks, timesheets: timesheets}
}

// Run blocks on the subscription until ctx is cancelled. Stores
// without a feed return ErrRealtimeUnsupported; callers treat that as
// "no realtime", not a failure.
func (r *Realtime) Run(ctx context.Context) error {
	tables := []string{"projects", "tasks", "timesheets"}
	return r.store.Subscribe(ctx, tables, r.apply)
}

func (r *Realtime) apply(change Change) {
	if change.Type == ChangeDelete {
		var row struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(change.Row, &row) != nil || row.ID == "" {
			return
		}
		switch change.Table {
		case "projects":
			r.projects.Collection().Remove(row.ID)
		case "tasks":
			r.tasks.Collection().Remove(row.ID)
		case "timesheets":
			r.timesheets.Collection().Remove(row.ID)
		}
		return
	}

	switch change.Table {
	case "projects":
		var row models.Project
		if json.Unmarshal(change.Row, &row) == nil && row.ID != "" {
			r.projects.Collection().Reconcile(row)
		}
	case "tasks":
		var row models.Task
		if json.Unmarshal(change.Row, &row) == nil && row.ID != "" {
			r.tasks.Collection().Reconcile(row)
		}
	case "timesheets":
		var row models.Timesheet
		if json.Unmarshal(change.Row, &row) == nil && row.ID != "" {
			r.timesheets.Collection().Reconcile(row)
		}
	}
}
