package client

import (
	"context"
	"strings"

	"github.com/khoward/worktrack/internal/models"
)

// ProjectForm carries the full project form, used for both create and
// edit (full-form edits send every field).
type ProjectForm struct {
	Name        string
	Description string
	Status      string
	StartDate   string
	EndDate     string
}

// Projects is the project facade: local validation and permission
// gates in front of the optimistic mutation controller.
type Projects struct {
	store   Store
	session *SessionState
	col     *Collection[models.Project]
	notify  Notifier
}

func NewProjects(store Store, session *SessionState, notify Notifier) *Projects {
	return &Projects{
		store:   store,
		session: session,
		col:     NewCollection(func(p models.Project) string { return p.ID }),
		notify:  notify,
	}
}

// Load fetches all projects, newest first.
func (p *Projects) Load(ctx context.Context) error {
	var rows []models.Project
	order := []Order{{Column: "created_at", Desc: true}}
	if err := p.store.Select(ctx, "projects", nil, order, &rows); err != nil {
		return err
	}
	p.col.SetRows(rows)
	return nil
}

// Rows returns the cached projects in order.
func (p *Projects) Rows() []models.Project { return p.col.Rows() }

// Find returns a cached project by identity.
func (p *Projects) Find(id string) (models.Project, bool) { return p.col.Find(id) }

// Collection exposes the underlying cache for realtime merging.
func (p *Projects) Collection() *Collection[models.Project] { return p.col }

func (p *Projects) validate(form ProjectForm) error {
	if strings.TrimSpace(form.Name) == "" {
		return ValidationError("Please enter a project name.")
	}
	if form.Status != "" && !models.ValidProjectStatus(form.Status) {
		return ValidationError("Unknown project status.")
	}
	if models.DateBefore(form.EndDate, form.StartDate) {
		return ValidationError("End date cannot be before the start date.")
	}
	return nil
}

// Create validates the draft, checks the admin gate and issues the
// remote insert; the store's returned row is prepended on success.
func (p *Projects) Create(ctx context.Context, form ProjectForm) (models.Project, error) {
	actor := p.session.Actor()
	if !actor.Admin {
		err := AuthzError("Only admins can create projects.")
		p.notify.post(err.Error(), NoticeDanger)
		return models.Project{}, err
	}
	if err := p.validate(form); err != nil {
		return models.Project{}, err
	}

	draft := models.Project{
		Name:        strings.TrimSpace(form.Name),
		Description: nilIfEmpty(form.Description),
		Status:      orDefault(form.Status, models.ProjectInProgress),
		StartDate:   orDefault(form.StartDate, models.Today()),
		EndDate:     nilIfEmpty(form.EndDate),
	}

	row, err := p.col.CreateReconcile(func() (models.Project, error) {
		var out models.Project
		if err := p.store.Insert(ctx, "projects", draft, &out); err != nil {
			return models.Project{}, err
		}
		return out, nil
	})
	if err != nil {
		p.notify.post(err.Error(), NoticeDanger)
		return models.Project{}, err
	}
	p.notify.post("Project created.", NoticeSuccess)
	return row, nil
}

// Update is a full-form edit: write-then-reconcile, so a remote
// failure leaves the prior local state untouched.
func (p *Projects) Update(ctx context.Context, id string, form ProjectForm) (models.Project, error) {
	row, ok := p.col.Find(id)
	if !ok {
		return models.Project{}, ValidationError("Project not found.")
	}
	if !CanMutate(p.session.Actor(), row, OpUpdate) {
		err := AuthzError("You can only edit your own project.")
		p.notify.post(err.Error(), NoticeWarning)
		return models.Project{}, err
	}
	if err := p.validate(form); err != nil {
		return models.Project{}, err
	}

	patch := map[string]interface{}{
		"name":        strings.TrimSpace(form.Name),
		"description": nilIfEmpty(form.Description),
		"status":      orDefault(form.Status, models.ProjectInProgress),
		"start_date":  orDefault(form.StartDate, models.Today()),
		"end_date":    nilIfEmpty(form.EndDate),
	}

	updated, err := p.col.UpdateReconcile(id, func() (models.Project, error) {
		var out models.Project
		if err := p.store.Update(ctx, "projects", id, patch, &out); err != nil {
			return models.Project{}, err
		}
		return out, nil
	})
	if err != nil {
		p.notify.post(err.Error(), NoticeDanger)
		return models.Project{}, err
	}
	p.notify.post("Project updated.", NoticeSuccess)
	return updated, nil
}

// Delete removes the project optimistically; a remote failure restores
// the entire pre-delete collection, preserving order.
func (p *Projects) Delete(ctx context.Context, id string) error {
	row, ok := p.col.Find(id)
	if !ok {
		return ValidationError("Project not found.")
	}
	if !CanMutate(p.session.Actor(), row, OpDelete) {
		err := AuthzError("You can only delete your own project.")
		p.notify.post(err.Error(), NoticeWarning)
		return err
	}

	if err := p.col.DeleteOptimistic(id, func() error {
		return p.store.Delete(ctx, "projects", id)
	}); err != nil {
		p.notify.post(err.Error(), NoticeDanger)
		return err
	}
	p.notify.post("Project deleted.", NoticeSuccess)
	return nil
}

// IsOverdue reports whether the project's end date has passed while
// its status is not complete.
func IsProjectOverdue(p models.Project, today string) bool {
	return p.EndDate != nil && models.DateBefore(*p.EndDate, today) && p.Status != models.ProjectComplete
}

func nilIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
