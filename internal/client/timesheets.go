package client

import (
	"context"

	"github.com/khoward/worktrack/internal/models"
)

// TimesheetForm carries the full timesheet form for create and edit.
type TimesheetForm struct {
	ProjectID   string
	WeekStart   string
	WeekEnd     string
	HoursWorked *float64
	Notes       string
}

// Timesheets is the timesheet facade. The admin role grants nothing
// here: only the creator may edit or delete a row.
type Timesheets struct {
	store   Store
	session *SessionState
	col     *Collection[models.Timesheet]
	notify  Notifier
}

func NewTimesheets(store Store, session *SessionState, notify Notifier) *Timesheets {
	return &Timesheets{
		store:   store,
		session: session,
		col:     NewCollection(func(t models.Timesheet) string { return t.ID }),
		notify:  notify,
	}
}

// Load fetches all timesheets, latest week first.
func (t *Timesheets) Load(ctx context.Context) error {
	var rows []models.Timesheet
	order := []Order{{Column: "week_start", Desc: true}}
	if err := t.store.Select(ctx, "timesheets", nil, order, &rows); err != nil {
		return err
	}
	t.col.SetRows(rows)
	return nil
}

// Rows returns the cached timesheets in order.
func (t *Timesheets) Rows() []models.Timesheet { return t.col.Rows() }

// Find returns a cached timesheet by identity.
func (t *Timesheets) Find(id string) (models.Timesheet, bool) { return t.col.Find(id) }

// Collection exposes the underlying cache for realtime merging.
func (t *Timesheets) Collection() *Collection[models.Timesheet] { return t.col }

func (t *Timesheets) validate(form TimesheetForm) error {
	if form.ProjectID == "" {
		return ValidationError("Please select a project.")
	}
	if form.WeekStart == "" || form.WeekEnd == "" {
		return ValidationError("Please fill in the week range.")
	}
	if models.DateBefore(form.WeekEnd, form.WeekStart) {
		return ValidationError("Week end cannot be before the week start.")
	}
	if form.HoursWorked != nil && *form.HoursWorked < 0 {
		return ValidationError("Hours must be a non-negative number.")
	}
	return nil
}

// Create validates and inserts remotely; the authoritative row is
// prepended on success.
func (t *Timesheets) Create(ctx context.Context, form TimesheetForm) (models.Timesheet, error) {
	if err := t.validate(form); err != nil {
		return models.Timesheet{}, err
	}

	draft := models.Timesheet{
		ProjectID:   form.ProjectID,
		WeekStart:   form.WeekStart,
		WeekEnd:     form.WeekEnd,
		HoursWorked: form.HoursWorked,
		Notes:       nilIfEmpty(form.Notes),
	}

	row, err := t.col.CreateReconcile(func() (models.Timesheet, error) {
		var out models.Timesheet
		if err := t.store.Insert(ctx, "timesheets", draft, &out); err != nil {
			return models.Timesheet{}, err
		}
		return out, nil
	})
	if err != nil {
		t.notify.post(err.Error(), NoticeDanger)
		return models.Timesheet{}, err
	}
	t.notify.post("Timesheet created.", NoticeSuccess)
	return row, nil
}

// Update is a full-form edit using write-then-reconcile, creator only.
func (t *Timesheets) Update(ctx context.Context, id string, form TimesheetForm) (models.Timesheet, error) {
	row, ok := t.col.Find(id)
	if !ok {
		return models.Timesheet{}, ValidationError("Timesheet not found.")
	}
	if !CanMutate(t.session.Actor(), row, OpUpdate) {
		err := AuthzError("Only creator can edit.")
		t.notify.post(err.Error(), NoticeWarning)
		return models.Timesheet{}, err
	}
	if err := t.validate(form); err != nil {
		return models.Timesheet{}, err
	}

	patch := map[string]interface{}{
		"project_id":   form.ProjectID,
		"week_start":   form.WeekStart,
		"week_end":     form.WeekEnd,
		"hours_worked": form.HoursWorked,
		"notes":        nilIfEmpty(form.Notes),
	}

	updated, err := t.col.UpdateReconcile(id, func() (models.Timesheet, error) {
		var out models.Timesheet
		if err := t.store.Update(ctx, "timesheets", id, patch, &out); err != nil {
			return models.Timesheet{}, err
		}
		return out, nil
	})
	if err != nil {
		t.notify.post(err.Error(), NoticeDanger)
		return models.Timesheet{}, err
	}
	t.notify.post("Timesheet updated.", NoticeSuccess)
	return updated, nil
}

// Delete removes the timesheet optimistically, creator only.
func (t *Timesheets) Delete(ctx context.Context, id string) error {
	row, ok := t.col.Find(id)
	if !ok {
		return ValidationError("Timesheet not found.")
	}
	if !CanMutate(t.session.Actor(), row, OpDelete) {
		err := AuthzError("Only creator can delete.")
		t.notify.post(err.Error(), NoticeWarning)
		return err
	}

	if err := t.col.DeleteOptimistic(id, func() error {
		return t.store.Delete(ctx, "timesheets", id)
	}); err != nil {
		t.notify.post(err.Error(), NoticeDanger)
		return err
	}
	t.notify.post("Timesheet deleted.", NoticeSuccess)
	return nil
}
