package client

import (
	"context"

	"github.com/khoward/worktrack/internal/models"
)

// TaskForm carries the full task form for create and edit.
type TaskForm struct {
	ProjectID   string
	AssignDate  string
	DueDate     string
	Status      string
	Description string
	AssigneeID  string
}

// Tasks is the task facade. It leans on the Projects facade for the
// non-admin rule that tasks may only be attached to projects the actor
// owns.
type Tasks struct {
	store    Store
	session  *SessionState
	projects *Projects
	col      *Collection[models.Task]
	notify   Notifier
}

func NewTasks(store Store, session *SessionState, projects *Projects, notify Notifier) *Tasks {
	return &Tasks{
		store:    store,
		session:  session,
		projects: projects,
		col:      NewCollection(func(t models.Task) string { return t.ID }),
		notify:   notify,
	}
}

// Load fetches all tasks, most recently assigned first.
func (t *Tasks) Load(ctx context.Context) error {
	var rows []models.Task
	order := []Order{
		{Column: "assign_date", Desc: true},
		{Column: "created_at", Desc: true},
	}
	if err := t.store.Select(ctx, "tasks", nil, order, &rows); err != nil {
		return err
	}
	t.col.SetRows(rows)
	return nil
}

// Rows returns the cached tasks in order.
func (t *Tasks) Rows() []models.Task { return t.col.Rows() }

// Find returns a cached task by identity.
func (t *Tasks) Find(id string) (models.Task, bool) { return t.col.Find(id) }

// Collection exposes the underlying cache for realtime merging.
func (t *Tasks) Collection() *Collection[models.Task] { return t.col }

func (t *Tasks) validate(form TaskForm, today string) error {
	if form.ProjectID == "" {
		return ValidationError("Please select a project.")
	}
	if form.Status != "" && !models.ValidTaskStatus(form.Status) {
		return ValidationError("Unknown task status.")
	}
	if models.DateBefore(form.DueDate, today) {
		return ValidationError("End date cannot be in the past.")
	}
	assign := orDefault(form.AssignDate, today)
	if models.DateBefore(form.DueDate, assign) {
		return ValidationError("End date cannot be before the assign date.")
	}
	return nil
}

// attachGate enforces the own-project rule for non-admins.
func (t *Tasks) attachGate(projectID, message string) error {
	actor := t.session.Actor()
	project, ok := t.projects.Find(projectID)
	if !ok {
		return ValidationError("Please select a project.")
	}
	if !CanAttachTask(actor, project) {
		err := AuthzError(message)
		t.notify.post(message, NoticeDanger)
		return err
	}
	return nil
}

// Create validates the draft and gates, then inserts remotely and
// prepends the authoritative row. The task name is derived from the
// project it belongs to.
func (t *Tasks) Create(ctx context.Context, form TaskForm) (models.Task, error) {
	today := models.Today()
	if err := t.validate(form, today); err != nil {
		return models.Task{}, err
	}
	if err := t.attachGate(form.ProjectID, "You can only add tasks to your own projects."); err != nil {
		return models.Task{}, err
	}

	project, _ := t.projects.Find(form.ProjectID)
	draft := models.Task{
		ProjectID:   form.ProjectID,
		TaskName:    project.Name + " - Task",
		AssignDate:  orDefault(form.AssignDate, today),
		DueDate:     nilIfEmpty(form.DueDate),
		Status:      orDefault(form.Status, models.TaskTodo),
		Description: nilIfEmpty(form.Description),
		AssigneeID:  nilIfEmpty(form.AssigneeID),
	}

	row, err := t.col.CreateReconcile(func() (models.Task, error) {
		var out models.Task
		if err := t.store.Insert(ctx, "tasks", draft, &out); err != nil {
			return models.Task{}, err
		}
		return out, nil
	})
	if err != nil {
		t.notify.post(err.Error(), NoticeDanger)
		return models.Task{}, err
	}
	t.notify.post("Task added.", NoticeSuccess)
	return row, nil
}

// Update is a full-form edit using write-then-reconcile.
func (t *Tasks) Update(ctx context.Context, id string, form TaskForm) (models.Task, error) {
	row, ok := t.col.Find(id)
	if !ok {
		return models.Task{}, ValidationError("Task not found.")
	}
	if !CanMutate(t.session.Actor(), row, OpUpdate) {
		err := AuthzError("You can only edit your own task.")
		t.notify.post(err.Error(), NoticeWarning)
		return models.Task{}, err
	}
	today := models.Today()
	if err := t.validate(form, today); err != nil {
		return models.Task{}, err
	}
	if err := t.attachGate(form.ProjectID, "You can only move tasks to your own projects."); err != nil {
		return models.Task{}, err
	}

	patch := map[string]interface{}{
		"project_id":  form.ProjectID,
		"assign_date": orDefault(form.AssignDate, today),
		"due_date":    nilIfEmpty(form.DueDate),
		"status":      orDefault(form.Status, models.TaskTodo),
		"description": nilIfEmpty(form.Description),
		"assignee_id": nilIfEmpty(form.AssigneeID),
	}

	updated, err := t.col.UpdateReconcile(id, func() (models.Task, error) {
		var out models.Task
		if err := t.store.Update(ctx, "tasks", id, patch, &out); err != nil {
			return models.Task{}, err
		}
		return out, nil
	})
	if err != nil {
		t.notify.post(err.Error(), NoticeDanger)
		return models.Task{}, err
	}
	t.notify.post("Task updated.", NoticeSuccess)
	return updated, nil
}

// SetStatus is the quick status change: optimistic apply with rollback
// on remote failure. Permitted to the creator, the assignee or an
// admin.
func (t *Tasks) SetStatus(ctx context.Context, id, status string) error {
	row, ok := t.col.Find(id)
	if !ok {
		return ValidationError("Task not found.")
	}
	if !models.ValidTaskStatus(status) {
		return ValidationError("Unknown task status.")
	}
	if !CanMutate(t.session.Actor(), row, OpStatus) {
		err := AuthzError("You can only update your own task.")
		t.notify.post(err.Error(), NoticeWarning)
		return err
	}

	_, err := t.col.ApplyThenUpdate(id,
		func(cur models.Task) models.Task {
			cur.Status = status
			return cur
		},
		func() (models.Task, error) {
			var out models.Task
			patch := map[string]interface{}{"status": status}
			if err := t.store.Update(ctx, "tasks", id, patch, &out); err != nil {
				return models.Task{}, err
			}
			return out, nil
		})
	if err != nil {
		t.notify.post(err.Error(), NoticeDanger)
		return err
	}
	return nil
}

// Delete removes the task optimistically with whole-collection
// rollback on failure.
func (t *Tasks) Delete(ctx context.Context, id string) error {
	row, ok := t.col.Find(id)
	if !ok {
		return ValidationError("Task not found.")
	}
	if !CanMutate(t.session.Actor(), row, OpDelete) {
		err := AuthzError("You can only delete your own task.")
		t.notify.post(err.Error(), NoticeWarning)
		return err
	}

	if err := t.col.DeleteOptimistic(id, func() error {
		return t.store.Delete(ctx, "tasks", id)
	}); err != nil {
		t.notify.post(err.Error(), NoticeDanger)
		return err
	}
	t.notify.post("Task deleted.", NoticeSuccess)
	return nil
}

// IsOverdue reports whether the task's due date has passed while its
// status is not done.
func IsTaskOverdue(t models.Task, today string) bool {
	return t.DueDate != nil && models.DateBefore(*t.DueDate, today) && t.Status != models.TaskDone
}
