package client

import "github.com/khoward/worktrack/internal/models"

// Actor is the identity attempting an operation.
type Actor struct {
	ID    string
	Admin bool
}

// Op enumerates mutating operations for permission checks.
type Op int

const (
	OpCreate Op = iota
	OpUpdate
	OpDelete
	OpStatus // task-only restricted status update
)

// CanMutate is the local authorization gate. The remote store enforces
// the identical rule independently; both layers must agree (a local
// pass is not a guarantee, a local fail never reaches the store).
//
// Rules: projects may only be created by admins and edited/deleted by
// their creator or an admin; tasks follow creator-or-admin, with the
// status-only change also open to the assignee; timesheets are
// creator-only regardless of role.
func CanMutate(actor Actor, entity interface{}, op Op) bool {
	switch e := entity.(type) {
	case models.Project:
		if op == OpCreate {
			return actor.Admin
		}
		return actor.Admin || e.UserID == actor.ID
	case models.Task:
		if op == OpStatus {
			if e.AssigneeID != nil && *e.AssigneeID == actor.ID {
				return true
			}
		}
		return actor.Admin || e.UserID == actor.ID
	case models.Timesheet:
		if op == OpCreate {
			return true
		}
		return e.UserID == actor.ID
	default:
		return false
	}
}

// CanAttachTask reports whether the actor may attach a task to the
// given project: admins anywhere, everyone else only on projects they
// created.
func CanAttachTask(actor Actor, project models.Project) bool {
	return actor.Admin || project.UserID == actor.ID
}
