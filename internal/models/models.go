package models

import "time"

// Roles stored on a profile. Admin overrides ownership checks on
// projects and tasks; timesheets stay creator-only.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// Project statuses. StatusComplete is terminal: a complete project is
// never overdue.
const (
	ProjectInProgress = "in_progress"
	ProjectReview     = "review"
	ProjectTesting    = "testing"
	ProjectComplete   = "complete"
)

// Task statuses. TaskDone is terminal.
const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskDone       = "done"
)

// ProjectStatusLabels maps stored values to display labels.
var ProjectStatusLabels = map[string]string{
	ProjectInProgress: "In progress",
	ProjectReview:     "Review",
	ProjectTesting:    "Testing",
	ProjectComplete:   "Complete",
}

// TaskStatusLabels maps stored values to display labels.
var TaskStatusLabels = map[string]string{
	TaskTodo:       "To do",
	TaskInProgress: "In progress",
	TaskDone:       "Done",
}

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s string) bool {
	_, ok := ProjectStatusLabels[s]
	return ok
}

// ValidTaskStatus reports whether s is a known task status.
func ValidTaskStatus(s string) bool {
	_, ok := TaskStatusLabels[s]
	return ok
}

// Calendar dates are stored as "YYYY-MM-DD" strings, so date order is
// string order.

// DateBefore reports a < b; empty strings never compare.
func DateBefore(a, b string) bool {
	return a != "" && b != "" && a < b
}

// Today returns the current date in stored form.
func Today() string {
	return time.Now().Format("2006-01-02")
}

// ValidDate reports whether s parses as a stored calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
