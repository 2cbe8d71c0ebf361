package client

import (
	"strings"

	"github.com/khoward/worktrack/internal/models"
)

// Criteria is one filter form. Every set field must match (logical
// AND); zero values are inactive. The two date ranges bind to the
// entity kind's date pair: start/end for projects, assign/due for
// tasks, week start/week end for timesheets. A row missing a date
// fails any bound that is present.
type Criteria struct {
	Query      string // case-insensitive substring over the kind's text fields
	Status     string
	ProjectID  string
	AssigneeID string
	FirstFrom  string
	FirstTo    string
	SecondFrom string
	SecondTo   string
}

// Labels resolves identities to display strings for search haystacks
// and exports. Missing lookups return the placeholder.
type Labels struct {
	projectNames map[string]string
	userLabels   map[string]string
	userEmails   map[string]string
}

// BuildLabels indexes projects and profiles for lookup.
func BuildLabels(projects []models.Project, profiles []models.Profile) Labels {
	l := Labels{
		projectNames: make(map[string]string, len(projects)),
		userLabels:   make(map[string]string, len(profiles)),
		userEmails:   make(map[string]string, len(profiles)),
	}
	for _, p := range projects {
		l.projectNames[p.ID] = p.Name
	}
	for _, u := range profiles {
		l.userLabels[u.ID] = u.Label()
		l.userEmails[u.ID] = u.Email
	}
	return l
}

// ProjectName returns the project's name, or a dash placeholder.
func (l Labels) ProjectName(id string) string {
	if name, ok := l.projectNames[id]; ok {
		return name
	}
	return "—"
}

// UserLabel returns the user's display name, or a dash placeholder.
func (l Labels) UserLabel(id *string) string {
	if id != nil {
		if label, ok := l.userLabels[*id]; ok {
			return label
		}
	}
	return "—"
}

// UserEmail returns the user's email, or empty.
func (l Labels) UserEmail(id *string) string {
	if id != nil {
		return l.userEmails[*id]
	}
	return ""
}

func matchQuery(query string, fields ...string) bool {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return true
	}
	hay := strings.ToLower(strings.Join(fields, " "))
	return strings.Contains(hay, term)
}

// dateInRange checks one inclusive bound pair against a date that may
// be absent. An absent date fails any present bound.
func dateInRange(date *string, from, to string) bool {
	if from != "" && (date == nil || *date < from) {
		return false
	}
	if to != "" && (date == nil || *date > to) {
		return false
	}
	return true
}

// FilterProjects derives the filtered project view. Pure: the input
// slice is not modified and relative order is preserved.
func FilterProjects(rows []models.Project, c Criteria) []models.Project {
	out := make([]models.Project, 0, len(rows))
	for _, p := range rows {
		if !matchQuery(c.Query, p.Name, deref(p.Description)) {
			continue
		}
		if c.Status != "" && p.Status != c.Status {
			continue
		}
		start := p.StartDate
		if !dateInRange(&start, c.FirstFrom, c.FirstTo) {
			continue
		}
		if !dateInRange(p.EndDate, c.SecondFrom, c.SecondTo) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FilterTasks derives the filtered task view. The free-text haystack
// covers the project name, description and assignee label.
func FilterTasks(rows []models.Task, c Criteria, labels Labels) []models.Task {
	out := make([]models.Task, 0, len(rows))
	for _, t := range rows {
		if !matchQuery(c.Query, labels.ProjectName(t.ProjectID), deref(t.Description), labels.UserLabel(t.AssigneeID)) {
			continue
		}
		if c.Status != "" && t.Status != c.Status {
			continue
		}
		if c.ProjectID != "" && t.ProjectID != c.ProjectID {
			continue
		}
		if c.AssigneeID != "" && (t.AssigneeID == nil || *t.AssigneeID != c.AssigneeID) {
			continue
		}
		assign := t.AssignDate
		if !dateInRange(&assign, c.FirstFrom, c.FirstTo) {
			continue
		}
		if !dateInRange(t.DueDate, c.SecondFrom, c.SecondTo) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// FilterTimesheets derives the filtered timesheet view.
func FilterTimesheets(rows []models.Timesheet, c Criteria, labels Labels) []models.Timesheet {
	out := make([]models.Timesheet, 0, len(rows))
	for _, t := range rows {
		if !matchQuery(c.Query, labels.ProjectName(t.ProjectID), deref(t.Notes)) {
			continue
		}
		if c.ProjectID != "" && t.ProjectID != c.ProjectID {
			continue
		}
		start := t.WeekStart
		if !dateInRange(&start, c.FirstFrom, c.FirstTo) {
			continue
		}
		end := t.WeekEnd
		if !dateInRange(&end, c.SecondFrom, c.SecondTo) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
