package client

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/khoward/worktrack/internal/models"
)

// csvBOM keeps spreadsheet applications from misreading UTF-8 exports.
const csvBOM = "\ufeff"

// escapeCSV quotes a field only when it contains a comma, quote or
// newline, doubling embedded quotes.
func escapeCSV(v string) string {
	if strings.ContainsAny(v, "\",\n") {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}

// marshalCSV renders a header row and data rows as one CSV document.
// Pure: no trailing newline, lines joined with "\n".
func marshalCSV(headers []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString(csvBOM)
	all := append([][]string{headers}, rows...)
	for i, row := range all {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, field := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(escapeCSV(field))
		}
	}
	return b.String()
}

func isoTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func floatField(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// ProjectsCSV serializes the given (already filtered) projects.
func ProjectsCSV(rows []models.Project) string {
	headers := []string{
		"id", "name", "description", "status", "status_label",
		"start_date", "end_date", "created_at_iso", "updated_at_iso",
	}
	out := make([][]string, 0, len(rows))
	for _, p := range rows {
		out = append(out, []string{
			p.ID,
			p.Name,
			deref(p.Description),
			p.Status,
			models.ProjectStatusLabels[p.Status],
			p.StartDate,
			deref(p.EndDate),
			isoTime(p.CreatedAt),
			isoTime(p.UpdatedAt),
		})
	}
	return marshalCSV(headers, out)
}

// TasksCSV serializes the given tasks, resolving project and assignee
// labels through the lookup.
func TasksCSV(rows []models.Task, labels Labels) string {
	headers := []string{
		"id", "project_id", "project_name", "assign_date", "due_date",
		"status", "status_label", "assignee_id", "assignee_label",
		"description", "created_at_iso", "updated_at_iso",
	}
	out := make([][]string, 0, len(rows))
	for _, t := range rows {
		out = append(out, []string{
			t.ID,
			t.ProjectID,
			labels.ProjectName(t.ProjectID),
			t.AssignDate,
			deref(t.DueDate),
			t.Status,
			models.TaskStatusLabels[t.Status],
			deref(t.AssigneeID),
			labels.UserLabel(t.AssigneeID),
			deref(t.Description),
			isoTime(t.CreatedAt),
			isoTime(t.UpdatedAt),
		})
	}
	return marshalCSV(headers, out)
}

// TimesheetsCSV serializes the given timesheets.
func TimesheetsCSV(rows []models.Timesheet, labels Labels) string {
	headers := []string{
		"id", "project", "week_start", "week_end", "hours_worked",
		"notes", "created_at", "updated_at",
	}
	out := make([][]string, 0, len(rows))
	for _, t := range rows {
		out = append(out, []string{
			t.ID,
			labels.ProjectName(t.ProjectID),
			t.WeekStart,
			t.WeekEnd,
			floatField(t.HoursWorked),
			deref(t.Notes),
			isoTime(t.CreatedAt),
			isoTime(t.UpdatedAt),
		})
	}
	return marshalCSV(headers, out)
}

// ExportFilename builds the download name, e.g. "tasks_2025-01-31.csv".
func ExportFilename(kind string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", kind, now.UTC().Format("2006-01-02"))
}
