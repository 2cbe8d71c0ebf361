package client

import (
	"strings"
	"testing"
	"time"

	"github.com/khoward/worktrack/internal/models"
)

func TestEscapeCSV(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"", ""},
		{"a,b", `"a,b"`},
		{`say "hi"`, `"say ""hi"""`},
		{"line1\nline2", "\"line1\nline2\""},
		{"trailing space ", "trailing space "},
	}
	for _, tt := range tests {
		if got := escapeCSV(tt.in); got != tt.want {
			t.Errorf("escapeCSV(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMarshalCSVLayout(t *testing.T) {
	got := marshalCSV([]string{"a", "b"}, [][]string{{"1", "x,y"}, {"2", ""}})
	want := csvBOM + "a,b\n1,\"x,y\"\n2,"
	if got != want {
		t.Errorf("marshalCSV = %q, want %q", got, want)
	}
	if !strings.HasPrefix(got, "\ufeff") {
		t.Error("missing byte-order mark")
	}
	if strings.HasSuffix(got, "\n") {
		t.Error("unexpected trailing newline")
	}
}

func TestProjectsCSV(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := []models.Project{{
		ID:          "p1",
		Name:        "Website, Phase 2",
		Description: strPtr("relaunch"),
		Status:      models.ProjectInProgress,
		StartDate:   "2025-01-01",
		CreatedAt:   created,
		UpdatedAt:   created,
	}}

	got := ProjectsCSV(rows)
	lines := strings.Split(strings.TrimPrefix(got, csvBOM), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	wantHeader := "id,name,description,status,status_label,start_date,end_date,created_at_iso,updated_at_iso"
	if lines[0] != wantHeader {
		t.Errorf("header = %q, want %q", lines[0], wantHeader)
	}
	wantRow := `p1,"Website, Phase 2",relaunch,in_progress,In progress,2025-01-01,,2025-01-02T03:04:05Z,2025-01-02T03:04:05Z`
	if lines[1] != wantRow {
		t.Errorf("row = %q, want %q", lines[1], wantRow)
	}
}

func TestTasksCSVResolvesLabels(t *testing.T) {
	labels := BuildLabels(
		[]models.Project{{ID: "p1", Name: "Gateway"}},
		[]models.Profile{{ID: "u1", Email: "ann@example.com", FullName: strPtr("Ann Lee")}},
	)
	rows := []models.Task{{
		ID:         "t1",
		ProjectID:  "p1",
		AssignDate: "2025-02-01",
		Status:     models.TaskTodo,
		AssigneeID: strPtr("u1"),
	}}

	got := TasksCSV(rows, labels)
	lines := strings.Split(strings.TrimPrefix(got, csvBOM), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	row := lines[1]
	for _, want := range []string{"Gateway", "Ann Lee", "To do"} {
		if !strings.Contains(row, want) {
			t.Errorf("row %q missing %q", row, want)
		}
	}
}

func TestTimesheetsCSV(t *testing.T) {
	labels := BuildLabels([]models.Project{{ID: "p1", Name: "Gateway"}}, nil)
	rows := []models.Timesheet{{
		ID:          "s1",
		ProjectID:   "p1",
		WeekStart:   "2025-02-03",
		WeekEnd:     "2025-02-09",
		HoursWorked: floatPtr(37.5),
	}}

	got := TimesheetsCSV(rows, labels)
	lines := strings.Split(strings.TrimPrefix(got, csvBOM), "\n")
	wantHeader := "id,project,week_start,week_end,hours_worked,notes,created_at,updated_at"
	if lines[0] != wantHeader {
		t.Errorf("header = %q, want %q", lines[0], wantHeader)
	}
	if !strings.Contains(lines[1], "37.5") {
		t.Errorf("row %q missing hours", lines[1])
	}
	if !strings.Contains(lines[1], "Gateway") {
		t.Errorf("row %q missing project name", lines[1])
	}
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	if got := ExportFilename("tasks", now); got != "tasks_2025-03-15.csv" {
		t.Errorf("ExportFilename = %q", got)
	}
}
