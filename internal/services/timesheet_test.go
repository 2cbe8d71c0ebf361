package services

import (
	"testing"

	"github.com/khoward/worktrack/internal/models"
)

func TestValidateWeek(t *testing.T) {
	tests := []struct {
		name      string
		weekStart string
		weekEnd   string
		hours     *float64
		wantErr   string
	}{
		{"valid", "2031-04-07", "2031-04-13", floatPtr(40), ""},
		{"missing start", "", "2031-04-13", nil, "Please fill in the week range."},
		{"missing end", "2031-04-07", "", nil, "Please fill in the week range."},
		{"bad date", "07/04/2031", "2031-04-13", nil, "Invalid week range."},
		{"end before start", "2031-04-13", "2031-04-07", nil, "Week end cannot be before the week start."},
		{"negative hours", "2031-04-07", "2031-04-13", floatPtr(-1), "Hours must be a non-negative number."},
		{"zero hours ok", "2031-04-07", "2031-04-13", floatPtr(0), ""},
		{"nil hours ok", "2031-04-07", "2031-04-13", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkValidation(t, validateWeek(tt.weekStart, tt.weekEnd, tt.hours), tt.wantErr)
		})
	}
}

func TestValidateWeekPatch(t *testing.T) {
	sheet := &models.Timesheet{
		WeekStart:   "2031-04-07",
		WeekEnd:     "2031-04-13",
		HoursWorked: floatPtr(40),
	}

	tests := []struct {
		name    string
		patch   map[string]interface{}
		wantErr string
	}{
		{"notes only", map[string]interface{}{"notes": "standup heavy week"}, ""},
		{"move week end back past start", map[string]interface{}{"week_end": "2031-04-01"}, "Week end cannot be before the week start."},
		{"move both", map[string]interface{}{"week_start": "2031-04-14", "week_end": "2031-04-20"}, ""},
		{"negative hours", map[string]interface{}{"hours_worked": float64(-5)}, "Hours must be a non-negative number."},
		{"clear hours", map[string]interface{}{"hours_worked": nil}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkValidation(t, validateWeekPatch(sheet, tt.patch), tt.wantErr)
		})
	}
}
