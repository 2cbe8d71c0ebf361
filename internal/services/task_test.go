package services

import "testing"

func TestValidateTaskDates(t *testing.T) {
	due := "2031-03-10"
	earlyDue := "2031-03-01"

	tests := []struct {
		name       string
		assignDate string
		dueDate    *string
		wantErr    string
	}{
		{"valid pair", "2031-03-05", &due, ""},
		{"no dates", "", nil, ""},
		{"bad assign date", "03/05/2031", nil, "Invalid assign date."},
		{"bad due date", "2031-03-05", strPtr("not-a-date"), "Invalid due date."},
		{"due before assign", "2031-03-05", &earlyDue, "End date cannot be before the assign date."},
		{"empty due ok", "2031-03-05", strPtr(""), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkValidation(t, validateTaskDates(tt.assignDate, tt.dueDate), tt.wantErr)
		})
	}
}

func TestValidateTaskDatesDefaultsAssignToToday(t *testing.T) {
	// Due date far in the past, no assign date. The missing assign
	// date falls back to today, so the past due date must fail.
	err := validateTaskDates("", strPtr("2001-01-01"))
	checkValidation(t, err, "End date cannot be before the assign date.")
}
