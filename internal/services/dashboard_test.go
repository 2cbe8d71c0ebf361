package services

import (
	"testing"
	"time"
)

func TestWeekBounds(t *testing.T) {
	tests := []struct {
		name      string
		day       string
		wantStart string
		wantEnd   string
	}{
		{"wednesday", "2031-04-09", "2031-04-07", "2031-04-13"},
		{"monday", "2031-04-07", "2031-04-07", "2031-04-13"},
		{"sunday maps to preceding monday", "2031-04-13", "2031-04-07", "2031-04-13"},
		{"across month boundary", "2031-05-01", "2031-04-28", "2031-05-04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, err := time.Parse("2006-01-02", tt.day)
			if err != nil {
				t.Fatal(err)
			}
			start, end := weekBounds(day)
			if got := start.Format("2006-01-02"); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := end.Format("2006-01-02"); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
		})
	}
}

func TestWorkdays(t *testing.T) {
	svc := NewDashboardService(nil)

	// Plain week with no holidays.
	start, _ := time.Parse("2006-01-02", "2031-04-07")
	end, _ := time.Parse("2006-01-02", "2031-04-13")
	if got := svc.workdays(start, end); got != 5 {
		t.Errorf("plain week workdays = %d, want 5", got)
	}

	// Week of 2025-06-30 contains Independence Day on Friday.
	start, _ = time.Parse("2006-01-02", "2025-06-30")
	end, _ = time.Parse("2006-01-02", "2025-07-06")
	if got := svc.workdays(start, end); got != 4 {
		t.Errorf("holiday week workdays = %d, want 4", got)
	}
}
