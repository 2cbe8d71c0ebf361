package services

import (
	"time"

	"github.com/khoward/worktrack/internal/models"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
	"gorm.io/gorm"
)

const workdayHours = 8

type DashboardService struct {
	db       *gorm.DB
	calendar *cal.BusinessCalendar
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(us.Holidays...)
	return &DashboardService{db: db, calendar: c}
}

type DashboardStats struct {
	ProjectsByStatus map[string]int64 `json:"projects_by_status"`
	TasksByStatus    map[string]int64 `json:"tasks_by_status"`
	OverdueProjects  int64            `json:"overdue_projects"`
	OverdueTasks     int64            `json:"overdue_tasks"`
	MyOpenTasks      int64            `json:"my_open_tasks"`
	HoursThisWeek    float64          `json:"hours_this_week"`
	ExpectedHours    float64          `json:"expected_hours"`
	WeekStart        string           `json:"week_start"`
	WeekEnd          string           `json:"week_end"`
}

type statusCount struct {
	Status string
	Count  int64
}

// GetStats computes the dashboard numbers for one user. Overdue means
// the end or due date is strictly before today and the status is not
// terminal.
func (s *DashboardService) GetStats(userID string, now time.Time) (*DashboardStats, error) {
	today := now.Format("2006-01-02")
	weekStart, weekEnd := weekBounds(now)

	stats := &DashboardStats{
		ProjectsByStatus: make(map[string]int64),
		TasksByStatus:    make(map[string]int64),
		WeekStart:        weekStart.Format("2006-01-02"),
		WeekEnd:          weekEnd.Format("2006-01-02"),
	}

	var projectCounts []statusCount
	if err := s.db.Model(&models.Project{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&projectCounts).Error; err != nil {
		return nil, err
	}
	for _, c := range projectCounts {
		stats.ProjectsByStatus[c.Status] = c.Count
	}

	var taskCounts []statusCount
	if err := s.db.Model(&models.Task{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&taskCounts).Error; err != nil {
		return nil, err
	}
	for _, c := range taskCounts {
		stats.TasksByStatus[c.Status] = c.Count
	}

	s.db.Model(&models.Project{}).
		Where("end_date IS NOT NULL AND end_date <> '' AND end_date < ? AND status <> ?", today, models.ProjectComplete).
		Count(&stats.OverdueProjects)

	s.db.Model(&models.Task{}).
		Where("due_date IS NOT NULL AND due_date <> '' AND due_date < ? AND status <> ?", today, models.TaskDone).
		Count(&stats.OverdueTasks)

	s.db.Model(&models.Task{}).
		Where("(user_id = ? OR assignee_id = ?) AND status <> ?", userID, userID, models.TaskDone).
		Count(&stats.MyOpenTasks)

	s.db.Model(&models.Timesheet{}).
		Where("user_id = ? AND week_start >= ? AND week_start <= ?", userID, stats.WeekStart, stats.WeekEnd).
		Select("COALESCE(SUM(hours_worked), 0)").
		Scan(&stats.HoursThisWeek)

	stats.ExpectedHours = float64(s.workdays(weekStart, weekEnd)) * workdayHours

	return stats, nil
}

// weekBounds returns the Monday and Sunday enclosing t.
func weekBounds(t time.Time) (time.Time, time.Time) {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	start := t.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}

// workdays counts business days in the inclusive range, holidays
// excluded.
func (s *DashboardService) workdays(start, end time.Time) int {
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if s.calendar.IsWorkday(d) {
			count++
		}
	}
	return count
}
