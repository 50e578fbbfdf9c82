package models

import (
	"time"

	"github.com/julianstephens/studyweek/internal/constants"
)

type Task struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	SubjectID        string     `json:"subject_id"`
	Title            string     `json:"title"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	Completed        bool       `json:"completed"`
	SchedulingStatus string     `json:"scheduling_status"`
	ScheduledFor     *time.Time `json:"scheduled_for,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	DeletedAt        *string    `json:"deleted_at,omitempty"` // RFC3339 timestamp
}

// Minutes returns the estimated duration, falling back to the default
// estimate when none was given.
func (t Task) Minutes() int {
	if t.EstimatedMinutes <= 0 {
		return constants.DefaultTaskMinutes
	}
	return t.EstimatedMinutes
}

// EligibleIn reports whether the task can be planned inside [start, end):
// not completed, not deleted, not already scheduled inside the window, and
// either undated or due inside the window. Dates are compared by calendar
// day, so a task due on the window's first day stays eligible even when the
// window starts later that day.
func (t Task) EligibleIn(start, end time.Time) bool {
	if t.Completed || t.DeletedAt != nil {
		return false
	}
	from := DayStart(start)
	if t.SchedulingStatus == constants.SchedulingScheduled && t.ScheduledFor != nil &&
		!t.ScheduledFor.Before(from) && t.ScheduledFor.Before(end) {
		return false
	}
	if t.DueDate == nil {
		return true
	}
	return !t.DueDate.Before(from) && t.DueDate.Before(end)
}

// DayStart returns midnight of t's day in t's location.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
