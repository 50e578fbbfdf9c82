package models

import "time"

// PlannedSession is a scheduled block of work for one subject's task group.
type PlannedSession struct {
	SubjectID   string    `json:"subject_id"`
	SubjectName string    `json:"subject_name"`
	TaskIDs     []string  `json:"task_ids"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	DurationMin int       `json:"duration_min"`
	Priority    int       `json:"priority"` // the subject's weight
}

// Summary aggregates a plan's sessions.
type Summary struct {
	TotalSessions   int            `json:"total_sessions"`
	TotalMinutes    int            `json:"total_minutes"`
	SubjectsCovered []string       `json:"subjects_covered"`
	Distribution    map[string]int `json:"distribution"` // minutes per subject name
}

type WeeklyPlan struct {
	UserID      string           `json:"user_id"`
	WindowStart time.Time        `json:"window_start"`
	WindowEnd   time.Time        `json:"window_end"`
	GeneratedAt time.Time        `json:"generated_at"`
	Sessions    []PlannedSession `json:"sessions"`
	Summary     Summary          `json:"summary"`
}

// AppliedSession is a PlannedSession that was written to a calendar and
// recorded in the store.
type AppliedSession struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	SubjectID  string    `json:"subject_id"`
	TaskIDs    []string  `json:"task_ids"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	ExternalID string    `json:"external_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
