package models

import "time"

// Subject is a weighted category of work, usually a course.
type Subject struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	Weight    int        `json:"weight"` // coefficient, higher = more important
	Deadline  *time.Time `json:"deadline,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *string    `json:"deleted_at,omitempty"` // RFC3339 timestamp
}
