package scheduler

import (
	"time"

	"github.com/julianstephens/studyweek/internal/models"
)

// 2026-01-05 is a Monday.
func at(day, h, m int) time.Time {
	return time.Date(2026, 1, day, h, m, 0, 0, time.UTC)
}

func testPolicy() Policy {
	p := DefaultPolicy()
	p.Location = time.UTC
	return p
}

func subject(id, name string, weight int) models.Subject {
	return models.Subject{ID: id, UserID: "u1", Name: name, Weight: weight}
}

func task(id, subjectID string, minutes int) models.Task {
	return models.Task{ID: id, UserID: "u1", SubjectID: subjectID, Title: id, EstimatedMinutes: minutes}
}

// fullDays returns busy periods covering every day from day to lastDay inclusive.
func fullDays(day, lastDay int) []models.BusyPeriod {
	var busy []models.BusyPeriod
	for d := day; d <= lastDay; d++ {
		busy = append(busy, models.BusyPeriod{Start: at(d, 0, 0), End: at(d+1, 0, 0)})
	}
	return busy
}

func durationMin(m int) time.Duration {
	return time.Duration(m) * time.Minute
}
