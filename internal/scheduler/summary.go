package scheduler

import (
	"sort"

	"github.com/julianstephens/studyweek/internal/models"
)

// Summarize accumulates session totals and the per-subject minute distribution.
func Summarize(sessions []models.PlannedSession) models.Summary {
	summary := models.Summary{
		SubjectsCovered: []string{},
		Distribution:    make(map[string]int),
	}
	for _, s := range sessions {
		summary.TotalSessions++
		summary.TotalMinutes += s.DurationMin
		if _, ok := summary.Distribution[s.SubjectName]; !ok {
			summary.SubjectsCovered = append(summary.SubjectsCovered, s.SubjectName)
		}
		summary.Distribution[s.SubjectName] += s.DurationMin
	}
	sort.Strings(summary.SubjectsCovered)
	return summary
}
