package scheduler

import (
	"math"
	"sort"
	"time"

	"github.com/julianstephens/studyweek/internal/models"
)

// SubjectWorkload is one subject's eligible work and its weekly budget.
type SubjectWorkload struct {
	Subject     models.Subject
	Tasks       []models.Task
	RequiredMin int // sum of the tasks' estimates
	BudgetMin   int
}

// AggregateWorkload computes a budget per subject proportional to its weight
// and capped by its outstanding work. Subjects without eligible tasks are
// dropped, and the rest are ordered by descending weight.
func AggregateWorkload(subjects []models.Subject, tasks []models.Task, windowStart, windowEnd time.Time, totalBudget int) []SubjectWorkload {
	bySubject := make(map[string][]models.Task)
	for _, t := range tasks {
		if !t.EligibleIn(windowStart, windowEnd) {
			continue
		}
		bySubject[t.SubjectID] = append(bySubject[t.SubjectID], t)
	}

	var workloads []SubjectWorkload
	sumWeights := 0
	for _, s := range subjects {
		if s.DeletedAt != nil {
			continue
		}
		subjectTasks := bySubject[s.ID]
		if len(subjectTasks) == 0 {
			continue
		}
		required := 0
		for _, t := range subjectTasks {
			required += t.Minutes()
		}
		workloads = append(workloads, SubjectWorkload{
			Subject:     s,
			Tasks:       subjectTasks,
			RequiredMin: required,
		})
		sumWeights += s.Weight
	}
	if sumWeights <= 0 {
		return nil
	}

	for i := range workloads {
		w := &workloads[i]
		share := int(math.Round(float64(totalBudget) * float64(w.Subject.Weight) / float64(sumWeights)))
		w.BudgetMin = min(share, w.RequiredMin)
	}

	sort.SliceStable(workloads, func(i, j int) bool {
		return workloads[i].Subject.Weight > workloads[j].Subject.Weight
	})
	return workloads
}
