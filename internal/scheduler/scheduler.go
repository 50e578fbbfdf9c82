package scheduler

import (
	"time"

	"github.com/julianstephens/studyweek/internal/models"
)

// PlanInput is everything one planning run reads, already fetched.
type PlanInput struct {
	UserID      string
	WindowStart time.Time
	WindowEnd   time.Time
	Now         time.Time
	Subjects    []models.Subject
	Tasks       []models.Task
	Busy        []models.BusyPeriod
	Events      []models.CalendarEvent
}

type Scheduler struct {
	Policy     Policy
	Classifier Classifier
}

func New(policy Policy, classifier Classifier) *Scheduler {
	if classifier == nil {
		classifier = NopClassifier{}
	}
	return &Scheduler{Policy: policy, Classifier: classifier}
}

// GeneratePlan computes the weekly plan for already-loaded inputs. It does not
// read the clock; identical inputs always produce the same plan.
func (s *Scheduler) GeneratePlan(in PlanInput) models.WeeklyPlan {
	loc := s.Policy.location()
	now := in.Now.In(loc)

	workloads := AggregateWorkload(in.Subjects, in.Tasks, in.WindowStart, in.WindowEnd, s.Policy.WeeklyBudgetMin)

	_, classDays := ClassifyEvents(s.Classifier, in.Events, loc)
	subjects := make([]models.Subject, 0, len(workloads))
	for _, w := range workloads {
		subjects = append(subjects, w.Subject)
	}
	preferred := PreferredDays(subjects, classDays)

	busy := make([]models.BusyPeriod, 0, len(in.Busy)+len(in.Events))
	busy = append(busy, in.Busy...)
	for _, e := range in.Events {
		busy = append(busy, e.Busy())
	}
	slots := FindFreeSlots(busy, in.WindowStart, in.WindowEnd, now, s.Policy)

	sessions := AssignSessions(workloads, slots, preferred, now, s.Policy)
	if sessions == nil {
		sessions = []models.PlannedSession{}
	}

	return models.WeeklyPlan{
		UserID:      in.UserID,
		WindowStart: in.WindowStart.In(loc),
		WindowEnd:   in.WindowEnd.In(loc),
		GeneratedAt: now,
		Sessions:    sessions,
		Summary:     Summarize(sessions),
	}
}

// Budgets returns the weekly budget per subject ID for the same inputs
// GeneratePlan would use.
func (s *Scheduler) Budgets(in PlanInput) map[string]int {
	budgets := make(map[string]int)
	for _, w := range AggregateWorkload(in.Subjects, in.Tasks, in.WindowStart, in.WindowEnd, s.Policy.WeeklyBudgetMin) {
		budgets[w.Subject.ID] = w.BudgetMin
	}
	return budgets
}
