package scheduler

import (
	"testing"
	"time"

	"github.com/julianstephens/studyweek/internal/models"
)

func TestAggregateWorkload_ProportionalAndCapped(t *testing.T) {
	subjects := []models.Subject{subject("b", "Biology", 1), subject("a", "Algebra", 3)}
	tasks := []models.Task{
		task("a1", "a", 120), task("a2", "a", 80),
		task("b1", "b", 100), task("b2", "b", 100),
	}
	got := AggregateWorkload(subjects, tasks, at(5, 0, 0), at(12, 0, 0), 1200)

	if len(got) != 2 {
		t.Fatalf("got %d workloads, want 2", len(got))
	}
	if got[0].Subject.ID != "a" || got[1].Subject.ID != "b" {
		t.Errorf("order = %s, %s; want a, b", got[0].Subject.ID, got[1].Subject.ID)
	}
	// min(1200*0.75, 200) and min(1200*0.25, 200)
	for _, w := range got {
		if w.BudgetMin != 200 || w.RequiredMin != 200 {
			t.Errorf("%s budget = %d required = %d, want 200/200", w.Subject.ID, w.BudgetMin, w.RequiredMin)
		}
	}
}

func TestAggregateWorkload_WeightShare(t *testing.T) {
	subjects := []models.Subject{subject("a", "A", 3), subject("b", "B", 1)}
	tasks := []models.Task{task("a1", "a", 2000), task("b1", "b", 2000)}
	got := AggregateWorkload(subjects, tasks, at(5, 0, 0), at(12, 0, 0), 1200)

	budgets := map[string]int{}
	for _, w := range got {
		budgets[w.Subject.ID] = w.BudgetMin
	}
	if budgets["a"] != 900 || budgets["b"] != 300 {
		t.Errorf("budgets = %v, want a=900 b=300", budgets)
	}
}

func TestAggregateWorkload_DropsIdleSubjects(t *testing.T) {
	due := at(20, 0, 0)
	deleted := "2026-01-01T00:00:00Z"
	subjects := []models.Subject{
		subject("a", "A", 1),
		subject("b", "B", 3),
		{ID: "c", Name: "C", Weight: 2, DeletedAt: &deleted},
	}
	tasks := []models.Task{
		task("a1", "a", 60),
		{ID: "b1", SubjectID: "b", EstimatedMinutes: 60, Completed: true},
		{ID: "b2", SubjectID: "b", EstimatedMinutes: 60, DueDate: &due},
		task("c1", "c", 60),
	}
	got := AggregateWorkload(subjects, tasks, at(5, 0, 0), at(12, 0, 0), 1200)
	if len(got) != 1 || got[0].Subject.ID != "a" {
		t.Fatalf("got %+v, want only subject a", got)
	}
	// The only remaining subject gets the whole budget, capped by its work
	if got[0].BudgetMin != 60 {
		t.Errorf("budget = %d, want 60", got[0].BudgetMin)
	}
}

func TestAggregateWorkload_Empty(t *testing.T) {
	if got := AggregateWorkload(nil, nil, time.Time{}, time.Time{}, 1200); got != nil {
		t.Errorf("got %+v, want nil", got)
	}
	subjects := []models.Subject{subject("a", "A", 2)}
	if got := AggregateWorkload(subjects, nil, at(5, 0, 0), at(12, 0, 0), 1200); got != nil {
		t.Errorf("got %+v, want nil for subjects without tasks", got)
	}
}

func TestAggregateWorkload_DefaultEstimate(t *testing.T) {
	subjects := []models.Subject{subject("a", "A", 2)}
	tasks := []models.Task{task("a1", "a", 0), task("a2", "a", 0)}
	got := AggregateWorkload(subjects, tasks, at(5, 0, 0), at(12, 0, 0), 1200)
	if len(got) != 1 || got[0].RequiredMin != 60 {
		t.Fatalf("got %+v, want 60 required minutes from default estimates", got)
	}
}
