package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/validation"
)

type fakeStore struct {
	subjects []models.Subject
	tasks    []models.Task
	applied  []models.AppliedSession
	err      error
}

func (f *fakeStore) ListSubjects(userID string) ([]models.Subject, error) {
	return f.subjects, f.err
}

func (f *fakeStore) ListEligibleTasks(userID string, start, end time.Time) ([]models.Task, error) {
	var out []models.Task
	for _, t := range f.tasks {
		if t.EligibleIn(start, end) {
			out = append(out, t)
		}
	}
	return out, f.err
}

func (f *fakeStore) ListAppliedSessions(userID string, start, end time.Time) ([]models.AppliedSession, error) {
	var out []models.AppliedSession
	for _, a := range f.applied {
		if !a.Start.Before(start) && a.Start.Before(end) {
			out = append(out, a)
		}
	}
	return out, f.err
}

func (f *fakeStore) GetTask(id string) (models.Task, error) {
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Task{}, errors.New("not found")
}

func (f *fakeStore) MarkTasksScheduled(ids []string, at time.Time) error {
	for i := range f.tasks {
		for _, id := range ids {
			if f.tasks[i].ID == id {
				f.tasks[i].SchedulingStatus = "scheduled"
				f.tasks[i].ScheduledFor = &at
			}
		}
	}
	return nil
}

func (f *fakeStore) SaveAppliedSession(a models.AppliedSession) error {
	f.applied = append(f.applied, a)
	return nil
}

type fakeCalendar struct {
	busy   []models.BusyPeriod
	events []models.CalendarEvent
	err    error
}

func (f *fakeCalendar) GetBusyPeriods(ctx context.Context, userID string, start, end time.Time) ([]models.BusyPeriod, error) {
	return f.busy, f.err
}

func (f *fakeCalendar) GetEvents(ctx context.Context, userID string, start, end time.Time) ([]models.CalendarEvent, error) {
	return f.events, f.err
}

func newTestEngine(store TaskStore, cal CalendarService) *Engine {
	return NewEngine(store, cal, New(testPolicy(), NewKeywordClassifier()))
}

func TestPlanWeek(t *testing.T) {
	store := &fakeStore{
		subjects: []models.Subject{subject("a", "Algebra", 3)},
		tasks:    []models.Task{task("t1", "a", 90)},
	}
	cal := &fakeCalendar{busy: []models.BusyPeriod{{Start: at(5, 9, 0), End: at(5, 12, 0)}}}

	plan, err := newTestEngine(store, cal).PlanWeek(context.Background(), "u1", nil, at(5, 9, 0))
	if err != nil {
		t.Fatalf("PlanWeek failed: %v", err)
	}
	if len(plan.Sessions) != 1 || !plan.Sessions[0].Start.Equal(at(5, 12, 0)) {
		t.Errorf("sessions = %+v, want one at Monday 12:00", plan.Sessions)
	}
	if !plan.WindowStart.Equal(at(5, 9, 0)) || !plan.WindowEnd.Equal(at(12, 0, 0)) {
		t.Errorf("window = %v-%v", plan.WindowStart, plan.WindowEnd)
	}
	if plan.UserID != "u1" {
		t.Errorf("user = %q, want u1", plan.UserID)
	}
}

func TestPlanWeek_CalendarFailureDegrades(t *testing.T) {
	store := &fakeStore{
		subjects: []models.Subject{subject("a", "Algebra", 1)},
		tasks:    []models.Task{task("t1", "a", 60)},
	}
	cal := &fakeCalendar{err: errors.New("token expired")}

	plan, err := newTestEngine(store, cal).PlanWeek(context.Background(), "u1", nil, at(5, 9, 0))
	if err != nil {
		t.Fatalf("PlanWeek should not fail on calendar errors: %v", err)
	}
	if len(plan.Sessions) != 1 {
		t.Errorf("got %d sessions, want 1 with an empty calendar", len(plan.Sessions))
	}
}

func TestPlanWeek_NoCalendar(t *testing.T) {
	store := &fakeStore{
		subjects: []models.Subject{subject("a", "Algebra", 1)},
		tasks:    []models.Task{task("t1", "a", 60)},
	}
	plan, err := newTestEngine(store, nil).PlanWeek(context.Background(), "u1", nil, at(5, 9, 0))
	if err != nil {
		t.Fatalf("PlanWeek failed: %v", err)
	}
	if len(plan.Sessions) != 1 {
		t.Errorf("got %d sessions, want 1", len(plan.Sessions))
	}
}

func TestPlanWeek_StoreFailurePropagates(t *testing.T) {
	store := &fakeStore{err: errors.New("database locked")}
	_, err := newTestEngine(store, &fakeCalendar{}).PlanWeek(context.Background(), "u1", nil, at(5, 9, 0))
	if err == nil {
		t.Fatal("expected store error to propagate")
	}
}

func TestPlanWeek_RejectsMalformedBusyPeriod(t *testing.T) {
	store := &fakeStore{
		subjects: []models.Subject{subject("a", "Algebra", 1)},
		tasks:    []models.Task{task("t1", "a", 60)},
	}
	cal := &fakeCalendar{busy: []models.BusyPeriod{{Start: at(6, 12, 0), End: at(6, 11, 0)}}}
	_, err := newTestEngine(store, cal).PlanWeek(context.Background(), "u1", nil, at(5, 9, 0))
	if !errors.Is(err, validation.ErrInvalidInterval) {
		t.Errorf("error = %v, want ErrInvalidInterval", err)
	}
}

func TestPlanWeek_ExplicitWeekStart(t *testing.T) {
	due := at(14, 0, 0)
	store := &fakeStore{
		subjects: []models.Subject{subject("a", "Algebra", 1)},
		tasks: []models.Task{
			task("t1", "a", 60),
			{ID: "t2", SubjectID: "a", EstimatedMinutes: 60, DueDate: &due},
		},
	}
	weekStart := at(12, 0, 0)
	plan, err := newTestEngine(store, nil).PlanWeek(context.Background(), "u1", &weekStart, at(5, 9, 0))
	if err != nil {
		t.Fatalf("PlanWeek failed: %v", err)
	}
	if plan.Summary.TotalMinutes != 120 {
		t.Errorf("total minutes = %d, want 120 (both tasks eligible next week)", plan.Summary.TotalMinutes)
	}
	for _, s := range plan.Sessions {
		if s.Start.Before(weekStart) {
			t.Errorf("session %v before requested week", s.Start)
		}
	}
}

func TestPlanWeek_TaskDueTodayInDefaultWindow(t *testing.T) {
	due := at(7, 0, 0)
	store := &fakeStore{
		subjects: []models.Subject{subject("a", "Algebra", 1)},
		tasks:    []models.Task{{ID: "t1", SubjectID: "a", EstimatedMinutes: 60, DueDate: &due}},
	}
	plan, err := newTestEngine(store, nil).PlanWeek(context.Background(), "u1", nil, at(7, 10, 0))
	if err != nil {
		t.Fatalf("PlanWeek failed: %v", err)
	}
	if !plan.WindowStart.Equal(at(7, 10, 0)) {
		t.Fatalf("window start = %v, want Wednesday 10:00", plan.WindowStart)
	}
	if len(plan.Sessions) != 1 || plan.Sessions[0].TaskIDs[0] != "t1" {
		t.Errorf("sessions = %+v, want the task due today planned", plan.Sessions)
	}
}

func TestPlanWeek_AppliedSessionsBlockLaterRuns(t *testing.T) {
	store := &fakeStore{
		subjects: []models.Subject{subject("a", "Algebra", 1)},
		tasks:    []models.Task{task("t1", "a", 60)},
	}
	engine := newTestEngine(store, nil)
	applier := NewApplier(store, nil)
	now := at(5, 9, 0)

	first, err := engine.PlanWeek(context.Background(), "u1", nil, now)
	if err != nil {
		t.Fatalf("first PlanWeek failed: %v", err)
	}
	if len(first.Sessions) != 1 {
		t.Fatalf("first plan has %d sessions, want 1", len(first.Sessions))
	}
	if _, err := applier.Apply(context.Background(), first); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	again, err := engine.PlanWeek(context.Background(), "u1", nil, now)
	if err != nil {
		t.Fatalf("second PlanWeek failed: %v", err)
	}
	if len(again.Sessions) != 0 {
		t.Errorf("second plan rebooked scheduled work: %+v", again.Sessions)
	}

	store.tasks = append(store.tasks, task("t2", "a", 60))
	third, err := engine.PlanWeek(context.Background(), "u1", nil, now)
	if err != nil {
		t.Fatalf("third PlanWeek failed: %v", err)
	}
	if len(third.Sessions) != 1 || third.Sessions[0].TaskIDs[0] != "t2" {
		t.Fatalf("third plan = %+v, want only t2", third.Sessions)
	}
	booked := first.Sessions[0]
	if s := third.Sessions[0]; s.Start.Before(booked.End) && s.End.After(booked.Start) {
		t.Errorf("new session %v-%v overlaps applied session %v-%v", s.Start, s.End, booked.Start, booked.End)
	}
}
