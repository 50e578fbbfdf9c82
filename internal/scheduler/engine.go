package scheduler

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/studyweek/internal/logger"
	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/validation"
)

// TaskStore is the read side of the subject and task store. Applied
// sessions are read back so that earlier accepted plans count as busy time.
type TaskStore interface {
	ListSubjects(userID string) ([]models.Subject, error)
	ListEligibleTasks(userID string, windowStart, windowEnd time.Time) ([]models.Task, error)
	ListAppliedSessions(userID string, windowStart, windowEnd time.Time) ([]models.AppliedSession, error)
}

// CalendarService supplies the user's existing commitments. Implementations
// may return empty results when no calendar is connected.
type CalendarService interface {
	GetBusyPeriods(ctx context.Context, userID string, windowStart, windowEnd time.Time) ([]models.BusyPeriod, error)
	GetEvents(ctx context.Context, userID string, windowStart, windowEnd time.Time) ([]models.CalendarEvent, error)
}

// Engine loads a user's inputs and runs the Scheduler over them.
type Engine struct {
	Store     TaskStore
	Calendar  CalendarService // may be nil
	Scheduler *Scheduler
}

func NewEngine(store TaskStore, calendar CalendarService, s *Scheduler) *Engine {
	return &Engine{Store: store, Calendar: calendar, Scheduler: s}
}

// PlanWeek builds the plan for userID. All reads finish before scheduling
// starts. Store failures fail the run; calendar failures are logged and
// treated as an empty calendar. Malformed intervals are rejected. Sessions
// applied earlier in the window are blocked out like calendar commitments.
func (e *Engine) PlanWeek(ctx context.Context, userID string, weekStart *time.Time, now time.Time) (models.WeeklyPlan, error) {
	start, end := Window(now, weekStart, e.Scheduler.Policy)
	in := PlanInput{UserID: userID, WindowStart: start, WindowEnd: end, Now: now}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		subjects, err := e.Store.ListSubjects(userID)
		if err != nil {
			return fmt.Errorf("failed to list subjects: %w", err)
		}
		in.Subjects = subjects
		return nil
	})
	g.Go(func() error {
		tasks, err := e.Store.ListEligibleTasks(userID, start, end)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		in.Tasks = tasks
		return nil
	})
	var booked []models.BusyPeriod
	g.Go(func() error {
		applied, err := e.Store.ListAppliedSessions(userID, models.DayStart(start), end)
		if err != nil {
			return fmt.Errorf("failed to list applied sessions: %w", err)
		}
		for _, a := range applied {
			booked = append(booked, models.BusyPeriod{Start: a.Start, End: a.End})
		}
		return nil
	})
	if e.Calendar != nil {
		g.Go(func() error {
			busy, err := e.Calendar.GetBusyPeriods(gctx, userID, start, end)
			if err != nil {
				logger.Warn("Calendar busy periods unavailable, planning without them", "user", userID, "error", err)
				return nil
			}
			in.Busy = busy
			return nil
		})
		g.Go(func() error {
			events, err := e.Calendar.GetEvents(gctx, userID, start, end)
			if err != nil {
				logger.Warn("Calendar events unavailable, planning without class hints", "user", userID, "error", err)
				return nil
			}
			in.Events = events
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.WeeklyPlan{}, err
	}

	if err := validation.ValidateBusyPeriods(in.Busy); err != nil {
		return models.WeeklyPlan{}, err
	}
	if err := validation.ValidateEvents(in.Events); err != nil {
		return models.WeeklyPlan{}, err
	}
	if len(booked) > 0 {
		logger.Debug("Blocking applied sessions", "user", userID, "count", len(booked))
		in.Busy = append(in.Busy, booked...)
	}

	plan := e.Scheduler.GeneratePlan(in)
	logger.Info("Weekly plan generated",
		"user", userID,
		"window_start", start,
		"window_end", end,
		"sessions", plan.Summary.TotalSessions,
		"minutes", plan.Summary.TotalMinutes)
	return plan, nil
}
