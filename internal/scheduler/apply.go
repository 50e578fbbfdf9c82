package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/studyweek/internal/logger"
	"github.com/julianstephens/studyweek/internal/models"
)

// Publisher writes a planned session to an external calendar and returns
// the id of the created event.
type Publisher interface {
	PublishSession(ctx context.Context, s models.PlannedSession, taskTitles []string) (string, error)
}

// ApplyStore is the write side of the store used when a plan is accepted.
type ApplyStore interface {
	GetTask(id string) (models.Task, error)
	MarkTasksScheduled(ids []string, scheduledFor time.Time) error
	SaveAppliedSession(models.AppliedSession) error
}

type ApplyResult struct {
	Created int `json:"events_created"`
	Failed  int `json:"events_failed"`
}

// Applier records an accepted plan and optionally publishes it.
type Applier struct {
	Store     ApplyStore
	Publisher Publisher // nil records sessions locally only
	now       func() time.Time
}

func NewApplier(store ApplyStore, publisher Publisher) *Applier {
	return &Applier{Store: store, Publisher: publisher, now: time.Now}
}

// Apply publishes each session, records it, and marks its tasks scheduled.
// A failing session is counted and the rest still go through.
func (a *Applier) Apply(ctx context.Context, plan models.WeeklyPlan) (ApplyResult, error) {
	var res ApplyResult
	for _, s := range plan.Sessions {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := a.applySession(ctx, plan.UserID, s); err != nil {
			logger.Warn("Failed to apply session",
				"subject", s.SubjectName, "start", s.Start, "error", err)
			res.Failed++
			continue
		}
		res.Created++
	}
	logger.Info("Weekly plan applied", "user", plan.UserID, "created", res.Created, "failed", res.Failed)
	return res, nil
}

func (a *Applier) applySession(ctx context.Context, userID string, s models.PlannedSession) error {
	var externalID string
	if a.Publisher != nil {
		id, err := a.Publisher.PublishSession(ctx, s, a.taskTitles(s.TaskIDs))
		if err != nil {
			return err
		}
		externalID = id
	}

	applied := models.AppliedSession{
		ID:         uuid.New().String(),
		UserID:     userID,
		SubjectID:  s.SubjectID,
		TaskIDs:    s.TaskIDs,
		Start:      s.Start,
		End:        s.End,
		ExternalID: externalID,
		CreatedAt:  a.now(),
	}
	if err := a.Store.SaveAppliedSession(applied); err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}
	if err := a.Store.MarkTasksScheduled(s.TaskIDs, s.Start); err != nil {
		return fmt.Errorf("failed to mark tasks scheduled: %w", err)
	}
	return nil
}

func (a *Applier) taskTitles(ids []string) []string {
	titles := make([]string, 0, len(ids))
	for _, id := range ids {
		t, err := a.Store.GetTask(id)
		if err != nil {
			logger.Debug("Task title unavailable", "task", id, "error", err)
			continue
		}
		titles = append(titles, t.Title)
	}
	return titles
}
