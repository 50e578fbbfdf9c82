// Package calendar reads busy time from the user's calendars and publishes
// planned sessions back to them.
package calendar

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/studyweek/internal/logger"
	"github.com/julianstephens/studyweek/internal/models"
)

// ErrNotConnected is returned when a source has no credentials to work with.
var ErrNotConnected = errors.New("calendar not connected")

// Source is one calendar the planner reads commitments from.
type Source interface {
	Name() string
	GetBusyPeriods(ctx context.Context, userID string, windowStart, windowEnd time.Time) ([]models.BusyPeriod, error)
	GetEvents(ctx context.Context, userID string, windowStart, windowEnd time.Time) ([]models.CalendarEvent, error)
}

// Merged combines several sources. A source that fails is logged and
// skipped so one broken calendar does not hide the others.
type Merged struct {
	Sources []Source
}

func NewMerged(sources ...Source) *Merged {
	return &Merged{Sources: sources}
}

func (m *Merged) Name() string { return "merged" }

func (m *Merged) GetBusyPeriods(ctx context.Context, userID string, windowStart, windowEnd time.Time) ([]models.BusyPeriod, error) {
	var (
		mu  sync.Mutex
		out []models.BusyPeriod
	)
	m.each(ctx, func(ctx context.Context, src Source) error {
		busy, err := src.GetBusyPeriods(ctx, userID, windowStart, windowEnd)
		if err != nil {
			return err
		}
		mu.Lock()
		out = append(out, busy...)
		mu.Unlock()
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (m *Merged) GetEvents(ctx context.Context, userID string, windowStart, windowEnd time.Time) ([]models.CalendarEvent, error) {
	var (
		mu  sync.Mutex
		out []models.CalendarEvent
	)
	m.each(ctx, func(ctx context.Context, src Source) error {
		events, err := src.GetEvents(ctx, userID, windowStart, windowEnd)
		if err != nil {
			return err
		}
		mu.Lock()
		out = append(out, events...)
		mu.Unlock()
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (m *Merged) each(ctx context.Context, fn func(context.Context, Source) error) {
	var g errgroup.Group
	for _, src := range m.Sources {
		g.Go(func() error {
			if err := fn(ctx, src); err != nil {
				if errors.Is(err, ErrNotConnected) {
					logger.Debug("Calendar source not connected", "source", src.Name())
				} else {
					logger.Warn("Calendar source failed, skipping", "source", src.Name(), "error", err)
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

// clipEvents keeps the events that intersect [start, end). Empty events are
// dropped. Inverted events starting inside the window are passed through so
// the planner rejects them.
func clipEvents(events []models.CalendarEvent, start, end time.Time, source string) []models.CalendarEvent {
	out := make([]models.CalendarEvent, 0, len(events))
	for _, ev := range events {
		switch {
		case ev.End.Equal(ev.Start):
			logger.Debug("Skipping empty calendar event", "source", source, "id", ev.ID)
			continue
		case ev.End.Before(ev.Start):
			if !ev.Start.Before(start) && ev.Start.Before(end) {
				out = append(out, ev)
			}
			continue
		}
		if !ev.Busy().Overlaps(start, end) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func busyFromEvents(events []models.CalendarEvent) []models.BusyPeriod {
	busy := make([]models.BusyPeriod, 0, len(events))
	for _, ev := range events {
		busy = append(busy, ev.Busy())
	}
	return busy
}
