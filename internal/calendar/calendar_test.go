package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/studyweek/internal/models"
)

type stubSource struct {
	name   string
	events []models.CalendarEvent
	err    error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) GetBusyPeriods(ctx context.Context, userID string, start, end time.Time) ([]models.BusyPeriod, error) {
	if s.err != nil {
		return nil, s.err
	}
	return busyFromEvents(s.events), nil
}

func (s *stubSource) GetEvents(ctx context.Context, userID string, start, end time.Time) ([]models.CalendarEvent, error) {
	return s.events, s.err
}

func hour(day, h int) time.Time {
	return time.Date(2026, 1, day, h, 0, 0, 0, time.UTC)
}

func TestMerged_SkipsFailingSources(t *testing.T) {
	m := NewMerged(
		&stubSource{name: "a", events: []models.CalendarEvent{{ID: "2", Start: hour(6, 9), End: hour(6, 10)}}},
		&stubSource{name: "broken", err: errors.New("boom")},
		&stubSource{name: "offline", err: ErrNotConnected},
		&stubSource{name: "b", events: []models.CalendarEvent{{ID: "1", Start: hour(5, 9), End: hour(5, 10)}}},
	)

	events, err := m.GetEvents(context.Background(), "u1", winStart, winEnd)
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(events) != 2 || events[0].ID != "1" {
		t.Errorf("events = %+v, want both sorted by start", events)
	}

	busy, err := m.GetBusyPeriods(context.Background(), "u1", winStart, winEnd)
	if err != nil || len(busy) != 2 || !busy[0].Start.Equal(hour(5, 9)) {
		t.Errorf("busy = %+v, %v", busy, err)
	}
}

func TestClipEvents(t *testing.T) {
	events := []models.CalendarEvent{
		{ID: "inside", Start: hour(5, 9), End: hour(5, 10)},
		{ID: "inverted", Start: hour(5, 10), End: hour(5, 9)},
		{ID: "empty", Start: hour(5, 10), End: hour(5, 10)},
		{ID: "before", Start: hour(1, 9), End: hour(1, 10)},
		{ID: "straddle", Start: hour(4, 23), End: hour(5, 1)},
	}
	got := clipEvents(events, winStart, winEnd, "test")
	if len(got) != 3 || got[0].ID != "inside" || got[1].ID != "inverted" || got[2].ID != "straddle" {
		t.Errorf("clipEvents = %+v", got)
	}
}
