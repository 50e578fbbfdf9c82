package models

import "time"

// BusyPeriod is a half-open interval [Start, End) blocked by an external commitment.
type BusyPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Valid reports whether the interval is well formed: both ends set and the
// end not before the start. An empty interval is valid and blocks nothing.
func (b BusyPeriod) Valid() bool {
	return !b.Start.IsZero() && !b.End.IsZero() && !b.End.Before(b.Start)
}

// Overlaps reports whether the period intersects [start, end).
func (b BusyPeriod) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && b.End.After(start)
}

// CalendarEvent is a titled busy period read from a calendar source.
type CalendarEvent struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	AllDay          bool      `json:"all_day,omitempty"`
	Source          string    `json:"source,omitempty"`
	IsClass         bool      `json:"is_class,omitempty"`
	InferredSubject string    `json:"inferred_subject,omitempty"`
}

// Busy returns the event's interval as a BusyPeriod.
func (e CalendarEvent) Busy() BusyPeriod {
	return BusyPeriod{Start: e.Start, End: e.End}
}

// FreeSlot is a contiguous span of unblocked, in-policy time.
type FreeSlot struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	DurationMin int       `json:"duration_min"`
}

// NewFreeSlot builds a slot with its duration in whole minutes.
func NewFreeSlot(start, end time.Time) FreeSlot {
	return FreeSlot{
		Start:       start,
		End:         end,
		DurationMin: int(end.Sub(start) / time.Minute),
	}
}
