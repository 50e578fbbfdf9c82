package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/julianstephens/studyweek/internal/constants"
	"github.com/julianstephens/studyweek/internal/logger"
	"github.com/julianstephens/studyweek/internal/models"
)

const prodID = "-//studyweek//EN"

// ICSFile reads commitments from local .ics exports, such as a school
// timetable.
type ICSFile struct {
	name  string
	paths []string
	loc   *time.Location
}

func NewICSFile(name string, paths []string, loc *time.Location) *ICSFile {
	if loc == nil {
		loc = time.Local
	}
	if name == "" {
		name = "ics"
	}
	return &ICSFile{name: name, paths: paths, loc: loc}
}

func (f *ICSFile) Name() string { return f.name }

func (f *ICSFile) GetBusyPeriods(ctx context.Context, userID string, windowStart, windowEnd time.Time) ([]models.BusyPeriod, error) {
	events, err := f.GetEvents(ctx, userID, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	return busyFromEvents(events), nil
}

func (f *ICSFile) GetEvents(ctx context.Context, userID string, windowStart, windowEnd time.Time) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	for _, path := range f.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cals, err := readICSFile(path)
		if err != nil {
			return nil, err
		}
		for _, cal := range cals {
			events = append(events, eventsFromCalendar(cal, windowStart, windowEnd, f.loc, f.name)...)
		}
	}
	return clipEvents(events, windowStart, windowEnd, f.name), nil
}

func readICSFile(path string) ([]*ical.Calendar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer file.Close()
	return decodeCalendars(file)
}

func decodeCalendars(r io.Reader) ([]*ical.Calendar, error) {
	dec := ical.NewDecoder(r)
	var cals []*ical.Calendar
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return cals, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse calendar: %w", err)
		}
		cals = append(cals, cal)
	}
}

// eventsFromCalendar converts the busy VEVENTs of cal into events, expanding
// recurrences that fall inside the window.
func eventsFromCalendar(cal *ical.Calendar, windowStart, windowEnd time.Time, loc *time.Location, source string) []models.CalendarEvent {
	var out []models.CalendarEvent
	for _, ev := range cal.Events() {
		if !isBusy(&ev) {
			continue
		}
		uid, _ := ev.Props.Text(ical.PropUID)
		title, _ := ev.Props.Text(ical.PropSummary)

		start, err := ev.DateTimeStart(loc)
		if err != nil {
			logger.Debug("Skipping event without a start", "source", source, "uid", uid, "error", err)
			continue
		}
		allDay := isDateOnly(ev.Props.Get(ical.PropDateTimeStart))
		end, err := eventEnd(&ev, start, allDay, loc)
		if err != nil {
			logger.Debug("Skipping event with a bad end", "source", source, "uid", uid, "error", err)
			continue
		}
		length := end.Sub(start)

		starts := []time.Time{start}
		set, err := ev.RecurrenceSet(loc)
		if err != nil {
			logger.Debug("Ignoring unparseable recurrence", "source", source, "uid", uid, "error", err)
		} else if set != nil {
			starts = set.Between(windowStart.Add(-length), windowEnd, true)
		}

		for _, s := range starts {
			out = append(out, models.CalendarEvent{
				ID:     uid,
				Title:  title,
				Start:  s,
				End:    s.Add(length),
				AllDay: allDay,
				Source: source,
			})
		}
	}
	return out
}

func isBusy(ev *ical.Event) bool {
	if status, _ := ev.Props.Text(ical.PropStatus); strings.EqualFold(status, "CANCELLED") {
		return false
	}
	if transp, _ := ev.Props.Text(ical.PropTransparency); strings.EqualFold(transp, "TRANSPARENT") {
		return false
	}
	return true
}

func isDateOnly(p *ical.Prop) bool {
	return p != nil && p.ValueType() == ical.ValueDate
}

func eventEnd(ev *ical.Event, start time.Time, allDay bool, loc *time.Location) (time.Time, error) {
	if p := ev.Props.Get(ical.PropDateTimeEnd); p != nil {
		return p.DateTime(loc)
	}
	if p := ev.Props.Get(ical.PropDuration); p != nil {
		d, err := p.Duration()
		if err != nil {
			return time.Time{}, err
		}
		return start.Add(d), nil
	}
	if allDay {
		return start.AddDate(0, 0, 1), nil
	}
	return start, nil
}

// WriteICS serialises plan as a VCALENDAR with one VEVENT per session.
// UIDs are derived from the subject and start so re-exporting the same plan
// updates rather than duplicates the events.
func WriteICS(w io.Writer, plan models.WeeklyPlan) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)

	stamp := plan.GeneratedAt
	if stamp.IsZero() {
		stamp = time.Now()
	}
	for _, s := range plan.Sessions {
		cal.Children = append(cal.Children, sessionComponent(s, nil, stamp.UTC()))
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

// SessionUID returns a stable identifier for a session.
func SessionUID(s models.PlannedSession) string {
	key := s.SubjectID + "@" + s.Start.UTC().Format(time.RFC3339)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

func sessionComponent(s models.PlannedSession, taskTitles []string, stamp time.Time) *ical.Component {
	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, SessionUID(s))
	ev.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	ev.Props.SetDateTime(ical.PropDateTimeStart, s.Start.UTC())
	ev.Props.SetDateTime(ical.PropDateTimeEnd, s.End.UTC())
	ev.Props.SetText(ical.PropSummary, SessionTitle(s))
	ev.Props.SetText(ical.PropDescription, SessionDescription(s, taskTitles))

	alarm := ical.NewComponent(ical.CompAlarm)
	alarm.Props.SetText(ical.PropAction, "DISPLAY")
	alarm.Props.SetText(ical.PropDescription, SessionTitle(s))
	trigger := ical.NewProp(ical.PropTrigger)
	trigger.Value = fmt.Sprintf("-PT%dM", constants.ReminderMinutes)
	alarm.Props.Set(trigger)
	ev.Children = append(ev.Children, alarm)

	return ev.Component
}
