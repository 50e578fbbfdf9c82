package calendar

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/julianstephens/studyweek/internal/constants"
	"github.com/julianstephens/studyweek/internal/logger"
	"github.com/julianstephens/studyweek/internal/models"
)

const (
	googleRedirectURL = "urn:ietf:wg:oauth:2.0:oob"
	sourceGoogle      = "google"
)

// OAuthConfig returns the desktop-flow OAuth config for Google Calendar.
func OAuthConfig(clientID, clientSecret string) (*oauth2.Config, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set: %w", ErrNotConnected)
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  googleRedirectURL,
		Scopes:       []string{gcal.CalendarScope},
		Endpoint:     google.Endpoint,
	}, nil
}

// Google reads and writes the user's primary Google calendar.
type Google struct {
	svc        *gcal.Service
	calendarID string
	loc        *time.Location
	delay      time.Duration
}

// TokenSaver persists a refreshed token.
type TokenSaver func(*oauth2.Token) error

// NewGoogle builds a client from a stored token. A nil token means the user
// never connected Google Calendar.
func NewGoogle(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token, save TokenSaver, loc *time.Location) (*Google, error) {
	if cfg == nil || tok == nil {
		return nil, ErrNotConnected
	}
	ts := &savingTokenSource{base: cfg.TokenSource(ctx, tok), last: tok, save: save}
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return NewGoogleWithService(svc, loc), nil
}

// NewGoogleWithService wraps an existing calendar service.
func NewGoogleWithService(svc *gcal.Service, loc *time.Location) *Google {
	if loc == nil {
		loc = time.Local
	}
	return &Google{
		svc:        svc,
		calendarID: constants.GoogleCalendarID,
		loc:        loc,
		delay:      constants.PublishDelay,
	}
}

func (g *Google) Name() string { return sourceGoogle }

// GetBusyPeriods runs a freeBusy query over the primary calendar. Periods
// that fail to parse are skipped; inverted ones are returned as is.
func (g *Google) GetBusyPeriods(ctx context.Context, userID string, windowStart, windowEnd time.Time) ([]models.BusyPeriod, error) {
	req := &gcal.FreeBusyRequest{
		TimeMin: windowStart.Format(time.RFC3339),
		TimeMax: windowEnd.Format(time.RFC3339),
		Items:   []*gcal.FreeBusyRequestItem{{Id: g.calendarID}},
	}
	resp, err := g.svc.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freeBusy query failed: %w", err)
	}

	cal, ok := resp.Calendars[g.calendarID]
	if !ok {
		return []models.BusyPeriod{}, nil
	}
	if len(cal.Errors) > 0 {
		return nil, fmt.Errorf("freeBusy query failed: %s", cal.Errors[0].Reason)
	}

	busy := make([]models.BusyPeriod, 0, len(cal.Busy))
	for _, p := range cal.Busy {
		start, err1 := time.Parse(time.RFC3339, p.Start)
		end, err2 := time.Parse(time.RFC3339, p.End)
		if err1 != nil || err2 != nil {
			logger.Debug("Skipping malformed busy period", "start", p.Start, "end", p.End)
			continue
		}
		busy = append(busy, models.BusyPeriod{Start: start.In(g.loc), End: end.In(g.loc)})
	}
	return busy, nil
}

// GetEvents lists single (expanded) events ordered by start time.
func (g *Google) GetEvents(ctx context.Context, userID string, windowStart, windowEnd time.Time) ([]models.CalendarEvent, error) {
	resp, err := g.svc.Events.List(g.calendarID).
		TimeMin(windowStart.Format(time.RFC3339)).
		TimeMax(windowEnd.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(constants.GoogleMaxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events: %w", err)
	}

	events := make([]models.CalendarEvent, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Status == "cancelled" || item.Transparency == "transparent" {
			continue
		}
		ev, ok := g.toEvent(item)
		if !ok {
			logger.Debug("Skipping unparseable event", "id", item.Id)
			continue
		}
		events = append(events, ev)
	}
	return clipEvents(events, windowStart, windowEnd, sourceGoogle), nil
}

func (g *Google) toEvent(item *gcal.Event) (models.CalendarEvent, bool) {
	if item.Start == nil || item.End == nil {
		return models.CalendarEvent{}, false
	}
	ev := models.CalendarEvent{ID: item.Id, Title: item.Summary, Source: sourceGoogle}

	if item.Start.DateTime == "" {
		// All-day events carry dates only; the end date is exclusive.
		start, err1 := time.ParseInLocation(constants.DateFormat, item.Start.Date, g.loc)
		end, err2 := time.ParseInLocation(constants.DateFormat, item.End.Date, g.loc)
		if err1 != nil || err2 != nil {
			return ev, false
		}
		ev.Start, ev.End, ev.AllDay = start, end, true
		return ev, true
	}

	start, err1 := time.Parse(time.RFC3339, item.Start.DateTime)
	end, err2 := time.Parse(time.RFC3339, item.End.DateTime)
	if err1 != nil || err2 != nil {
		return ev, false
	}
	ev.Start, ev.End = start.In(g.loc), end.In(g.loc)
	return ev, true
}

// PublishSession inserts the session into the primary calendar and returns
// the created event id.
func (g *Google) PublishSession(ctx context.Context, s models.PlannedSession, taskTitles []string) (string, error) {
	tz := g.loc.String()
	if tz == "Local" {
		tz = ""
	}
	event := &gcal.Event{
		Summary:     SessionTitle(s),
		Description: SessionDescription(s, taskTitles),
		Start:       &gcal.EventDateTime{DateTime: s.Start.In(g.loc).Format(time.RFC3339), TimeZone: tz},
		End:         &gcal.EventDateTime{DateTime: s.End.In(g.loc).Format(time.RFC3339), TimeZone: tz},
		Reminders: &gcal.EventReminders{
			UseDefault:      false,
			Overrides:       []*gcal.EventReminder{{Method: "popup", Minutes: constants.ReminderMinutes}},
			ForceSendFields: []string{"UseDefault"},
		},
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: map[string]string{
				constants.ExtendedPropertyKey: "true",
				"type":                        "weekly_plan",
				"subjectId":                   s.SubjectID,
			},
		},
	}

	created, err := g.svc.Events.Insert(g.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}

	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return created.Id, ctx.Err()
		}
	}
	return created.Id, nil
}

// SessionTitle is the calendar title of a published session.
func SessionTitle(s models.PlannedSession) string {
	return constants.SessionTitlePrefix + " " + s.SubjectName
}

// SessionDescription lists the tasks a session covers.
func SessionDescription(s models.PlannedSession, taskTitles []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Study session: %s\n\nTasks:\n", s.SubjectName)
	if len(taskTitles) == 0 {
		b.WriteString("- Tasks to complete\n")
	}
	for _, t := range taskTitles {
		fmt.Fprintf(&b, "- %s\n", t)
	}
	return b.String()
}

// savingTokenSource hands refreshed tokens to save so the next run does not
// need to refresh again.
type savingTokenSource struct {
	base oauth2.TokenSource
	save TokenSaver

	mu   sync.Mutex
	last *oauth2.Token
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.save != nil && (s.last == nil || tok.AccessToken != s.last.AccessToken) {
		if err := s.save(tok); err != nil {
			logger.Warn("Failed to persist refreshed Google token", "error", err)
		}
	}
	s.last = tok
	return tok, nil
}
