package calendar

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"

	"github.com/julianstephens/studyweek/internal/constants"
	"github.com/julianstephens/studyweek/internal/logger"
	"github.com/julianstephens/studyweek/internal/models"
)

// basicAuthTransport adds credentials and a user agent to every request.
type basicAuthTransport struct {
	username  string
	password  string
	transport http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.username != "" {
		req.SetBasicAuth(t.username, t.password)
	}
	req.Header.Set("User-Agent", constants.AppName+"/"+constants.Version)
	return t.transport.RoundTrip(req)
}

// CalDAVConfig locates one calendar on a CalDAV server. When CalendarPath
// is empty the calendar is discovered by CalendarName.
type CalDAVConfig struct {
	Name         string
	Endpoint     string
	Username     string
	Password     string
	CalendarName string
	CalendarPath string
}

// CalDAV reads and writes a single calendar collection.
type CalDAV struct {
	cfg    CalDAVConfig
	client *caldav.Client
	loc    *time.Location

	mu      sync.Mutex
	calPath string
}

func NewCalDAV(cfg CalDAVConfig, httpClient *http.Client, loc *time.Location) (*CalDAV, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("caldav source %q has no endpoint", cfg.Name)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	authed := *httpClient
	authed.Transport = &basicAuthTransport{username: cfg.Username, password: cfg.Password, transport: base}

	client, err := caldav.NewClient(&authed, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}
	if cfg.Name == "" {
		cfg.Name = "caldav"
	}
	return &CalDAV{cfg: cfg, client: client, loc: loc, calPath: cfg.CalendarPath}, nil
}

func (c *CalDAV) Name() string { return c.cfg.Name }

func (c *CalDAV) calendarPath(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calPath != "" {
		return c.calPath, nil
	}

	principal, err := c.client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}
	homeSet, err := c.client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}
	calendars, err := c.client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}
	for _, cal := range calendars {
		if strings.EqualFold(cal.Name, c.cfg.CalendarName) {
			c.calPath = cal.Path
			logger.Debug("Resolved CalDAV calendar", "source", c.cfg.Name, "path", cal.Path)
			return cal.Path, nil
		}
	}
	return "", fmt.Errorf("no calendar found with name %q", c.cfg.CalendarName)
}

func (c *CalDAV) GetBusyPeriods(ctx context.Context, userID string, windowStart, windowEnd time.Time) ([]models.BusyPeriod, error) {
	events, err := c.GetEvents(ctx, userID, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	return busyFromEvents(events), nil
}

// GetEvents runs a calendar-query REPORT restricted to the window.
func (c *CalDAV) GetEvents(ctx context.Context, userID string, windowStart, windowEnd time.Time) ([]models.CalendarEvent, error) {
	calPath, err := c.calendarPath(ctx)
	if err != nil {
		return nil, err
	}

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:  ical.CompCalendar,
			Comps: []caldav.CalendarCompRequest{{Name: ical.CompEvent, AllProps: true}},
		},
		CompFilter: caldav.CompFilter{
			Name: ical.CompCalendar,
			Comps: []caldav.CompFilter{{
				Name:  ical.CompEvent,
				Start: windowStart.UTC(),
				End:   windowEnd.UTC(),
			}},
		},
	}
	objects, err := c.client.QueryCalendar(ctx, calPath, query)
	if err != nil {
		return nil, fmt.Errorf("caldav query failed: %w", err)
	}

	var events []models.CalendarEvent
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		events = append(events, eventsFromCalendar(obj.Data, windowStart, windowEnd, c.loc, c.cfg.Name)...)
	}
	return clipEvents(events, windowStart, windowEnd, c.cfg.Name), nil
}

// PublishSession PUTs the session as a calendar object and returns its UID.
func (c *CalDAV) PublishSession(ctx context.Context, s models.PlannedSession, taskTitles []string) (string, error) {
	calPath, err := c.calendarPath(ctx)
	if err != nil {
		return "", err
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)
	cal.Children = append(cal.Children, sessionComponent(s, taskTitles, time.Now().UTC()))

	uid := SessionUID(s)
	if _, err := c.client.PutCalendarObject(ctx, path.Join(calPath, uid+".ics"), cal); err != nil {
		return "", fmt.Errorf("failed to create event on CalDAV server: %w", err)
	}
	return uid, nil
}
