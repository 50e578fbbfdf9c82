package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/julianstephens/studyweek/internal/config"
	"github.com/julianstephens/studyweek/internal/logger"
	"github.com/julianstephens/studyweek/internal/models"
)

// Publisher writes sessions to a calendar.
type Publisher interface {
	PublishSession(ctx context.Context, s models.PlannedSession, taskTitles []string) (string, error)
}

// GoogleAuth carries what is needed to talk to Google Calendar.
type GoogleAuth struct {
	Config *oauth2.Config
	Token  *oauth2.Token
	Save   TokenSaver
}

// Build creates the enabled sources of cfg. Sources that cannot be created
// are logged and left out.
func Build(ctx context.Context, cfg *config.Calendars, auth GoogleAuth, loc *time.Location) *Merged {
	merged := NewMerged()
	for _, sc := range cfg.Enabled() {
		src, err := buildSource(ctx, sc, auth, loc)
		if err != nil {
			logger.Warn("Calendar source unavailable", "source", sc.Name, "error", err)
			continue
		}
		merged.Sources = append(merged.Sources, src)
	}
	return merged
}

func buildSource(ctx context.Context, sc config.Source, auth GoogleAuth, loc *time.Location) (Source, error) {
	switch sc.Type {
	case config.SourceGoogle:
		return NewGoogle(ctx, auth.Config, auth.Token, auth.Save, loc)
	case config.SourceICS:
		return NewICSFile(sc.Name, sc.Paths, loc), nil
	case config.SourceCalDAV:
		return NewCalDAV(caldavConfig(sc), nil, loc)
	default:
		return nil, fmt.Errorf("unknown calendar type %q", sc.Type)
	}
}

// BuildPublisher returns the configured publish target, or nil for none.
func BuildPublisher(ctx context.Context, cfg *config.Calendars, auth GoogleAuth, loc *time.Location) (Publisher, error) {
	target := strings.ToLower(cfg.Publish)
	switch target {
	case "", config.PublishNone:
		return nil, nil
	case config.SourceGoogle:
		return NewGoogle(ctx, auth.Config, auth.Token, auth.Save, loc)
	}

	sc, ok := cfg.Lookup(cfg.Publish)
	if !ok || sc.Type != config.SourceCalDAV {
		return nil, fmt.Errorf("publish target %q is not a caldav source", cfg.Publish)
	}
	return NewCalDAV(caldavConfig(sc), nil, loc)
}

func caldavConfig(sc config.Source) CalDAVConfig {
	return CalDAVConfig{
		Name:         sc.Name,
		Endpoint:     sc.Endpoint,
		Username:     sc.Username,
		Password:     sc.Password(),
		CalendarName: sc.Calendar,
		CalendarPath: sc.Path,
	}
}
