package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/studyweek/internal/backup"
	"github.com/julianstephens/studyweek/internal/calendar"
	"github.com/julianstephens/studyweek/internal/config"
	"github.com/julianstephens/studyweek/internal/keyring"
	"github.com/julianstephens/studyweek/internal/logger"
	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/scheduler"
	"github.com/julianstephens/studyweek/internal/storage"
	"github.com/julianstephens/studyweek/internal/utils"
)

type Context struct {
	Store     storage.Provider
	ConfigDir string
	Now       func() time.Time
}

// Clock returns the current instant.
func (c *Context) Clock() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	path := c.Store.GetConfigPath()
	if _, err := os.Stat(path); err != nil {
		// Postgres or not yet initialised; nothing to copy.
		return
	}
	if _, err := backup.NewManager(path).CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Settings returns the stored settings with defaults filled in.
func (c *Context) Settings() (models.Settings, error) {
	s, err := c.Store.GetSettings()
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	models.ApplyDefaultSettings(&s)
	return s, nil
}

func (c *Context) Policy() (scheduler.Policy, error) {
	s, err := c.Settings()
	if err != nil {
		return scheduler.Policy{}, err
	}
	return scheduler.PolicyFromSettings(s)
}

// UserID returns override, or the configured default user.
func (c *Context) UserID(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	s, err := c.Settings()
	if err != nil {
		return "", err
	}
	return s.DefaultUser, nil
}

func (c *Context) CalendarConfig() (*config.Calendars, error) {
	return config.Load(config.CalendarsPath(c.ConfigDir))
}

// GoogleAuth collects the OAuth client from the environment and the token
// from the keyring. Missing pieces are left nil.
func (c *Context) GoogleAuth() calendar.GoogleAuth {
	var auth calendar.GoogleAuth
	cfg, err := calendar.OAuthConfig(os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"))
	if err != nil {
		logger.Debug("Google OAuth client not configured", "error", err)
		return auth
	}
	auth.Config = cfg
	tok, err := keyring.GetOAuthToken()
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Warn("Failed to read Google token from keyring", "error", err)
		}
		return auth
	}
	auth.Token = tok
	auth.Save = keyring.SetOAuthToken
	return auth
}

// Engine wires the store, the configured calendars and the scheduler.
func (c *Context) Engine(ctx context.Context) (*scheduler.Engine, error) {
	policy, err := c.Policy()
	if err != nil {
		return nil, err
	}
	cals, err := c.CalendarConfig()
	if err != nil {
		return nil, err
	}
	sources := calendar.Build(ctx, cals, c.GoogleAuth(), policy.Location)
	return scheduler.NewEngine(c.Store, sources, scheduler.New(policy, scheduler.NewKeywordClassifier())), nil
}

// Applier returns an applier publishing to the configured target.
func (c *Context) Applier(ctx context.Context) (*scheduler.Applier, error) {
	policy, err := c.Policy()
	if err != nil {
		return nil, err
	}
	cals, err := c.CalendarConfig()
	if err != nil {
		return nil, err
	}
	pub, err := calendar.BuildPublisher(ctx, cals, c.GoogleAuth(), policy.Location)
	if err != nil {
		return nil, err
	}
	return scheduler.NewApplier(c.Store, pub), nil
}

// ResolveSubject finds a subject by ID or, failing that, by name.
func (c *Context) ResolveSubject(userID, ref string) (models.Subject, error) {
	if sub, err := c.Store.GetSubject(ref); err == nil {
		return sub, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.Subject{}, err
	}
	sub, err := c.Store.GetSubjectByName(userID, ref)
	if err != nil {
		return models.Subject{}, fmt.Errorf("no subject matches %q: %w", ref, err)
	}
	return sub, nil
}

// ParseWeekStart parses an optional YYYY-MM-DD date in loc.
func ParseWeekStart(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := utils.ParseDateInLocation(s, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, use YYYY-MM-DD: %w", s, err)
	}
	return &t, nil
}
