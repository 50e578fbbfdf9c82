package calendars

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/oauth2"

	"github.com/julianstephens/studyweek/internal/calendar"
	"github.com/julianstephens/studyweek/internal/cli"
	"github.com/julianstephens/studyweek/internal/config"
	"github.com/julianstephens/studyweek/internal/keyring"
)

// CalendarAuthCmd runs the Google OAuth consent flow and stores the token.
type CalendarAuthCmd struct {
	Code string `help:"Authorization code, prompted for when omitted."`
}

func (c *CalendarAuthCmd) Run(ctx *cli.Context) error {
	cfg, err := calendar.OAuthConfig(os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"))
	if err != nil {
		return fmt.Errorf("set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET in the environment or %s: %w",
			config.CalendarsPath(ctx.ConfigDir), err)
	}

	code := strings.TrimSpace(c.Code)
	if code == "" {
		url := cfg.AuthCodeURL("studyweek", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
		fmt.Println("Open this URL in your browser and grant calendar access:")
		fmt.Println()
		fmt.Println("  " + url)
		fmt.Println()
		err := huh.NewInput().
			Title("Authorization code").
			Value(&code).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("code is required")
				}
				return nil
			}).
			Run()
		if err != nil {
			return err
		}
	}

	tok, err := exchange(context.Background(), cfg, strings.TrimSpace(code))
	if err != nil {
		return err
	}
	if err := keyring.SetOAuthToken(tok); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	fmt.Println("✓ Google Calendar connected")
	return nil
}

func exchange(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error) {
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return tok, nil
}

// CalendarDisconnectCmd forgets the stored Google token.
type CalendarDisconnectCmd struct{}

func (c *CalendarDisconnectCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteOAuthToken(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("Google Calendar is not connected")
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	fmt.Println("✓ Google Calendar disconnected")
	return nil
}

// CalendarSourcesCmd lists the configured calendar sources.
type CalendarSourcesCmd struct{}

func (c *CalendarSourcesCmd) Run(ctx *cli.Context) error {
	path := config.CalendarsPath(ctx.ConfigDir)
	cals, err := ctx.CalendarConfig()
	if err != nil {
		return err
	}

	fmt.Printf("Calendar sources (%s):\n", path)
	for _, s := range cals.Sources {
		state := "disabled"
		if s.Enabled {
			state = "enabled"
		}
		fmt.Printf("  %-12s %-7s %s%s\n", s.Name, s.Type, state, describe(s))
	}
	fmt.Printf("\nPublish target: %s\n", cals.Publish)
	return nil
}

func describe(s config.Source) string {
	switch s.Type {
	case config.SourceICS:
		return " " + strings.Join(s.Paths, ", ")
	case config.SourceCalDAV:
		return " " + s.Endpoint
	case config.SourceGoogle:
		if _, err := keyring.GetOAuthToken(); err != nil {
			return " (not connected)"
		}
		return " (connected)"
	}
	return ""
}

// CalendarInitCmd writes the default calendars.yaml.
type CalendarInitCmd struct {
	Force bool `help:"Overwrite an existing calendars.yaml."`
}

func (c *CalendarInitCmd) Run(ctx *cli.Context) error {
	path := config.CalendarsPath(ctx.ConfigDir)
	if err := config.WriteDefault(path, c.Force); err != nil {
		return err
	}
	fmt.Printf("Calendar sources are configured in: %s\n", path)
	return nil
}

// CalendarEnableCmd switches a source on or off and optionally sets the
// publish target.
type CalendarEnableCmd struct {
	Name    string `arg:"" help:"Source name."`
	Disable bool   `help:"Disable instead of enable."`
	Publish bool   `help:"Also publish applied plans to this source."`
}

func (c *CalendarEnableCmd) Run(ctx *cli.Context) error {
	path := config.CalendarsPath(ctx.ConfigDir)
	cals, err := ctx.CalendarConfig()
	if err != nil {
		return err
	}

	found := false
	for i := range cals.Sources {
		if strings.EqualFold(cals.Sources[i].Name, c.Name) {
			cals.Sources[i].Enabled = !c.Disable
			found = true
		}
	}
	if !found {
		return fmt.Errorf("no calendar source named %q", c.Name)
	}
	if c.Publish {
		cals.Publish = c.Name
	} else if c.Disable && strings.EqualFold(cals.Publish, c.Name) {
		cals.Publish = config.PublishNone
	}

	if err := cals.Save(path); err != nil {
		return err
	}
	state := "enabled"
	if c.Disable {
		state = "disabled"
	}
	fmt.Printf("Source %s %s\n", c.Name, state)
	return nil
}
