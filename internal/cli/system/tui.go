package system

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/studyweek/internal/cli"
	"github.com/julianstephens/studyweek/internal/tui"
)

type TuiCmd struct {
	User string `help:"User to plan for."`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	cfg, err := tuiConfig(context.Background(), ctx, c.User)
	if err != nil {
		return err
	}
	p := tea.NewProgram(tui.NewModel(cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

func tuiConfig(bg context.Context, ctx *cli.Context, user string) (tui.Config, error) {
	userID, err := ctx.UserID(user)
	if err != nil {
		return tui.Config{}, err
	}
	policy, err := ctx.Policy()
	if err != nil {
		return tui.Config{}, err
	}
	engine, err := ctx.Engine(bg)
	if err != nil {
		return tui.Config{}, err
	}
	applier, err := ctx.Applier(bg)
	if err != nil {
		return tui.Config{}, err
	}
	return tui.Config{
		Planner:  engine,
		Applier:  applier,
		Store:    ctx.Store,
		UserID:   userID,
		Location: policy.Location,
		Now:      ctx.Clock,
	}, nil
}
