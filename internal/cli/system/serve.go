package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/studyweek/internal/cli"
	"github.com/julianstephens/studyweek/internal/constants"
	"github.com/julianstephens/studyweek/internal/logger"
	"github.com/julianstephens/studyweek/internal/server"
)

type ServeCmd struct {
	Addr    string `help:"Address to listen on." default:"127.0.0.1:8787"`
	NoApply bool   `help:"Reject apply requests." name:"no-apply"`
	Quiet   bool   `help:"Do not log requests to stderr."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !c.Quiet {
		logger.InitWriter(os.Stderr, log.InfoLevel)
	}

	srv, err := newServer(sigCtx, ctx, !c.NoApply)
	if err != nil {
		return err
	}

	addr := c.Addr
	if addr == "" {
		addr = constants.DefaultServeAddr
	}
	fmt.Printf("Serving weekly plans on http://%s/api/planning/weekly-plan\n", addr)
	return srv.Run(sigCtx, addr)
}

func newServer(bg context.Context, ctx *cli.Context, allowApply bool) (*server.Server, error) {
	settings, err := ctx.Settings()
	if err != nil {
		return nil, err
	}
	policy, err := ctx.Policy()
	if err != nil {
		return nil, err
	}
	engine, err := ctx.Engine(bg)
	if err != nil {
		return nil, err
	}

	cfg := server.Config{
		Planner:     engine,
		DefaultUser: settings.DefaultUser,
		Location:    policy.Location,
		Now:         ctx.Clock,
	}
	if allowApply {
		applier, err := ctx.Applier(bg)
		if err != nil {
			return nil, err
		}
		cfg.Applier = applier
	}
	return server.New(cfg), nil
}
