package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/studyweek/internal/cli"
	"github.com/julianstephens/studyweek/internal/config"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting the existing database and calendars.yaml before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			// Close first to release the file lock.
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) && !config.IsPostgres(dbPath) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized studyweek storage at: %s\n", ctx.Store.GetConfigPath())

	calPath := config.CalendarsPath(ctx.ConfigDir)
	if err := config.WriteDefault(calPath, c.Force); err != nil {
		return err
	}
	fmt.Printf("Calendar sources are configured in: %s\n", calPath)
	return nil
}
