package system

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/studyweek/internal/backup"
	"github.com/julianstephens/studyweek/internal/cli"
	"github.com/julianstephens/studyweek/internal/config"
	"github.com/julianstephens/studyweek/internal/validation"
)

type DoctorCmd struct {
	User string `help:"User whose data to validate."`
}

type sqlStore interface {
	GetDB() *sql.DB
}

type schemaReporter interface {
	SchemaVersions() (current, latest int, err error)
}

type check struct {
	name    string
	run     func(*cli.Context) error
	needsDB bool
	warn    bool // failures are reported but do not fail the run
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	checks := []check{
		{name: "Schema version", run: checkSchemaVersion, needsDB: true},
		{name: "Settings", run: checkSettings, needsDB: true},
		{name: "Data validation", run: func(ctx *cli.Context) error { return checkData(ctx, cmd.User) }, needsDB: true},
		{name: "Backups present", run: checkBackupsPresent, warn: true},
		{name: "Calendar sources", run: checkCalendars},
		{name: "Google Calendar", run: checkGoogle, warn: true},
		{name: "Clock/timezone", run: checkClockTimezone, needsDB: true},
	}

	hasError := false
	dbReachable := true
	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warn:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if s, ok := ctx.Store.(sqlStore); ok {
		db := s.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	s, ok := ctx.Store.(schemaReporter)
	if !ok {
		return nil
	}
	current, latest, err := s.SchemaVersions()
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	s, err := ctx.Settings()
	if err != nil {
		return err
	}
	return validation.ValidateSettings(s)
}

func checkData(ctx *cli.Context, user string) error {
	userID, err := ctx.UserID(user)
	if err != nil {
		return err
	}
	subjects, err := ctx.Store.ListSubjects(userID)
	if err != nil {
		return fmt.Errorf("failed to list subjects: %w", err)
	}
	known := make(map[string]bool, len(subjects))
	for _, s := range subjects {
		if err := validation.ValidateSubject(s); err != nil {
			return fmt.Errorf("subject %s: %w", s.ID, err)
		}
		known[s.ID] = true
	}

	tasks, err := ctx.Store.ListTasks(userID, false)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	orphans := 0
	for _, t := range tasks {
		if err := validation.ValidateTask(t); err != nil {
			return fmt.Errorf("task %s: %w", t.ID, err)
		}
		if !known[t.SubjectID] {
			orphans++
		}
	}
	if orphans > 0 {
		return fmt.Errorf("%d open tasks belong to deleted or unknown subjects and will not be planned", orphans)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	path := ctx.Store.GetConfigPath()
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("backups are only taken for SQLite databases")
	}
	backups, err := backup.NewManager(path).ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found, run 'backup create'")
	}
	if age := time.Since(backups[0].Timestamp); age > 7*24*time.Hour {
		return fmt.Errorf("latest backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

func checkCalendars(ctx *cli.Context) error {
	cals, err := ctx.CalendarConfig()
	if err != nil {
		return err
	}
	for _, s := range cals.Enabled() {
		if s.Type == config.SourceCalDAV && s.PasswordEnv != "" && s.Password() == "" {
			return fmt.Errorf("source %q: environment variable %s is not set", s.Name, s.PasswordEnv)
		}
	}
	return nil
}

func checkGoogle(ctx *cli.Context) error {
	cals, err := ctx.CalendarConfig()
	if err != nil {
		return err
	}
	needed := cals.Publish == config.SourceGoogle
	for _, s := range cals.Enabled() {
		if s.Type == config.SourceGoogle {
			needed = true
		}
	}
	if !needed {
		return nil
	}
	auth := ctx.GoogleAuth()
	if auth.Config == nil {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are not set")
	}
	if auth.Token == nil {
		return fmt.Errorf("not connected, run 'calendar auth'")
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	policy, err := ctx.Policy()
	if err != nil {
		return err
	}
	now := ctx.Clock()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	fmt.Printf("   Planning in %s, local time %s\n", policy.Location, now.In(policy.Location).Format("Mon 15:04"))
	return nil
}
