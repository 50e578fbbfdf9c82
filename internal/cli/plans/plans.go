package plans

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/julianstephens/studyweek/internal/calendar"
	"github.com/julianstephens/studyweek/internal/cli"
	"github.com/julianstephens/studyweek/internal/constants"
	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/scheduler"
	"github.com/julianstephens/studyweek/internal/validation"
)

type PlanCmd struct {
	WeekStart string `help:"Plan the week starting on this date (YYYY-MM-DD)." name:"week-start"`
	Apply     bool   `help:"Record the plan and publish it to the configured calendar."`
	Yes       bool   `short:"y" help:"Apply without asking for confirmation."`
	ICS       string `help:"Also write the plan to this iCalendar file." name:"ics" type:"path"`
	JSON      bool   `help:"Print the plan as JSON." name:"json"`
	User      string `help:"User to plan for."`
}

func (c *PlanCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	userID, err := ctx.UserID(c.User)
	if err != nil {
		return err
	}
	policy, err := ctx.Policy()
	if err != nil {
		return err
	}
	weekStart, err := cli.ParseWeekStart(c.WeekStart, policy.Location)
	if err != nil {
		return err
	}
	engine, err := ctx.Engine(bg)
	if err != nil {
		return err
	}

	now := ctx.Clock()
	plan, err := engine.PlanWeek(bg, userID, weekStart, now)
	if err != nil {
		return fmt.Errorf("failed to plan week: %w", err)
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(plan); err != nil {
			return err
		}
	} else {
		fmt.Print(cli.RenderPlan(plan, policy.Location))
		if result := checkPlan(plan, policy, now); result.HasConflicts() {
			fmt.Println(cli.WarningStyle.Render(result.FormatReport()))
		}
	}

	if c.ICS != "" {
		if err := writeICS(c.ICS, plan); err != nil {
			return err
		}
		fmt.Printf("Wrote %d sessions to %s\n", len(plan.Sessions), c.ICS)
	}

	if !c.Apply {
		return nil
	}
	if len(plan.Sessions) == 0 {
		fmt.Println("Nothing to apply.")
		return nil
	}
	if !c.Yes {
		ok, err := cli.Confirm("Apply this plan?",
			fmt.Sprintf("%d sessions will be recorded and their tasks marked scheduled.", len(plan.Sessions)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Plan not applied.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()

	applier, err := ctx.Applier(bg)
	if err != nil {
		return err
	}
	res, err := applier.Apply(bg, plan)
	if err != nil {
		return fmt.Errorf("failed to apply plan: %w", err)
	}
	fmt.Printf("Applied plan: %d sessions created, %d failed\n", res.Created, res.Failed)
	return nil
}

// checkPlan re-validates a generated plan against the active-hours rules.
func checkPlan(plan models.WeeklyPlan, policy scheduler.Policy, now time.Time) validation.ValidationResult {
	sessions := make([]models.PlannedSession, len(plan.Sessions))
	for i, s := range plan.Sessions {
		s.Start = s.Start.In(policy.Location)
		s.End = s.End.In(policy.Location)
		sessions[i] = s
	}
	return validation.New().ValidatePlan(sessions, validation.PlanRules{
		Now:           now,
		DayStartMin:   policy.DayStartMin,
		DayEndMin:     policy.DayEndMin,
		MaxSessionMin: policy.MaxSessionMin,
	})
}

func writeICS(path string, plan models.WeeklyPlan) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := calendar.WriteICS(f, plan); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return f.Close()
}

type SessionsCmd struct {
	WeekStart string `help:"Week to list (YYYY-MM-DD), defaults to the coming planning week." name:"week-start"`
	User      string `help:"User whose sessions to list."`
}

func (c *SessionsCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.UserID(c.User)
	if err != nil {
		return err
	}
	policy, err := ctx.Policy()
	if err != nil {
		return err
	}
	weekStart, err := cli.ParseWeekStart(c.WeekStart, policy.Location)
	if err != nil {
		return err
	}
	start, end := scheduler.Window(ctx.Clock(), weekStart, policy)

	sessions, err := ctx.Store.ListAppliedSessions(userID, start, end)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No applied sessions this week")
		return nil
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Start.Before(sessions[j].Start) })

	names := map[string]string{}
	if subjects, err := ctx.Store.ListSubjects(userID); err == nil {
		for _, s := range subjects {
			names[s.ID] = s.Name
		}
	}

	fmt.Println("Applied sessions:")
	for _, s := range sessions {
		name := names[s.SubjectID]
		if name == "" {
			name = s.SubjectID
		}
		start := s.Start.In(policy.Location)
		ext := ""
		if s.ExternalID != "" {
			ext = fmt.Sprintf(" [%s]", s.ExternalID)
		}
		fmt.Printf("  %s %s-%s  %s (%d tasks)%s\n",
			start.Format("Mon Jan 2"), start.Format(constants.TimeFormat),
			s.End.In(policy.Location).Format(constants.TimeFormat), name, len(s.TaskIDs), ext)
	}
	return nil
}
