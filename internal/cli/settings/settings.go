package settings

import (
	"fmt"

	"github.com/julianstephens/studyweek/internal/cli"
	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/validation"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	DayStart     *string `help:"Start of the daily study window (HH:MM)."`
	DayEnd       *string `help:"End of the daily study window (HH:MM)."`
	MinSlot      *int    `help:"Shortest usable free slot in minutes."`
	MaxSession   *int    `help:"Longest study session in minutes."`
	WeeklyBudget *int    `help:"Study minutes per week shared across subjects."`
	Timezone     *string `help:"IANA timezone used for planning, or Local."`
	DefaultUser  *string `help:"User planned for when --user is not given."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}

	if c.List {
		printSettings(settings)
		return nil
	}

	updated := false
	if c.DayStart != nil {
		settings.DayStart = *c.DayStart
		updated = true
	}
	if c.DayEnd != nil {
		settings.DayEnd = *c.DayEnd
		updated = true
	}
	if c.MinSlot != nil {
		settings.MinSlotMin = *c.MinSlot
		updated = true
	}
	if c.MaxSession != nil {
		settings.MaxSessionMin = *c.MaxSession
		updated = true
	}
	if c.WeeklyBudget != nil {
		settings.WeeklyBudgetMin = *c.WeeklyBudget
		updated = true
	}
	if c.Timezone != nil {
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.DefaultUser != nil {
		settings.DefaultUser = *c.DefaultUser
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	if err := validation.ValidateSettings(settings); err != nil {
		return err
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")
	return nil
}

func printSettings(s models.Settings) {
	fmt.Println("Current Settings:")
	fmt.Printf("  Day Start:         %s\n", s.DayStart)
	fmt.Printf("  Day End:           %s\n", s.DayEnd)
	fmt.Printf("  Min Slot:          %d min\n", s.MinSlotMin)
	fmt.Printf("  Max Session:       %d min\n", s.MaxSessionMin)
	fmt.Printf("  Weekly Budget:     %d min\n", s.WeeklyBudgetMin)
	fmt.Printf("  Timezone:          %s\n", s.Timezone)
	fmt.Printf("  Default User:      %s\n", s.DefaultUser)
}
