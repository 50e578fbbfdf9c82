package subjects

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/julianstephens/studyweek/internal/cli"
	"github.com/julianstephens/studyweek/internal/constants"
	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/validation"
)

type SubjectAddCmd struct {
	Name     string `arg:"" optional:"" help:"Subject name. Prompted for when omitted."`
	Weight   int    `short:"w" help:"Coefficient from 1 (minor) to 3 (major)." default:"1"`
	Deadline string `help:"Exam or deadline date (YYYY-MM-DD)."`
	User     string `help:"User the subject belongs to."`
}

func (c *SubjectAddCmd) Run(ctx *cli.Context) error {
	if c.Name == "" {
		if err := c.prompt(); err != nil {
			return err
		}
	}
	userID, err := ctx.UserID(c.User)
	if err != nil {
		return err
	}
	if _, err := ctx.Store.GetSubjectByName(userID, c.Name); err == nil {
		return fmt.Errorf("subject %q already exists", c.Name)
	}

	sub := models.Subject{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      c.Name,
		Weight:    c.Weight,
		CreatedAt: ctx.Clock().UTC(),
	}
	if c.Deadline != "" {
		d, err := time.Parse(constants.DateFormat, c.Deadline)
		if err != nil {
			return fmt.Errorf("invalid deadline, use YYYY-MM-DD: %w", err)
		}
		sub.Deadline = &d
	}
	if err := validation.ValidateSubject(sub); err != nil {
		return err
	}

	if err := ctx.Store.AddSubject(sub); err != nil {
		return err
	}
	fmt.Printf("Added subject: %s (weight %d, ID: %s)\n", sub.Name, sub.Weight, sub.ID)
	return nil
}

func (c *SubjectAddCmd) prompt() error {
	weight := strconv.Itoa(c.Weight)
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Subject name").
				Value(&c.Name).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Coefficient").
				Options(
					huh.NewOption("1 - minor", "1"),
					huh.NewOption("2 - standard", "2"),
					huh.NewOption("3 - major", "3"),
				).
				Value(&weight),
			huh.NewInput().
				Title("Deadline (YYYY-MM-DD, optional)").
				Value(&c.Deadline),
		),
	).Run()
	if err != nil {
		return err
	}
	c.Weight, err = strconv.Atoi(weight)
	return err
}

type SubjectListCmd struct {
	User    string `help:"User whose subjects to list."`
	ShowIDs bool   `help:"Show subject IDs." name:"show-ids"`
}

func (c *SubjectListCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.UserID(c.User)
	if err != nil {
		return err
	}
	subjects, err := ctx.Store.ListSubjects(userID)
	if err != nil {
		return fmt.Errorf("failed to list subjects: %w", err)
	}
	if len(subjects) == 0 {
		fmt.Println("No subjects found")
		return nil
	}

	fmt.Println("Subjects:")
	for _, s := range subjects {
		idStr := ""
		if c.ShowIDs {
			idStr = fmt.Sprintf(" (ID: %s)", s.ID)
		}
		deadline := ""
		if s.Deadline != nil {
			deadline = ", deadline " + s.Deadline.Format(constants.DateFormat)
		}
		fmt.Printf("  %s%s - weight %d%s\n", s.Name, idStr, s.Weight, deadline)
	}
	return nil
}

type SubjectEditCmd struct {
	Subject  string  `arg:"" help:"Subject ID or name."`
	Name     *string `help:"New name."`
	Weight   *int    `short:"w" help:"New coefficient (1-3)."`
	Deadline *string `help:"New deadline (YYYY-MM-DD), empty to clear."`
	User     string  `help:"User the subject belongs to."`
}

func (c *SubjectEditCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.UserID(c.User)
	if err != nil {
		return err
	}
	sub, err := ctx.ResolveSubject(userID, c.Subject)
	if err != nil {
		return err
	}

	if c.Name != nil {
		sub.Name = *c.Name
	}
	if c.Weight != nil {
		sub.Weight = *c.Weight
	}
	if c.Deadline != nil {
		if *c.Deadline == "" {
			sub.Deadline = nil
		} else {
			d, err := time.Parse(constants.DateFormat, *c.Deadline)
			if err != nil {
				return fmt.Errorf("invalid deadline, use YYYY-MM-DD: %w", err)
			}
			sub.Deadline = &d
		}
	}
	if err := validation.ValidateSubject(sub); err != nil {
		return err
	}

	if err := ctx.Store.UpdateSubject(sub); err != nil {
		return fmt.Errorf("failed to update subject: %w", err)
	}
	fmt.Printf("Updated subject: %s\n", sub.Name)
	return nil
}

type SubjectDeleteCmd struct {
	Subject string `arg:"" help:"Subject ID or name."`
	User    string `help:"User the subject belongs to."`
}

func (c *SubjectDeleteCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.UserID(c.User)
	if err != nil {
		return err
	}
	sub, err := ctx.ResolveSubject(userID, c.Subject)
	if err != nil {
		return err
	}
	if err := ctx.Store.DeleteSubject(sub.ID); err != nil {
		return fmt.Errorf("failed to delete subject: %w", err)
	}
	fmt.Printf("Deleted subject: %s (ID: %s)\n", sub.Name, sub.ID)
	return nil
}

type SubjectRestoreCmd struct {
	ID string `arg:"" help:"Subject ID to restore."`
}

func (c *SubjectRestoreCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.RestoreSubject(c.ID); err != nil {
		return fmt.Errorf("failed to restore subject: %w", err)
	}
	fmt.Printf("Restored subject: %s\n", c.ID)
	return nil
}
