package tasks

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/studyweek/internal/cli"
	"github.com/julianstephens/studyweek/internal/constants"
	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/utils"
	"github.com/julianstephens/studyweek/internal/validation"
)

type TaskAddCmd struct {
	Title   string `arg:"" help:"Task title."`
	Subject string `short:"s" help:"Subject ID or name." required:""`
	Minutes int    `short:"m" help:"Estimated minutes (defaults to 30 when unset)."`
	Due     string `short:"d" help:"Due date (YYYY-MM-DD)."`
	User    string `help:"User the task belongs to."`
}

func (c *TaskAddCmd) Validate() error {
	if c.Minutes < 0 {
		return fmt.Errorf("minutes must not be negative")
	}
	return nil
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.UserID(c.User)
	if err != nil {
		return err
	}
	sub, err := ctx.ResolveSubject(userID, c.Subject)
	if err != nil {
		return err
	}

	task := models.Task{
		ID:               uuid.New().String(),
		UserID:           userID,
		SubjectID:        sub.ID,
		Title:            c.Title,
		EstimatedMinutes: c.Minutes,
		SchedulingStatus: constants.SchedulingUnscheduled,
		CreatedAt:        ctx.Clock().UTC(),
	}
	if c.Due != "" {
		policy, err := ctx.Policy()
		if err != nil {
			return err
		}
		due, err := utils.ParseDateInLocation(c.Due, policy.Location)
		if err != nil {
			return fmt.Errorf("invalid due date, use YYYY-MM-DD: %w", err)
		}
		task.DueDate = &due
	}
	if err := validation.ValidateTask(task); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	if err := ctx.Store.AddTask(task); err != nil {
		return err
	}
	fmt.Printf("Added task: %s [%s] (%d min, ID: %s)\n", task.Title, sub.Name, task.Minutes(), task.ID)
	return nil
}

type TaskListCmd struct {
	All     bool   `help:"Include completed tasks."`
	Subject string `short:"s" help:"Only tasks of this subject (ID or name)."`
	User    string `help:"User whose tasks to list."`
	ShowIDs bool   `help:"Show task IDs." name:"show-ids"`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.UserID(c.User)
	if err != nil {
		return err
	}
	tasks, err := ctx.Store.ListTasks(userID, c.All)
	if err != nil {
		return fmt.Errorf("failed to get tasks: %w", err)
	}

	filter := ""
	if c.Subject != "" {
		sub, err := ctx.ResolveSubject(userID, c.Subject)
		if err != nil {
			return err
		}
		filter = sub.ID
	}

	names := map[string]string{}
	subjects, err := ctx.Store.ListSubjects(userID)
	if err != nil {
		return fmt.Errorf("failed to list subjects: %w", err)
	}
	for _, s := range subjects {
		names[s.ID] = s.Name
	}

	shown := 0
	for _, task := range tasks {
		if filter != "" && task.SubjectID != filter {
			continue
		}
		if shown == 0 {
			fmt.Println("Tasks:")
		}
		shown++

		status := task.SchedulingStatus
		if task.Completed {
			status = "done"
		}
		idStr := ""
		if c.ShowIDs {
			idStr = fmt.Sprintf(" (ID: %s)", task.ID)
		}
		due := ""
		if task.DueDate != nil {
			due = ", due " + task.DueDate.Format(constants.DateFormat)
		}
		fmt.Printf("  [%s] %s%s - %s, %dm%s\n", status, task.Title, idStr, names[task.SubjectID], task.Minutes(), due)
		if task.ScheduledFor != nil && !task.Completed {
			fmt.Printf("      Scheduled: %s\n", task.ScheduledFor.Format("Mon Jan 2 15:04"))
		}
	}
	if shown == 0 {
		fmt.Println("No tasks found")
	}
	return nil
}

type TaskDoneCmd struct {
	ID string `arg:"" help:"Task ID to mark as completed."`
}

func (c *TaskDoneCmd) Run(ctx *cli.Context) error {
	task, err := ctx.Store.GetTask(c.ID)
	if err != nil {
		return fmt.Errorf("failed to find task with ID %s: %w", c.ID, err)
	}
	if err := ctx.Store.CompleteTask(c.ID); err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}
	fmt.Printf("Completed task: %s\n", task.Title)
	return nil
}

type TaskDeleteCmd struct {
	ID string `arg:"" help:"Task ID to delete."`
}

func (c *TaskDeleteCmd) Run(ctx *cli.Context) error {
	task, err := ctx.Store.GetTask(c.ID)
	if err != nil {
		return fmt.Errorf("failed to find task with ID %s: %w", c.ID, err)
	}
	if err := ctx.Store.DeleteTask(c.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	fmt.Printf("Deleted task: %s (ID: %s)\n", task.Title, c.ID)
	return nil
}

type TaskRestoreCmd struct {
	ID string `arg:"" help:"Task ID to restore."`
}

func (c *TaskRestoreCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.RestoreTask(c.ID); err != nil {
		return fmt.Errorf("failed to restore task: %w", err)
	}
	fmt.Printf("Restored task: %s\n", c.ID)
	return nil
}
