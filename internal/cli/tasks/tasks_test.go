package tasks

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/studyweek/internal/cli"
	"github.com/julianstephens/studyweek/internal/constants"
	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, func()) {
	tempDir := t.TempDir()
	store := sqlite.NewStore(filepath.Join(tempDir, "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	if err := store.AddSubject(models.Subject{
		ID: "sub-1", UserID: constants.DefaultUserID, Name: "Mathématiques", Weight: 3,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("failed to add subject: %v", err)
	}

	ctx := &cli.Context{
		Store:     store,
		ConfigDir: tempDir,
		Now:       func() time.Time { return time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC) },
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	}
	return ctx, cleanup
}

func onlyTask(t *testing.T, ctx *cli.Context, includeCompleted bool) models.Task {
	t.Helper()
	tasks, err := ctx.Store.ListTasks(constants.DefaultUserID, includeCompleted)
	if err != nil {
		t.Fatalf("failed to list tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	return tasks[0]
}

func TestTaskAddCmd(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	cmd := &TaskAddCmd{Title: "Exercices chapitre 4", Subject: "mathématiques", Minutes: 45, Due: "2026-01-08"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("task add failed: %v", err)
	}

	task := onlyTask(t, ctx, false)
	if task.SubjectID != "sub-1" {
		t.Errorf("SubjectID = %q, want sub-1", task.SubjectID)
	}
	if task.EstimatedMinutes != 45 {
		t.Errorf("EstimatedMinutes = %d, want 45", task.EstimatedMinutes)
	}
	if task.SchedulingStatus != constants.SchedulingUnscheduled {
		t.Errorf("SchedulingStatus = %q", task.SchedulingStatus)
	}
	if task.DueDate == nil || task.DueDate.Day() != 8 {
		t.Errorf("DueDate = %v, want Jan 8", task.DueDate)
	}
}

func TestTaskAddCmd_Errors(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&TaskAddCmd{Title: "Lire", Subject: "Philosophie"}).Run(ctx); err == nil {
		t.Error("expected error for unknown subject")
	}
	if err := (&TaskAddCmd{Title: "Lire", Subject: "sub-1", Due: "08/01/2026"}).Run(ctx); err == nil {
		t.Error("expected error for malformed due date")
	}
	if err := (&TaskAddCmd{Title: "", Subject: "sub-1"}).Run(ctx); err == nil {
		t.Error("expected error for empty title")
	}
	if err := (&TaskAddCmd{Minutes: -5}).Validate(); err == nil {
		t.Error("expected validation error for negative minutes")
	}
}

func TestTaskLifecycle(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&TaskAddCmd{Title: "Fiche de révision", Subject: "sub-1"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	task := onlyTask(t, ctx, false)
	if task.Minutes() != constants.DefaultTaskMinutes {
		t.Errorf("Minutes() = %d, want default", task.Minutes())
	}

	if err := (&TaskListCmd{ShowIDs: true, Subject: "sub-1"}).Run(ctx); err != nil {
		t.Errorf("task list failed: %v", err)
	}

	if err := (&TaskDoneCmd{ID: task.ID}).Run(ctx); err != nil {
		t.Fatalf("task done failed: %v", err)
	}
	open, _ := ctx.Store.ListTasks(constants.DefaultUserID, false)
	if len(open) != 0 {
		t.Errorf("completed task still listed as open")
	}
	if done := onlyTask(t, ctx, true); !done.Completed {
		t.Error("task not marked completed")
	}

	if err := (&TaskDeleteCmd{ID: task.ID}).Run(ctx); err != nil {
		t.Fatalf("task delete failed: %v", err)
	}
	if _, err := ctx.Store.GetTask(task.ID); err == nil {
		t.Error("deleted task still visible")
	}
	if err := (&TaskDeleteCmd{ID: task.ID}).Run(ctx); err == nil {
		t.Error("deleting twice should fail")
	}

	if err := (&TaskRestoreCmd{ID: task.ID}).Run(ctx); err != nil {
		t.Fatalf("task restore failed: %v", err)
	}
	if _, err := ctx.Store.GetTask(task.ID); err != nil {
		t.Errorf("restored task missing: %v", err)
	}
}
