package plans

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/studyweek/internal/cli"
	"github.com/julianstephens/studyweek/internal/constants"
	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/storage/sqlite"
)

var testNow = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) (*cli.Context, func()) {
	tempDir := t.TempDir()
	store := sqlite.NewStore(filepath.Join(tempDir, "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	settings := models.DefaultSettings()
	settings.Timezone = "UTC"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}
	if err := store.AddSubject(models.Subject{
		ID: "sub-1", UserID: constants.DefaultUserID, Name: "Mathématiques", Weight: 3, CreatedAt: testNow,
	}); err != nil {
		t.Fatalf("failed to add subject: %v", err)
	}
	if err := store.AddTask(models.Task{
		ID: "task-1", UserID: constants.DefaultUserID, SubjectID: "sub-1", Title: "Exercices chapitre 4",
		EstimatedMinutes: 45, SchedulingStatus: constants.SchedulingUnscheduled, CreatedAt: testNow,
	}); err != nil {
		t.Fatalf("failed to add task: %v", err)
	}

	ctx := &cli.Context{Store: store, ConfigDir: tempDir, Now: func() time.Time { return testNow }}
	cleanup := func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	}
	return ctx, cleanup
}

func TestPlanCmd_Preview(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	icsPath := filepath.Join(ctx.ConfigDir, "week.ics")
	if err := (&PlanCmd{ICS: icsPath}).Run(ctx); err != nil {
		t.Fatalf("plan failed: %v", err)
	}

	data, err := os.ReadFile(icsPath)
	if err != nil {
		t.Fatalf("ics file not written: %v", err)
	}
	if !strings.Contains(string(data), "BEGIN:VEVENT") {
		t.Errorf("ics file has no events:\n%s", data)
	}

	task, err := ctx.Store.GetTask("task-1")
	if err != nil {
		t.Fatal(err)
	}
	if task.SchedulingStatus != constants.SchedulingUnscheduled {
		t.Error("previewing a plan must not change tasks")
	}
}

func TestPlanCmd_Apply(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&PlanCmd{Apply: true, Yes: true, JSON: true}).Run(ctx); err != nil {
		t.Fatalf("plan --apply failed: %v", err)
	}

	task, err := ctx.Store.GetTask("task-1")
	if err != nil {
		t.Fatal(err)
	}
	if task.SchedulingStatus != constants.SchedulingScheduled {
		t.Errorf("SchedulingStatus = %q, want scheduled", task.SchedulingStatus)
	}
	if task.ScheduledFor == nil || task.ScheduledFor.Before(testNow) {
		t.Errorf("ScheduledFor = %v", task.ScheduledFor)
	}

	sessions, err := ctx.Store.ListAppliedSessions(constants.DefaultUserID, testNow, testNow.AddDate(0, 0, 7))
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].SubjectID != "sub-1" {
		t.Fatalf("applied sessions = %+v", sessions)
	}

	if err := (&SessionsCmd{}).Run(ctx); err != nil {
		t.Errorf("sessions failed: %v", err)
	}
}

func TestPlanCmd_ApplyTwiceDoesNotDoubleBook(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&PlanCmd{Apply: true, Yes: true, JSON: true}).Run(ctx); err != nil {
		t.Fatalf("first plan --apply failed: %v", err)
	}
	if err := ctx.Store.AddTask(models.Task{
		ID: "task-2", UserID: constants.DefaultUserID, SubjectID: "sub-1", Title: "Fiche de révision",
		EstimatedMinutes: 60, SchedulingStatus: constants.SchedulingUnscheduled, CreatedAt: testNow,
	}); err != nil {
		t.Fatalf("failed to add task: %v", err)
	}
	if err := (&PlanCmd{Apply: true, Yes: true, JSON: true}).Run(ctx); err != nil {
		t.Fatalf("second plan --apply failed: %v", err)
	}

	sessions, err := ctx.Store.ListAppliedSessions(constants.DefaultUserID, testNow, testNow.AddDate(0, 0, 7))
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 {
		t.Fatalf("applied sessions = %+v, want one per task", sessions)
	}
	a, b := sessions[0], sessions[1]
	if a.Start.Before(b.End) && b.Start.Before(a.End) {
		t.Errorf("applied sessions overlap: %v-%v and %v-%v", a.Start, a.End, b.Start, b.End)
	}
	if len(b.TaskIDs) != 1 || b.TaskIDs[0] != "task-2" {
		t.Errorf("second session tasks = %v, want [task-2]", b.TaskIDs)
	}
}

func TestPlanCmd_InvalidWeekStart(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&PlanCmd{WeekStart: "next monday"}).Run(ctx); err == nil {
		t.Error("expected error for malformed week start")
	}
}

func TestCheckPlan(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	policy, err := ctx.Policy()
	if err != nil {
		t.Fatal(err)
	}
	plan := models.WeeklyPlan{Sessions: []models.PlannedSession{{
		SubjectID: "sub-1", SubjectName: "Mathématiques",
		Start: testNow.Add(-time.Hour), End: testNow, DurationMin: 60,
	}}}
	result := checkPlan(plan, policy, testNow)
	if !result.HasConflicts() {
		t.Error("a session in the past should be reported")
	}
}
