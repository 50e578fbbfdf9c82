package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/studyweek/internal/models"
)

func at(day, h, m int) time.Time {
	return time.Date(2026, 1, day, h, m, 0, 0, time.UTC)
}

func TestValidateBusyPeriods(t *testing.T) {
	ok := []models.BusyPeriod{{Start: at(5, 9, 0), End: at(5, 10, 0)}, {Start: at(5, 11, 0), End: at(5, 11, 0)}}
	if err := ValidateBusyPeriods(ok); err != nil {
		t.Errorf("ValidateBusyPeriods() unexpected error: %v", err)
	}

	bad := []models.BusyPeriod{{Start: at(5, 10, 0), End: at(5, 9, 0)}}
	if err := ValidateBusyPeriods(bad); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("ValidateBusyPeriods() error = %v, want ErrInvalidInterval", err)
	}

	badEvent := []models.CalendarEvent{{Title: "x", Start: at(5, 10, 0), End: at(5, 9, 0)}}
	if err := ValidateEvents(badEvent); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("ValidateEvents() error = %v, want ErrInvalidInterval", err)
	}
}

func TestValidateSubject(t *testing.T) {
	tests := []struct {
		name    string
		subject models.Subject
		wantErr error
	}{
		{"valid", models.Subject{Name: "Math", Weight: 2}, nil},
		{"weight too low", models.Subject{Name: "Math", Weight: 0}, ErrInvalidWeight},
		{"weight too high", models.Subject{Name: "Math", Weight: 4}, ErrInvalidWeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSubject(tt.subject)
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if err := ValidateSubject(models.Subject{Weight: 2}); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestValidateSettings(t *testing.T) {
	s := models.DefaultSettings()
	if err := ValidateSettings(s); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}
	s.DayEnd = "07:00"
	if err := ValidateSettings(s); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("error = %v, want ErrInvalidSettings", err)
	}
}

func TestValidatePlan(t *testing.T) {
	v := New()
	rules := PlanRules{
		Now:           at(5, 9, 0),
		DayStartMin:   8 * 60,
		DayEndMin:     22 * 60,
		MaxSessionMin: 120,
		Budgets:       map[string]int{"a": 120},
		Busy:          []models.BusyPeriod{{Start: at(6, 14, 0), End: at(6, 15, 0)}},
	}

	clean := []models.PlannedSession{
		{SubjectID: "a", Start: at(5, 9, 0), End: at(5, 10, 0), DurationMin: 60},
		{SubjectID: "a", Start: at(5, 10, 0), End: at(5, 11, 0), DurationMin: 60},
	}
	if res := v.ValidatePlan(clean, rules); res.HasConflicts() {
		t.Errorf("unexpected conflicts: %s", res.FormatReport())
	}

	dirty := []models.PlannedSession{
		{SubjectID: "a", Start: at(5, 8, 0), End: at(5, 9, 30), DurationMin: 90},    // past
		{SubjectID: "a", Start: at(5, 9, 0), End: at(5, 12, 0), DurationMin: 180},   // overlap, too long
		{SubjectID: "b", Start: at(5, 21, 30), End: at(5, 22, 30), DurationMin: 60}, // outside hours
		{SubjectID: "b", Start: at(6, 14, 30), End: at(6, 15, 0), DurationMin: 30},  // busy
	}
	res := v.ValidatePlan(dirty, rules)
	want := map[ConflictType]bool{
		ConflictSessionInPast:       false,
		ConflictOverlappingSessions: false,
		ConflictSessionTooLong:      false,
		ConflictOutsideActiveHours:  false,
		ConflictOverBudget:          false,
		ConflictOverlapsBusy:        false,
	}
	for _, c := range res.Conflicts {
		want[c.Type] = true
	}
	for typ, seen := range want {
		if !seen {
			t.Errorf("expected a %s conflict, report:\n%s", typ, res.FormatReport())
		}
	}
}
