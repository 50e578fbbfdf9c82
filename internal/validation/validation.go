package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/studyweek/internal/constants"
	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/utils"
)

var (
	// ErrInvalidInterval is returned for busy periods or events that end before they start.
	ErrInvalidInterval = errors.New("invalid interval")
	// ErrInvalidWeight is returned for subject weights outside the supported range.
	ErrInvalidWeight = errors.New("invalid subject weight")
	// ErrInvalidDuration is returned for negative task estimates.
	ErrInvalidDuration = errors.New("invalid task duration")
	// ErrInvalidSettings is returned for settings the planner cannot work with.
	ErrInvalidSettings = errors.New("invalid settings")
)

// ValidateBusyPeriods rejects any period whose end precedes its start.
func ValidateBusyPeriods(periods []models.BusyPeriod) error {
	for i, p := range periods {
		if !p.Valid() {
			return fmt.Errorf("%w: busy period %d [%s, %s)", ErrInvalidInterval, i,
				p.Start.Format(time.RFC3339), p.End.Format(time.RFC3339))
		}
	}
	return nil
}

// ValidateEvents applies ValidateBusyPeriods to calendar events.
func ValidateEvents(events []models.CalendarEvent) error {
	for _, e := range events {
		if !e.Busy().Valid() {
			return fmt.Errorf("%w: event %q [%s, %s)", ErrInvalidInterval, e.Title,
				e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
		}
	}
	return nil
}

// ValidateSubject checks a subject before it is stored.
func ValidateSubject(s models.Subject) error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("subject name is required")
	}
	if s.Weight < constants.MinSubjectWeight || s.Weight > constants.MaxSubjectWeight {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidWeight,
			s.Weight, constants.MinSubjectWeight, constants.MaxSubjectWeight)
	}
	return nil
}

// ValidateTask checks a task before it is stored.
func ValidateTask(t models.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("task title is required")
	}
	if t.SubjectID == "" {
		return errors.New("task must belong to a subject")
	}
	if t.EstimatedMinutes < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDuration, t.EstimatedMinutes)
	}
	return nil
}

// ValidateSettings checks that the planner settings describe a usable policy.
func ValidateSettings(s models.Settings) error {
	start, err := utils.ParseTimeToMinutes(s.DayStart)
	if err != nil {
		return fmt.Errorf("%w: day_start %q: %v", ErrInvalidSettings, s.DayStart, err)
	}
	end, err := utils.ParseTimeToMinutes(s.DayEnd)
	if err != nil {
		return fmt.Errorf("%w: day_end %q: %v", ErrInvalidSettings, s.DayEnd, err)
	}
	if end <= start {
		return fmt.Errorf("%w: day_end %s must be after day_start %s", ErrInvalidSettings, s.DayEnd, s.DayStart)
	}
	if s.MinSlotMin <= 0 {
		return fmt.Errorf("%w: min_slot_min must be positive", ErrInvalidSettings)
	}
	if s.MaxSessionMin < s.MinSlotMin {
		return fmt.Errorf("%w: max_session_min must be at least min_slot_min", ErrInvalidSettings)
	}
	if s.WeeklyBudgetMin <= 0 {
		return fmt.Errorf("%w: weekly_budget_min must be positive", ErrInvalidSettings)
	}
	if !utils.ValidateTimezone(s.Timezone) {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidSettings, s.Timezone)
	}
	return nil
}

// ConflictType represents the type of plan invariant violation
type ConflictType string

const (
	ConflictOverlappingSessions ConflictType = "overlapping_sessions"
	ConflictSessionInPast       ConflictType = "session_in_past"
	ConflictSessionTooLong      ConflictType = "session_too_long"
	ConflictOutsideActiveHours  ConflictType = "outside_active_hours"
	ConflictOverBudget          ConflictType = "over_budget"
	ConflictOverlapsBusy        ConflictType = "overlaps_busy_period"
)

// Conflict represents a detected problem in a plan
type Conflict struct {
	Type        ConflictType
	Description string
	SubjectIDs  []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	report := "Conflicts detected:\n"
	for _, conflict := range vr.Conflicts {
		report += fmt.Sprintf("- %s\n", conflict.Description)
	}
	return report
}

// PlanRules are the limits a generated plan must respect.
type PlanRules struct {
	Now           time.Time
	DayStartMin   int
	DayEndMin     int
	MaxSessionMin int
	Budgets       map[string]int // subject ID -> weekly budget in minutes
	Busy          []models.BusyPeriod
}

// Validator validates plans against their rules
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidatePlan checks every session invariant and reports each violation.
func (v *Validator) ValidatePlan(sessions []models.PlannedSession, rules PlanRules) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	sorted := make([]models.PlannedSession, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	// O(n²), plans hold a few dozen sessions at most
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			a, b := sorted[i], sorted[j]
			if a.Start.Before(b.End) && b.Start.Before(a.End) {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type: ConflictOverlappingSessions,
					Description: fmt.Sprintf("Overlapping sessions: %s (%s) and %s (%s)",
						a.SubjectName, timeRange(a), b.SubjectName, timeRange(b)),
					SubjectIDs: []string{a.SubjectID, b.SubjectID},
				})
			}
		}
	}

	used := make(map[string]int)
	for _, s := range sorted {
		used[s.SubjectID] += s.DurationMin

		if !rules.Now.IsZero() && s.Start.Before(rules.Now) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictSessionInPast,
				Description: fmt.Sprintf("Session %s (%s) starts before now", s.SubjectName, timeRange(s)),
				SubjectIDs:  []string{s.SubjectID},
			})
		}
		if rules.MaxSessionMin > 0 && s.DurationMin > rules.MaxSessionMin {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictSessionTooLong,
				Description: fmt.Sprintf("Session %s (%s) lasts %d minutes, max is %d",
					s.SubjectName, timeRange(s), s.DurationMin, rules.MaxSessionMin),
				SubjectIDs: []string{s.SubjectID},
			})
		}
		if rules.DayEndMin > rules.DayStartMin {
			startMin := s.Start.Hour()*60 + s.Start.Minute()
			endMin := s.End.Hour()*60 + s.End.Minute()
			if !utils.SameDay(s.Start, s.End) || startMin < rules.DayStartMin || endMin > rules.DayEndMin {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictOutsideActiveHours,
					Description: fmt.Sprintf("Session %s (%s) falls outside active hours", s.SubjectName, timeRange(s)),
					SubjectIDs:  []string{s.SubjectID},
				})
			}
		}
		for _, b := range rules.Busy {
			if b.Overlaps(s.Start, s.End) {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictOverlapsBusy,
					Description: fmt.Sprintf("Session %s (%s) overlaps a busy period", s.SubjectName, timeRange(s)),
					SubjectIDs:  []string{s.SubjectID},
				})
				break
			}
		}
	}

	if rules.Budgets != nil {
		ids := make([]string, 0, len(used))
		for id := range used {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if budget := rules.Budgets[id]; used[id] > budget {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictOverBudget,
					Description: fmt.Sprintf("Subject %s scheduled %d minutes, budget is %d", id, used[id], budget),
					SubjectIDs:  []string{id},
				})
			}
		}
	}

	return result
}

func timeRange(s models.PlannedSession) string {
	return fmt.Sprintf("%s %s-%s", s.Start.Format(constants.DateFormat),
		s.Start.Format(constants.TimeFormat), s.End.Format(constants.TimeFormat))
}
