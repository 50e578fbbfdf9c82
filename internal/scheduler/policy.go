package scheduler

import (
	"fmt"
	"time"

	"github.com/julianstephens/studyweek/internal/constants"
	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/utils"
)

// Policy holds the working-hours and budget rules for one planning run.
type Policy struct {
	DayStartMin     int // minutes from midnight
	DayEndMin       int // minutes from midnight
	MinSlotMin      int
	MaxSessionMin   int
	WeeklyBudgetMin int
	MaxWeight       int // subjects at or above this weight get the morning bonus
	Location        *time.Location
}

// DefaultPolicy returns 08:00-22:00, 30 minute slots, 120 minute sessions
// and a 1200 minute weekly budget in the local timezone.
func DefaultPolicy() Policy {
	p, _ := PolicyFromSettings(models.DefaultSettings())
	return p
}

// PolicyFromSettings builds a Policy from stored settings, filling gaps with defaults.
func PolicyFromSettings(s models.Settings) (Policy, error) {
	models.ApplyDefaultSettings(&s)

	start, err := utils.ParseTimeToMinutes(s.DayStart)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid day start %q: %w", s.DayStart, err)
	}
	end, err := utils.ParseTimeToMinutes(s.DayEnd)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid day end %q: %w", s.DayEnd, err)
	}
	if end <= start {
		return Policy{}, fmt.Errorf("day end %s must be after day start %s", s.DayEnd, s.DayStart)
	}
	loc, err := utils.LoadLocation(s.Timezone)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}

	return Policy{
		DayStartMin:     start,
		DayEndMin:       end,
		MinSlotMin:      s.MinSlotMin,
		MaxSessionMin:   s.MaxSessionMin,
		WeeklyBudgetMin: s.WeeklyBudgetMin,
		MaxWeight:       constants.MaxSubjectWeight,
		Location:        loc,
	}, nil
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

// Window returns the half-open planning window [start, end).
//
// With an explicit weekStart the window runs from that day's midnight to the
// following Monday. Otherwise it covers the current Monday-start week, starting
// at now rounded up to the next half hour, or at the next day's active-hours
// start when that rounded instant is already past today's active-hours end.
func Window(now time.Time, weekStart *time.Time, p Policy) (time.Time, time.Time) {
	loc := p.location()
	now = now.In(loc)

	if weekStart != nil {
		start := utils.StartOfDay(weekStart.In(loc))
		return start, utils.StartOfWeek(start).AddDate(0, 0, 7)
	}

	start := utils.RoundUpToHalfHour(now)
	if !utils.SameDay(now, start) || minuteOfDay(start) >= p.DayEndMin {
		start = utils.AtMinutes(now.AddDate(0, 0, 1), p.DayStartMin)
	}
	return start, utils.StartOfWeek(start).AddDate(0, 0, 7)
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
