package scheduler

import (
	"sort"
	"time"

	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/utils"
)

// FindFreeSlots turns busy periods into the free slots of [windowStart, windowEnd).
//
// Each day is clipped to the active hours and, for today, to now rounded up
// to the next half hour. Days that end before now are skipped. Slots shorter
// than the policy minimum are discarded. The result is ordered by start.
func FindFreeSlots(busy []models.BusyPeriod, windowStart, windowEnd, now time.Time, p Policy) []models.FreeSlot {
	loc := p.location()
	windowStart = windowStart.In(loc)
	windowEnd = windowEnd.In(loc)
	now = now.In(loc)
	earliest := utils.RoundUpToHalfHour(now)
	minSlot := time.Duration(p.MinSlotMin) * time.Minute

	sorted := make([]models.BusyPeriod, len(busy))
	copy(sorted, busy)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var slots []models.FreeSlot
	for day := utils.StartOfDay(windowStart); day.Before(windowEnd); day = day.AddDate(0, 0, 1) {
		dayStart := utils.AtMinutes(day, p.DayStartMin)
		dayEnd := utils.AtMinutes(day, p.DayEndMin)

		cursor := latest(dayStart, windowStart, earliest)
		limit := dayEnd
		if windowEnd.Before(limit) {
			limit = windowEnd
		}
		if !cursor.Before(limit) {
			continue
		}

		emit := func(from, to time.Time) {
			if to.Sub(from) >= minSlot {
				slots = append(slots, models.NewFreeSlot(from, to))
			}
		}

		for _, b := range sorted {
			if !b.Overlaps(dayStart, limit) {
				continue
			}
			if b.Start.After(cursor) {
				emit(cursor, b.Start)
			}
			cursor = latest(cursor, b.End, now)
			if !cursor.Before(limit) {
				break
			}
		}
		if cursor.Before(limit) {
			emit(cursor, limit)
		}
	}

	// Drop anything that still starts in the past
	filtered := slots[:0]
	for _, s := range slots {
		if !s.Start.Before(now) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func latest(first time.Time, rest ...time.Time) time.Time {
	out := first
	for _, t := range rest {
		if t.After(out) {
			out = t
		}
	}
	return out
}
