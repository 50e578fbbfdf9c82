package scheduler

import (
	"sort"
	"time"

	"github.com/julianstephens/studyweek/internal/constants"
	"github.com/julianstephens/studyweek/internal/logger"
	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/utils"
)

// taskGroup is a run of consecutive tasks that fits in one session.
type taskGroup struct {
	TaskIDs []string
	Minutes int
}

// groupTasks packs tasks in order into groups of at most maxSession minutes.
// A task longer than maxSession is first cut into maxSession-sized chunks.
func groupTasks(tasks []models.Task, maxSession int) []taskGroup {
	var groups []taskGroup
	var cur taskGroup

	add := func(id string, minutes int) {
		if len(cur.TaskIDs) > 0 && cur.Minutes+minutes > maxSession {
			groups = append(groups, cur)
			cur = taskGroup{}
		}
		cur.TaskIDs = append(cur.TaskIDs, id)
		cur.Minutes += minutes
	}

	for _, t := range tasks {
		remaining := t.Minutes()
		for maxSession > 0 && remaining > maxSession {
			add(t.ID, maxSession)
			remaining -= maxSession
		}
		add(t.ID, remaining)
	}
	if len(cur.TaskIDs) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

// scoreSlot ranks a candidate slot for a group; higher is better.
func scoreSlot(slot models.FreeSlot, groupMin, weight int, preferred []time.Time, now time.Time, p Policy) int {
	score := 0

	for _, d := range preferred {
		if utils.SameDay(slot.Start, d) {
			score += constants.ScorePreferredDay
			break
		}
	}

	days := utils.DaysBetween(now, slot.Start)
	score += max(0, constants.ScoreRecencyBase-constants.ScoreRecencyPerDay*days)

	if weight >= p.MaxWeight {
		m := minuteOfDay(slot.Start)
		if m >= constants.MorningStartMin && m <= constants.MorningEndMin {
			score += constants.ScoreMorningBonus
		}
	}

	if slot.Start.Hour() < constants.EveningCutoffHour {
		score += constants.ScoreBeforeEvening
	}

	if slot.DurationMin-groupMin > constants.OversizedSlackMinutes {
		score -= constants.ScoreOversizedPenalty
	}
	return score
}

// AssignSessions greedily places each subject's task groups into the best
// scoring free slot. Subjects are taken in the given order, each slot hosts
// at most one session, and earlier commitments are never revisited.
func AssignSessions(workloads []SubjectWorkload, slots []models.FreeSlot, preferred map[string][]time.Time, now time.Time, p Policy) []models.PlannedSession {
	now = now.In(p.location())

	pool := make([]models.FreeSlot, len(slots))
	copy(pool, slots)
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Start.Before(pool[j].Start)
	})
	used := make([]bool, len(pool))
	scheduled := make(map[string]int)

	var sessions []models.PlannedSession
	for _, w := range workloads {
		subject := w.Subject
		for _, g := range groupTasks(w.Tasks, p.MaxSessionMin) {
			remaining := w.BudgetMin - scheduled[subject.ID]
			if g.Minutes > remaining {
				logger.Debug("Group exceeds remaining budget", "subject", subject.Name, "minutes", g.Minutes, "remaining", remaining)
				continue
			}

			best, bestScore := -1, 0
			for i, slot := range pool {
				if used[i] || slot.DurationMin < g.Minutes || slot.Start.Before(now) {
					continue
				}
				score := scoreSlot(slot, g.Minutes, subject.Weight, preferred[subject.ID], now, p)
				if best == -1 || score > bestScore {
					best, bestScore = i, score
				}
			}
			if best == -1 {
				logger.Debug("No free slot for group", "subject", subject.Name, "minutes", g.Minutes)
				continue
			}

			slot := pool[best]
			used[best] = true
			if slot.Start.Before(now) {
				logger.Warn("Rejected session starting in the past", "subject", subject.Name, "start", slot.Start)
				continue
			}

			sessions = append(sessions, models.PlannedSession{
				SubjectID:   subject.ID,
				SubjectName: subject.Name,
				TaskIDs:     dedupe(g.TaskIDs),
				Start:       slot.Start,
				End:         slot.Start.Add(time.Duration(g.Minutes) * time.Minute),
				DurationMin: g.Minutes,
				Priority:    subject.Weight,
			})
			scheduled[subject.ID] += g.Minutes
		}
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Start.Before(sessions[j].Start)
	})
	out := sessions[:0]
	for _, s := range sessions {
		if !s.Start.Before(now) {
			out = append(out, s)
		}
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
