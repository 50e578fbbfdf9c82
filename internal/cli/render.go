package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/studyweek/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	dayStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			MarginTop(1)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	subjectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1).
			MarginTop(1)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// RenderPlan formats a weekly plan grouped by day.
func RenderPlan(plan models.WeeklyPlan, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Week of %s → %s",
		plan.WindowStart.In(loc).Format("Mon Jan 2 15:04"),
		plan.WindowEnd.In(loc).Format("Mon Jan 2"))))
	b.WriteString("\n")

	if len(plan.Sessions) == 0 {
		b.WriteString("\n  No sessions planned. Add tasks or free some time in your calendar.\n")
		return b.String()
	}

	var lastDay string
	for _, s := range plan.Sessions {
		start, end := s.Start.In(loc), s.End.In(loc)
		day := start.Format("Monday Jan 2")
		if day != lastDay {
			b.WriteString(dayStyle.Render(day))
			b.WriteString("\n")
			lastDay = day
		}
		fmt.Fprintf(&b, "  %s  %s  (%d min, %d task(s))\n",
			timeStyle.Render(start.Format("15:04")+"–"+end.Format("15:04")),
			subjectStyle.Render(s.SubjectName),
			s.DurationMin, len(s.TaskIDs))
	}

	b.WriteString(summaryStyle.Render(RenderSummary(plan.Summary)))
	b.WriteString("\n")
	return b.String()
}

// RenderSummary formats session totals and the per-subject distribution.
func RenderSummary(s models.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d session(s), %s total", s.TotalSessions, formatMinutes(s.TotalMinutes))

	names := make([]string, 0, len(s.Distribution))
	for name := range s.Distribution {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if s.Distribution[names[i]] != s.Distribution[names[j]] {
			return s.Distribution[names[i]] > s.Distribution[names[j]]
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		fmt.Fprintf(&b, "\n  %-20s %s", name, formatMinutes(s.Distribution[name]))
	}
	return b.String()
}

func formatMinutes(min int) string {
	if min < 60 {
		return fmt.Sprintf("%dm", min)
	}
	if min%60 == 0 {
		return fmt.Sprintf("%dh", min/60)
	}
	return fmt.Sprintf("%dh%02dm", min/60, min%60)
}

// Confirm asks a yes/no question on the terminal.
func Confirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}
