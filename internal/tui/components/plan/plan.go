package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/studyweek/internal/constants"
	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/utils"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	dayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(14)

	subjectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

type Model struct {
	viewport viewport.Model
	Plan     *models.WeeklyPlan
	Location *time.Location
	width    int
	height   int
}

func New(width, height int, loc *time.Location) Model {
	if loc == nil {
		loc = time.Local
	}
	return Model{
		viewport: viewport.New(width, height),
		Location: loc,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Plan == nil {
		return "Planning the week..."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

func (m *Model) SetPlan(plan models.WeeklyPlan) {
	m.Plan = &plan
	m.viewport.GotoTop()
	m.Render()
}

// Content returns the rendered plan text.
func (m Model) Content() string {
	if m.Plan == nil {
		return ""
	}
	var b strings.Builder
	p := m.Plan
	start := p.WindowStart.In(m.Location)
	end := p.WindowEnd.In(m.Location).Add(-time.Minute)
	b.WriteString(headerStyle.Render(fmt.Sprintf("Week %s - %s", start.Format("Mon Jan 2"), end.Format("Mon Jan 2"))))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(fmt.Sprintf("%d sessions, %d min", p.Summary.TotalSessions, p.Summary.TotalMinutes)))
	b.WriteString("\n")

	if len(p.Sessions) == 0 {
		b.WriteString("\nNothing to plan this week.\n")
		return b.String()
	}

	var day time.Time
	for _, s := range p.Sessions {
		sStart := s.Start.In(m.Location)
		if day.IsZero() || !utils.SameDay(day, sStart) {
			day = sStart
			b.WriteString("\n")
			b.WriteString(dayStyle.Render(sStart.Format("Monday 2 January")))
			b.WriteString("\n")
		}
		timeStr := fmt.Sprintf("%s - %s", sStart.Format(constants.TimeFormat), s.End.In(m.Location).Format(constants.TimeFormat))
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			timeStyle.Render(timeStr),
			subjectStyle.Render(s.SubjectName),
			statusStyle.Render(fmt.Sprintf("%d min, %d tasks", s.DurationMin, len(s.TaskIDs))),
		))
	}
	return b.String()
}

func (m *Model) Render() {
	if m.Plan == nil {
		m.viewport.SetContent("No plan loaded.")
		return
	}
	m.viewport.SetContent(m.Content())
}
