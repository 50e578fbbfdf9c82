package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StatePlan:
		content = docStyle.Render(m.planModel.View())
	case StateTasks:
		content = docStyle.Render(m.taskList.View())
	case StateConfirmApply:
		content = m.viewConfirmApply()
	}

	parts := []string{m.viewTabs(), content}
	if m.status != "" {
		parts = append(parts, statusStyle.Render(m.status))
	}
	parts = append(parts, m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Week", "Tasks"} {
		active := m.state == SessionState(i) || (m.state == StateConfirmApply && i == int(StatePlan))
		if active {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewConfirmApply() string {
	n := 0
	if m.plan != nil {
		n = len(m.plan.Sessions)
	}
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			warnStyle.Render(fmt.Sprintf("Apply %d sessions to your calendar?", n)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
