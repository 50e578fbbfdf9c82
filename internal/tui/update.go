package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/studyweek/internal/tui/components/tasklist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		contentHeight := msg.Height - v - 4
		m.planModel.SetSize(msg.Width-h, contentHeight)
		m.taskList.SetSize(msg.Width-h, contentHeight)
		return m, nil

	case planLoadedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Planning failed: %v", msg.err)
			return m, nil
		}
		p := msg.plan
		m.plan = &p
		m.planModel.SetPlan(p)
		m.status = ""
		return m, nil

	case tasksLoadedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.taskList.SetTasks(msg.tasks, msg.subjects)
		return m, nil

	case appliedMsg:
		m.state = StatePlan
		if msg.err != nil {
			m.status = fmt.Sprintf("Apply failed: %v", msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Applied: %d sessions created, %d failed", msg.result.Created, msg.result.Failed)
		return m, tea.Batch(m.loadTasks(), m.generate())

	case tasklist.CompleteTaskMsg:
		return m, tea.Batch(m.completeTask(msg.ID), m.generate())

	case tea.KeyMsg:
		if m.state == StateConfirmApply {
			return m.updateConfirmApply(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		}

		if m.state == StatePlan {
			switch {
			case key.Matches(msg, m.keys.Generate):
				return m, m.generate()
			case key.Matches(msg, m.keys.NextWeek):
				m.shiftWeek(1)
				return m, m.generate()
			case key.Matches(msg, m.keys.PrevWeek):
				m.shiftWeek(-1)
				return m, m.generate()
			case key.Matches(msg, m.keys.Apply):
				if m.cfg.Applier == nil || m.plan == nil || len(m.plan.Sessions) == 0 {
					m.status = "Nothing to apply."
					return m, nil
				}
				m.state = StateConfirmApply
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StatePlan:
		m.planModel, cmd = m.planModel.Update(msg)
	case StateTasks:
		m.taskList, cmd = m.taskList.Update(msg)
	}
	return m, cmd
}

func (m Model) updateConfirmApply(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.status = "Applying plan..."
		return m, m.apply()
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		m.state = StatePlan
	}
	return m, nil
}
