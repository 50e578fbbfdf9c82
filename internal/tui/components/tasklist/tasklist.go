package tasklist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/studyweek/internal/constants"
	"github.com/julianstephens/studyweek/internal/models"
)

type CompleteTaskMsg struct {
	ID string
}

type Item struct {
	Task    models.Task
	Subject string
}

func (i Item) Title() string {
	return i.Task.Title
}

func (i Item) Description() string {
	desc := fmt.Sprintf("%s | %d min | %s", i.Subject, i.Task.Minutes(), i.Task.SchedulingStatus)
	if i.Task.DueDate != nil {
		desc += " | due " + i.Task.DueDate.Format(constants.DateFormat)
	}
	return desc
}

func (i Item) FilterValue() string { return i.Task.Title + " " + i.Subject }

type KeyMap struct {
	Done key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Done: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "mark done"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Tasks"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // help is rendered by the parent model

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Done}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Done}
	}

	return Model{list: l, keys: keys}
}

// SetTasks replaces the list, labelling each task with its subject name.
func (m *Model) SetTasks(tasks []models.Task, subjects map[string]string) {
	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		items[i] = Item{Task: t, Subject: subjects[t.SubjectID]}
	}
	m.list.SetItems(items)
}

func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		if key.Matches(msg, m.keys.Done) {
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return CompleteTaskMsg{ID: i.Task.ID} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No open tasks.\n  Add one with 'studyweek task add'."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
