package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/scheduler"
	"github.com/julianstephens/studyweek/internal/tui/components/plan"
	"github.com/julianstephens/studyweek/internal/tui/components/tasklist"
	"github.com/julianstephens/studyweek/internal/utils"
)

type SessionState int

const (
	StatePlan SessionState = iota
	StateTasks
	StateConfirmApply
)

const tabCount = 2

type Planner interface {
	PlanWeek(ctx context.Context, userID string, weekStart *time.Time, now time.Time) (models.WeeklyPlan, error)
}

type PlanApplier interface {
	Apply(ctx context.Context, plan models.WeeklyPlan) (scheduler.ApplyResult, error)
}

// Store is the part of the storage layer the TUI reads and writes.
type Store interface {
	ListSubjects(userID string) ([]models.Subject, error)
	ListTasks(userID string, includeCompleted bool) ([]models.Task, error)
	CompleteTask(id string) error
}

type Config struct {
	Planner  Planner
	Applier  PlanApplier // nil disables apply
	Store    Store
	UserID   string
	Location *time.Location
	Now      func() time.Time
}

type planLoadedMsg struct {
	plan models.WeeklyPlan
	err  error
}

type tasksLoadedMsg struct {
	tasks    []models.Task
	subjects map[string]string
	err      error
}

type appliedMsg struct {
	result scheduler.ApplyResult
	err    error
}

type Model struct {
	cfg       Config
	state     SessionState
	keys      KeyMap
	help      help.Model
	taskList  tasklist.Model
	planModel plan.Model
	plan      *models.WeeklyPlan
	weekStart *time.Time // nil plans the current week from now
	status    string
	quitting  bool
	width     int
	height    int
}

func NewModel(cfg Config) Model {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return Model{
		cfg:       cfg,
		state:     StatePlan,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		taskList:  tasklist.New(0, 0),
		planModel: plan.New(0, 0, cfg.Location),
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == StatePlan {
		keys = append(keys, m.keys.Generate, m.keys.NextWeek, m.keys.PrevWeek)
		if m.cfg.Applier != nil {
			keys = append(keys, m.keys.Apply)
		}
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	var actions []key.Binding
	if m.state == StatePlan {
		actions = []key.Binding{m.keys.Generate, m.keys.NextWeek, m.keys.PrevWeek, m.keys.Apply}
	}
	return [][]key.Binding{global, actions}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.generate(), m.loadTasks())
}

func (m Model) generate() tea.Cmd {
	cfg, weekStart := m.cfg, m.weekStart
	return func() tea.Msg {
		p, err := cfg.Planner.PlanWeek(context.Background(), cfg.UserID, weekStart, cfg.Now())
		return planLoadedMsg{plan: p, err: err}
	}
}

func (m Model) loadTasks() tea.Cmd {
	cfg := m.cfg
	return func() tea.Msg {
		subjects, err := cfg.Store.ListSubjects(cfg.UserID)
		if err != nil {
			return tasksLoadedMsg{err: err}
		}
		names := make(map[string]string, len(subjects))
		for _, s := range subjects {
			names[s.ID] = s.Name
		}
		tasks, err := cfg.Store.ListTasks(cfg.UserID, false)
		return tasksLoadedMsg{tasks: tasks, subjects: names, err: err}
	}
}

func (m Model) completeTask(id string) tea.Cmd {
	store, reload := m.cfg.Store, m.loadTasks()
	return func() tea.Msg {
		if err := store.CompleteTask(id); err != nil {
			return tasksLoadedMsg{err: fmt.Errorf("failed to complete task: %w", err)}
		}
		return reload()
	}
}

func (m Model) apply() tea.Cmd {
	applier, p := m.cfg.Applier, *m.plan
	return func() tea.Msg {
		res, err := applier.Apply(context.Background(), p)
		return appliedMsg{result: res, err: err}
	}
}

// shiftWeek moves the planned week by n weeks relative to the one shown.
func (m *Model) shiftWeek(n int) {
	base := m.cfg.Now().In(m.cfg.Location)
	if m.plan != nil {
		base = m.plan.WindowStart.In(m.cfg.Location)
	}
	start := utils.StartOfWeek(base).AddDate(0, 0, 7*n)
	if !start.After(m.cfg.Now()) {
		// The current week is planned from now.
		m.weekStart = nil
		return
	}
	m.weekStart = &start
}
