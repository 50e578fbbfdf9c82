package storage

import (
	"errors"
	"time"

	"github.com/julianstephens/studyweek/internal/models"
)

// ErrNotFound is returned when a requested record does not exist or is deleted.
var ErrNotFound = errors.New("not found")

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Subjects
	AddSubject(models.Subject) error
	GetSubject(id string) (models.Subject, error)
	GetSubjectByName(userID, name string) (models.Subject, error)
	ListSubjects(userID string) ([]models.Subject, error)
	UpdateSubject(models.Subject) error
	DeleteSubject(id string) error
	RestoreSubject(id string) error

	// Tasks
	AddTask(models.Task) error
	GetTask(id string) (models.Task, error)
	ListTasks(userID string, includeCompleted bool) ([]models.Task, error)
	// ListEligibleTasks returns the user's incomplete, non-deleted tasks that
	// are undated or due between the start of windowStart's day and windowEnd,
	// oldest first.
	ListEligibleTasks(userID string, windowStart, windowEnd time.Time) ([]models.Task, error)
	UpdateTask(models.Task) error
	CompleteTask(id string) error
	// MarkTasksScheduled sets the scheduling status of the given tasks to
	// scheduled and records when their session starts.
	MarkTasksScheduled(ids []string, scheduledFor time.Time) error
	DeleteTask(id string) error
	RestoreTask(id string) error

	// Applied sessions
	SaveAppliedSession(models.AppliedSession) error
	ListAppliedSessions(userID string, windowStart, windowEnd time.Time) ([]models.AppliedSession, error)

	// Utils
	GetConfigPath() string
}
