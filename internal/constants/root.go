package constants

import "time"

const (
	AppName            = "studyweek"
	DefaultKeyringUser = "database-connection"
	OAuthKeyringUser   = "google-oauth-token"
	DefaultConfigPath  = "~/.config/studyweek/studyweek.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "studyweek-"
	BackupFileSuffix = ".db"

	// Calendar sources
	CalendarsFileName   = "calendars.yaml"
	EnvFileName         = ".env"
	GoogleCalendarID    = "primary"
	GoogleMaxResults    = 250
	ReminderMinutes     = 15
	SessionTitlePrefix  = "[studyweek]"
	PublishDelay        = 100 * time.Millisecond
	ExtendedPropertyKey = "studyweek"

	// Task scheduling status
	SchedulingUnscheduled = "unscheduled"
	SchedulingScheduled   = "scheduled"

	// HTTP
	DefaultServeAddr = "127.0.0.1:8787"
	UserIDHeader     = "X-User-ID"
)
