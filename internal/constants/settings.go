package constants

const (
	// Settings keys
	SettingDayStart        = "day_start"
	SettingDayEnd          = "day_end"
	SettingMinSlotMin      = "min_slot_min"
	SettingMaxSessionMin   = "max_session_min"
	SettingWeeklyBudgetMin = "weekly_budget_min"
	SettingTimezone        = "timezone"
	SettingDefaultUser     = "default_user"

	// Default Settings Values
	DefaultDayStart        = "08:00"
	DefaultDayEnd          = "22:00"
	DefaultMinSlotMin      = 30
	DefaultMaxSessionMin   = 120
	DefaultWeeklyBudgetMin = 1200 // ~4h/day over 5 days, a policy constant
	DefaultTimezone        = "Local"
	DefaultUserID          = "local"
	DefaultTaskMinutes     = 30

	// Subject weight ("coefficient") range
	MinSubjectWeight = 1
	MaxSubjectWeight = 3
)
