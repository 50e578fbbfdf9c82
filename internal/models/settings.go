package models

// Settings represents application-wide planner settings
type Settings struct {
	DayStart        string `json:"day_start"`         // start of the daily active window, e.g. "08:00"
	DayEnd          string `json:"day_end"`           // end of the daily active window, e.g. "22:00"
	MinSlotMin      int    `json:"min_slot_min"`      // shortest usable free slot in minutes
	MaxSessionMin   int    `json:"max_session_min"`   // longest study session in minutes
	WeeklyBudgetMin int    `json:"weekly_budget_min"` // total study minutes shared across subjects
	Timezone        string `json:"timezone"`          // IANA timezone name or "Local"
	DefaultUser     string `json:"default_user"`      // user planned for when none is given
}
