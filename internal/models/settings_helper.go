package models

import (
	"fmt"

	"github.com/julianstephens/studyweek/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingDayStart:
			settings.DayStart = value
		case constants.SettingDayEnd:
			settings.DayEnd = value
		case constants.SettingMinSlotMin:
			if _, err := fmt.Sscanf(value, "%d", &settings.MinSlotMin); err != nil {
				return Settings{}, fmt.Errorf("parsing min_slot_min: %w", err)
			}
		case constants.SettingMaxSessionMin:
			if _, err := fmt.Sscanf(value, "%d", &settings.MaxSessionMin); err != nil {
				return Settings{}, fmt.Errorf("parsing max_session_min: %w", err)
			}
		case constants.SettingWeeklyBudgetMin:
			if _, err := fmt.Sscanf(value, "%d", &settings.WeeklyBudgetMin); err != nil {
				return Settings{}, fmt.Errorf("parsing weekly_budget_min: %w", err)
			}
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingDefaultUser:
			settings.DefaultUser = value
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingDayStart:        settings.DayStart,
		constants.SettingDayEnd:          settings.DayEnd,
		constants.SettingMinSlotMin:      fmt.Sprintf("%d", settings.MinSlotMin),
		constants.SettingMaxSessionMin:   fmt.Sprintf("%d", settings.MaxSessionMin),
		constants.SettingWeeklyBudgetMin: fmt.Sprintf("%d", settings.WeeklyBudgetMin),
		constants.SettingTimezone:        settings.Timezone,
		constants.SettingDefaultUser:     settings.DefaultUser,
	}
}

// DefaultSettings returns the settings written on init.
func DefaultSettings() Settings {
	s := Settings{}
	ApplyDefaultSettings(&s)
	return s
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.DayStart == "" {
		settings.DayStart = constants.DefaultDayStart
	}
	if settings.DayEnd == "" {
		settings.DayEnd = constants.DefaultDayEnd
	}
	if settings.MinSlotMin == 0 {
		settings.MinSlotMin = constants.DefaultMinSlotMin
	}
	if settings.MaxSessionMin == 0 {
		settings.MaxSessionMin = constants.DefaultMaxSessionMin
	}
	if settings.WeeklyBudgetMin == 0 {
		settings.WeeklyBudgetMin = constants.DefaultWeeklyBudgetMin
	}
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.DefaultUser == "" {
		settings.DefaultUser = constants.DefaultUserID
	}
}
