package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/habitpet/internal/constants"
)

// DefaultSettings returns the settings used when nothing has been persisted.
func DefaultSettings() Settings {
	return Settings{
		Notifications:   constants.DefaultNotifications,
		Sound:           constants.DefaultSound,
		StreakReminders: constants.DefaultStreakReminders,
		PetAlerts:       constants.DefaultPetAlerts,
		ReminderTime:    constants.DefaultReminderTime,
		SleepStart:      constants.DefaultSleepStart,
		SleepEnd:        constants.DefaultSleepEnd,
	}
}

// MapToSettings converts a map of key-value pairs to a Settings struct.
// Keys missing from the map keep their default value; unknown keys are ignored.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := DefaultSettings()

	for key, value := range data {
		switch key {
		case constants.SettingNotifications:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			settings.Notifications = b
		case constants.SettingSound:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			settings.Sound = b
		case constants.SettingStreakReminders:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			settings.StreakReminders = b
		case constants.SettingPetAlerts:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			settings.PetAlerts = b
		case constants.SettingReminderTime:
			settings.ReminderTime = value
		case constants.SettingSleepStart:
			settings.SleepStart = value
		case constants.SettingSleepEnd:
			settings.SleepEnd = value
		}
	}

	ApplyDefaultSettings(&settings)
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingNotifications:   strconv.FormatBool(settings.Notifications),
		constants.SettingSound:           strconv.FormatBool(settings.Sound),
		constants.SettingStreakReminders: strconv.FormatBool(settings.StreakReminders),
		constants.SettingPetAlerts:       strconv.FormatBool(settings.PetAlerts),
		constants.SettingReminderTime:    settings.ReminderTime,
		constants.SettingSleepStart:      settings.SleepStart,
		constants.SettingSleepEnd:        settings.SleepEnd,
	}
}

// ApplyDefaultSettings applies default values to empty time settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.ReminderTime == "" {
		settings.ReminderTime = constants.DefaultReminderTime
	}
	if settings.SleepStart == "" {
		settings.SleepStart = constants.DefaultSleepStart
	}
	if settings.SleepEnd == "" {
		settings.SleepEnd = constants.DefaultSleepEnd
	}
}
