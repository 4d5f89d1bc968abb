package engine

import (
	"github.com/julianstephens/habitpet/internal/models"
	"github.com/julianstephens/habitpet/internal/utils"
)

// SettingsPatch holds the settings to change. Nil fields are left alone and
// time values that are not HH:MM are ignored.
type SettingsPatch struct {
	Notifications   *bool
	Sound           *bool
	StreakReminders *bool
	PetAlerts       *bool
	ReminderTime    *string
	SleepStart      *string
	SleepEnd        *string
}

// UpdateSettings merges patch, refreshes the pet's mood against the new
// sleep window and returns the resulting settings.
func (s *Store) UpdateSettings(patch SettingsPatch) models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	if patch.Notifications != nil {
		next.Notifications = *patch.Notifications
	}
	if patch.Sound != nil {
		next.Sound = *patch.Sound
	}
	if patch.StreakReminders != nil {
		next.StreakReminders = *patch.StreakReminders
	}
	if patch.PetAlerts != nil {
		next.PetAlerts = *patch.PetAlerts
	}
	s.applyTime(&next.ReminderTime, patch.ReminderTime, "reminder_time")
	s.applyTime(&next.SleepStart, patch.SleepStart, "sleep_start")
	s.applyTime(&next.SleepEnd, patch.SleepEnd, "sleep_end")

	s.settings = next
	s.persistSettingsLocked()

	if s.applyDecayLocked() {
		s.persistPetLocked()
	}
	return s.settings
}

func (s *Store) applyTime(dst, value *string, key string) {
	if value == nil {
		return
	}
	if !utils.ValidateTimeFormat(*value) {
		s.logWarn("Ignoring invalid time setting", "key", key, "value", *value)
		return
	}
	*dst = *value
}
