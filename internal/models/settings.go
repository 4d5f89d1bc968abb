package models

// Settings represents application-wide settings
type Settings struct {
	Notifications   bool   `json:"notifications"`    // whether reminders are enabled at all
	Sound           bool   `json:"sound"`            // whether sound effects are enabled
	StreakReminders bool   `json:"streak_reminders"` // whether to remind about streaks at risk
	PetAlerts       bool   `json:"pet_alerts"`       // whether to alert when the pet is unwell
	ReminderTime    string `json:"reminder_time"`    // daily reminder time, e.g. "20:00"
	SleepStart      string `json:"sleep_start"`      // start of the pet's sleep window, e.g. "22:00"
	SleepEnd        string `json:"sleep_end"`        // end of the pet's sleep window, e.g. "07:00"
}
