package constants

// TimeOfDay represents the part of the day a habit is usually done in
type TimeOfDay string

// FrequencyType represents how often a habit is expected to be done
type FrequencyType string

// Mood represents the displayed mood of the pet
type Mood string

const (
	AppName            = "habitpet"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/habitpet"
	DefaultConfigPath  = "~/.config/habitpet/habitpet.db"
	Version            = "v0.1.0"

	// EnvDBConnection holds a connection string that bypasses the keyring
	EnvDBConnection = "HABITPET_DB_CONNECTION"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// DefaultRetentionDays is how many days of progress the engine keeps resident
	DefaultRetentionDays = 90

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitpet-"

	// Time of day constants
	TimeOfDayAnytime TimeOfDay = "anytime"
	TimeOfDayMorning TimeOfDay = "morning"
	TimeOfDayMidday  TimeOfDay = "midday"
	TimeOfDayEvening TimeOfDay = "evening"

	// Frequency constants
	FrequencyDaily  FrequencyType = "daily"
	FrequencyWeekly FrequencyType = "weekly"

	// Mood constants
	MoodHappy    Mood = "happy"
	MoodNeutral  Mood = "neutral"
	MoodSad      Mood = "sad"
	MoodSick     Mood = "sick"
	MoodSleeping Mood = "sleeping"

	// Setting keys
	SettingNotifications   = "notifications"
	SettingSound           = "sound"
	SettingStreakReminders = "streak_reminders"
	SettingPetAlerts       = "pet_alerts"
	SettingReminderTime    = "reminder_time"
	SettingSleepStart      = "sleep_start"
	SettingSleepEnd        = "sleep_end"

	// Default setting values
	DefaultNotifications   = true
	DefaultSound           = true
	DefaultStreakReminders = true
	DefaultPetAlerts       = true
	DefaultReminderTime    = "20:00"
	DefaultSleepStart      = "22:00"
	DefaultSleepEnd        = "07:00"
)
