package settings

import (
	"github.com/julianstephens/habitpet/internal/cli"
	"github.com/julianstephens/habitpet/internal/engine"
	"github.com/julianstephens/habitpet/internal/validation"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Notifications   *bool   `help:"Enable or disable reminders."`
	Sound           *bool   `help:"Enable or disable sound effects."`
	StreakReminders *bool   `help:"Remind about streaks at risk."`
	PetAlerts       *bool   `help:"Alert when the pet is unwell."`
	ReminderTime    *string `help:"Daily reminder time (HH:MM)."`
	SleepStart      *string `help:"Start of the pet's sleep window (HH:MM)."`
	SleepEnd        *string `help:"End of the pet's sleep window (HH:MM)."`
}

func (c *SettingsCmd) patch() (engine.SettingsPatch, bool, error) {
	for _, v := range []*string{c.ReminderTime, c.SleepStart, c.SleepEnd} {
		if v == nil {
			continue
		}
		if err := validation.Time(*v); err != nil {
			return engine.SettingsPatch{}, false, err
		}
	}

	patch := engine.SettingsPatch{
		Notifications:   c.Notifications,
		Sound:           c.Sound,
		StreakReminders: c.StreakReminders,
		PetAlerts:       c.PetAlerts,
		ReminderTime:    c.ReminderTime,
		SleepStart:      c.SleepStart,
		SleepEnd:        c.SleepEnd,
	}
	changed := c.Notifications != nil || c.Sound != nil || c.StreakReminders != nil || c.PetAlerts != nil ||
		c.ReminderTime != nil || c.SleepStart != nil || c.SleepEnd != nil
	return patch, changed, nil
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	patch, changed, err := c.patch()
	if err != nil {
		return err
	}

	st, err := ctx.Engine()
	if err != nil {
		return err
	}

	if c.List {
		settings := st.Settings()
		ctx.Println("Current Settings:")
		ctx.Printf("  Reminder Time:    %s\n", settings.ReminderTime)
		ctx.Printf("  Sleep Window:     %s - %s\n", settings.SleepStart, settings.SleepEnd)
		ctx.Println("\nNotification Settings:")
		ctx.Printf("  Notifications:    %v\n", settings.Notifications)
		ctx.Printf("  Sound:            %v\n", settings.Sound)
		ctx.Printf("  Streak Reminders: %v\n", settings.StreakReminders)
		ctx.Printf("  Pet Alerts:       %v\n", settings.PetAlerts)
		return nil
	}

	if !changed {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	st.UpdateSettings(patch)
	ctx.Println("Settings updated successfully.")
	return nil
}
