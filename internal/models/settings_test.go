package models

import (
	"testing"

	"github.com/julianstephens/habitpet/internal/constants"
)

func TestMapToSettingsDefaultsMissingKeys(t *testing.T) {
	settings, err := MapToSettings(map[string]string{
		constants.SettingSound:      "false",
		constants.SettingSleepStart: "23:30",
	})
	if err != nil {
		t.Fatalf("MapToSettings() failed: %v", err)
	}

	if settings.Sound {
		t.Error("expected sound to be false")
	}
	if !settings.Notifications {
		t.Error("expected notifications to default to true")
	}
	if settings.SleepStart != "23:30" {
		t.Errorf("expected sleep start 23:30, got %s", settings.SleepStart)
	}
	if settings.SleepEnd != constants.DefaultSleepEnd {
		t.Errorf("expected default sleep end, got %s", settings.SleepEnd)
	}
}

func TestMapToSettingsInvalidBool(t *testing.T) {
	_, err := MapToSettings(map[string]string{constants.SettingPetAlerts: "maybe"})
	if err == nil {
		t.Error("expected error for invalid bool value")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	original := DefaultSettings()
	original.StreakReminders = false
	original.ReminderTime = "08:15"

	restored, err := MapToSettings(SettingsToMap(original))
	if err != nil {
		t.Fatalf("MapToSettings() failed: %v", err)
	}
	if restored != original {
		t.Errorf("round trip mismatch: got %+v, want %+v", restored, original)
	}
}

func TestPetOwnsAndClone(t *testing.T) {
	p := Pet{Inventory: []string{"cap"}}
	if !p.Owns("cap") {
		t.Error("expected pet to own cap")
	}
	if p.Owns("crown") {
		t.Error("expected pet not to own crown")
	}

	c := p.Clone()
	c.Inventory[0] = "crown"
	if p.Inventory[0] != "cap" {
		t.Error("clone should not share inventory with original")
	}
}
