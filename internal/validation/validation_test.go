package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/julianstephens/habitpet/internal/constants"
	"github.com/julianstephens/habitpet/internal/models"
)

func hasConflict(result ValidationResult, typ ConflictType) bool {
	for _, c := range result.Conflicts {
		if c.Type == typ {
			return true
		}
	}
	return false
}

func validHabit(id, title string) models.Habit {
	return models.Habit{
		ID:          id,
		Title:       title,
		TimeOfDay:   constants.TimeOfDayMorning,
		Frequency:   models.Frequency{Type: constants.FrequencyDaily},
		TargetCount: 2,
	}
}

func TestValidateHabits_DuplicateTitles(t *testing.T) {
	validator := New()

	habits := []models.Habit{
		validHabit("1", "Water"),
		validHabit("2", "Read"),
		validHabit("3", "water "), // Duplicate after normalization
	}

	result := validator.ValidateHabits(habits)

	if !hasConflict(result, ConflictDuplicateTitle) {
		t.Fatal("Expected ConflictDuplicateTitle conflict type")
	}
	for _, c := range result.Conflicts {
		if c.Type == ConflictDuplicateTitle && len(c.HabitIDs) != 2 {
			t.Errorf("Expected 2 habit IDs in duplicate conflict, got %v", c.HabitIDs)
		}
	}
}

func TestValidateHabits_InvalidFields(t *testing.T) {
	validator := New()

	tests := []struct {
		name     string
		mutate   func(h *models.Habit)
		expected ConflictType
	}{
		{"empty title", func(h *models.Habit) { h.Title = "  " }, ConflictEmptyTitle},
		{"zero target", func(h *models.Habit) { h.TargetCount = 0 }, ConflictInvalidTarget},
		{"bad time of day", func(h *models.Habit) { h.TimeOfDay = "midnight" }, ConflictInvalidTimeOfDay},
		{"bad frequency", func(h *models.Habit) { h.Frequency.Type = "hourly" }, ConflictInvalidFrequency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := validHabit("1", "Water")
			tt.mutate(&h)
			result := validator.ValidateHabits([]models.Habit{h})
			if !hasConflict(result, tt.expected) {
				t.Errorf("Expected %s, got %+v", tt.expected, result.Conflicts)
			}
		})
	}
}

func TestValidateHabits_Valid(t *testing.T) {
	validator := New()
	result := validator.ValidateHabits([]models.Habit{validHabit("1", "Water"), validHabit("2", "Read")})
	if result.HasConflicts() {
		t.Errorf("Expected no conflicts, got %s", result.FormatReport())
	}
}

func TestValidateProgress(t *testing.T) {
	validator := New()
	habits := []models.Habit{validHabit("h1", "Water")}

	tests := []struct {
		name     string
		rows     []models.DailyProgress
		expected ConflictType
	}{
		{
			name:     "orphan",
			rows:     []models.DailyProgress{{HabitID: "gone", Date: "2024-06-10", CurrentCount: 1}},
			expected: ConflictOrphanProgress,
		},
		{
			name:     "over target",
			rows:     []models.DailyProgress{{HabitID: "h1", Date: "2024-06-10", CurrentCount: 3, Completed: true}},
			expected: ConflictProgressOutOfRange,
		},
		{
			name:     "completed flag mismatch",
			rows:     []models.DailyProgress{{HabitID: "h1", Date: "2024-06-10", CurrentCount: 1, Completed: true}},
			expected: ConflictProgressOutOfRange,
		},
		{
			name:     "invalid date",
			rows:     []models.DailyProgress{{HabitID: "h1", Date: "06/10/2024", CurrentCount: 1}},
			expected: ConflictInvalidDateTime,
		},
		{
			name: "duplicate row",
			rows: []models.DailyProgress{
				{HabitID: "h1", Date: "2024-06-10", CurrentCount: 1},
				{HabitID: "h1", Date: "2024-06-10", CurrentCount: 2, Completed: true},
			},
			expected: ConflictDuplicateProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.ValidateProgress(habits, tt.rows)
			if !hasConflict(result, tt.expected) {
				t.Errorf("Expected %s, got %+v", tt.expected, result.Conflicts)
			}
		})
	}

	valid := validator.ValidateProgress(habits, []models.DailyProgress{
		{HabitID: "h1", Date: "2024-06-09", CurrentCount: 2, Completed: true},
		{HabitID: "h1", Date: "2024-06-10", CurrentCount: 1},
	})
	if valid.HasConflicts() {
		t.Errorf("Expected no conflicts, got %s", valid.FormatReport())
	}
}

func TestValidateSettings(t *testing.T) {
	validator := New()

	if result := validator.ValidateSettings(models.DefaultSettings()); result.HasConflicts() {
		t.Errorf("Default settings should be valid, got %s", result.FormatReport())
	}

	settings := models.DefaultSettings()
	settings.SleepStart = "25:00"
	settings.ReminderTime = "8pm"
	result := validator.ValidateSettings(settings)
	if len(result.Conflicts) != 2 {
		t.Errorf("Expected 2 conflicts, got %d", len(result.Conflicts))
	}
}

func TestValidatePet(t *testing.T) {
	validator := New()

	if result := validator.ValidatePet(nil); result.HasConflicts() {
		t.Error("Nil pet should be valid")
	}

	good := &models.Pet{Name: "Mochi", Health: 80, XP: 20, TotalXP: 120, Level: 2, Hat: "leaf", Inventory: []string{"leaf"}, LastDecayDate: "2024-06-10"}
	if result := validator.ValidatePet(good); result.HasConflicts() {
		t.Errorf("Expected valid pet, got %s", result.FormatReport())
	}

	bad := &models.Pet{Name: "Mochi", Health: 120, XP: 50, TotalXP: 10, Level: 0, Hat: "crown", LastDecayDate: "soon"}
	result := validator.ValidatePet(bad)
	if len(result.Conflicts) != 5 {
		t.Errorf("Expected 5 conflicts, got %d: %s", len(result.Conflicts), result.FormatReport())
	}
}

func TestValidateAll(t *testing.T) {
	validator := New()
	settings := models.DefaultSettings()
	settings.SleepEnd = "bad"

	result := validator.ValidateAll(
		[]models.Habit{validHabit("h1", "")},
		[]models.DailyProgress{{HabitID: "gone", Date: "2024-06-10", CurrentCount: 1}},
		settings,
		nil,
	)
	for _, typ := range []ConflictType{ConflictEmptyTitle, ConflictOrphanProgress, ConflictInvalidDateTime} {
		if !hasConflict(result, typ) {
			t.Errorf("Expected %s in merged result", typ)
		}
	}
}

func TestFormatReport(t *testing.T) {
	empty := ValidationResult{}
	if empty.FormatReport() != "No conflicts detected." {
		t.Errorf("Unexpected empty report: %q", empty.FormatReport())
	}

	result := ValidationResult{Conflicts: []Conflict{{Description: "first"}, {Description: "second"}}}
	report := result.FormatReport()
	if !strings.HasPrefix(report, "Conflicts detected:\n") || !strings.Contains(report, "- second\n") {
		t.Errorf("Unexpected report: %q", report)
	}
}

func TestFieldHelpers(t *testing.T) {
	if tod, err := TimeOfDay(" Evening "); err != nil || tod != constants.TimeOfDayEvening {
		t.Errorf("TimeOfDay(Evening) = %q, %v", tod, err)
	}
	if tod, err := TimeOfDay(""); err != nil || tod != constants.TimeOfDayAnytime {
		t.Errorf("TimeOfDay(\"\") = %q, %v", tod, err)
	}
	if _, err := TimeOfDay("noon"); !errors.Is(err, ErrInvalidTimeOfDay) {
		t.Errorf("TimeOfDay(noon) error = %v", err)
	}

	if f, err := Frequency("WEEKLY"); err != nil || f != constants.FrequencyWeekly {
		t.Errorf("Frequency(WEEKLY) = %q, %v", f, err)
	}
	if _, err := Frequency("monthly"); !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("Frequency(monthly) error = %v", err)
	}

	if err := HabitFields("Water", 3); err != nil {
		t.Errorf("HabitFields valid: %v", err)
	}
	if err := HabitFields(" ", 3); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("HabitFields empty title: %v", err)
	}
	if err := HabitFields("Water", 0); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("HabitFields zero target: %v", err)
	}

	if err := PetName(""); !errors.Is(err, ErrEmptyName) {
		t.Errorf("PetName empty: %v", err)
	}
	if err := Time("07:30"); err != nil {
		t.Errorf("Time valid: %v", err)
	}
	if err := Time("7.30"); !errors.Is(err, ErrInvalidTime) {
		t.Errorf("Time invalid: %v", err)
	}
	if err := Date("2024-02-30"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("Date invalid: %v", err)
	}
}
