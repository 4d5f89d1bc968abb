package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/habitpet/internal/constants"
	"github.com/julianstephens/habitpet/internal/models"
	"github.com/julianstephens/habitpet/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictEmptyTitle         ConflictType = "empty_title"
	ConflictDuplicateTitle     ConflictType = "duplicate_title"
	ConflictInvalidTarget      ConflictType = "invalid_target"
	ConflictInvalidTimeOfDay   ConflictType = "invalid_time_of_day"
	ConflictInvalidFrequency   ConflictType = "invalid_frequency"
	ConflictInvalidDateTime    ConflictType = "invalid_datetime"
	ConflictOrphanProgress     ConflictType = "orphan_progress"
	ConflictProgressOutOfRange ConflictType = "progress_out_of_range"
	ConflictDuplicateProgress  ConflictType = "duplicate_progress"
	ConflictInvalidPet         ConflictType = "invalid_pet"
)

var (
	ErrEmptyTitle       = errors.New("title must not be empty")
	ErrInvalidTarget    = errors.New("target count must be at least 1")
	ErrInvalidTimeOfDay = errors.New("time of day must be one of anytime, morning, midday, evening")
	ErrInvalidFrequency = errors.New("frequency must be daily or weekly")
	ErrInvalidTime      = errors.New("time must be HH:MM")
	ErrInvalidDate      = errors.New("date must be YYYY-MM-DD")
	ErrEmptyName        = errors.New("name must not be empty")
)

// Conflict represents a detected inconsistency in stored data
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // YYYY-MM-DD format (if applicable)
	Items       []string // Habit titles or setting keys involved
	HabitIDs    []string // IDs of habits involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var report strings.Builder
	report.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&report, "- %s\n", conflict.Description)
	}
	return report.String()
}

// Validator checks habits, progress, settings and the pet for problems
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// TimeOfDay parses a time-of-day name. Empty means anytime.
func TimeOfDay(value string) (constants.TimeOfDay, error) {
	switch t := constants.TimeOfDay(strings.ToLower(strings.TrimSpace(value))); t {
	case "":
		return constants.TimeOfDayAnytime, nil
	case constants.TimeOfDayAnytime, constants.TimeOfDayMorning, constants.TimeOfDayMidday, constants.TimeOfDayEvening:
		return t, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidTimeOfDay, value)
	}
}

// Frequency parses a frequency type. Empty means daily.
func Frequency(value string) (constants.FrequencyType, error) {
	switch f := constants.FrequencyType(strings.ToLower(strings.TrimSpace(value))); f {
	case "":
		return constants.FrequencyDaily, nil
	case constants.FrequencyDaily, constants.FrequencyWeekly:
		return f, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidFrequency, value)
	}
}

// HabitFields checks the user-editable habit fields
func HabitFields(title string, target int) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if target < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidTarget, target)
	}
	return nil
}

// PetName checks a pet name
func PetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Time checks an HH:MM value
func Time(value string) error {
	if !utils.ValidateTimeFormat(value) {
		return fmt.Errorf("%w: got %q", ErrInvalidTime, value)
	}
	return nil
}

// Date checks a YYYY-MM-DD value
func Date(value string) error {
	if !utils.ValidateDateFormat(value) {
		return fmt.Errorf("%w: got %q", ErrInvalidDate, value)
	}
	return nil
}

// ValidateHabits checks habits for empty or duplicate titles and bad fields
func (v *Validator) ValidateHabits(habits []models.Habit) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	titles := make(map[string][]string)
	for _, h := range habits {
		title := strings.TrimSpace(h.Title)
		if title == "" {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictEmptyTitle,
				Description: fmt.Sprintf("Habit %s has an empty title", h.ID),
				HabitIDs:    []string{h.ID},
			})
			continue
		}
		key := strings.ToLower(title)
		titles[key] = append(titles[key], h.ID)
	}

	// Sort for a stable report
	keys := make([]string, 0, len(titles))
	for k := range titles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if ids := titles[k]; len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateTitle,
				Description: fmt.Sprintf("Duplicate habit title: \"%s\" (IDs: %v)", k, ids),
				Items:       []string{k},
				HabitIDs:    ids,
			})
		}
	}

	for _, h := range habits {
		if h.TargetCount < 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidTarget,
				Description: fmt.Sprintf("Habit \"%s\" has target count %d", h.Title, h.TargetCount),
				Items:       []string{h.Title},
				HabitIDs:    []string{h.ID},
			})
		}
		if _, err := TimeOfDay(string(h.TimeOfDay)); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidTimeOfDay,
				Description: fmt.Sprintf("Habit \"%s\" has invalid time of day: %s", h.Title, h.TimeOfDay),
				Items:       []string{h.Title},
				HabitIDs:    []string{h.ID},
			})
		}
		if _, err := Frequency(string(h.Frequency.Type)); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidFrequency,
				Description: fmt.Sprintf("Habit \"%s\" has invalid frequency: %s", h.Title, h.Frequency.Type),
				Items:       []string{h.Title},
				HabitIDs:    []string{h.ID},
			})
		}
	}

	return result
}

// ValidateProgress checks progress rows against the habits they belong to
func (v *Validator) ValidateProgress(habits []models.Habit, progress []models.DailyProgress) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	byID := make(map[string]models.Habit, len(habits))
	for _, h := range habits {
		byID[h.ID] = h
	}

	seen := make(map[models.ProgressKey]bool, len(progress))
	for _, row := range progress {
		if !utils.ValidateDateFormat(row.Date) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDateTime,
				Description: fmt.Sprintf("Progress for habit %s has invalid date: %s", row.HabitID, row.Date),
				Date:        row.Date,
				HabitIDs:    []string{row.HabitID},
			})
			continue
		}

		if seen[row.Key()] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateProgress,
				Description: fmt.Sprintf("Duplicate progress rows for habit %s on %s", row.HabitID, row.Date),
				Date:        row.Date,
				HabitIDs:    []string{row.HabitID},
			})
			continue
		}
		seen[row.Key()] = true

		h, ok := byID[row.HabitID]
		if !ok {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOrphanProgress,
				Description: fmt.Sprintf("Progress on %s references missing habit %s", row.Date, row.HabitID),
				Date:        row.Date,
				HabitIDs:    []string{row.HabitID},
			})
			continue
		}

		target := max(1, h.TargetCount)
		if row.CurrentCount < 0 || row.CurrentCount > target || row.Completed != (row.CurrentCount == target) {
			desc := fmt.Sprintf("Progress for \"%s\" on %s is %d/%d (completed=%t)",
				h.Title, row.Date, row.CurrentCount, target, row.Completed)
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictProgressOutOfRange,
				Description: desc,
				Date:        row.Date,
				Items:       []string{h.Title},
				HabitIDs:    []string{h.ID},
			})
		}
	}

	return result
}

// ValidateSettings checks every time-valued setting
func (v *Validator) ValidateSettings(settings models.Settings) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	times := []struct {
		key   string
		value string
	}{
		{constants.SettingReminderTime, settings.ReminderTime},
		{constants.SettingSleepStart, settings.SleepStart},
		{constants.SettingSleepEnd, settings.SleepEnd},
	}
	for _, t := range times {
		if err := Time(t.value); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDateTime,
				Description: fmt.Sprintf("Setting %s has invalid time: %q", t.key, t.value),
				Items:       []string{t.key},
			})
		}
	}

	return result
}

// ValidatePet checks the pet's bounded fields. A nil pet is valid.
func (v *Validator) ValidatePet(p *models.Pet) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	if p == nil {
		return result
	}

	add := func(format string, args ...interface{}) {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictInvalidPet,
			Description: fmt.Sprintf(format, args...),
			Items:       []string{p.Name},
		})
	}

	if p.Health < 0 || p.Health > 100 {
		add("Pet health %d is outside 0-100", p.Health)
	}
	if p.XP < 0 {
		add("Pet XP balance %d is negative", p.XP)
	}
	if p.TotalXP < p.XP {
		add("Pet lifetime XP %d is below its balance %d", p.TotalXP, p.XP)
	}
	if p.Level < 1 {
		add("Pet level %d is below 1", p.Level)
	}
	if p.Hat != "" && !p.Owns(p.Hat) {
		add("Pet wears %q but does not own it", p.Hat)
	}
	if p.LastDecayDate != "" && !utils.ValidateDateFormat(p.LastDecayDate) {
		add("Pet last decay date %q is invalid", p.LastDecayDate)
	}

	return result
}

// ValidateAll runs every check and merges the results
func (v *Validator) ValidateAll(habits []models.Habit, progress []models.DailyProgress, settings models.Settings, p *models.Pet) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	for _, r := range []ValidationResult{
		v.ValidateHabits(habits),
		v.ValidateProgress(habits, progress),
		v.ValidateSettings(settings),
		v.ValidatePet(p),
	} {
		result.Conflicts = append(result.Conflicts, r.Conflicts...)
	}
	return result
}
