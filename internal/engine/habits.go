package engine

import (
	"slices"

	"github.com/google/uuid"

	"github.com/julianstephens/habitpet/internal/constants"
	"github.com/julianstephens/habitpet/internal/models"
)

// HabitInput holds the caller-supplied fields of a new habit
type HabitInput struct {
	Title       string
	Color       string
	Icon        string
	TimeOfDay   constants.TimeOfDay
	Frequency   models.Frequency
	TargetCount int
}

// HabitPatch holds the fields to change on an existing habit. Nil fields are
// left alone.
type HabitPatch struct {
	Title       *string
	Color       *string
	Icon        *string
	TimeOfDay   *constants.TimeOfDay
	Frequency   *models.Frequency
	TargetCount *int
}

func normalizeTarget(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// AddHabit creates a habit with a fresh id and appends it to the list
func (s *Store) AddHabit(in HabitInput) models.Habit {
	h := models.Habit{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Color:       in.Color,
		Icon:        in.Icon,
		TimeOfDay:   in.TimeOfDay,
		Frequency:   in.Frequency,
		TargetCount: normalizeTarget(in.TargetCount),
		CreatedAt:   s.clock.Now(),
	}
	if h.TimeOfDay == "" {
		h.TimeOfDay = constants.TimeOfDayAnytime
	}
	if h.Frequency.Type == "" {
		h.Frequency.Type = constants.FrequencyDaily
	}
	h = h.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits = append(s.habits, h)
	s.persistHabitsLocked()
	s.logDebug("Added habit", "id", h.ID, "title", h.Title)
	return h.Clone()
}

// UpdateHabit merges patch into the habit. Lowering the target clamps that
// habit's existing rows without granting or revoking rewards.
func (s *Store) UpdateHabit(id string, patch HabitPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.habitIndex(id)
	if i < 0 {
		return false
	}

	h := s.habits[i].Clone()
	if patch.Title != nil {
		h.Title = *patch.Title
	}
	if patch.Color != nil {
		h.Color = *patch.Color
	}
	if patch.Icon != nil {
		h.Icon = *patch.Icon
	}
	if patch.TimeOfDay != nil {
		h.TimeOfDay = *patch.TimeOfDay
	}
	if patch.Frequency != nil {
		h.Frequency = models.Frequency{
			Type: patch.Frequency.Type,
			Days: slices.Clone(patch.Frequency.Days),
		}
	}

	targetChanged := false
	if patch.TargetCount != nil {
		target := normalizeTarget(*patch.TargetCount)
		targetChanged = target != h.TargetCount
		h.TargetCount = target
	}
	s.habits[i] = h

	if !targetChanged {
		s.persistHabitsLocked()
		return true
	}

	for j, row := range s.progress {
		if row.HabitID == id {
			s.progress[j] = clampRow(row, h.TargetCount)
		}
	}
	s.persistHabitsAndProgressLocked()
	return true
}

// DeleteHabit removes the habit together with its progress and history
func (s *Store) DeleteHabit(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.habitIndex(id)
	if i < 0 {
		return false
	}

	s.habits = slices.Delete(s.habits, i, i+1)
	s.progress = slices.DeleteFunc(s.progress, func(p models.DailyProgress) bool {
		return p.HabitID == id
	})
	s.forgetArchivedHabit(id)
	s.persistHabitsAndProgressLocked()
	s.logDebug("Deleted habit", "id", id)
	return true
}
