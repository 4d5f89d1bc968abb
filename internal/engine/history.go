package engine

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitpet/internal/models"
	"github.com/julianstephens/habitpet/internal/streak"
	"github.com/julianstephens/habitpet/internal/utils"
)

// GetStreak returns the habit's current streak. Unknown habits have none.
func (s *Store) GetStreak(habitID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.habitIndex(habitID) < 0 {
		return 0
	}
	return streak.Current(s.todayLocked(), func(date string) bool {
		return s.completedOn(habitID, date)
	})
}

// LongestStreak returns the longest run of completed days the habit has
// ever had, including archived history.
func (s *Store) LongestStreak(ctx context.Context, habitID string) (int, error) {
	if _, ok := s.Habit(habitID); !ok {
		return 0, nil
	}

	rows, err := s.GetHistoricalProgress(ctx, "0001-01-01", s.Today())
	if err != nil {
		return 0, err
	}

	var dates []string
	for _, row := range rows {
		if row.HabitID == habitID && row.Completed {
			dates = append(dates, row.Date)
		}
	}
	return streak.Longest(dates), nil
}

// GetHistoricalProgress returns every row with start <= date <= end from
// both resident progress and the archive, after pending writes finish.
// A storage failure is logged and yields no rows.
func (s *Store) GetHistoricalProgress(ctx context.Context, start, end string) ([]models.DailyProgress, error) {
	if !utils.ValidateDateFormat(start) {
		return nil, fmt.Errorf("invalid start date %q, expected YYYY-MM-DD", start)
	}
	if !utils.ValidateDateFormat(end) {
		return nil, fmt.Errorf("invalid end date %q, expected YYYY-MM-DD", end)
	}
	if start > end {
		return []models.DailyProgress{}, nil
	}

	if err := s.writer.flush(ctx); err != nil {
		return nil, err
	}

	rows, err := s.provider.GetProgressRange(start, end)
	if err != nil {
		s.logWarn("Failed to read progress range", "start", start, "end", end, "error", err)
		return []models.DailyProgress{}, nil
	}
	if rows == nil {
		rows = []models.DailyProgress{}
	}
	return rows, nil
}

// ResetData wipes habits, progress, the history archive and the pet.
// Settings survive.
func (s *Store) ResetData() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.habits = []models.Habit{}
	s.progress = []models.DailyProgress{}
	s.pet = nil

	s.archiveMu.Lock()
	s.archive = map[models.ProgressKey]models.DailyProgress{}
	s.archiveLoaded = true
	s.archiveMu.Unlock()

	s.persistHabitsAndProgressLocked()
	s.persistPetLocked()
	s.writer.submit("clear history", s.provider.ClearHistory)
	s.logDebug("Reset all data")
}
