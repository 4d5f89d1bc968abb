package sqlstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/habitpet/internal/constants"
	"github.com/julianstephens/habitpet/internal/models"
)

const habitColumns = "id, title, color, icon, time_of_day, frequency_type, frequency_days, target_count, created_at"

func (s *Store) GetHabits() ([]models.Habit, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.Query("SELECT " + habitColumns + " FROM habits ORDER BY position, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		var (
			h                    models.Habit
			timeOfDay, freqType  string
			freqDays, createdStr string
		)
		if err := rows.Scan(&h.ID, &h.Title, &h.Color, &h.Icon, &timeOfDay, &freqType, &freqDays, &h.TargetCount, &createdStr); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		h.TimeOfDay = constants.TimeOfDay(timeOfDay)
		h.Frequency.Type = constants.FrequencyType(freqType)
		if freqDays != "" {
			if err := json.Unmarshal([]byte(freqDays), &h.Frequency.Days); err != nil {
				return nil, fmt.Errorf("parsing frequency days of habit %s: %w", h.ID, err)
			}
		}
		if h.CreatedAt, err = time.Parse(time.RFC3339Nano, createdStr); err != nil {
			return nil, fmt.Errorf("parsing created_at of habit %s: %w", h.ID, err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) SaveHabits(habits []models.Habit) error {
	return s.withTx(func(tx *sql.Tx) error {
		return s.replaceHabits(tx, habits)
	})
}

// SaveHabitsAndProgress replaces both collections in one transaction and
// drops archived progress of habits that no longer exist.
func (s *Store) SaveHabitsAndProgress(habits []models.Habit, progress []models.DailyProgress) error {
	return s.withTx(func(tx *sql.Tx) error {
		if err := s.replaceHabits(tx, habits); err != nil {
			return err
		}
		if err := s.replaceProgress(tx, "progress", progress); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM progress_history WHERE habit_id NOT IN (SELECT id FROM habits)"); err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
		return nil
	})
}

func (s *Store) replaceHabits(tx *sql.Tx, habits []models.Habit) error {
	if _, err := tx.Exec("DELETE FROM habits"); err != nil {
		return fmt.Errorf("failed to clear habits: %w", err)
	}

	stmt, err := tx.Prepare(s.rebind("INSERT INTO habits (position, " + habitColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, h := range habits {
		days := h.Frequency.Days
		if days == nil {
			days = []int{}
		}
		daysJSON, err := json.Marshal(days)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(i, h.ID, h.Title, h.Color, h.Icon, string(h.TimeOfDay), string(h.Frequency.Type), string(daysJSON), h.TargetCount, h.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("failed to save habit %s: %w", h.ID, err)
		}
	}
	return nil
}
