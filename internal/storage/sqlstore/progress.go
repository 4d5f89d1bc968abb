package sqlstore

import (
	"cmp"
	"database/sql"
	"fmt"
	"slices"

	"github.com/julianstephens/habitpet/internal/models"
)

func (s *Store) GetProgress() ([]models.DailyProgress, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	return s.queryProgress("SELECT habit_id, day, current_count, completed FROM progress ORDER BY day, habit_id")
}

func (s *Store) queryProgress(query string, args ...interface{}) ([]models.DailyProgress, error) {
	rows, err := s.db.Query(s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	progress := []models.DailyProgress{}
	for rows.Next() {
		var p models.DailyProgress
		if err := rows.Scan(&p.HabitID, &p.Date, &p.CurrentCount, &p.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}

func (s *Store) SaveProgress(progress []models.DailyProgress) error {
	return s.withTx(func(tx *sql.Tx) error {
		return s.replaceProgress(tx, "progress", progress)
	})
}

// replaceProgress overwrites every row of table, which is progress or progress_history
func (s *Store) replaceProgress(tx *sql.Tx, table string, progress []models.DailyProgress) error {
	if _, err := tx.Exec("DELETE FROM " + table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}

	stmt, err := tx.Prepare(s.rebind("INSERT INTO " + table + " (habit_id, day, current_count, completed) VALUES (?, ?, ?, ?)"))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range progress {
		if _, err := stmt.Exec(p.HabitID, p.Date, p.CurrentCount, p.Completed); err != nil {
			return fmt.Errorf("failed to save progress %s/%s: %w", p.HabitID, p.Date, err)
		}
	}
	return nil
}

// ArchiveProgress moves rows from the resident table into history,
// overwriting any archived copy with the same key. Rows at zero only delete.
func (s *Store) ArchiveProgress(rows []models.DailyProgress) error {
	if len(rows) == 0 {
		return nil
	}

	return s.withTx(func(tx *sql.Tx) error {
		del, err := tx.Prepare(s.rebind("DELETE FROM progress_history WHERE habit_id = ? AND day = ?"))
		if err != nil {
			return err
		}
		defer del.Close()

		ins, err := tx.Prepare(s.rebind("INSERT INTO progress_history (habit_id, day, current_count, completed) VALUES (?, ?, ?, ?)"))
		if err != nil {
			return err
		}
		defer ins.Close()

		evict, err := tx.Prepare(s.rebind("DELETE FROM progress WHERE habit_id = ? AND day = ?"))
		if err != nil {
			return err
		}
		defer evict.Close()

		for _, p := range rows {
			if _, err := del.Exec(p.HabitID, p.Date); err != nil {
				return fmt.Errorf("failed to archive progress %s/%s: %w", p.HabitID, p.Date, err)
			}
			if p.CurrentCount > 0 {
				if _, err := ins.Exec(p.HabitID, p.Date, p.CurrentCount, p.Completed); err != nil {
					return fmt.Errorf("failed to archive progress %s/%s: %w", p.HabitID, p.Date, err)
				}
			}
			if _, err := evict.Exec(p.HabitID, p.Date); err != nil {
				return fmt.Errorf("failed to archive progress %s/%s: %w", p.HabitID, p.Date, err)
			}
		}
		return nil
	})
}

// GetProgressRange returns resident and archived rows with startDate <= day <= endDate.
// A resident row wins over an archived row with the same key.
func (s *Store) GetProgressRange(startDate, endDate string) ([]models.DailyProgress, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	archived, err := s.queryProgress("SELECT habit_id, day, current_count, completed FROM progress_history WHERE day >= ? AND day <= ?", startDate, endDate)
	if err != nil {
		return nil, err
	}
	resident, err := s.queryProgress("SELECT habit_id, day, current_count, completed FROM progress WHERE day >= ? AND day <= ?", startDate, endDate)
	if err != nil {
		return nil, err
	}

	byKey := make(map[models.ProgressKey]models.DailyProgress, len(archived)+len(resident))
	for _, p := range archived {
		byKey[p.Key()] = p
	}
	for _, p := range resident {
		byKey[p.Key()] = p
	}

	out := make([]models.DailyProgress, 0, len(byKey))
	for _, p := range byKey {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b models.DailyProgress) int {
		if c := cmp.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.HabitID, b.HabitID)
	})
	return out, nil
}

func (s *Store) ClearHistory() error {
	if s.db == nil {
		return ErrNotOpen
	}
	if _, err := s.db.Exec("DELETE FROM progress_history"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
