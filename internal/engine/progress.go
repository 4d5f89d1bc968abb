package engine

import (
	"slices"

	"github.com/julianstephens/habitpet/internal/models"
	"github.com/julianstephens/habitpet/internal/pet"
	"github.com/julianstephens/habitpet/internal/utils"
)

// ProgressResult describes the outcome of a LogProgress call
type ProgressResult struct {
	Progress models.DailyProgress
	// Completed is true only for the increment that reached the target
	Completed bool
	// Pet is the pet after any reward, or nil when none exists
	Pet *models.Pet
}

// LogProgress increments the habit's count for date. At the target it is a
// no-op. A completing increment earns the completion reward, any other
// increment earns the partial reward. Dates older than the retention window
// update the archived row in place. It returns false for an unknown habit,
// a malformed date or an archive that cannot be read.
func (s *Store) LogProgress(habitID, date string) (ProgressResult, bool) {
	if !utils.ValidateDateFormat(date) {
		return ProgressResult{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	hi := s.habitIndex(habitID)
	if hi < 0 {
		return ProgressResult{}, false
	}
	target := normalizeTarget(s.habits[hi].TargetCount)

	row, i, archived, ok := s.lookupRowLocked(habitID, date, target)
	if !ok {
		return ProgressResult{}, false
	}
	if row.CurrentCount >= target {
		return ProgressResult{Progress: row, Pet: s.petCopyLocked()}, true
	}

	row.CurrentCount++
	row.Completed = row.CurrentCount == target
	switch {
	case archived:
		s.storeArchivedLocked(row)
	case i >= 0:
		s.progress[i] = row
		s.persistProgressLocked()
	default:
		s.progress = append(s.progress, row)
		s.persistProgressLocked()
	}

	if s.pet != nil {
		var p models.Pet
		if row.Completed {
			p = pet.ApplyCompletion(*s.pet)
		} else {
			p = pet.ApplyPartial(*s.pet)
		}
		p = pet.Refresh(p, s.clock.Now(), s.settings)
		s.pet = &p
		s.persistPetLocked()
	}

	return ProgressResult{
		Progress:  row,
		Completed: row.Completed,
		Pet:       s.petCopyLocked(),
	}, true
}

// UndoProgress decrements the habit's count for date. A row that reaches
// zero is removed. Rewards already granted are kept. It returns false when
// the habit is unknown, the date is malformed or there is nothing to undo.
func (s *Store) UndoProgress(habitID, date string) (models.DailyProgress, bool) {
	if !utils.ValidateDateFormat(date) {
		return models.DailyProgress{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	hi := s.habitIndex(habitID)
	if hi < 0 {
		return models.DailyProgress{}, false
	}
	target := normalizeTarget(s.habits[hi].TargetCount)
	row, i, archived, ok := s.lookupRowLocked(habitID, date, target)
	if !ok || row.CurrentCount == 0 {
		return models.DailyProgress{}, false
	}

	row.CurrentCount--
	row = clampRow(row, target)
	switch {
	case archived:
		s.storeArchivedLocked(row)
	case row.CurrentCount == 0:
		s.progress = slices.Delete(s.progress, i, i+1)
		s.persistProgressLocked()
	default:
		s.progress[i] = row
		s.persistProgressLocked()
	}
	return row, true
}

// lookupRowLocked finds the row for (habitID, date). i is its resident index
// or -1. archived is set when the date lies past the retention window and
// the row must be written back to the archive. A missing row comes back at
// zero. ok is false only when the archive cannot be read.
func (s *Store) lookupRowLocked(habitID, date string, target int) (row models.DailyProgress, i int, archived, ok bool) {
	row = models.DailyProgress{HabitID: habitID, Date: date}
	if i = s.progressIndex(habitID, date); i >= 0 {
		return s.progress[i], i, false, true
	}
	if !s.isArchivedDate(date) {
		return row, -1, false, true
	}

	prev, found, err := s.archivedRow(row.Key())
	if err != nil {
		s.logWarn("Failed to read archived progress", "habit", habitID, "date", date, "error", err)
		return row, -1, true, false
	}
	if found {
		row = clampRow(prev, target)
	}
	return row, -1, true, true
}

func (s *Store) petCopyLocked() *models.Pet {
	if s.pet == nil {
		return nil
	}
	p := s.pet.Clone()
	return &p
}
