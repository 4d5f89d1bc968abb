package storage

import (
	"errors"

	"github.com/julianstephens/habitpet/internal/models"
)

// ErrNotLoaded is returned by adapters used before Init or Load.
var ErrNotLoaded = errors.New("storage not loaded")

// Provider is the persistence adapter the engine depends on.
// Reads of missing data return empty collections or defaults; callers
// still treat every error as recoverable.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Habits
	GetHabits() ([]models.Habit, error)
	SaveHabits([]models.Habit) error

	// Pet. SavePet(nil) removes the pet.
	GetPet() (*models.Pet, error)
	SavePet(*models.Pet) error

	// Progress holds the resident rows; SaveProgress replaces all of them.
	GetProgress() ([]models.DailyProgress, error)
	SaveProgress([]models.DailyProgress) error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// History
	// ArchiveProgress moves rows out of the resident set into long-term history,
	// replacing archived rows with the same key. A row with CurrentCount 0
	// deletes the archived copy instead.
	ArchiveProgress([]models.DailyProgress) error
	// GetProgressRange returns resident and archived rows with start <= date <= end.
	GetProgressRange(startDate, endDate string) ([]models.DailyProgress, error)
	// ClearHistory removes every archived row.
	ClearHistory() error

	// Utils
	GetConfigPath() string
}

// AtomicSaver is implemented by adapters that can persist habits and
// progress in a single transaction.
type AtomicSaver interface {
	SaveHabitsAndProgress([]models.Habit, []models.DailyProgress) error
}
