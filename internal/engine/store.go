// Package engine owns the canonical habit, progress, pet and settings state.
//
// A Store is loaded once from a storage.Provider and then mutated in memory;
// every mutation schedules a fire-and-forget write of the affected
// collections. Reads never wait on pending writes, and write failures are
// logged rather than returned.
package engine

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/habitpet/internal/constants"
	"github.com/julianstephens/habitpet/internal/logger"
	"github.com/julianstephens/habitpet/internal/models"
	"github.com/julianstephens/habitpet/internal/storage"
	"github.com/julianstephens/habitpet/internal/utils"
)

type Option func(*Store)

// WithClock sets the source of "now" and of the local calendar date
func WithClock(c utils.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithRetentionDays sets how many days of progress stay resident.
// Zero or less disables archiving.
func WithRetentionDays(days int) Option {
	return func(s *Store) { s.retentionDays = days }
}

// WithLogger routes engine logs to l instead of the package logger
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.log = l }
}

type Store struct {
	provider      storage.Provider
	clock         utils.Clock
	retentionDays int
	log           *log.Logger
	writer        *writer

	mu       sync.RWMutex
	habits   []models.Habit
	progress []models.DailyProgress
	pet      *models.Pet
	settings models.Settings

	// archive caches rows older than the retention window, fetched on first use
	archiveMu     sync.Mutex
	archive       map[models.ProgressKey]models.DailyProgress
	archiveLoaded bool
}

func New(provider storage.Provider, opts ...Option) *Store {
	s := &Store{
		provider:      provider,
		clock:         utils.SystemClock{},
		retentionDays: constants.DefaultRetentionDays,
		habits:        []models.Habit{},
		progress:      []models.DailyProgress{},
		settings:      models.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.With("component", "engine")
	}
	s.writer = newWriter(func(job string, err error) {
		s.logError("Persist failed", "job", job, "error", err)
	})
	return s
}

func (s *Store) logWarn(msg string, keyvals ...interface{}) {
	if s.log != nil {
		s.log.Warn(msg, keyvals...)
		return
	}
	logger.Warn(msg, keyvals...)
}

func (s *Store) logError(msg string, keyvals ...interface{}) {
	if s.log != nil {
		s.log.Error(msg, keyvals...)
		return
	}
	logger.Error(msg, keyvals...)
}

func (s *Store) logDebug(msg string, keyvals ...interface{}) {
	if s.log != nil {
		s.log.Debug(msg, keyvals...)
		return
	}
	logger.Debug(msg, keyvals...)
}

// Load opens the provider and reads every collection. Only failing to open
// storage is returned; a collection that cannot be read is replaced by its
// empty or default value and logged. Load then archives rows older than the
// retention window and applies pet decay for days that passed.
func (s *Store) Load(ctx context.Context) error {
	if err := s.provider.Load(); err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	var (
		habits   []models.Habit
		progress []models.DailyProgress
		p        *models.Pet
		settings models.Settings

		habitsFailed bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		if habits, err = s.provider.GetHabits(); err != nil {
			s.logWarn("Failed to read habits, starting empty", "error", err)
			habits = nil
			habitsFailed = true
		}
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		if progress, err = s.provider.GetProgress(); err != nil {
			s.logWarn("Failed to read progress, starting empty", "error", err)
			progress = nil
		}
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		if p, err = s.provider.GetPet(); err != nil {
			s.logWarn("Failed to read pet, starting without one", "error", err)
			p = nil
		}
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		if settings, err = s.provider.GetSettings(); err != nil {
			s.logWarn("Failed to read settings, using defaults", "error", err)
			settings = models.DefaultSettings()
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if habits == nil {
		habits = []models.Habit{}
	}
	if progress == nil {
		progress = []models.DailyProgress{}
	}
	models.ApplyDefaultSettings(&settings)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.habits = habits
	s.settings = settings
	s.pet = nil
	if p != nil {
		c := p.Clone()
		s.pet = &c
	}

	// Without habits every row would look orphaned, so leave them untouched
	if habitsFailed {
		s.progress = progress
		s.logWarn("Skipping progress repair, habits are unavailable", "rows", len(progress))
	} else {
		var repaired bool
		s.progress, repaired = s.sanitizeProgress(progress)
		if repaired {
			s.persistProgressLocked()
		}
	}

	s.resetArchive()
	s.archiveExpiredLocked()

	if s.applyDecayLocked() {
		s.persistPetLocked()
	}

	s.logDebug("Loaded state", "habits", len(s.habits), "progress", len(s.progress), "pet", s.pet != nil)
	return nil
}

// sanitizeProgress drops orphaned rows and restores the count/target
// invariants on rows written by older or foreign builds.
func (s *Store) sanitizeProgress(rows []models.DailyProgress) ([]models.DailyProgress, bool) {
	targets := make(map[string]int, len(s.habits))
	for _, h := range s.habits {
		targets[h.ID] = h.TargetCount
	}

	out := make([]models.DailyProgress, 0, len(rows))
	seen := make(map[models.ProgressKey]bool, len(rows))
	changed := false
	for _, row := range rows {
		target, ok := targets[row.HabitID]
		if !ok || seen[row.Key()] || !utils.ValidateDateFormat(row.Date) {
			changed = true
			continue
		}
		seen[row.Key()] = true

		fixed := clampRow(row, target)
		if fixed != row {
			changed = true
		}
		if fixed.CurrentCount == 0 {
			changed = true
			continue
		}
		out = append(out, fixed)
	}
	if changed {
		s.logWarn("Repaired inconsistent progress rows", "before", len(rows), "after", len(out))
	}
	return out, changed
}

func clampRow(row models.DailyProgress, target int) models.DailyProgress {
	if target < 1 {
		target = 1
	}
	row.CurrentCount = max(0, min(row.CurrentCount, target))
	row.Completed = row.CurrentCount == target
	return row
}

// retentionCutoff is the oldest date kept resident, or "" when archiving is off
func (s *Store) retentionCutoff() string {
	if s.retentionDays <= 0 {
		return ""
	}
	return utils.MustAddDays(s.todayLocked(), -s.retentionDays)
}

// archiveExpiredLocked moves rows older than the retention window out of memory
func (s *Store) archiveExpiredLocked() {
	cutoff := s.retentionCutoff()
	if cutoff == "" {
		return
	}

	var expired []models.DailyProgress
	kept := s.progress[:0:0]
	for _, row := range s.progress {
		if row.Date < cutoff {
			expired = append(expired, row)
		} else {
			kept = append(kept, row)
		}
	}
	if len(expired) == 0 {
		return
	}

	s.progress = kept
	s.logDebug("Archiving expired progress", "rows", len(expired), "cutoff", cutoff)
	s.writer.submit("archive progress", func() error {
		return s.provider.ArchiveProgress(expired)
	})
}

func (s *Store) resetArchive() {
	s.archiveMu.Lock()
	s.archive = nil
	s.archiveLoaded = false
	s.archiveMu.Unlock()
}

// isArchivedDate reports whether rows for date live in the history archive
func (s *Store) isArchivedDate(date string) bool {
	cutoff := s.retentionCutoff()
	return cutoff != "" && date < cutoff
}

// archivedRow returns the archived row for key, fetching the archive on
// first use. A failed fetch is retried on the next call.
func (s *Store) archivedRow(key models.ProgressKey) (models.DailyProgress, bool, error) {
	s.archiveMu.Lock()
	defer s.archiveMu.Unlock()

	if !s.archiveLoaded {
		// Archive jobs from Load may still be queued
		if err := s.writer.flush(context.Background()); err != nil {
			return models.DailyProgress{}, false, fmt.Errorf("failed to flush before reading history: %w", err)
		}
		rows, err := s.provider.GetProgressRange("0001-01-01", "9999-12-31")
		if err != nil {
			return models.DailyProgress{}, false, fmt.Errorf("failed to read progress history: %w", err)
		}
		s.archive = make(map[models.ProgressKey]models.DailyProgress, len(rows))
		for _, row := range rows {
			if s.isArchivedDate(row.Date) {
				s.archive[row.Key()] = row
			}
		}
		s.archiveLoaded = true
	}
	row, ok := s.archive[key]
	return row, ok, nil
}

// storeArchivedLocked writes row straight to the history archive. A row at
// zero removes the archived copy.
func (s *Store) storeArchivedLocked(row models.DailyProgress) {
	s.archiveMu.Lock()
	if s.archive != nil {
		if row.CurrentCount == 0 {
			delete(s.archive, row.Key())
		} else {
			s.archive[row.Key()] = row
		}
	}
	s.archiveMu.Unlock()

	s.writer.submit("archive progress", func() error {
		return s.provider.ArchiveProgress([]models.DailyProgress{row})
	})
}

func (s *Store) forgetArchivedHabit(habitID string) {
	s.archiveMu.Lock()
	defer s.archiveMu.Unlock()
	for key := range s.archive {
		if key.HabitID == habitID {
			delete(s.archive, key)
		}
	}
}

// completedOn reports whether the habit was completed on date, looking past
// the resident window when needed.
func (s *Store) completedOn(habitID, date string) bool {
	if i := s.progressIndex(habitID, date); i >= 0 {
		return s.progress[i].Completed
	}
	if !s.isArchivedDate(date) {
		return false
	}
	row, ok, err := s.archivedRow(models.ProgressKey{HabitID: habitID, Date: date})
	if err != nil {
		s.logWarn("Failed to look up archived progress", "habit", habitID, "date", date, "error", err)
		return false
	}
	return ok && row.Completed
}

func (s *Store) progressIndex(habitID, date string) int {
	return slices.IndexFunc(s.progress, func(p models.DailyProgress) bool {
		return p.HabitID == habitID && p.Date == date
	})
}

func (s *Store) habitIndex(id string) int {
	return slices.IndexFunc(s.habits, func(h models.Habit) bool { return h.ID == id })
}

func (s *Store) todayLocked() string {
	return utils.Today(s.clock)
}

// Today returns the local calendar date of the store's clock
func (s *Store) Today() string {
	return utils.Today(s.clock)
}

// Habits returns a copy of every habit in creation order
func (s *Store) Habits() []models.Habit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Habit, 0, len(s.habits))
	for _, h := range s.habits {
		out = append(out, h.Clone())
	}
	return out
}

func (s *Store) Habit(id string) (models.Habit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.habitIndex(id); i >= 0 {
		return s.habits[i].Clone(), true
	}
	return models.Habit{}, false
}

// Progress returns a copy of the resident progress rows
func (s *Store) Progress() []models.DailyProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.progress)
}

func (s *Store) ProgressFor(habitID, date string) (models.DailyProgress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.progressIndex(habitID, date); i >= 0 {
		return s.progress[i], true
	}
	return models.DailyProgress{}, false
}

// Pet returns a copy of the pet, or nil when none has been hatched
func (s *Store) Pet() *models.Pet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pet == nil {
		return nil
	}
	p := s.pet.Clone()
	return &p
}

func (s *Store) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Flush waits until every write scheduled so far has been attempted
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.flush(ctx)
}

// Close flushes pending writes, stops the writer and closes the provider
func (s *Store) Close(ctx context.Context) error {
	if err := s.writer.close(ctx); err != nil {
		return err
	}
	return s.provider.Close()
}

func (s *Store) snapshotHabits() []models.Habit {
	out := make([]models.Habit, 0, len(s.habits))
	for _, h := range s.habits {
		out = append(out, h.Clone())
	}
	return out
}

func (s *Store) persistHabitsLocked() {
	habits := s.snapshotHabits()
	s.writer.submit("save habits", func() error {
		return s.provider.SaveHabits(habits)
	})
}

func (s *Store) persistProgressLocked() {
	progress := slices.Clone(s.progress)
	s.writer.submit("save progress", func() error {
		return s.provider.SaveProgress(progress)
	})
}

// persistHabitsAndProgressLocked writes both collections as one job, in one
// transaction when the provider supports it.
func (s *Store) persistHabitsAndProgressLocked() {
	habits := s.snapshotHabits()
	progress := slices.Clone(s.progress)
	s.writer.submit("save habits and progress", func() error {
		if atomic, ok := s.provider.(storage.AtomicSaver); ok {
			return atomic.SaveHabitsAndProgress(habits, progress)
		}
		if err := s.provider.SaveHabits(habits); err != nil {
			return err
		}
		return s.provider.SaveProgress(progress)
	})
}

func (s *Store) persistPetLocked() {
	var p *models.Pet
	if s.pet != nil {
		c := s.pet.Clone()
		p = &c
	}
	s.writer.submit("save pet", func() error {
		return s.provider.SavePet(p)
	})
}

func (s *Store) persistSettingsLocked() {
	settings := s.settings
	s.writer.submit("save settings", func() error {
		return s.provider.SaveSettings(settings)
	})
}
