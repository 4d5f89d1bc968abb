package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/julianstephens/habitpet/internal/models"
	"github.com/julianstephens/habitpet/internal/pet"
	"github.com/julianstephens/habitpet/internal/utils"
)

// CurrentDocumentVersion is the JSON document layout written by this build.
//
// Version 1 documents lack pet.total_xp and pet.last_decay_date and keep no history.
const CurrentDocumentVersion = 2

// Document is the on-disk layout of a JSON store.
type Document struct {
	Version  int                    `json:"version"`
	Settings map[string]string      `json:"settings"`
	Habits   []models.Habit         `json:"habits"`
	Pet      *models.Pet            `json:"pet"`
	Progress []models.DailyProgress `json:"progress"`
	History  []models.DailyProgress `json:"history"`
}

type JSONStore struct {
	mu    sync.Mutex
	path  string
	store *Document
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Check if file already exists
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.store = newDocument()
	return s.save()
}

func newDocument() *Document {
	return &Document{
		Version:  CurrentDocumentVersion,
		Settings: models.SettingsToMap(models.DefaultSettings()),
		Habits:   []models.Habit{},
		Progress: []models.DailyProgress{},
		History:  []models.DailyProgress{},
	}
}

func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'habitpet init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	if doc.Version > CurrentDocumentVersion {
		return fmt.Errorf("storage version (%d) is newer than supported version (%d) - please upgrade the application", doc.Version, CurrentDocumentVersion)
	}

	upgraded := upgradeDocument(doc)

	// Ensure collections are initialized
	if doc.Settings == nil {
		doc.Settings = models.SettingsToMap(models.DefaultSettings())
	}
	if doc.Habits == nil {
		doc.Habits = []models.Habit{}
	}
	if doc.Progress == nil {
		doc.Progress = []models.DailyProgress{}
	}
	if doc.History == nil {
		doc.History = []models.DailyProgress{}
	}

	s.store = doc
	if upgraded {
		return s.save()
	}
	return nil
}

// upgradeDocument rewrites older layouts in place and reports whether anything changed.
func upgradeDocument(doc *Document) bool {
	if doc.Version >= CurrentDocumentVersion {
		return false
	}

	if doc.Version < 2 && doc.Pet != nil {
		p := doc.Pet
		// Level was the only record of lifetime progress before total_xp existed.
		if p.TotalXP < p.XP {
			p.TotalXP = p.XP
		}
		if floor := (p.Level - 1) * pet.LevelThreshold; p.TotalXP < floor {
			p.TotalXP = floor
		}
		if p.Level < 1 {
			p.Level = pet.LevelForXP(p.TotalXP)
		}
		if p.LastDecayDate == "" && !p.CreatedAt.IsZero() {
			p.LastDecayDate = utils.FormatDate(p.CreatedAt)
		}
		if p.Inventory == nil {
			p.Inventory = []string{}
		}
	}

	doc.Version = CurrentDocumentVersion
	return true
}

func (s *JSONStore) Close() error {
	return nil
}

// save writes the document to a temporary file and renames it over the
// store so a crash mid-write never leaves a truncated document.
func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) GetHabits() ([]models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil, ErrNotLoaded
	}

	habits := make([]models.Habit, 0, len(s.store.Habits))
	for _, h := range s.store.Habits {
		habits = append(habits, h.Clone())
	}
	return habits, nil
}

func (s *JSONStore) SaveHabits(habits []models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return ErrNotLoaded
	}

	s.store.Habits = append([]models.Habit{}, habits...)
	return s.save()
}

func (s *JSONStore) GetPet() (*models.Pet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil, ErrNotLoaded
	}

	if s.store.Pet == nil {
		return nil, nil
	}
	p := s.store.Pet.Clone()
	return &p, nil
}

func (s *JSONStore) SavePet(p *models.Pet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return ErrNotLoaded
	}

	if p == nil {
		s.store.Pet = nil
	} else {
		c := p.Clone()
		s.store.Pet = &c
	}
	return s.save()
}

func (s *JSONStore) GetProgress() ([]models.DailyProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil, ErrNotLoaded
	}

	return append([]models.DailyProgress{}, s.store.Progress...), nil
}

func (s *JSONStore) SaveProgress(progress []models.DailyProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return ErrNotLoaded
	}

	s.store.Progress = append([]models.DailyProgress{}, progress...)
	return s.save()
}

// SaveHabitsAndProgress writes both collections in a single document write.
func (s *JSONStore) SaveHabitsAndProgress(habits []models.Habit, progress []models.DailyProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return ErrNotLoaded
	}

	s.store.Habits = append([]models.Habit{}, habits...)
	s.store.Progress = append([]models.DailyProgress{}, progress...)

	// Drop archived rows of habits that no longer exist.
	live := make(map[string]bool, len(habits))
	for _, h := range habits {
		live[h.ID] = true
	}
	history := s.store.History[:0]
	for _, p := range s.store.History {
		if live[p.HabitID] {
			history = append(history, p)
		}
	}
	s.store.History = history

	return s.save()
}

func (s *JSONStore) GetSettings() (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return models.Settings{}, ErrNotLoaded
	}

	return models.MapToSettings(s.store.Settings)
}

func (s *JSONStore) SaveSettings(settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return ErrNotLoaded
	}

	s.store.Settings = models.SettingsToMap(settings)
	return s.save()
}

func (s *JSONStore) ArchiveProgress(rows []models.DailyProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return ErrNotLoaded
	}
	if len(rows) == 0 {
		return nil
	}

	archived := make(map[models.ProgressKey]models.DailyProgress, len(s.store.History)+len(rows))
	for _, p := range s.store.History {
		archived[p.Key()] = p
	}
	for _, p := range rows {
		if p.CurrentCount <= 0 {
			delete(archived, p.Key())
			continue
		}
		archived[p.Key()] = p
	}

	moved := make(map[models.ProgressKey]bool, len(rows))
	for _, p := range rows {
		moved[p.Key()] = true
	}
	resident := make([]models.DailyProgress, 0, len(s.store.Progress))
	for _, p := range s.store.Progress {
		if !moved[p.Key()] {
			resident = append(resident, p)
		}
	}

	history := make([]models.DailyProgress, 0, len(archived))
	for _, p := range archived {
		history = append(history, p)
	}
	sortProgress(history)

	s.store.History = history
	s.store.Progress = resident
	return s.save()
}

func (s *JSONStore) GetProgressRange(startDate, endDate string) ([]models.DailyProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil, ErrNotLoaded
	}

	// Resident rows win over archived copies of the same key.
	byKey := make(map[models.ProgressKey]models.DailyProgress)
	for _, p := range s.store.History {
		if p.Date >= startDate && p.Date <= endDate {
			byKey[p.Key()] = p
		}
	}
	for _, p := range s.store.Progress {
		if p.Date >= startDate && p.Date <= endDate {
			byKey[p.Key()] = p
		}
	}

	rows := make([]models.DailyProgress, 0, len(byKey))
	for _, p := range byKey {
		rows = append(rows, p)
	}
	sortProgress(rows)
	return rows, nil
}

func (s *JSONStore) ClearHistory() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return ErrNotLoaded
	}

	s.store.History = []models.DailyProgress{}
	return s.save()
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

// sortProgress orders rows by date, then habit id.
func sortProgress(rows []models.DailyProgress) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].HabitID < rows[j].HabitID
	})
}
