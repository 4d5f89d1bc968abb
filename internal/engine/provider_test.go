package engine

import (
	"errors"
	"slices"
	"sync"

	"github.com/julianstephens/habitpet/internal/models"
)

var errRead = errors.New("read failed")

// memProvider is an in-memory storage.Provider with switchable read failures
type memProvider struct {
	mu       sync.Mutex
	habits   []models.Habit
	progress []models.DailyProgress
	history  []models.DailyProgress
	pet      *models.Pet
	settings models.Settings

	loadErr    error
	failRead   bool
	failHabits bool
	atomic     int
}

func newMemProvider() *memProvider {
	return &memProvider{settings: models.DefaultSettings()}
}

func (m *memProvider) Init() error  { return nil }
func (m *memProvider) Load() error  { return m.loadErr }
func (m *memProvider) Close() error { return nil }

func (m *memProvider) GetHabits() ([]models.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRead || m.failHabits {
		return nil, errRead
	}
	return slices.Clone(m.habits), nil
}

func (m *memProvider) SaveHabits(h []models.Habit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.habits = slices.Clone(h)
	return nil
}

func (m *memProvider) GetPet() (*models.Pet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRead {
		return nil, errRead
	}
	if m.pet == nil {
		return nil, nil
	}
	p := m.pet.Clone()
	return &p, nil
}

func (m *memProvider) SavePet(p *models.Pet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == nil {
		m.pet = nil
		return nil
	}
	c := p.Clone()
	m.pet = &c
	return nil
}

func (m *memProvider) GetProgress() ([]models.DailyProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRead {
		return nil, errRead
	}
	return slices.Clone(m.progress), nil
}

func (m *memProvider) SaveProgress(p []models.DailyProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = slices.Clone(p)
	return nil
}

func (m *memProvider) SaveHabitsAndProgress(h []models.Habit, p []models.DailyProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.atomic++
	m.habits = slices.Clone(h)
	m.progress = slices.Clone(p)
	m.history = slices.DeleteFunc(m.history, func(row models.DailyProgress) bool {
		return !slices.ContainsFunc(m.habits, func(h models.Habit) bool { return h.ID == row.HabitID })
	})
	return nil
}

func (m *memProvider) GetSettings() (models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRead {
		return models.Settings{}, errRead
	}
	return m.settings, nil
}

func (m *memProvider) SaveSettings(s models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
	return nil
}

func (m *memProvider) ArchiveProgress(rows []models.DailyProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range rows {
		m.progress = slices.DeleteFunc(m.progress, func(p models.DailyProgress) bool { return p.Key() == row.Key() })
		m.history = slices.DeleteFunc(m.history, func(p models.DailyProgress) bool { return p.Key() == row.Key() })
		if row.CurrentCount > 0 {
			m.history = append(m.history, row)
		}
	}
	return nil
}

func (m *memProvider) GetProgressRange(start, end string) ([]models.DailyProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRead {
		return nil, errRead
	}
	var out []models.DailyProgress
	for _, row := range append(slices.Clone(m.history), m.progress...) {
		if row.Date >= start && row.Date <= end {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memProvider) ClearHistory() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = nil
	return nil
}

func (m *memProvider) GetConfigPath() string { return "memory" }

func (m *memProvider) snapshot() (habits []models.Habit, progress, history []models.DailyProgress, p *models.Pet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	habits = slices.Clone(m.habits)
	progress = slices.Clone(m.progress)
	history = slices.Clone(m.history)
	if m.pet != nil {
		c := m.pet.Clone()
		p = &c
	}
	return habits, progress, history, p
}
