package engine

import (
	"github.com/julianstephens/habitpet/internal/models"
	"github.com/julianstephens/habitpet/internal/pet"
	"github.com/julianstephens/habitpet/internal/utils"
)

// PetPatch holds the cosmetic pet fields a caller may change
type PetPatch struct {
	Name  *string
	Color *string
}

// ResetPet replaces any existing pet with a newly hatched one
func (s *Store) ResetPet(name, color string) models.Pet {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := pet.Hatch(name, color, s.clock.Now(), s.settings)
	s.pet = &p
	s.persistPetLocked()
	return p.Clone()
}

// UpdatePet merges patch into the pet. It returns false when there is no pet.
func (s *Store) UpdatePet(patch PetPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pet == nil {
		return false
	}
	p := s.pet.Clone()
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Color != nil {
		p.Color = *patch.Color
	}
	s.pet = &p
	s.persistPetLocked()
	return true
}

// BuyItem spends price XP on itemID. It fails without a pet, for a negative
// price, for an item already owned or when the balance is short. Lifetime XP
// and level are unaffected.
func (s *Store) BuyItem(itemID string, price int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pet == nil || itemID == "" || price < 0 {
		return false
	}
	if s.pet.Owns(itemID) || s.pet.XP < price {
		return false
	}

	p := s.pet.Clone()
	p.XP -= price
	p.Inventory = append(p.Inventory, itemID)
	s.pet = &p
	s.persistPetLocked()
	return true
}

// EquipHat puts on an owned item, or takes the hat off when itemID is empty
func (s *Store) EquipHat(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pet == nil {
		return false
	}
	if itemID != "" && !s.pet.Owns(itemID) {
		return false
	}

	p := s.pet.Clone()
	p.Hat = itemID
	s.pet = &p
	s.persistPetLocked()
	return true
}

// RefreshPet applies decay for days that passed without a completion and
// recomputes the mood. It reports whether the pet changed.
func (s *Store) RefreshPet() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.applyDecayLocked() {
		return false
	}
	s.persistPetLocked()
	return true
}

func (s *Store) applyDecayLocked() bool {
	if s.pet == nil {
		return false
	}

	now := s.clock.Now()
	today := utils.FormatDate(now)
	before := *s.pet
	p := s.pet.Clone()

	if !utils.ValidateDateFormat(p.LastDecayDate) {
		p.LastDecayDate = today
	}
	if p.LastDecayDate < today {
		p = pet.ApplyDecay(p, s.missedDaysLocked(p.LastDecayDate, today, p.Health))
		p.LastDecayDate = today
	}
	p = pet.Refresh(p, now, s.settings)

	s.pet = &p
	return p.Health != before.Health || p.Mood != before.Mood || p.LastDecayDate != before.LastDecayDate
}

// missedDaysLocked counts days in [from, to) with no completion on any
// habit. Counting stops once the pet's health would already be exhausted.
func (s *Store) missedDaysLocked(from, to string, health int) int {
	completed := make(map[string]bool)
	for _, row := range s.progress {
		if row.Completed {
			completed[row.Date] = true
		}
	}

	cutoff := s.retentionCutoff()
	missed := 0
	for day := from; day < to && missed*pet.DecayPerMissedDay < health; day = utils.MustAddDays(day, 1) {
		if completed[day] {
			continue
		}
		if cutoff != "" && day < cutoff && s.archivedAnyOn(day) {
			continue
		}
		missed++
	}
	return missed
}

func (s *Store) archivedAnyOn(date string) bool {
	for _, h := range s.habits {
		if s.completedOn(h.ID, date) {
			return true
		}
	}
	return false
}
