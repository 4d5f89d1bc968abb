package models

import (
	"slices"
	"time"

	"github.com/julianstephens/habitpet/internal/constants"
)

// Pet is the gamification companion. At most one exists per installation.
type Pet struct {
	Name   string         `json:"name"`
	Color  string         `json:"color"`
	Health int            `json:"health"`
	Mood   constants.Mood `json:"mood"`
	// XP is the spendable balance; TotalXP is everything ever earned and drives Level.
	XP        int       `json:"xp"`
	TotalXP   int       `json:"total_xp"`
	Level     int       `json:"level"`
	Hat       string    `json:"hat,omitempty"`
	Inventory []string  `json:"inventory"`
	CreatedAt time.Time `json:"created_at"`
	// LastDecayDate is the local date (YYYY-MM-DD) from which decay has not yet been applied
	LastDecayDate string `json:"last_decay_date"`
}

// Owns reports whether the item is in the pet's inventory.
func (p Pet) Owns(itemID string) bool {
	return slices.Contains(p.Inventory, itemID)
}

// Clone returns a copy of the pet that shares no slices with the receiver.
func (p Pet) Clone() Pet {
	p.Inventory = append([]string{}, p.Inventory...)
	return p
}
