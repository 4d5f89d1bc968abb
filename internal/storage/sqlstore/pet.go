package sqlstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitpet/internal/constants"
	"github.com/julianstephens/habitpet/internal/models"
)

// GetPet returns nil without error when no pet has been hatched
func (s *Store) GetPet() (*models.Pet, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	var (
		p                        models.Pet
		mood, inventory, hatched string
	)
	err := s.db.QueryRow("SELECT name, color, health, mood, xp, total_xp, level, hat, inventory, created_at, last_decay_date FROM pet WHERE id = 1").
		Scan(&p.Name, &p.Color, &p.Health, &mood, &p.XP, &p.TotalXP, &p.Level, &p.Hat, &inventory, &hatched, &p.LastDecayDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pet: %w", err)
	}

	p.Mood = constants.Mood(mood)
	p.Inventory = []string{}
	if inventory != "" {
		if err := json.Unmarshal([]byte(inventory), &p.Inventory); err != nil {
			return nil, fmt.Errorf("parsing pet inventory: %w", err)
		}
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, hatched); err != nil {
		return nil, fmt.Errorf("parsing pet created_at: %w", err)
	}
	return &p, nil
}

// SavePet replaces the stored pet; a nil pet deletes it
func (s *Store) SavePet(p *models.Pet) error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM pet"); err != nil {
			return fmt.Errorf("failed to clear pet: %w", err)
		}
		if p == nil {
			return nil
		}

		inventory := p.Inventory
		if inventory == nil {
			inventory = []string{}
		}
		invJSON, err := json.Marshal(inventory)
		if err != nil {
			return err
		}

		_, err = tx.Exec(s.rebind("INSERT INTO pet (id, name, color, health, mood, xp, total_xp, level, hat, inventory, created_at, last_decay_date) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"),
			p.Name, p.Color, p.Health, string(p.Mood), p.XP, p.TotalXP, p.Level, p.Hat, string(invJSON), p.CreatedAt.UTC().Format(time.RFC3339Nano), p.LastDecayDate)
		if err != nil {
			return fmt.Errorf("failed to save pet: %w", err)
		}
		return nil
	})
}
