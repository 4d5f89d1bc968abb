package sqlstore

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/julianstephens/habitpet/internal/models"
)

func (s *Store) GetSettings() (models.Settings, error) {
	if s.db == nil {
		return models.Settings{}, ErrNotOpen
	}

	rows, err := s.db.Query("SELECT name, value FROM settings")
	if err != nil {
		return models.Settings{}, err
	}
	defer rows.Close()

	data := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, err
		}
		data[key] = value
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, err
	}

	return models.MapToSettings(data)
}

func (s *Store) SaveSettings(settings models.Settings) error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM settings"); err != nil {
			return err
		}

		stmt, err := tx.Prepare(s.rebind("INSERT INTO settings (name, value) VALUES (?, ?)"))
		if err != nil {
			return err
		}
		defer stmt.Close()

		data := models.SettingsToMap(settings)
		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			if _, err := stmt.Exec(k, data[k]); err != nil {
				return fmt.Errorf("failed to save setting %s: %w", k, err)
			}
		}
		return nil
	})
}
