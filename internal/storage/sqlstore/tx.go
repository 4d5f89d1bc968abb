package sqlstore

import (
	"database/sql"
	"fmt"
)

// withTx runs fn inside a transaction, committing only when fn succeeds
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	if s.db == nil {
		return ErrNotOpen
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
