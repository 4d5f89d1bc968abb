package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/habitpet/internal/cli"
	apperrors "github.com/julianstephens/habitpet/internal/errors"
	"github.com/julianstephens/habitpet/internal/storage"
)

// migrator is implemented by stores with versioned SQL schemas
type migrator interface {
	Migrate(logFn func(string)) (int, error)
	SchemaVersion() (current, latest int, err error)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		// JSON documents are upgraded in place when they are loaded
		if err := ctx.Store.Load(); err != nil {
			return fmt.Errorf("failed to load storage: %w", err)
		}
		ctx.Println("JSON storage is up to date.")
		return nil
	}

	path := ctx.Store.GetConfigPath()
	if storage.Detect(path) == storage.KindSQLite {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return apperrors.WithHint(fmt.Errorf("storage not initialized at %s", path), "run 'habitpet init' to create the store")
		}
	}

	count, err := m.Migrate(func(msg string) {
		ctx.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}

	return nil
}
