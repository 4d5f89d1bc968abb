package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/habitpet/internal/cli"
	"github.com/julianstephens/habitpet/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing local storage before initialization."`
	Source string `help:"Source database path or connection string to copy data from."`
}

// isLocal reports whether the store lives in a file we can delete
func isLocal(connStr string) bool {
	kind := storage.Detect(connStr)
	return kind == storage.KindSQLite || kind == storage.KindJSON
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()

	if c.Force && isLocal(dbPath) {
		// Don't delete if it's the source (user error protection)
		if c.Source != "" {
			if absDbPath, err := filepath.Abs(dbPath); err == nil {
				dbPath = absDbPath
			}
			if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if _, err := os.Stat(dbPath); err == nil {
			// Close first to release file locks
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing storage: %w", err)
			}
			for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
				if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("failed to delete existing storage: %w", err)
				}
			}
			ctx.Printf("Deleted existing storage at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing storage: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized habitpet storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyData(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Println("Migration completed successfully!")
	}

	return nil
}

func (c *InitCmd) copyData(ctx *cli.Context) error {
	source, err := storage.Open(c.Source, "")
	if err != nil {
		return err
	}
	if err := source.Load(); err != nil {
		return fmt.Errorf("failed to load source storage: %w", err)
	}
	defer source.Close()

	ctx.Println("  Copying settings...")
	settings, err := source.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	ctx.Println("  Copying habits and progress...")
	habits, err := source.GetHabits()
	if err != nil {
		return fmt.Errorf("failed to get habits from source: %w", err)
	}
	// Archived rows come along as resident rows; the next load re-archives them.
	progress, err := source.GetProgressRange("0001-01-01", "9999-12-31")
	if err != nil {
		return fmt.Errorf("failed to get progress from source: %w", err)
	}
	if saver, ok := ctx.Store.(storage.AtomicSaver); ok {
		err = saver.SaveHabitsAndProgress(habits, progress)
	} else if err = ctx.Store.SaveHabits(habits); err == nil {
		err = ctx.Store.SaveProgress(progress)
	}
	if err != nil {
		return fmt.Errorf("failed to save habits to destination: %w", err)
	}
	ctx.Printf("    Copied %d habits and %d progress rows\n", len(habits), len(progress))

	ctx.Println("  Copying pet...")
	p, err := source.GetPet()
	if err != nil {
		return fmt.Errorf("failed to get pet from source: %w", err)
	}
	if p != nil {
		if err := ctx.Store.SavePet(p); err != nil {
			return fmt.Errorf("failed to save pet to destination: %w", err)
		}
		ctx.Printf("    Copied %s (level %d)\n", p.Name, p.Level)
	}

	return nil
}
