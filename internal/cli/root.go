// Package cli holds the state shared by habitpet's commands.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/habitpet/internal/backup"
	"github.com/julianstephens/habitpet/internal/config"
	"github.com/julianstephens/habitpet/internal/engine"
	apperrors "github.com/julianstephens/habitpet/internal/errors"
	"github.com/julianstephens/habitpet/internal/logger"
	"github.com/julianstephens/habitpet/internal/models"
	"github.com/julianstephens/habitpet/internal/storage"
	"github.com/julianstephens/habitpet/internal/utils"
)

// closeTimeout bounds how long exit waits for pending writes
const closeTimeout = 10 * time.Second

type Context struct {
	Config *config.Config
	Store  storage.Provider
	Clock  utils.Clock
	Out    io.Writer
	In     io.Reader

	engine *engine.Store
}

// NewContext wires a command context around an unopened provider
func NewContext(cfg *config.Config, store storage.Provider) *Context {
	if cfg == nil {
		cfg = &config.Config{RetentionDays: config.DefaultRetentionDays, BackupBeforeReset: config.DefaultBackupBeforeReset}
	}
	return &Context{
		Config: cfg,
		Store:  store,
		Clock:  utils.SystemClock{},
		Out:    os.Stdout,
		In:     os.Stdin,
	}
}

// Engine loads the domain store on first use
func (c *Context) Engine() (*engine.Store, error) {
	if c.engine != nil {
		return c.engine, nil
	}

	st := engine.New(c.Store,
		engine.WithClock(c.Clock),
		engine.WithRetentionDays(c.Config.RetentionDays),
		engine.WithLogger(logger.With("component", "engine")),
	)
	if err := st.Load(context.Background()); err != nil {
		_ = st.Close(context.Background())
		if strings.Contains(err.Error(), "not initialized") {
			return nil, apperrors.WithHint(err, "run 'habitpet init' to create the store")
		}
		return nil, err
	}
	c.engine = st
	return st, nil
}

// Close flushes the engine if one was loaded, then closes storage
func (c *Context) Close() error {
	if c.engine == nil {
		return c.Store.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	err := c.engine.Close(ctx)
	c.engine = nil
	return err
}

// Flush waits for pending engine writes without closing storage
func (c *Context) Flush() error {
	if c.engine == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return c.engine.Flush(ctx)
}

// Printf writes to the command output
func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

// Println writes a line to the command output
func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Out, args...)
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr, err := backup.NewManager(c.Store.GetConfigPath())
	if err != nil {
		logger.Debug("Skipping automatic backup", "reason", err)
		return
	}
	if _, err := mgr.WithClock(c.Clock).CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ResolveDate returns date, or today when it is empty
func (c *Context) ResolveDate(date string) (string, error) {
	if date == "" {
		return utils.Today(c.Clock), nil
	}
	if !utils.ValidateDateFormat(date) {
		return "", fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", date)
	}
	return date, nil
}

// FindHabit resolves a habit by id, unique id prefix or case-insensitive title
func FindHabit(st *engine.Store, ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Habit{}, fmt.Errorf("habit reference must not be empty")
	}
	if h, ok := st.Habit(ref); ok {
		return h, nil
	}

	var matches []models.Habit
	for _, h := range st.Habits() {
		if strings.EqualFold(h.Title, ref) {
			return h, nil
		}
		if strings.HasPrefix(h.ID, ref) {
			matches = append(matches, h)
		}
	}

	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("habit %q not found", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Habit{}, fmt.Errorf("habit id prefix %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// ShortID trims a habit id for display
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Confirm asks a yes/no question on the command input
func (c *Context) Confirm(prompt string) (bool, error) {
	c.Printf("%s [y/N]: ", prompt)
	response, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
