package settings

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitpet/internal/cli"
	"github.com/julianstephens/habitpet/internal/storage/sqlstore"
	"github.com/julianstephens/habitpet/internal/utils"
)

func setupTestDB(t *testing.T) (*cli.Context, *bytes.Buffer) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlstore.NewSQLite(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	ctx := cli.NewContext(nil, store)
	ctx.Clock = utils.NewFixedClock(time.Date(2024, 6, 10, 12, 0, 0, 0, time.Local))
	out := &bytes.Buffer{}
	ctx.Out = out

	t.Cleanup(func() {
		if err := ctx.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	return ctx, out
}

func strPtr(v string) *string { return &v }

func TestSettingsCmd_List(t *testing.T) {
	ctx, out := setupTestDB(t)

	cmd := &SettingsCmd{
		List: true,
	}

	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings list failed: %v", err)
	}
	if !strings.Contains(out.String(), "22:00 - 07:00") {
		t.Errorf("expected default sleep window in output, got:\n%s", out.String())
	}
}

func TestSettingsCmd_NoChanges(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&SettingsCmd{}).Run(ctx); err != nil {
		t.Fatalf("settings failed: %v", err)
	}
	if !strings.Contains(out.String(), "No changes specified") {
		t.Errorf("expected no-change notice, got %q", out.String())
	}
}

func TestSettingsCmd_UpdateToggles(t *testing.T) {
	ctx, _ := setupTestDB(t)

	off := false
	cmd := &SettingsCmd{
		Sound:     &off,
		PetAlerts: &off,
	}

	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}

	st, err := ctx.Engine()
	if err != nil {
		t.Fatalf("failed to load engine: %v", err)
	}
	settings := st.Settings()
	if settings.Sound || settings.PetAlerts {
		t.Errorf("expected sound and pet alerts off, got %+v", settings)
	}
	if !settings.Notifications || !settings.StreakReminders {
		t.Errorf("expected untouched toggles to keep defaults, got %+v", settings)
	}
}

func TestSettingsCmd_UpdateTimesPersist(t *testing.T) {
	ctx, _ := setupTestDB(t)

	cmd := &SettingsCmd{
		ReminderTime: strPtr("19:30"),
		SleepStart:   strPtr("23:00"),
		SleepEnd:     strPtr("06:30"),
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}

	st, err := ctx.Engine()
	if err != nil {
		t.Fatalf("failed to load engine: %v", err)
	}
	if err := st.Flush(context.Background()); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	saved, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("failed to read settings: %v", err)
	}
	if saved.ReminderTime != "19:30" || saved.SleepStart != "23:00" || saved.SleepEnd != "06:30" {
		t.Errorf("unexpected saved times: %+v", saved)
	}
}

func TestSettingsCmd_InvalidTime(t *testing.T) {
	ctx, _ := setupTestDB(t)

	for _, value := range []string{"25:00", "7pm", ""} {
		cmd := &SettingsCmd{SleepStart: strPtr(value)}
		if err := cmd.Run(ctx); err == nil {
			t.Errorf("expected error for sleep start %q, got nil", value)
		}
	}

	st, err := ctx.Engine()
	if err != nil {
		t.Fatalf("failed to load engine: %v", err)
	}
	if got := st.Settings().SleepStart; got != "22:00" {
		t.Errorf("expected sleep start to stay 22:00, got %s", got)
	}
}
