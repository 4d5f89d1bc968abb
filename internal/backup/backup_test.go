package backup

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitpet/internal/constants"
	"github.com/julianstephens/habitpet/internal/models"
	"github.com/julianstephens/habitpet/internal/storage"
	"github.com/julianstephens/habitpet/internal/utils"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "habitpet.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE habits (id TEXT PRIMARY KEY, title TEXT)`); err != nil {
		t.Fatalf("failed to create test table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO habits (id, title) VALUES ('1', 'Water'), ('2', 'Read')`); err != nil {
		t.Fatalf("failed to insert test data: %v", err)
	}
	return dbPath
}

func countHabits(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM habits").Scan(&count); err != nil {
		t.Fatalf("failed to query database: %v", err)
	}
	return count
}

func newTestManager(t *testing.T, dbPath string) (*Manager, *utils.FixedClock) {
	t.Helper()
	mgr, err := NewManager(dbPath)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	clock := utils.NewFixedClock(time.Date(2024, 6, 10, 9, 30, 0, 0, time.Local))
	return mgr.WithClock(clock), clock
}

func TestNewManagerRejectsServerDatabases(t *testing.T) {
	for _, dsn := range []string{"postgres://localhost/habitpet", "mysql://localhost/habitpet"} {
		if _, err := NewManager(dsn); !errors.Is(err, ErrUnsupported) {
			t.Errorf("NewManager(%q) error = %v, want ErrUnsupported", dsn, err)
		}
	}
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr, _ := newTestManager(t, dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	if filepath.Dir(backupPath) != filepath.Join(filepath.Dir(dbPath), constants.BackupDirName) {
		t.Errorf("backup written outside backup dir: %s", backupPath)
	}
	if got := filepath.Base(backupPath); got != "habitpet-20240610-093000.db" {
		t.Errorf("backup name = %s", got)
	}
	if count := countHabits(t, backupPath); count != 2 {
		t.Errorf("expected 2 rows in backup, got %d", count)
	}
}

func TestCreateBackupMissingDatabase(t *testing.T) {
	mgr, _ := newTestManager(t, filepath.Join(t.TempDir(), "absent.db"))
	if _, err := mgr.CreateBackup(); err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("expected missing database error, got %v", err)
	}
}

func TestBackupNameCollision(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr, _ := newTestManager(t, dbPath)

	first, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("first CreateBackup failed: %v", err)
	}
	second, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("second CreateBackup failed: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct backup names")
	}
	if !strings.HasSuffix(second, "-1.db") {
		t.Errorf("expected counter suffix, got %s", filepath.Base(second))
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 2 || backups[0].Path != second {
		t.Errorf("expected the counter backup listed first, got %+v", backups)
	}
}

func TestBackupRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr, clock := newTestManager(t, dbPath)

	for i := 0; i < constants.MaxBackups+5; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
		clock.Advance(time.Minute)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Errorf("expected %d backups after rotation, got %d", constants.MaxBackups, len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups are not sorted correctly at %d", i)
		}
	}
	if oldest := backups[len(backups)-1].Timestamp; oldest.Minute() != 35 {
		t.Errorf("expected the five oldest backups pruned, oldest is %v", oldest)
	}
}

func TestListBackupsIgnoresForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr, _ := newTestManager(t, dbPath)

	if backups, err := mgr.ListBackups(); err != nil || len(backups) != 0 {
		t.Fatalf("expected no backups before the directory exists, got %v, %v", backups, err)
	}

	if err := os.MkdirAll(mgr.GetBackupDir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "habitpet-garbage.db", "habitpet-20240610-093000-x.db"} {
		if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected foreign files to be ignored, got %+v", backups)
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr, clock := newTestManager(t, dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("DELETE FROM habits"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	clock.Advance(time.Minute)
	previous, err := mgr.RestoreBackup(backupPath)
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	if count := countHabits(t, dbPath); count != 2 {
		t.Errorf("expected 2 rows after restore, got %d", count)
	}
	if previous == "" || countHabits(t, previous) != 0 {
		t.Errorf("expected a pre-restore backup of the emptied database, got %q", previous)
	}
	if _, err := os.Stat(dbPath + ".restore.tmp"); !os.IsNotExist(err) {
		t.Error("temporary restore file should be gone")
	}
}

func TestRestoreRejectsInvalidBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr, _ := newTestManager(t, dbPath)

	bogus := filepath.Join(t.TempDir(), "bogus.db")
	if err := os.WriteFile(bogus, []byte("not a database at all, just some text"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := mgr.RestoreBackup(bogus); err == nil {
		t.Error("expected invalid backup to be rejected")
	}
	if _, err := mgr.RestoreBackup(filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Error("expected missing backup to be rejected")
	}
	if count := countHabits(t, dbPath); count != 2 {
		t.Errorf("database should be untouched, got %d rows", count)
	}
}

func TestJSONBackupAndRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habitpet.json")
	store := storage.NewJSONStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := store.SaveHabits([]models.Habit{{ID: "h1", Title: "Water", TargetCount: 3}}); err != nil {
		t.Fatalf("SaveHabits failed: %v", err)
	}

	mgr, clock := newTestManager(t, path)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if !strings.HasSuffix(backupPath, ".json") {
		t.Errorf("expected a .json backup, got %s", backupPath)
	}

	if err := store.SaveHabits([]models.Habit{}); err != nil {
		t.Fatalf("SaveHabits failed: %v", err)
	}
	clock.Advance(time.Minute)
	if _, err := mgr.RestoreBackup(backupPath); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	restored := storage.NewJSONStore(path)
	if err := restored.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	habits, err := restored.GetHabits()
	if err != nil {
		t.Fatalf("GetHabits failed: %v", err)
	}
	if len(habits) != 1 || habits[0].Title != "Water" {
		t.Errorf("unexpected habits after restore: %+v", habits)
	}
}

func TestResolvePath(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr, _ := newTestManager(t, dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	got, err := mgr.ResolvePath(filepath.Base(backupPath))
	if err != nil || got != backupPath {
		t.Errorf("ResolvePath(name) = %q, %v", got, err)
	}
	if got, err := mgr.ResolvePath(backupPath); err != nil || got != backupPath {
		t.Errorf("ResolvePath(abs) = %q, %v", got, err)
	}
	if _, err := mgr.ResolvePath("habitpet-19990101-000000.db"); err == nil {
		t.Error("expected unknown backup to fail")
	}
}
