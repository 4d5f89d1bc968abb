package migration

import (
	"cmp"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Driver identifies the SQL dialect the runner issues its bookkeeping queries in
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

// ErrSchemaTooNew is returned when the database was written by a newer habitpet
var ErrSchemaTooNew = errors.New("database schema is newer than this version of habitpet supports")

// Migration is one numbered NNN_name.sql file
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Plan is the difference between the applied schema and the shipped files
type Plan struct {
	Current int
	Latest  int
	Pending []Migration
}

// UpToDate reports whether nothing is left to apply
func (p Plan) UpToDate() bool {
	return len(p.Pending) == 0
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// Runner applies the migrations found in an fs.FS to one database
type Runner struct {
	db     *sql.DB
	fs     fs.FS
	driver Driver
}

// NewRunner creates a new migration runner for the given driver
func NewRunner(db *sql.DB, migrationFS fs.FS, driver Driver) (*Runner, error) {
	switch driver {
	case DriverSQLite, DriverPostgres, DriverMySQL:
	default:
		return nil, fmt.Errorf("unsupported migration driver %q", driver)
	}
	return &Runner{db: db, fs: migrationFS, driver: driver}, nil
}

func (r *Runner) insertVersionSQL() string {
	if r.driver == DriverPostgres {
		return "INSERT INTO schema_version (version) VALUES ($1)"
	}
	return "INSERT INTO schema_version (version) VALUES (?)"
}

// EnsureSchemaVersionTable creates the schema_version table if it doesn't exist
func (r *Runner) EnsureSchemaVersionTable() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`)
	return err
}

// GetCurrentVersion returns the applied schema version, 0 for a fresh database
func (r *Runner) GetCurrentVersion() (int, error) {
	if err := r.EnsureSchemaVersionTable(); err != nil {
		return 0, fmt.Errorf("failed to ensure schema_version table: %w", err)
	}

	var version int
	err := r.db.QueryRow("SELECT version FROM schema_version").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// SetVersion overwrites the recorded schema version
func (r *Runner) SetVersion(version int) error {
	if err := r.EnsureSchemaVersionTable(); err != nil {
		return fmt.Errorf("failed to ensure schema_version table: %w", err)
	}
	return r.recordVersion(r.db, version)
}

func (r *Runner) recordVersion(ex execer, version int) error {
	if _, err := ex.Exec("DELETE FROM schema_version"); err != nil {
		return fmt.Errorf("failed to clear schema version: %w", err)
	}
	if _, err := ex.Exec(r.insertVersionSQL(), version); err != nil {
		return fmt.Errorf("failed to record schema version %d: %w", version, err)
	}
	return nil
}

// parseFilename splits "002_history.sql" into 2 and "history"
func parseFilename(name string) (int, string, error) {
	prefix, rest, ok := strings.Cut(strings.TrimSuffix(name, ".sql"), "_")
	if !ok || rest == "" {
		return 0, "", fmt.Errorf("invalid migration filename format: %s (expected NNN_name.sql)", name)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, "", fmt.Errorf("invalid version number in filename %s: %w", name, err)
	}
	if version < 1 {
		return 0, "", fmt.Errorf("invalid version number in filename %s: version must be at least 1", name)
	}
	return version, rest, nil
}

// ReadMigrationFiles returns every .sql file in the root of the FS ordered by version
func (r *Runner) ReadMigrationFiles() ([]Migration, error) {
	entries, err := fs.ReadDir(r.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var out []Migration
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		version, name, err := parseFilename(entry.Name())
		if err != nil {
			return nil, err
		}
		body, err := fs.ReadFile(r.fs, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}
		out = append(out, Migration{Version: version, Name: name, SQL: string(body)})
	}

	slices.SortFunc(out, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })
	for i := 1; i < len(out); i++ {
		if out[i].Version == out[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d (%s, %s)", out[i].Version, out[i-1].Name, out[i].Name)
		}
	}

	return out, nil
}

// GetLatestVersion returns the highest migration version available
func (r *Runner) GetLatestVersion() (int, error) {
	files, err := r.ReadMigrationFiles()
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, nil
	}
	return files[len(files)-1].Version, nil
}

// Plan compares the database with the shipped files. A database ahead of
// the files yields ErrSchemaTooNew.
func (r *Runner) Plan() (Plan, error) {
	current, err := r.GetCurrentVersion()
	if err != nil {
		return Plan{}, err
	}
	files, err := r.ReadMigrationFiles()
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{Current: current}
	if len(files) > 0 {
		plan.Latest = files[len(files)-1].Version
	}
	if current > plan.Latest {
		return plan, fmt.Errorf("%w: database is at version %d, newest known is %d (please upgrade)", ErrSchemaTooNew, current, plan.Latest)
	}
	for _, m := range files {
		if m.Version > current {
			plan.Pending = append(plan.Pending, m)
		}
	}
	return plan, nil
}

// ApplyMigrations runs every pending migration, each in its own transaction
// together with the version bump, and returns how many ran. logFn may be nil.
func (r *Runner) ApplyMigrations(logFn func(string)) (int, error) {
	say := func(format string, args ...any) {
		if logFn != nil {
			logFn(fmt.Sprintf(format, args...))
		}
	}

	plan, err := r.Plan()
	if err != nil {
		return 0, err
	}
	if plan.Latest == 0 {
		say("No migration files found")
		return 0, nil
	}
	if plan.UpToDate() {
		say("Database schema is up to date (version %d)", plan.Current)
		return 0, nil
	}

	say("Upgrading schema from version %d to %d (%d pending)", plan.Current, plan.Latest, len(plan.Pending))
	started := time.Now()

	for i, m := range plan.Pending {
		say("  %03d %s", m.Version, m.Name)
		if err := r.applyOne(m); err != nil {
			return i, err
		}
	}

	say("Applied %d migration(s) in %v", len(plan.Pending), time.Since(started).Round(time.Millisecond))
	return len(plan.Pending), nil
}

func (r *Runner) applyOne(m Migration) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
	}
	if _, err := tx.Exec(m.SQL); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
	}
	if err := r.recordVersion(tx, m.Version); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration %d: %w", m.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}
	return nil
}

// ValidateVersion fails when the database is newer than the shipped files
func (r *Runner) ValidateVersion() error {
	_, err := r.Plan()
	return err
}
