package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/habitpet/internal/logger"
	"github.com/julianstephens/habitpet/internal/migration"
	"github.com/julianstephens/habitpet/internal/models"
	"github.com/julianstephens/habitpet/migrations"
)

// ErrNotOpen is returned when a query runs before Init or Load
var ErrNotOpen = errors.New("database not opened, call Init or Load first")

type Store struct {
	dialect Dialect
	connStr string
	db      *sql.DB
}

// New returns a store for connStr speaking the given dialect
func New(dialect Dialect, connStr string) *Store {
	return &Store{
		dialect: dialect,
		connStr: connStr,
	}
}

func NewSQLite(path string) *Store {
	return New(SQLiteDialect{}, path)
}

func NewPostgres(connStr string) *Store {
	return New(PostgresDialect{}, connStr)
}

func NewMySQL(connStr string) *Store {
	return New(MySQLDialect{}, connStr)
}

func (s *Store) isSQLite() bool {
	_, ok := s.dialect.(SQLiteDialect)
	return ok
}

func (s *Store) open() error {
	if s.db != nil {
		return nil
	}

	dsn, err := s.dialect.DSN(s.connStr)
	if err != nil {
		return err
	}

	db, err := sql.Open(s.dialect.DriverName(), dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		if _, ok := s.dialect.(PostgresDialect); ok && strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := s.dialect.ConfigureConnection(db); err != nil {
		db.Close()
		return err
	}

	s.db = db
	logger.Debug("Opened database", "dialect", s.dialect.Name())
	return nil
}

// Init creates the schema and seeds default settings. Running it against an
// existing database only applies pending migrations.
func (s *Store) Init() error {
	if s.isSQLite() {
		if err := os.MkdirAll(filepath.Dir(s.connStr), 0700); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := s.open(); err != nil {
		return err
	}

	if _, err := s.Migrate(nil); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM settings").Scan(&count); err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	if count == 0 {
		if err := s.SaveSettings(models.DefaultSettings()); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

// Load opens an initialized database and brings its schema up to date
func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if s.isSQLite() {
		if _, err := os.Stat(s.connStr); os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'habitpet init' first")
		}
	}

	if err := s.open(); err != nil {
		return err
	}

	applied, err := s.Migrate(nil)
	if err != nil {
		return err
	}
	if applied > 0 {
		logger.Info("Upgraded database schema", "migrations", applied)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) runner() (*migration.Runner, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	subFS, err := fs.Sub(migrations.FS, s.dialect.MigrationsSubdir())
	if err != nil {
		return nil, fmt.Errorf("failed to access %s migrations: %w", s.dialect.Name(), err)
	}
	return migration.NewRunner(s.db, subFS, s.dialect.MigrationDriver())
}

// Migrate applies pending schema migrations and returns how many ran
func (s *Store) Migrate(logFn func(string)) (int, error) {
	if err := s.open(); err != nil {
		return 0, err
	}
	runner, err := s.runner()
	if err != nil {
		return 0, err
	}
	return runner.ApplyMigrations(logFn)
}

// SchemaVersion reports the applied and the newest available schema version
func (s *Store) SchemaVersion() (current, latest int, err error) {
	runner, err := s.runner()
	if err != nil {
		return 0, 0, err
	}
	if current, err = runner.GetCurrentVersion(); err != nil {
		return 0, 0, err
	}
	if latest, err = runner.GetLatestVersion(); err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}

// GetConfigPath returns the SQLite file path or the connection string as given
func (s *Store) GetConfigPath() string {
	return s.connStr
}

// DB returns the underlying connection, or nil before Init or Load
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

func (s *Store) rebind(query string) string {
	return s.dialect.RewriteQuery(query)
}
