package sqlstore

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitpet/internal/migration"
)

// SQLiteDialect implements Dialect for a local SQLite file
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string { return "SQLite" }

func (SQLiteDialect) DriverName() string { return "sqlite" }

func (SQLiteDialect) MigrationDriver() migration.Driver { return migration.DriverSQLite }

// DSN appends the pragmas every connection needs. Pragmas set through Exec
// would only reach whichever pooled connection happened to run them.
func (SQLiteDialect) DSN(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidConnectionString
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", nil
}

func (SQLiteDialect) RewriteQuery(query string) string {
	return query
}

func (SQLiteDialect) ConfigureConnection(db *sql.DB) error {
	// A single writer connection keeps the engine's background writes from
	// tripping over each other with SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return nil
}

func (SQLiteDialect) MigrationsSubdir() string { return "sqlite" }
