// Package sqlstore persists the habit tracker state in a relational database.
// One Store implementation serves SQLite, PostgreSQL and MySQL; the differences
// between them live behind Dialect.
package sqlstore

import (
	"database/sql"
	"errors"
	"regexp"
	"strconv"

	"github.com/julianstephens/habitpet/internal/migration"
)

var (
	ErrInvalidConnectionString = errors.New("invalid connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// Dialect captures what differs between the supported databases
type Dialect interface {
	// Name is the user-facing name of the database
	Name() string

	// DriverName returns the driver name for sql.Open
	DriverName() string

	// MigrationDriver selects the placeholder style of the migration runner
	MigrationDriver() migration.Driver

	// DSN converts the user supplied connection string into what the driver expects
	DSN(connStr string) (string, error)

	// RewriteQuery converts ? placeholders if needed (e.g. to $1 for postgres)
	RewriteQuery(query string) string

	// ConfigureConnection applies pool limits and session settings after sql.Open
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the directory under migrations.FS holding this dialect's schema
	MigrationsSubdir() string
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
// Queries in this package never contain a literal question mark.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}
