package sqlstore

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/julianstephens/habitpet/internal/migration"
)

// MySQLDialect implements Dialect for MySQL and MariaDB
type MySQLDialect struct{}

func (MySQLDialect) Name() string { return "MySQL" }

func (MySQLDialect) DriverName() string { return "mysql" }

func (MySQLDialect) MigrationDriver() migration.Driver { return migration.DriverMySQL }

// DSN accepts either the driver's native form (user@tcp(host:3306)/db) or a
// mysql://user@host:3306/db URL. Migration files hold several statements per
// file, so multiStatements is always switched on.
func (MySQLDialect) DSN(connStr string) (string, error) {
	cfg, err := parseMySQL(connStr)
	if err != nil {
		return "", err
	}
	cfg.MultiStatements = true
	return cfg.FormatDSN(), nil
}

func (MySQLDialect) RewriteQuery(query string) string {
	return query
}

func (MySQLDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

func (MySQLDialect) MigrationsSubdir() string { return "mysql" }

func isMySQLURL(connStr string) bool {
	return strings.HasPrefix(connStr, "mysql://")
}

func parseMySQL(connStr string) (*mysql.Config, error) {
	if strings.TrimSpace(connStr) == "" {
		return nil, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	rest := strings.TrimPrefix(connStr, "mysql://")
	if rest != connStr && !strings.Contains(rest, "(") {
		u, err := url.Parse(connStr)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
		}
		if u.Host == "" {
			return nil, fmt.Errorf("%w: connection URL is missing a host", ErrInvalidConnectionString)
		}
		cfg := mysql.NewConfig()
		cfg.Net = "tcp"
		cfg.Addr = u.Host
		cfg.DBName = strings.TrimPrefix(u.Path, "/")
		if u.User != nil {
			cfg.User = u.User.Username()
			cfg.Passwd, _ = u.User.Password()
		}
		if len(u.Query()) > 0 {
			cfg.Params = map[string]string{}
			for k, v := range u.Query() {
				cfg.Params[k] = v[0]
			}
		}
		return cfg, nil
	}

	cfg, err := mysql.ParseDSN(rest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}
	return cfg, nil
}

// ValidateMySQLConnString checks that connStr parses and carries no password
func ValidateMySQLConnString(connStr string) error {
	cfg, err := parseMySQL(connStr)
	if err != nil {
		return err
	}
	if cfg.Passwd != "" {
		return ErrEmbeddedCredentials
	}
	if cfg.DBName == "" {
		return fmt.Errorf("%w: database name is required", ErrInvalidConnectionString)
	}
	return nil
}
