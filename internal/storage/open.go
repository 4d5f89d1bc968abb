package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/habitpet/internal/constants"
	"github.com/julianstephens/habitpet/internal/keyring"
	"github.com/julianstephens/habitpet/internal/logger"
	"github.com/julianstephens/habitpet/internal/storage/sqlstore"
)

var (
	_ Provider    = (*JSONStore)(nil)
	_ AtomicSaver = (*JSONStore)(nil)
	_ Provider    = (*sqlstore.Store)(nil)
	_ AtomicSaver = (*sqlstore.Store)(nil)
)

// Kind names a storage backend
type Kind string

const (
	KindJSON     Kind = "json"
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
	KindMySQL    Kind = "mysql"
)

// Detect classifies a connection string or path
func Detect(connStr string) Kind {
	lower := strings.ToLower(strings.TrimSpace(connStr))
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"),
		strings.Contains(lower, "host="):
		return KindPostgres
	case strings.HasPrefix(lower, "mysql://"), strings.Contains(lower, "@tcp("), strings.Contains(lower, "@unix("):
		return KindMySQL
	case strings.HasSuffix(lower, ".json"):
		return KindJSON
	default:
		return KindSQLite
	}
}

// HasEmbeddedCredentials reports whether a network connection string
// carries a password. Local paths never do.
func HasEmbeddedCredentials(connStr string) bool {
	var err error
	switch Detect(connStr) {
	case KindPostgres:
		err = sqlstore.ValidatePostgresConnString(connStr)
	case KindMySQL:
		err = sqlstore.ValidateMySQLConnString(connStr)
	default:
		return false
	}
	return errors.Is(err, sqlstore.ErrEmbeddedCredentials)
}

// Open builds the provider for connStr without connecting. An empty connStr
// falls back to the environment, then the OS keyring, then defaultPath.
// Connection strings given explicitly must not embed a password; the
// environment and keyring are trusted to hold one.
func Open(connStr, defaultPath string) (Provider, error) {
	if strings.TrimSpace(connStr) == "" {
		resolved, source, err := keyring.ResolveConnectionString()
		switch {
		case err == nil:
			logger.Debug("Using stored connection string", "source", source)
			connStr = resolved
		case errors.Is(err, keyring.ErrNotFound):
			connStr = defaultPath
		default:
			return nil, err
		}
	} else if HasEmbeddedCredentials(connStr) {
		return nil, fmt.Errorf("%w: store it with 'habitpet keyring set' or export %s instead", sqlstore.ErrEmbeddedCredentials, constants.EnvDBConnection)
	}

	switch kind := Detect(connStr); kind {
	case KindPostgres:
		return sqlstore.NewPostgres(connStr), nil
	case KindMySQL:
		return sqlstore.NewMySQL(connStr), nil
	case KindJSON:
		return NewJSONStore(expandPath(connStr)), nil
	default:
		return sqlstore.NewSQLite(expandPath(connStr)), nil
	}
}

// expandPath resolves a leading ~ to the user's home directory
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
