package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/julianstephens/habitpet/internal/constants"
)

// EnvPrefix prefixes every environment override, e.g. HABITPET_DEBUG
const EnvPrefix = "HABITPET"

// Config is the top-level habitpet configuration.
type Config struct {
	// Database is a connection string or file path. Empty defers to the
	// keyring and then to the default SQLite file.
	Database          string `mapstructure:"database"`
	Debug             bool   `mapstructure:"debug"`
	LogJSON           bool   `mapstructure:"log_json"`
	RetentionDays     int    `mapstructure:"retention_days"`
	BackupBeforeReset bool   `mapstructure:"backup_before_reset"`

	// File is the config file that was read, empty when none was found
	File string `mapstructure:"-"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. Environment variables
// with the HABITPET_ prefix override file values.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("database", "")
	v.SetDefault("debug", false)
	v.SetDefault("log_json", false)
	v.SetDefault("retention_days", DefaultRetentionDays)
	v.SetDefault("backup_before_reset", DefaultBackupBeforeReset)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(ConfigDir())
		v.SetConfigName(strings.TrimSuffix(DefaultConfigFile, filepath.Ext(DefaultConfigFile)))
		v.SetConfigType("yaml")
	}

	// Missing file is not an error
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if _, err := os.Stat(cfg.File); cfg.File != "" && err != nil {
		cfg.File = ""
	}

	if cfg.RetentionDays < 0 {
		return nil, fmt.Errorf("retention_days must not be negative, got %d", cfg.RetentionDays)
	}
	if cfg.Database != "" && !strings.Contains(cfg.Database, "://") {
		cfg.Database = expandPath(cfg.Database)
	}

	return &cfg, nil
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(constants.DefaultConfigDir)
}

// DBPath returns the full path to the default SQLite database.
func DBPath() string {
	return expandPath(constants.DefaultConfigPath)
}
