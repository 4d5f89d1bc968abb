// Package config loads habitpet's optional YAML configuration.
package config

import "github.com/julianstephens/habitpet/internal/constants"

// DefaultConfigFile is the filename looked up in the config directory.
const DefaultConfigFile = "config.yaml"

// DefaultRetentionDays is how many days of progress stay resident.
const DefaultRetentionDays = constants.DefaultRetentionDays

// DefaultBackupBeforeReset controls whether reset snapshots the store first.
const DefaultBackupBeforeReset = true
