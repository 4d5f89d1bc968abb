// Package migrations embeds the versioned SQL schema for every supported database.
package migrations

import "embed"

// FS holds one sub-directory of NNN_name.sql files per dialect.
//
//go:embed sqlite/*.sql postgres/*.sql mysql/*.sql
var FS embed.FS
