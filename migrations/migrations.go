// Package migrations embeds the SQL schema migrations for every supported database.
package migrations

import "embed"

// FS holds one directory of golang-migrate files per database type.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
