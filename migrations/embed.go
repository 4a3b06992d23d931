// Package migrations embeds the SQLite schema.
package migrations

import "embed"

// FS holds the *.up.sql files applied in name order at startup.
//
//go:embed *.sql
var FS embed.FS
