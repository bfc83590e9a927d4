package migrations

import "embed"

// FS contains embedded SQLite migrations for plan storage.
//
//go:embed *.sql
var FS embed.FS
