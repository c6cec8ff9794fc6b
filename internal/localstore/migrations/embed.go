package migrations

import "embed"

// FS contains the embedded SQLite migrations for the client's local store.
//
//go:embed *.sql
var FS embed.FS
