// Package migrations embeds the schema migrations for the document store.
package migrations

import "embed"

// FS holds the versioned .sql files applied in order at startup.
//
//go:embed *.sql
var FS embed.FS
