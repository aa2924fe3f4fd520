// Package migrations embeds the SQL files that define the recipient
// registry schema.
package migrations

import "embed"

// FS holds the embedded migration files applied at startup.
//
//go:embed *.sql
var FS embed.FS
