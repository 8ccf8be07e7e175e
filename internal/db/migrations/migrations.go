// Package migrations embeds the ordered SQLite schema files for the problem store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
