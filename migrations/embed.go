// Package migrations embeds the SQL schema migrations applied at startup.
package migrations

import "embed"

// FS contains all migration files, embedded into the binary so the
// database can be initialised without any external files.
//
//go:embed *.sql
var FS embed.FS
