// Package migrations embeds the SQL migration files so they ship inside
// the binary.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
