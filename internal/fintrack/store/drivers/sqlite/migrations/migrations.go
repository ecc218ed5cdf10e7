// Package migrations embeds the sqlite schema for the local state file.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
