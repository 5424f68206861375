// Package db embeds the SQL schema migrations.
package db

import "embed"

// Migrations holds the versioned *.up.sql / *.down.sql files.
//
//go:embed migrations/*.sql
var Migrations embed.FS
