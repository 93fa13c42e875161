// Package db embeds the SQL migrations so the server binary can apply them.
package db

import "embed"

// Migrations holds migrations/*.up.sql.
//
//go:embed migrations/*.up.sql
var Migrations embed.FS

// MigrationsGlob matches the forward migrations inside Migrations.
const MigrationsGlob = "migrations/*_*.up.sql"
