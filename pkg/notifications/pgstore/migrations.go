package pgstore

import "embed"

// Migrations holds the goose migrations for the notifications table.
// Pass it to pg.Migrate with MigrationsPath "migrations".
//
//go:embed migrations/*.sql
var Migrations embed.FS
