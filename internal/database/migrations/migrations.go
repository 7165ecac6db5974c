// Package migrations registers the database schema migrations run on
// startup.
package migrations

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations holds all registered migrations.
var Migrations = migrate.NewMigrations()
