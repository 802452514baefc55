// Package registrardb holds all the migrations for the registrar database
package registrardb

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the collection of all migrations for the registrar database
var Migrations = migrate.NewMigrations()
