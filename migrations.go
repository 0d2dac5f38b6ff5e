// Package arbitrage holds assets shared by the binaries of the module.
package arbitrage

import "embed"

// Migrations contains the goose SQL migrations of the application tables.
//
//go:embed migrations/*.sql
var Migrations embed.FS
