// Package migrations embeds the Postgres schema applied with sql-migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
