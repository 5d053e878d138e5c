package postgres

import "embed"

// MigrationsFS embeds the goose migration scripts so the server binary
// can migrate its own schema without a copy of the source tree.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

// MigrationsDir is the path of the migration scripts inside MigrationsFS
// and relative to this package on disk.
const MigrationsDir = "migrations"
