// Package migrations holds the embedded schema files for both backends
// and applies them in lexical order. Migrations are written to be
// idempotent (CREATE ... IF NOT EXISTS).
package migrations

import "embed"

// PostgresFS embeds all PostgreSQL migration files.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS embeds all ClickHouse migration files.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
