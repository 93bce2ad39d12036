package postgres

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations is the bun migration set for the PostgreSQL schema. Each
// migration lives in a file named <version>_<name>.go.
var Migrations = migrate.NewMigrations()

// execAll runs statements in order on the migration connection.
func execAll(ctx context.Context, db *bun.DB, statements ...string) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
