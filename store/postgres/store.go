// Package postgres opens a PostgreSQL-backed receivables store.
package postgres

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/xraph/receivables/store/bunstore"
)

// Dialect describes PostgreSQL to the shared bun store. Concurrent
// payments serialize on charge row locks taken in ascending ID order.
var Dialect = &bunstore.Dialect{
	Name:       "postgres",
	Migrations: Migrations,
	Classify:   classify,
	RowLocks:   true,
	TxOptions:  &sql.TxOptions{Isolation: sql.LevelReadCommitted},
}

// Options tune the connection pool.
type Options struct {
	MaxOpenConns int
	MaxIdleConns int
}

// IsDSN reports whether location is a PostgreSQL connection string.
func IsDSN(location string) bool {
	return strings.HasPrefix(location, "postgres://") ||
		strings.HasPrefix(location, "postgresql://") ||
		strings.HasPrefix(location, "unix://")
}

// Open connects to the database at dsn. Setting BUNDEBUG=1 logs failed
// queries and BUNDEBUG=2 logs all of them.
func Open(dsn string, opts Options) *bunstore.Store {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithEnabled(false),
		bundebug.FromEnv("BUNDEBUG"),
	))
	return New(db)
}

// New wraps an already configured bun database.
func New(db *bun.DB) *bunstore.Store {
	return bunstore.New(db, Dialect)
}

func classify(err error) (bunstore.Violation, string) {
	var pgErr pgdriver.Error
	if !errors.As(err, &pgErr) {
		return bunstore.NoViolation, ""
	}
	switch pgErr.Field('C') {
	case "23505":
		if name := pgErr.Field('n'); strings.HasSuffix(name, "_pkey") {
			return bunstore.PrimaryKeyViolation, name
		}
		return bunstore.UniqueViolation, pgErr.Field('n')
	case "23503":
		return bunstore.ForeignKeyViolation, pgErr.Field('n')
	default:
		return bunstore.NoViolation, ""
	}
}
