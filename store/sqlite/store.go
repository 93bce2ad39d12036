// Package sqlite opens a SQLite-backed receivables store using the pure-Go
// modernc driver.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"
	moderncsqlite "modernc.org/sqlite"

	"github.com/xraph/receivables/store/bunstore"
)

// SQLite result codes used to classify constraint failures.
const (
	codeConstraint           = 19
	codeConstraintPrimaryKey = 1555
	codeConstraintUnique     = 2067
	codeConstraintForeignKey = 787
)

// Dialect describes SQLite to the shared bun store. Every transaction
// begins IMMEDIATE, so writers are serialized and no row locks are needed.
var Dialect = &bunstore.Dialect{
	Name:       "sqlite",
	Migrations: Migrations,
	Classify:   classify,
}

// MemoryLocation opens a private in-memory database.
const MemoryLocation = ":memory:"

// DSN builds a modernc connection string for a file path or
// MemoryLocation with foreign keys, WAL journaling, full sync and
// immediate transactions enabled.
func DSN(location string) string {
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "busy_timeout(5000)")
	params.Add("_pragma", "synchronous(FULL)")
	if location != MemoryLocation {
		params.Add("_pragma", "journal_mode(WAL)")
	}
	params.Set("_txlock", "immediate")

	path := strings.TrimPrefix(location, "file:")
	return fmt.Sprintf("file:%s?%s", path, params.Encode())
}

// Open opens or creates the database at location. An in-memory database
// is pinned to a single connection so every query sees the same data.
func Open(location string) (*bunstore.Store, error) {
	sqldb, err := sql.Open("sqlite", DSN(location))
	if err != nil {
		return nil, fmt.Errorf("receivables/sqlite: open %s: %w", location, err)
	}
	if location == MemoryLocation {
		sqldb.SetMaxOpenConns(1)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithEnabled(false),
		bundebug.FromEnv("BUNDEBUG"),
	))
	return New(db), nil
}

// New wraps an already configured bun database.
func New(db *bun.DB) *bunstore.Store {
	return bunstore.New(db, Dialect)
}

func classify(err error) (bunstore.Violation, string) {
	var sqlErr *moderncsqlite.Error
	if !errors.As(err, &sqlErr) || sqlErr.Code()&0xff != codeConstraint {
		return bunstore.NoViolation, ""
	}
	msg := sqlErr.Error()
	detail := msg
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		detail = msg[i+2:]
	}

	switch {
	case sqlErr.Code() == codeConstraintPrimaryKey:
		return bunstore.PrimaryKeyViolation, detail
	case sqlErr.Code() == codeConstraintUnique, strings.Contains(msg, "UNIQUE constraint failed"):
		if strings.HasSuffix(detail, ".id") {
			return bunstore.PrimaryKeyViolation, detail
		}
		return bunstore.UniqueViolation, detail
	case sqlErr.Code() == codeConstraintForeignKey, strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return bunstore.ForeignKeyViolation, detail
	default:
		return bunstore.NoViolation, ""
	}
}
