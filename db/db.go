// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Supported database backends. The values double as database/sql driver
// names: modernc.org/sqlite registers "sqlite", lib/pq registers "postgres".
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Open opens a handle for the configured backend. The matching driver must
// be blank-imported by the caller.
func Open(dbType, url string) (*sql.DB, error) {
	switch dbType {
	case TypeSQLite, TypePostgres:
	default:
		return nil, fmt.Errorf("unsupported database type %q (use %q or %q)", dbType, TypeSQLite, TypePostgres)
	}

	conn, err := sql.Open(dbType, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dbType, err)
	}
	return conn, nil
}

// IsUniqueViolation reports whether err is a uniqueness-constraint failure
// from either supported driver. sqlite reports
// "UNIQUE constraint failed: <columns>"; pq reports
// `pq: duplicate key value violates unique constraint "<name>"`.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
