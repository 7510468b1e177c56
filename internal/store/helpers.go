package store

import (
	"database/sql"
	"strings"
)

// DefaultTimezone is applied to families created without an explicit one.
const DefaultTimezone = "Asia/Jerusalem"

// DetectDSNType reports "postgres" for PostgreSQL connection strings
// (URL or key=value form) and "sqlite" for everything else; bare file
// paths are assumed to be SQLite.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	for _, key := range []string{"host=", "user=", "dbname=", "sslmode="} {
		if strings.Contains(dsn, key) {
			return "postgres"
		}
	}
	return "sqlite"
}

// nullString maps an empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
