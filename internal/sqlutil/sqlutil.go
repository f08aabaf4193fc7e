// Package sqlutil provides small helpers for hand-written SQL.
package sqlutil

import (
	"database/sql"
	"strings"
)

// EscapeLike escapes LIKE wildcards in a literal string so it can be embedded
// in a pattern. Use with `LIKE ? ESCAPE '\'`.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ScanRows scans all rows into a slice using the provided scanner.
func ScanRows[T any](rows *sql.Rows, scan func(*sql.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
