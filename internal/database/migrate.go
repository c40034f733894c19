package database

import (
	"context"
	"database/sql"
	_ "embed"
	"strings"

	"github.com/pkg/errors"
)

//go:embed schema.sql
var schema string

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements(schema) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "migrate statement %d", i+1)
		}
	}
	return nil
}

// statements splits a script on ';'. The schema carries no string
// literals containing semicolons.
func statements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
