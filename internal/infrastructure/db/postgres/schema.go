package postgres

import (
	"context"
	"database/sql"

	_ "embed"

	"github.com/baechuer/go-api-starter/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the tables and indexes if they do not exist.
// Every statement is idempotent, so it is safe on every start.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}
