package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DefaultKVTable holds persisted notes.
const DefaultKVTable = "kv_store"

// InitSchema creates the key-value table used for notes persistence.
func (db *PostgresDB) InitSchema(ctx context.Context, table string) error {
	if !isValidTableName(table) {
		return fmt.Errorf("invalid table name %q", table)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`, pgx.Identifier{table}.Sanitize())
	if _, err := db.Pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create %s table: %w", table, err)
	}

	return nil
}
