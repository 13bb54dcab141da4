package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the mind map tables if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	createMindmaps := `
		CREATE TABLE IF NOT EXISTS ` + tables.Mindmaps + ` (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			data JSONB NOT NULL,
			generation JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createMindmaps); err != nil {
		return fmt.Errorf("create %s: %w", tables.Mindmaps, err)
	}

	createIndex := `
		CREATE INDEX IF NOT EXISTS ` + tables.Mindmaps + `_user_created_idx
		ON ` + tables.Mindmaps + ` (user_id, created_at DESC)
	`
	if _, err := pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("create index on %s: %w", tables.Mindmaps, err)
	}

	return nil
}

// DropSchema drops every table owned by this service for the current prefix.
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+tables.Mindmaps+" CASCADE"); err != nil {
		return fmt.Errorf("drop %s: %w", tables.Mindmaps, err)
	}
	return nil
}

// ClearData deletes all mind maps but keeps the schema. Returns the number of rows removed.
func ClearData(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) (int64, error) {
	tag, err := pool.Exec(ctx, "DELETE FROM "+tables.Mindmaps)
	if err != nil {
		return 0, fmt.Errorf("clear %s: %w", tables.Mindmaps, err)
	}
	return tag.RowsAffected(), nil
}
