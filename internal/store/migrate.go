package store

import (
	"context"
	"fmt"
)

// CurrentSchemaVersion is the current database schema version.
const CurrentSchemaVersion = 1

// migrate runs database migrations.
func (s *Store) migrate(ctx context.Context) error {
	return s.createNameCacheTable(ctx)
}

func (s *Store) createNameCacheTable(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS name_cache (
		uuid_short     TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		resolved_at    TEXT NOT NULL,
		schema_version INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_name_cache_resolved_at ON name_cache(resolved_at);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create name_cache table: %w", err)
	}
	return nil
}
