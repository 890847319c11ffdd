package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetName returns the cached display name and resolution time for a short
// player key. A cache miss is ("", zero time, nil), not an error.
func (s *Store) GetName(ctx context.Context, uuidShort string) (string, time.Time, error) {
	const query = `SELECT name, resolved_at FROM name_cache WHERE uuid_short = ?`

	var (
		name       string
		resolvedAt string
	)
	err := s.db.QueryRowContext(ctx, query, uuidShort).Scan(&name, &resolvedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, nil
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("get cached name: %w", err)
	}

	ts, err := time.Parse(TimeFormat, resolvedAt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("parse resolved_at: %w", err)
	}
	return name, ts, nil
}

// PutName inserts or replaces the cached name for a short player key.
func (s *Store) PutName(ctx context.Context, uuidShort, name string, resolvedAt time.Time) error {
	const query = `
	INSERT INTO name_cache (uuid_short, name, resolved_at, schema_version)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(uuid_short) DO UPDATE SET name = excluded.name, resolved_at = excluded.resolved_at
	`

	ts := resolvedAt.UTC().Format(TimeFormat)
	if _, err := s.db.ExecContext(ctx, query, uuidShort, name, ts, CurrentSchemaVersion); err != nil {
		return fmt.Errorf("put cached name: %w", err)
	}
	return nil
}

// Prune removes cache entries resolved before the cutoff.
// Returns the number of rows removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM name_cache WHERE resolved_at < ?`

	result, err := s.db.ExecContext(ctx, query, cutoff.UTC().Format(TimeFormat))
	if err != nil {
		return 0, fmt.Errorf("prune name cache: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
