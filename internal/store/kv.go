package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Entry is a stored value with its bookkeeping columns.
type Entry struct {
	Key       string
	Value     []byte
	Revision  int64
	UpdatedAt int64 // unix milliseconds
}

// Get returns the value stored under key.
// found is false (with a nil error) when the key has never been written.
func (s *Store) Get(ctx context.Context, key string) (value []byte, found bool, err error) {
	var text string
	err = s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(text), true, nil
}

// Set replaces the value stored under key, creating it if needed.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, revision, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			revision = kv.revision + 1,
			updated_at = excluded.updated_at
	`, key, string(value), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Entries returns every stored entry ordered by key.
// Returns an empty slice (not nil) for an empty store.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value, revision, updated_at
		FROM kv
		ORDER BY key COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var text string
		if err := rows.Scan(&e.Key, &text, &e.Revision, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Value = []byte(text)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}
