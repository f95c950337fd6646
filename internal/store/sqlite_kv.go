package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type SQLiteKV struct {
	db *sql.DB
}

func NewSQLiteKV(db *sql.DB) *SQLiteKV {
	return &SQLiteKV{db: db}
}

func (s *SQLiteKV) Get(ctx context.Context, key string) (*Entry, error) {
	entry := &Entry{Key: key}
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value, version FROM kv_entries WHERE key = ?
	`, key).Scan(&value, &entry.Version)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	entry.Value = []byte(value)
	return entry, nil
}

func (s *SQLiteKV) Put(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error) {
	var (
		result sql.Result
		err    error
	)
	if expectedVersion == 0 {
		result, err = s.db.ExecContext(ctx, `
			INSERT INTO kv_entries (key, value, version) VALUES (?, ?, 1)
			ON CONFLICT(key) DO NOTHING
		`, key, string(value))
	} else {
		result, err = s.db.ExecContext(ctx, `
			UPDATE kv_entries SET value = ?, version = version + 1, updated_at = datetime('now')
			WHERE key = ? AND version = ?
		`, string(value), key, expectedVersion)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to put entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return 0, ErrVersionConflict
	}

	return expectedVersion + 1, nil
}
