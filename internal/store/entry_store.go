package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrQuotaExceeded is returned by Put when the write would push the total
// stored size past the configured quota. The previous value is kept.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// EntryStore is a small namespaced key/value store with a byte quota shared by
// all entries.
type EntryStore struct {
	db    *sql.DB
	quota int64
}

// NewEntryStore returns a store limited to quota bytes; zero or less means
// unlimited.
func NewEntryStore(db *sql.DB, quota int64) *EntryStore {
	return &EntryStore{db: db, quota: quota}
}

// Get returns nil, nil when the namespace has never been written.
func (s *EntryStore) Get(ctx context.Context, namespace string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM entries WHERE namespace = ?`, namespace).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return value, nil
}

func (s *EntryStore) Put(ctx context.Context, namespace string, value []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if s.quota > 0 {
		var others int64
		err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(LENGTH(value)), 0) FROM entries WHERE namespace != ?
		`, namespace).Scan(&others)
		if err != nil {
			return fmt.Errorf("failed to measure usage: %w", err)
		}
		if others+int64(len(value)) > s.quota {
			return fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrQuotaExceeded, len(value), others, s.quota)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO entries (namespace, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(namespace) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, namespace, value)
	if err != nil {
		return fmt.Errorf("failed to put entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entry: %w", err)
	}
	return nil
}
