package blob

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"carevia/internal/adapters/storage"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// SQLiteStore implements Store using the kv_blob table.
type SQLiteStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Get retrieves a blob by name.
// PRE: name is non-empty
// POST: Returns (value, true, nil) if present, ("", false, nil) if absent
func (s *SQLiteStore) Get(ctx context.Context, name string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_blob WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Put inserts or replaces a blob.
// PRE: name is non-empty
// POST: The blob named name holds value
func (s *SQLiteStore) Put(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_blob (name, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		name, value, s.now().UTC().Format(timeLayout))
	return err
}

// Delete removes a blob by name. Deleting an absent blob is not an error.
// PRE: name is non-empty
// POST: No blob named name exists
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_blob WHERE name = ?`, name)
	return err
}
