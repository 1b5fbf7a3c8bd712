package contact

import (
	"context"
	"fmt"

	"carevia/internal/adapters/storage"
	"carevia/internal/adapters/storage/record"
	domain "carevia/internal/domain/contact"
)

// PostgresStore implements Store using the remote contacts table.
type PostgresStore struct {
	db storage.SQLDB
}

// Compile-time checks for both backends.
var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*record.LocalStore[domain.Message])(nil)
)

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db storage.SQLDB) *PostgresStore {
	return &PostgresStore{db: db}
}

// List returns all submissions.
// POST: Returns messages ordered by id DESC (newest first)
func (s *PostgresStore) List(ctx context.Context) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, phone, subject, message, created_at FROM contacts ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	msgs := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		var n int64
		if err := rows.Scan(&n, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		m.ID = storage.FormatRowID(n)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Insert stores a submission. The table assigns id and created_at.
// PRE: m has been validated
// POST: Returns m with server-assigned ID and CreatedAt
func (s *PostgresStore) Insert(ctx context.Context, m domain.Message) (domain.Message, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO contacts (name, email, phone, subject, message)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		m.Name, m.Email, m.Phone, m.Subject, m.Message,
	).Scan(&n, &m.CreatedAt)
	if err != nil {
		return domain.Message{}, fmt.Errorf("insert contact: %w", err)
	}
	m.ID = storage.FormatRowID(n)
	return m, nil
}

// Delete removes a submission by ID.
// POST: Returns record.ErrNotFound if no row has id
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	n, ok := storage.ParseRowID(id)
	if !ok {
		return record.ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, n)
	if err != nil {
		return fmt.Errorf("delete contact %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return record.ErrNotFound
	}
	return nil
}
