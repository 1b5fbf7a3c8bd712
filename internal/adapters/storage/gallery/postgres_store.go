package gallery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"carevia/internal/adapters/storage"
	"carevia/internal/adapters/storage/record"
	domain "carevia/internal/domain/gallery"
)

// PostgresStore implements record.Store for gallery items using the remote gallery table.
type PostgresStore struct {
	db storage.SQLDB
}

// Compile-time check that PostgresStore satisfies record.Store.
var _ record.Store[domain.Item] = (*PostgresStore)(nil)

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db storage.SQLDB) *PostgresStore {
	return &PostgresStore{db: db}
}

const itemColumns = `id, title, description, category, image_url, image_key, content_type, created_at`

// List returns all gallery items.
// POST: Returns items ordered by id DESC (newest first)
func (s *PostgresStore) List(ctx context.Context) ([]domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM gallery ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gallery: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Get retrieves a gallery item by ID.
// PRE: id is non-empty
// POST: Returns the item or record.ErrNotFound
func (s *PostgresStore) Get(ctx context.Context, id string) (domain.Item, error) {
	n, ok := storage.ParseRowID(id)
	if !ok {
		return domain.Item{}, record.ErrNotFound
	}
	item, err := scanItem(s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM gallery WHERE id = $1`, n))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, record.ErrNotFound
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("get gallery %s: %w", id, err)
	}
	return item, nil
}

// Insert adds a gallery item. The table assigns id and created_at.
// PRE: item has been validated
// POST: Returns the item with server-assigned ID and CreatedAt
func (s *PostgresStore) Insert(ctx context.Context, item domain.Item) (domain.Item, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO gallery (title, description, category, image_url, image_key, content_type)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		item.Title, item.Description, item.Category,
		item.Media.Src, item.Media.ObjectKey, item.Media.ContentType,
	).Scan(&n, &item.CreatedAt)
	if err != nil {
		return domain.Item{}, fmt.Errorf("insert gallery: %w", err)
	}
	item.ID = storage.FormatRowID(n)
	return item, nil
}

// Update replaces the editable columns of a gallery item.
// PRE: item has been validated
// POST: Returns record.ErrNotFound if no row has item.ID
func (s *PostgresStore) Update(ctx context.Context, item domain.Item) error {
	n, ok := storage.ParseRowID(item.ID)
	if !ok {
		return record.ErrNotFound
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE gallery SET title = $1, description = $2, category = $3,
		   image_url = $4, image_key = $5, content_type = $6
		 WHERE id = $7`,
		item.Title, item.Description, item.Category,
		item.Media.Src, item.Media.ObjectKey, item.Media.ContentType, n)
	if err != nil {
		return fmt.Errorf("update gallery %s: %w", item.ID, err)
	}
	return requireRow(res)
}

// Delete removes a gallery item by ID.
// POST: Returns record.ErrNotFound if no row has id
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	n, ok := storage.ParseRowID(id)
	if !ok {
		return record.ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM gallery WHERE id = $1`, n)
	if err != nil {
		return fmt.Errorf("delete gallery %s: %w", id, err)
	}
	return requireRow(res)
}

// Clear removes every gallery item.
func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM gallery`); err != nil {
		return fmt.Errorf("clear gallery: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (domain.Item, error) {
	var item domain.Item
	var n int64
	var url, key, contentType string
	if err := row.Scan(&n, &item.Title, &item.Description, &item.Category,
		&url, &key, &contentType, &item.CreatedAt); err != nil {
		return domain.Item{}, err
	}
	item.ID = storage.FormatRowID(n)
	item.Media = storage.ReferenceFromColumns(url, key, contentType)
	return item, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return record.ErrNotFound
	}
	return nil
}
