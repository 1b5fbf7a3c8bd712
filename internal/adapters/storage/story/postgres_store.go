package story

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"carevia/internal/adapters/storage"
	"carevia/internal/adapters/storage/record"
	domain "carevia/internal/domain/story"
)

// PostgresStore implements record.Store for stories using the remote stories table.
type PostgresStore struct {
	db storage.SQLDB
}

// Compile-time check that PostgresStore satisfies record.Store.
var _ record.Store[domain.Story] = (*PostgresStore)(nil)

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db storage.SQLDB) *PostgresStore {
	return &PostgresStore{db: db}
}

const storyColumns = `id, title, author, content, image_url, image_key, content_type, story_date, created_at`

// List returns all stories.
// POST: Returns stories ordered by id DESC (newest first)
func (s *PostgresStore) List(ctx context.Context) ([]domain.Story, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+storyColumns+` FROM stories ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	defer rows.Close()

	stories := []domain.Story{}
	for rows.Next() {
		st, err := scanStory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan story: %w", err)
		}
		stories = append(stories, st)
	}
	return stories, rows.Err()
}

// Get retrieves a story by ID.
// POST: Returns the story or record.ErrNotFound
func (s *PostgresStore) Get(ctx context.Context, id string) (domain.Story, error) {
	n, ok := storage.ParseRowID(id)
	if !ok {
		return domain.Story{}, record.ErrNotFound
	}
	st, err := scanStory(s.db.QueryRowContext(ctx, `SELECT `+storyColumns+` FROM stories WHERE id = $1`, n))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Story{}, record.ErrNotFound
	}
	if err != nil {
		return domain.Story{}, fmt.Errorf("get story %s: %w", id, err)
	}
	return st, nil
}

// Insert adds a story. The table assigns id and created_at.
// PRE: story has been validated
// POST: Returns the story with server-assigned ID and CreatedAt
func (s *PostgresStore) Insert(ctx context.Context, st domain.Story) (domain.Story, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO stories (title, author, content, image_url, image_key, content_type, story_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		st.Title, st.Author, st.Content,
		st.Media.Src, st.Media.ObjectKey, st.Media.ContentType, nullableTime(st.Date),
	).Scan(&n, &st.CreatedAt)
	if err != nil {
		return domain.Story{}, fmt.Errorf("insert story: %w", err)
	}
	st.ID = storage.FormatRowID(n)
	return st, nil
}

// Update replaces the editable columns of a story.
// POST: Returns record.ErrNotFound if no row has st.ID
func (s *PostgresStore) Update(ctx context.Context, st domain.Story) error {
	n, ok := storage.ParseRowID(st.ID)
	if !ok {
		return record.ErrNotFound
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE stories SET title = $1, author = $2, content = $3,
		   image_url = $4, image_key = $5, content_type = $6, story_date = $7
		 WHERE id = $8`,
		st.Title, st.Author, st.Content,
		st.Media.Src, st.Media.ObjectKey, st.Media.ContentType, nullableTime(st.Date), n)
	if err != nil {
		return fmt.Errorf("update story %s: %w", st.ID, err)
	}
	return requireRow(res)
}

// Delete removes a story by ID.
// POST: Returns record.ErrNotFound if no row has id
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	n, ok := storage.ParseRowID(id)
	if !ok {
		return record.ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM stories WHERE id = $1`, n)
	if err != nil {
		return fmt.Errorf("delete story %s: %w", id, err)
	}
	return requireRow(res)
}

// Clear removes every story.
func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM stories`); err != nil {
		return fmt.Errorf("clear stories: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStory(row scanner) (domain.Story, error) {
	var st domain.Story
	var n int64
	var url, key, contentType string
	var date sql.NullTime
	if err := row.Scan(&n, &st.Title, &st.Author, &st.Content,
		&url, &key, &contentType, &date, &st.CreatedAt); err != nil {
		return domain.Story{}, err
	}
	st.ID = storage.FormatRowID(n)
	st.Media = storage.ReferenceFromColumns(url, key, contentType)
	if date.Valid {
		st.Date = date.Time
	}
	return st, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
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
