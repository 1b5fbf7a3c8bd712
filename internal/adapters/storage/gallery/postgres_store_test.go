package gallery

import (
	"context"
	"errors"
	"testing"
	"time"

	"carevia/internal/adapters/storage/record"
	"carevia/internal/domain/media"
)

type fakeRow struct {
	values []any
}

func (r fakeRow) Scan(dest ...any) error {
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = r.values[i].(int64)
		case *string:
			*p = r.values[i].(string)
		case *time.Time:
			*p = r.values[i].(time.Time)
		}
	}
	return nil
}

// TestScanItem tests mapping of a gallery row to a domain item.
func TestScanItem(t *testing.T) {
	created := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	row := fakeRow{values: []any{int64(7), "Fundraiser 2024", "", "events",
		"https://cdn.example.org/gallery/gallery_1_a.png", "gallery_1_a.png", "image/png", created}}

	item, err := scanItem(row)
	if err != nil {
		t.Fatalf("scanItem failed: %v", err)
	}
	if item.ID != "7" || item.Title != "Fundraiser 2024" || !item.CreatedAt.Equal(created) {
		t.Errorf("unexpected item: %+v", item)
	}
	if item.Media.Kind != media.KindObject || item.Media.ObjectKey != "gallery_1_a.png" {
		t.Errorf("unexpected media: %+v", item.Media)
	}
}

// TestPostgresStore_ForeignIDs tests that ids the table never issued are not found.
func TestPostgresStore_ForeignIDs(t *testing.T) {
	store := NewPostgresStore(nil)
	ctx := context.Background()

	if _, err := store.Get(ctx, "lq3k2x9ab"); !errors.Is(err, record.ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "abc"); !errors.Is(err, record.ErrNotFound) {
		t.Errorf("Delete error = %v, want ErrNotFound", err)
	}
}
