package record

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"carevia/internal/adapters/storage/blob"
)

// LocalStore keeps a whole collection as one JSON text blob.
// Row operations are read-modify-write of the blob under a mutex;
// across processes the last writer wins.
type LocalStore[T Record] struct {
	blobs blob.Store
	name  string
	mu    sync.Mutex
}

// NewLocalStore creates a LocalStore for the named collection.
func NewLocalStore[T Record](blobs blob.Store, collection string) *LocalStore[T] {
	return &LocalStore[T]{blobs: blobs, name: BlobName(collection)}
}

// Load reads the whole collection.
// Absent or malformed stored text yields an empty collection, never an error.
// POST: Returns a non-nil slice, newest first
func (s *LocalStore[T]) Load(ctx context.Context) ([]T, error) {
	raw, ok, err := s.blobs.Get(ctx, s.name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.name, err)
	}
	if !ok || raw == "" {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		slog.Warn("storage_event", "event", "malformed_blob", "blob", s.name, "error", err)
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Save replaces the whole collection.
// POST: A following Load returns items in the same order
func (s *LocalStore[T]) Save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.name, err)
	}
	if err := s.blobs.Put(ctx, s.name, string(data)); err != nil {
		return fmt.Errorf("save %s: %w", s.name, err)
	}
	return nil
}

// List returns all records newest first.
func (s *LocalStore[T]) List(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Load(ctx)
}

// Get returns the record with the given id.
// POST: Returns ErrNotFound if absent
func (s *LocalStore[T]) Get(ctx context.Context, id string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	items, err := s.Load(ctx)
	if err != nil {
		return zero, err
	}
	if i := indexOf(items, id); i >= 0 {
		return items[i], nil
	}
	return zero, ErrNotFound
}

// Insert prepends value to the collection.
// PRE: value has a non-empty id not already in the collection
// POST: value heads the collection
func (s *LocalStore[T]) Insert(ctx context.Context, value T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if value.RecordID() == "" {
		return zero, fmt.Errorf("insert into %s: empty id", s.name)
	}
	items, err := s.Load(ctx)
	if err != nil {
		return zero, err
	}
	if indexOf(items, value.RecordID()) >= 0 {
		return zero, fmt.Errorf("insert into %s: duplicate id %s", s.name, value.RecordID())
	}
	items = append([]T{value}, items...)
	if err := s.Save(ctx, items); err != nil {
		return zero, err
	}
	return value, nil
}

// Update replaces the record with value's id, keeping its position.
// POST: Returns ErrNotFound and leaves the collection unchanged if absent
func (s *LocalStore[T]) Update(ctx context.Context, value T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.Load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(items, value.RecordID())
	if i < 0 {
		return ErrNotFound
	}
	items[i] = value
	return s.Save(ctx, items)
}

// Delete removes the record with the given id.
// POST: Returns ErrNotFound and leaves the collection unchanged if absent
func (s *LocalStore[T]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.Load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(items, id)
	if i < 0 {
		return ErrNotFound
	}
	items = append(items[:i], items[i+1:]...)
	return s.Save(ctx, items)
}

// Clear removes every record.
// POST: List returns an empty slice
func (s *LocalStore[T]) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Save(ctx, []T{})
}

func indexOf[T Record](items []T, id string) int {
	for i, item := range items {
		if item.RecordID() == id {
			return i
		}
	}
	return -1
}
