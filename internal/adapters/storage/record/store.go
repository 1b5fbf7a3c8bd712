package record

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("record not found")

// Record is any value stored in a collection.
type Record interface {
	RecordID() string
}

// Store persists the records of one named collection.
// List returns records newest first.
type Store[T Record] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	// Insert stores a new record at the head of the collection and returns it
	// as stored. Backends that assign ids or timestamps fill them in.
	Insert(ctx context.Context, value T) (T, error)
	Update(ctx context.Context, value T) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// BlobName returns the local blob name holding a collection.
func BlobName(collection string) string {
	return "carevia_" + collection
}
