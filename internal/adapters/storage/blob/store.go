package blob

import "context"

// Store persists named text blobs.
type Store interface {
	// Get returns the blob text and whether it exists.
	Get(ctx context.Context, name string) (string, bool, error)
	Put(ctx context.Context, name, value string) error
	Delete(ctx context.Context, name string) error
}
