package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DirBucket stores objects in a local directory served over HTTP.
type DirBucket struct {
	dir     string
	baseURL string
}

// NewDirBucket creates a bucket writing to root/collection and serving from
// baseURL/collection (for example "/media/gallery").
func NewDirBucket(root, collection, baseURL string) *DirBucket {
	return &DirBucket{
		dir:     filepath.Join(root, collection),
		baseURL: strings.TrimSuffix(baseURL, "/") + "/" + collection,
	}
}

// Put writes the object to disk.
// PRE: key is a sanitised object key
// POST: file exists at dir/key
func (b *DirBucket) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	if err := os.MkdirAll(b.dir, 0o750); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(b.dir, key), data, 0o640); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	return b.baseURL + "/" + key, nil
}

// Remove deletes the object. Removing an absent object is not an error.
func (b *DirBucket) Remove(_ context.Context, key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("invalid object key %q", key)
	}
	err := os.Remove(filepath.Join(b.dir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
