// Package media turns uploaded files into media references, either inline
// data URLs or objects in a bucket.
package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	domain "carevia/internal/domain/media"
)

// ErrUnknownCollection is returned when no bucket is configured for a collection.
var ErrUnknownCollection = errors.New("no bucket configured for collection")

// Ingestor turns an upload into a media reference.
type Ingestor interface {
	// Ingest validates the upload and stores it for the named collection.
	Ingest(ctx context.Context, collection string, up *domain.Upload) (domain.Reference, error)
	// Discard removes stored media for a reference. Inline references are a no-op.
	Discard(ctx context.Context, ref domain.Reference) error
}

// Bucket stores objects for one collection.
type Bucket interface {
	// Put stores data under key and returns its public URL.
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Remove(ctx context.Context, key string) error
}

// prepare sniffs the upload's content type and validates it.
// POST: up.ContentType holds the sniffed type when validation succeeds
func prepare(up *domain.Upload, maxBytes int) error {
	if up != nil && len(up.Data) > 0 {
		up.ContentType = http.DetectContentType(up.Data)
	}
	return up.Validate(maxBytes)
}

// ObjectIngestor uploads files to per-collection buckets.
type ObjectIngestor struct {
	buckets  map[string]Bucket
	maxBytes int
	now      func() time.Time
}

// NewObjectIngestor creates an ObjectIngestor. A non-positive maxBytes uses the default limit.
func NewObjectIngestor(buckets map[string]Bucket, maxBytes int) *ObjectIngestor {
	if maxBytes <= 0 {
		maxBytes = domain.DefaultMaxBytes
	}
	return &ObjectIngestor{buckets: buckets, maxBytes: maxBytes, now: time.Now}
}

// Ingest uploads the file and returns an object reference.
// PRE: collection has a configured bucket
// POST: On success the object exists under ObjectKey(collection, ...) and Src is its public URL
func (o *ObjectIngestor) Ingest(ctx context.Context, collection string, up *domain.Upload) (domain.Reference, error) {
	bucket, ok := o.buckets[collection]
	if !ok {
		return domain.Reference{}, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	if err := prepare(up, o.maxBytes); err != nil {
		return domain.Reference{}, err
	}
	key := ObjectKey(collection, o.now(), up.Filename)
	url, err := bucket.Put(ctx, key, up.ContentType, up.Data)
	if err != nil {
		return domain.Reference{}, fmt.Errorf("upload %s: %w", key, err)
	}
	return domain.Reference{Kind: domain.KindObject, Src: url, ObjectKey: key, ContentType: up.ContentType}, nil
}

// Discard removes an uploaded object.
// POST: Non-object references are ignored
func (o *ObjectIngestor) Discard(ctx context.Context, ref domain.Reference) error {
	if !ref.IsObject() || ref.ObjectKey == "" {
		return nil
	}
	collection, _, _ := strings.Cut(ref.ObjectKey, "_")
	bucket, ok := o.buckets[collection]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return bucket.Remove(ctx, ref.ObjectKey)
}

// ObjectKey builds "<collection>_<unix-millis>_<sanitised filename>".
func ObjectKey(collection string, at time.Time, filename string) string {
	return collection + "_" + strconv.FormatInt(at.UnixMilli(), 10) + "_" + SanitizeFilename(filename)
}

const maxFilenameLength = 100

// SanitizeFilename reduces a client-supplied filename to a safe key segment.
// POST: result is non-empty and contains only [A-Za-z0-9._-]
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), ".-")
	if len(out) > maxFilenameLength {
		out = out[len(out)-maxFilenameLength:]
	}
	if out == "" {
		return "upload"
	}
	return out
}
