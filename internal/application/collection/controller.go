// Package collection manages the gallery and story collections: validation,
// media ingestion and persistence behind one generic controller.
package collection

import (
	"context"
	"errors"
	"log/slog"
	"time"

	mediaAdapter "carevia/internal/adapters/media"
	"carevia/internal/adapters/storage/record"
	"carevia/internal/domain/media"
)

// Kind describes how one entity type is built, validated and edited.
// T is the stored record, F the user-editable fields.
type Kind[T record.Record, F any] struct {
	Collection string
	// Normalize cleans user input before validation.
	Normalize func(F) F
	// Validate checks required fields.
	Validate func(F) error
	// RequiresMedia rejects Add without a file, returning MissingMedia.
	RequiresMedia bool
	MissingMedia  error
	// New builds a record for Add.
	New func(id string, f F, ref media.Reference, now time.Time) T
	// Apply copies edited fields onto an existing record.
	Apply func(T, F) T
	// Media reads and WithMedia replaces a record's media reference.
	Media     func(T) media.Reference
	WithMedia func(T, media.Reference) T
}

// Deps holds the collaborators of a Controller.
type Deps[T record.Record] struct {
	Store      record.Store[T]
	Ingestor   mediaAdapter.Ingestor
	GenerateID func() string
	Now        func() time.Time
}

// Controller runs add, update, delete, clear and list for one collection.
type Controller[T record.Record, F any] struct {
	kind       Kind[T, F]
	store      record.Store[T]
	ingestor   mediaAdapter.Ingestor
	generateID func() string
	now        func() time.Time
}

// New creates a Controller.
// PRE: deps.Store, deps.Ingestor and deps.GenerateID are non-nil
func New[T record.Record, F any](kind Kind[T, F], deps Deps[T]) *Controller[T, F] {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Controller[T, F]{
		kind:       kind,
		store:      deps.Store,
		ingestor:   deps.Ingestor,
		generateID: deps.GenerateID,
		now:        now,
	}
}

// Collection returns the collection name.
func (c *Controller[T, F]) Collection() string {
	return c.kind.Collection
}

// List returns all records newest first.
func (c *Controller[T, F]) List(ctx context.Context) ([]T, error) {
	items, err := c.store.List(ctx)
	if err != nil {
		return nil, classify(ErrPersistence, "list "+c.kind.Collection, err)
	}
	return items, nil
}

// Get returns one record.
// POST: Returns ErrNotFound if absent
func (c *Controller[T, F]) Get(ctx context.Context, id string) (T, error) {
	item, err := c.store.Get(ctx, id)
	if err != nil {
		var zero T
		return zero, c.storeError("get", err)
	}
	return item, nil
}

// Add validates the fields, ingests the file and stores a new record at the head of the collection.
// PRE: up may be nil when the kind does not require media
// POST: On error nothing is stored and any uploaded object is discarded
func (c *Controller[T, F]) Add(ctx context.Context, f F, up *media.Upload) (T, error) {
	var zero T
	op := "add " + c.kind.Collection

	f = c.kind.Normalize(f)
	if err := c.kind.Validate(f); err != nil {
		return zero, classify(ErrValidation, op, err)
	}
	hasFile := up != nil && len(up.Data) > 0
	if c.kind.RequiresMedia && !hasFile {
		return zero, classify(ErrValidation, op, c.kind.MissingMedia)
	}

	var ref media.Reference
	if hasFile {
		var err error
		ref, err = c.ingestor.Ingest(ctx, c.kind.Collection, up)
		if err != nil {
			slog.Warn("collection_event", "event", "ingest_failed", "collection", c.kind.Collection, "error", err)
			return zero, classify(ErrIngestion, op, err)
		}
	}

	item := c.kind.New(c.generateID(), f, ref, c.now().UTC())
	stored, err := c.store.Insert(ctx, item)
	if err != nil {
		c.discard(ctx, ref)
		slog.Error("collection_event", "event", "insert_failed", "collection", c.kind.Collection, "error", err)
		return zero, classify(ErrPersistence, op, err)
	}

	slog.Info("collection_event", "event", "record_added", "collection", c.kind.Collection, "id", stored.RecordID())
	return stored, nil
}

// Update replaces the editable fields of a record and, when a file is
// supplied, its media. Without a file the existing media is kept exactly.
// POST: On error the stored record is unchanged
func (c *Controller[T, F]) Update(ctx context.Context, id string, f F, up *media.Upload) (T, error) {
	var zero T
	op := "update " + c.kind.Collection

	item, err := c.store.Get(ctx, id)
	if err != nil {
		return zero, c.storeError("update", err)
	}

	f = c.kind.Normalize(f)
	if err := c.kind.Validate(f); err != nil {
		return zero, classify(ErrValidation, op, err)
	}

	var newRef media.Reference
	if up != nil && len(up.Data) > 0 {
		newRef, err = c.ingestor.Ingest(ctx, c.kind.Collection, up)
		if err != nil {
			slog.Warn("collection_event", "event", "ingest_failed", "collection", c.kind.Collection, "id", id, "error", err)
			return zero, classify(ErrIngestion, op, err)
		}
	}

	oldRef := c.kind.Media(item)
	item = c.kind.Apply(item, f)
	if !newRef.IsZero() {
		item = c.kind.WithMedia(item, newRef)
	}

	if err := c.store.Update(ctx, item); err != nil {
		c.discard(ctx, newRef)
		return zero, c.storeError("update", err)
	}
	if !newRef.IsZero() {
		c.discard(ctx, oldRef)
	}

	slog.Info("collection_event", "event", "record_updated", "collection", c.kind.Collection, "id", id, "media_replaced", !newRef.IsZero())
	return item, nil
}

// Delete removes a record and its uploaded media.
// POST: Returns ErrNotFound and leaves the collection unchanged if absent
func (c *Controller[T, F]) Delete(ctx context.Context, id string) error {
	item, err := c.store.Get(ctx, id)
	if err != nil {
		return c.storeError("delete", err)
	}
	if err := c.store.Delete(ctx, id); err != nil {
		return c.storeError("delete", err)
	}
	c.discard(ctx, c.kind.Media(item))

	slog.Info("collection_event", "event", "record_deleted", "collection", c.kind.Collection, "id", id)
	return nil
}

// Clear removes every record. Confirmation is the caller's responsibility.
// POST: List returns an empty collection
func (c *Controller[T, F]) Clear(ctx context.Context) error {
	op := "clear " + c.kind.Collection
	items, err := c.store.List(ctx)
	if err != nil {
		return classify(ErrPersistence, op, err)
	}
	if err := c.store.Clear(ctx); err != nil {
		return classify(ErrPersistence, op, err)
	}
	for _, item := range items {
		c.discard(ctx, c.kind.Media(item))
	}

	slog.Info("collection_event", "event", "collection_cleared", "collection", c.kind.Collection, "count", len(items))
	return nil
}

func (c *Controller[T, F]) storeError(verb string, err error) error {
	op := verb + " " + c.kind.Collection
	if errors.Is(err, record.ErrNotFound) {
		return classify(ErrNotFound, op, err)
	}
	slog.Error("collection_event", "event", verb+"_failed", "collection", c.kind.Collection, "error", err)
	return classify(ErrPersistence, op, err)
}

// discard removes uploaded media, logging failures.
func (c *Controller[T, F]) discard(ctx context.Context, ref media.Reference) {
	if ref.IsZero() {
		return
	}
	if err := c.ingestor.Discard(ctx, ref); err != nil {
		slog.Warn("collection_event", "event", "discard_failed", "collection", c.kind.Collection, "key", ref.ObjectKey, "error", err)
	}
}
