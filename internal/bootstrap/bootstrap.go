// Package bootstrap assembles the storage, media and identity adapters for the
// configured backend. Both the server and the admin CLI start from here.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"carevia/internal/adapters/identity"
	mediaAdapter "carevia/internal/adapters/media"
	"carevia/internal/adapters/storage"
	"carevia/internal/adapters/storage/blob"
	contactStore "carevia/internal/adapters/storage/contact"
	galleryStore "carevia/internal/adapters/storage/gallery"
	"carevia/internal/adapters/storage/record"
	storyStore "carevia/internal/adapters/storage/story"
	"carevia/internal/application/collection"
	"carevia/internal/config"
	"carevia/internal/domain/contact"
	"carevia/internal/domain/gallery"
	"carevia/internal/domain/story"
)

// DevPassword is the admin password accepted in development when no hash is configured.
const DevPassword = "2024"

// Backend is the assembled set of collaborators for one configuration.
type Backend struct {
	Gallery  *collection.Gallery
	Stories  *collection.Stories
	Contacts contactStore.Store
	Verifier identity.Verifier
	// MediaDir is the local directory served under /media/, empty unless media.store is dir.
	MediaDir string

	db *storage.TimedDB
}

// Close releases the database connection.
func (b *Backend) Close() error {
	return b.db.Close()
}

// Ping checks the database is reachable.
func (b *Backend) Ping(ctx context.Context) error {
	return b.db.Ping(ctx)
}

// NewID returns a random record identifier.
func NewID() string {
	return uuid.NewString()
}

// Open connects the configured backend.
// PRE: cfg has passed Validate
// POST: On success the caller owns the returned Backend and must Close it
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	ingestor, mediaDir, err := openIngestor(ctx, cfg)
	if err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case config.BackendRemote:
		return openRemote(cfg, ingestor, mediaDir)
	default:
		return openLocal(cfg, ingestor, mediaDir)
	}
}

func openLocal(cfg *config.Config, ingestor mediaAdapter.Ingestor, mediaDir string) (*Backend, error) {
	raw, err := storage.OpenSQLite(cfg.Local.SQLitePath)
	if err != nil {
		return nil, err
	}
	db := storage.NewTimedDB(raw, config.BackendLocal, cfg.Database.SlowQueryMs)
	blobs := blob.NewSQLiteStore(db)

	hash := cfg.Local.AdminPasswordHash
	if hash == "" {
		// Validate rejects this in production.
		slog.Warn("config_event", "event", "dev_admin_password", "username", cfg.Local.AdminUsername)
		hash, err = identity.HashPassword(DevPassword)
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	verifier, err := identity.NewFixedVerifier(cfg.Local.AdminUsername, hash)
	if err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("config_event", "event", "backend_ready", "backend", config.BackendLocal, "path", cfg.Local.SQLitePath, "media", cfg.Media.Store)
	return &Backend{
		Gallery:  collection.NewGallery(deps[gallery.Item](record.NewLocalStore[gallery.Item](blobs, gallery.Collection), ingestor)),
		Stories:  collection.NewStories(deps[story.Story](record.NewLocalStore[story.Story](blobs, story.Collection), ingestor)),
		Contacts: record.NewLocalStore[contact.Message](blobs, contact.Collection),
		Verifier: verifier,
		MediaDir: mediaDir,
		db:       db,
	}, nil
}

func openRemote(cfg *config.Config, ingestor mediaAdapter.Ingestor, mediaDir string) (*Backend, error) {
	raw, err := storage.OpenPostgres(cfg.Remote.PostgresDSN)
	if err != nil {
		return nil, err
	}
	db := storage.NewTimedDB(raw, config.BackendRemote, cfg.Database.SlowQueryMs)

	verifier, err := identity.NewRemoteVerifier(identity.RemoteConfig{
		AuthURL:   cfg.Remote.Identity.URL,
		APIKey:    cfg.Remote.Identity.APIKey,
		JWTSecret: cfg.Remote.Identity.JWTSecret,
		AdminRole: cfg.Remote.Identity.AdminRole,
	}, nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("config_event", "event", "backend_ready", "backend", config.BackendRemote, "media", cfg.Media.Store)
	return &Backend{
		Gallery:  collection.NewGallery(deps[gallery.Item](galleryStore.NewPostgresStore(db), ingestor)),
		Stories:  collection.NewStories(deps[story.Story](storyStore.NewPostgresStore(db), ingestor)),
		Contacts: contactStore.NewPostgresStore(db),
		Verifier: verifier,
		MediaDir: mediaDir,
		db:       db,
	}, nil
}

func deps[T record.Record](store record.Store[T], ingestor mediaAdapter.Ingestor) collection.Deps[T] {
	return collection.Deps[T]{
		Store:      store,
		Ingestor:   ingestor,
		GenerateID: NewID,
		Now:        time.Now,
	}
}

// openIngestor builds the media ingestor. The returned directory is non-empty
// when uploads are written to local disk.
func openIngestor(ctx context.Context, cfg *config.Config) (mediaAdapter.Ingestor, string, error) {
	m := cfg.Media
	switch m.Store {
	case config.MediaDir:
		buckets := map[string]mediaAdapter.Bucket{
			gallery.Collection: mediaAdapter.NewDirBucket(m.Dir, gallery.Collection, "/media"),
			story.Collection:   mediaAdapter.NewDirBucket(m.Dir, story.Collection, "/media"),
		}
		return mediaAdapter.NewObjectIngestor(buckets, m.MaxBytes), m.Dir, nil
	case config.MediaS3:
		client, err := mediaAdapter.NewS3Client(ctx, mediaAdapter.S3Options{
			Endpoint:  m.S3.Endpoint,
			Region:    m.S3.Region,
			AccessKey: m.S3.AccessKey,
			SecretKey: m.S3.SecretKey,
		})
		if err != nil {
			return nil, "", fmt.Errorf("s3 client: %w", err)
		}
		buckets := map[string]mediaAdapter.Bucket{
			gallery.Collection: mediaAdapter.NewS3Bucket(client, m.S3.GalleryBucket, m.S3.PublicURL),
			story.Collection:   mediaAdapter.NewS3Bucket(client, m.S3.StoriesBucket, m.S3.PublicURL),
		}
		return mediaAdapter.NewObjectIngestor(buckets, m.MaxBytes), "", nil
	default:
		return mediaAdapter.NewInlineIngestor(m.MaxBytes), "", nil
	}
}
