package media

import (
	"context"
	"encoding/base64"

	domain "carevia/internal/domain/media"
)

// InlineIngestor embeds uploads as data URLs inside the record itself.
type InlineIngestor struct {
	maxBytes int
}

// NewInlineIngestor creates an InlineIngestor. A non-positive maxBytes uses the default limit.
func NewInlineIngestor(maxBytes int) *InlineIngestor {
	if maxBytes <= 0 {
		maxBytes = domain.DefaultMaxBytes
	}
	return &InlineIngestor{maxBytes: maxBytes}
}

// Ingest encodes the upload as "data:<content-type>;base64,<bytes>".
// POST: On success Src is a data URL of the sniffed image type
func (i *InlineIngestor) Ingest(_ context.Context, _ string, up *domain.Upload) (domain.Reference, error) {
	if err := prepare(up, i.maxBytes); err != nil {
		return domain.Reference{}, err
	}
	src := "data:" + up.ContentType + ";base64," + base64.StdEncoding.EncodeToString(up.Data)
	return domain.Reference{Kind: domain.KindInline, Src: src, ContentType: up.ContentType}, nil
}

// Discard is a no-op; inline media lives and dies with its record.
func (i *InlineIngestor) Discard(context.Context, domain.Reference) error {
	return nil
}
