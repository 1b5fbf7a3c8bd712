package media

import (
	"errors"
	"strings"
)

// Reference kinds
const (
	KindInline = "inline" // full bytes embedded as a data URL
	KindObject = "object" // uploaded object addressed by key and public URL
)

// DefaultMaxBytes caps a single upload (5 MB).
const DefaultMaxBytes = 5 << 20

// Domain errors
var (
	ErrEmptyFile   = errors.New("file is empty")
	ErrNotImage    = errors.New("file must be an image (png, jpeg, webp, gif)")
	ErrTooLarge    = errors.New("file exceeds the upload size limit")
	ErrMissingName = errors.New("file name is required")
)

// Reference points at ingested media. The zero value means "no media".
type Reference struct {
	Kind        string `json:"kind,omitempty"`
	Src         string `json:"src,omitempty"`        // data URL or public URL
	ObjectKey   string `json:"object_key,omitempty"` // object kind only
	ContentType string `json:"content_type,omitempty"`
}

// IsZero reports whether the reference points at nothing.
// INVARIANT: Reference fields are not mutated
func (r Reference) IsZero() bool {
	return r.Src == ""
}

// IsObject reports whether the reference was produced by an object upload.
func (r Reference) IsObject() bool {
	return r.Kind == KindObject && r.ObjectKey != ""
}

// Upload is a user-selected file awaiting ingestion.
type Upload struct {
	Filename    string
	ContentType string // as declared by the client; re-checked by sniffing
	Data        []byte
}

// Validate checks the upload is non-empty, an image, and within maxBytes.
// PRE: maxBytes > 0
// POST: Returns nil if the upload can be ingested, error otherwise
func (u *Upload) Validate(maxBytes int) error {
	if u == nil || len(u.Data) == 0 {
		return ErrEmptyFile
	}
	if strings.TrimSpace(u.Filename) == "" {
		return ErrMissingName
	}
	if len(u.Data) > maxBytes {
		return ErrTooLarge
	}
	if !IsImageType(u.ContentType) {
		return ErrNotImage
	}
	return nil
}

// ImageTypes are the accepted image content types.
var ImageTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// IsImageType reports whether ct is one of the accepted image types.
func IsImageType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	for _, v := range ImageTypes {
		if v == ct {
			return true
		}
	}
	return false
}

// SafeSrc reports whether src may be placed in an <img src> attribute.
// Only inline images, http(s) URLs and locally served media are allowed.
func SafeSrc(src string) bool {
	lower := strings.ToLower(strings.TrimSpace(src))
	switch {
	case strings.HasPrefix(lower, "data:image/"):
		return true
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
		return true
	case strings.HasPrefix(lower, "/media/"):
		return true
	}
	return false
}
