package storage

import (
	"strconv"
	"strings"

	"carevia/internal/domain/media"
)

// ParseRowID converts a record id to a BIGSERIAL key.
// POST: ok is false for ids the remote tables could never have issued
func ParseRowID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// FormatRowID converts a BIGSERIAL key to a record id.
func FormatRowID(n int64) string {
	return strconv.FormatInt(n, 10)
}

// ReferenceFromColumns rebuilds a media reference from its table columns.
// An empty url means no media.
func ReferenceFromColumns(url, key, contentType string) media.Reference {
	if url == "" {
		return media.Reference{}
	}
	kind := media.KindObject
	if key == "" && strings.HasPrefix(url, "data:") {
		kind = media.KindInline
	}
	return media.Reference{Kind: kind, Src: url, ObjectKey: key, ContentType: contentType}
}
