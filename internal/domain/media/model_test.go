package media_test

import (
	"bytes"
	"errors"
	"testing"

	"carevia/internal/domain/media"
)

// TestUpload_Validate tests validation of uploads before ingestion.
func TestUpload_Validate(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	tests := []struct {
		name    string
		upload  *media.Upload
		max     int
		wantErr error
	}{
		{"valid png", &media.Upload{Filename: "a.png", ContentType: "image/png", Data: png}, 1024, nil},
		{"content type with params", &media.Upload{Filename: "a.jpg", ContentType: "image/jpeg; charset=binary", Data: png}, 1024, nil},
		{"nil upload", nil, 1024, media.ErrEmptyFile},
		{"empty data", &media.Upload{Filename: "a.png", ContentType: "image/png"}, 1024, media.ErrEmptyFile},
		{"missing name", &media.Upload{ContentType: "image/png", Data: png}, 1024, media.ErrMissingName},
		{"not image", &media.Upload{Filename: "a.txt", ContentType: "text/plain", Data: png}, 1024, media.ErrNotImage},
		{"too large", &media.Upload{Filename: "a.png", ContentType: "image/png", Data: bytes.Repeat([]byte{1}, 11)}, 10, media.ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.upload.Validate(tt.max)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestSafeSrc tests which media sources may be rendered.
func TestSafeSrc(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"data:image/png;base64,AAAA", true},
		{"https://cdn.example.org/gallery/x.png", true},
		{"/media/gallery/gallery_1_x.png", true},
		{"javascript:alert(1)", false},
		{"data:text/html;base64,PHNjcmlwdD4=", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := media.SafeSrc(tt.src); got != tt.want {
			t.Errorf("SafeSrc(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

// TestReference_IsZero tests the empty reference check.
func TestReference_IsZero(t *testing.T) {
	if !(media.Reference{}).IsZero() {
		t.Error("zero Reference should report IsZero")
	}
	ref := media.Reference{Kind: media.KindObject, Src: "https://x/y.png", ObjectKey: "y.png"}
	if ref.IsZero() {
		t.Error("populated Reference should not report IsZero")
	}
	if !ref.IsObject() {
		t.Error("object Reference should report IsObject")
	}
}
