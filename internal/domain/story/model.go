package story

import (
	"errors"
	"strings"
	"time"

	"carevia/internal/domain/media"
)

// Collection is the storage name of the stories collection.
const Collection = "stories"

// PreviewLength is the number of characters of content shown on a story card.
const PreviewLength = 130

// Max length constants for user-editable fields.
const (
	MaxTitleLength   = 200
	MaxAuthorLength  = 120
	MaxContentLength = 20000
)

// Domain errors
var (
	ErrEmptyTitle     = errors.New("story title cannot be empty")
	ErrEmptyAuthor    = errors.New("story author cannot be empty")
	ErrEmptyContent   = errors.New("story content cannot be empty")
	ErrTitleTooLong   = errors.New("story title cannot exceed 200 characters")
	ErrAuthorTooLong  = errors.New("story author cannot exceed 120 characters")
	ErrContentTooLong = errors.New("story content cannot exceed 20000 characters")
)

// Story is a testimonial shown on the public site.
// Media is optional; Date is the display date (user-supplied or creation time).
type Story struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Author    string          `json:"author"`
	Content   string          `json:"content"`
	Media     media.Reference `json:"media"`
	Date      time.Time       `json:"date"`
	CreatedAt time.Time       `json:"created_at"`
}

// RecordID returns the story identifier.
func (s Story) RecordID() string { return s.ID }

// Fields carries the user-editable fields of a Story.
// A zero Date means "keep the current display date" on update and "now" on create.
type Fields struct {
	Title   string
	Author  string
	Content string
	Date    time.Time
}

// Normalize trims whitespace from the text fields.
func (f Fields) Normalize() Fields {
	f.Title = strings.TrimSpace(f.Title)
	f.Author = strings.TrimSpace(f.Author)
	f.Content = strings.TrimSpace(f.Content)
	return f
}

// Validate checks the editable fields.
// PRE: f has been normalized
// POST: Returns nil if title, author and content are present and within limits
func (f Fields) Validate() error {
	if f.Title == "" {
		return ErrEmptyTitle
	}
	if f.Author == "" {
		return ErrEmptyAuthor
	}
	if f.Content == "" {
		return ErrEmptyContent
	}
	if len([]rune(f.Title)) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if len([]rune(f.Author)) > MaxAuthorLength {
		return ErrAuthorTooLong
	}
	if len([]rune(f.Content)) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// Apply copies the fields onto the story.
// POST: Title, Author, Content replaced; Date replaced only when f.Date is set
func (s *Story) Apply(f Fields) {
	s.Title = f.Title
	s.Author = f.Author
	s.Content = f.Content
	if !f.Date.IsZero() {
		s.Date = f.Date
	}
}

// Validate checks if the Story has valid data.
// PRE: Story struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Story) Validate() error {
	return Fields{Title: s.Title, Author: s.Author, Content: s.Content}.Validate()
}

// Preview returns the first PreviewLength characters of the content
// and whether it was truncated.
// INVARIANT: Story fields are not mutated
func (s *Story) Preview() (string, bool) {
	runes := []rune(s.Content)
	if len(runes) <= PreviewLength {
		return s.Content, false
	}
	return string(runes[:PreviewLength]), true
}

// DisplayDate returns Date, falling back to CreatedAt.
func (s *Story) DisplayDate() time.Time {
	if s.Date.IsZero() {
		return s.CreatedAt
	}
	return s.Date
}
