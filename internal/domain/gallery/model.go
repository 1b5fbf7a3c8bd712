package gallery

import (
	"errors"
	"strings"
	"time"

	"carevia/internal/domain/media"
)

// Collection is the storage name of the gallery collection.
const Collection = "gallery"

// Categories
const (
	CategoryEvents         = "events"
	CategorySuccessStories = "success-stories"
	CategoryTeam           = "team"
	CategoryCommunity      = "community"
)

// ValidCategories contains all valid category values, in display order.
var ValidCategories = []string{CategoryEvents, CategorySuccessStories, CategoryTeam, CategoryCommunity}

// CategoryLabels maps category values to display labels.
var CategoryLabels = map[string]string{
	CategoryEvents:         "Events",
	CategorySuccessStories: "Success Stories",
	CategoryTeam:           "Team",
	CategoryCommunity:      "Community",
}

// Max length constants for user-editable fields.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

// Domain errors
var (
	ErrEmptyTitle      = errors.New("please enter an image title")
	ErrTitleTooLong    = errors.New("image title cannot exceed 200 characters")
	ErrDescTooLong     = errors.New("description cannot exceed 2000 characters")
	ErrInvalidCategory = errors.New("category must be one of: events, success-stories, team, community")
	ErrMissingImage    = errors.New("please choose an image file")
)

// Item is a photo in the public gallery.
type Item struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Media       media.Reference `json:"media"`
	CreatedAt   time.Time       `json:"date"`
}

// RecordID returns the item identifier.
func (i Item) RecordID() string { return i.ID }

// Fields carries the user-editable fields of an Item.
type Fields struct {
	Title       string
	Description string
	Category    string
}

// Normalize trims whitespace and defaults an empty category to events.
// POST: Title and Description are trimmed; Category is non-empty
func (f Fields) Normalize() Fields {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Category = strings.TrimSpace(f.Category)
	if f.Category == "" {
		f.Category = CategoryEvents
	}
	return f
}

// Validate checks the editable fields.
// PRE: f has been normalized
// POST: Returns nil if valid, error otherwise
func (f Fields) Validate() error {
	if f.Title == "" {
		return ErrEmptyTitle
	}
	if len([]rune(f.Title)) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if len([]rune(f.Description)) > MaxDescriptionLength {
		return ErrDescTooLong
	}
	if !IsValidCategory(f.Category) {
		return ErrInvalidCategory
	}
	return nil
}

// Apply copies the fields onto the item.
// POST: Title, Description and Category replaced; ID, Media and CreatedAt untouched
func (i *Item) Apply(f Fields) {
	i.Title = f.Title
	i.Description = f.Description
	i.Category = f.Category
}

// Validate checks if the Item has valid data.
// PRE: Item struct is populated
// POST: Returns nil if valid, error otherwise
func (i *Item) Validate() error {
	if err := (Fields{Title: i.Title, Description: i.Description, Category: i.Category}).Validate(); err != nil {
		return err
	}
	if i.Media.IsZero() {
		return ErrMissingImage
	}
	return nil
}

// CategoryLabel returns the display label for the item's category.
func (i *Item) CategoryLabel() string {
	if l, ok := CategoryLabels[i.Category]; ok {
		return l
	}
	return i.Category
}

// IsValidCategory reports whether c is a known category.
func IsValidCategory(c string) bool {
	for _, v := range ValidCategories {
		if v == c {
			return true
		}
	}
	return false
}
