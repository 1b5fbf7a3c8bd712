package projections

import (
	"net/url"
	"time"

	"carevia/internal/domain/gallery"
	"carevia/internal/domain/media"
	"carevia/internal/domain/story"
)

// DateLayout is the display format for card dates.
const DateLayout = "2 Jan 2006"

// Card is a display-ready summary of one record.
// INVARIANT: every string field is HTML-escaped
type Card struct {
	Collection string
	ID         string
	Title      string
	Meta       string
	Body       string
	MediaSrc   string
	HasMedia   bool
	Truncated  bool
	EditURL    string
	DeleteURL  string
	DetailURL  string
}

// GalleryCards builds cards for gallery items, preserving order.
// Meta is "<category> • <date>".
func GalleryCards(items []gallery.Item) []Card {
	cards := make([]Card, 0, len(items))
	for _, item := range items {
		c := newCard(gallery.Collection, item.ID, item.Title, item.Media)
		c.Meta = Escape(item.CategoryLabel()) + " • " + Escape(formatDate(item.CreatedAt))
		c.Body = Escape(item.Description)
		cards = append(cards, c)
	}
	return cards
}

// StoryCards builds cards for stories, preserving order.
// Body is the first 130 characters of content plus "..." when longer.
func StoryCards(stories []story.Story) []Card {
	cards := make([]Card, 0, len(stories))
	for _, s := range stories {
		c := newCard(story.Collection, s.ID, s.Title, s.Media)
		c.Meta = "By " + Escape(s.Author) + " • " + Escape(formatDate(s.DisplayDate()))
		preview, truncated := s.Preview()
		c.Body = Escape(preview)
		if truncated {
			c.Body += "..."
		}
		c.Truncated = truncated
		c.DetailURL = "/stories/" + Escape(url.PathEscape(s.ID))
		cards = append(cards, c)
	}
	return cards
}

func newCard(collection, id, title string, ref media.Reference) Card {
	path := "/admin/" + collection + "/" + url.PathEscape(id)
	c := Card{
		Collection: collection,
		ID:         Escape(id),
		Title:      Escape(title),
		EditURL:    Escape(path + "/edit"),
		DeleteURL:  Escape(path + "/delete"),
	}
	if media.SafeSrc(ref.Src) {
		c.MediaSrc = Escape(ref.Src)
		c.HasMedia = true
	}
	return c
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
