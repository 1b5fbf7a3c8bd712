package projections

import (
	"net/url"

	"carevia/internal/domain/gallery"
	"carevia/internal/domain/media"
	"carevia/internal/domain/story"
)

// Field input types
const (
	InputText     = "text"
	InputTextarea = "textarea"
	InputSelect   = "select"
	InputDate     = "date"
)

// FormOption is one choice of a select field.
type FormOption struct {
	Value    string
	Label    string
	Selected bool
}

// FormField is one pre-populated input of an edit form.
// INVARIANT: Name, Label, Value and option strings are HTML-escaped
type FormField struct {
	Name     string
	Label    string
	Type     string
	Value    string
	Required bool
	Options  []FormOption
}

// EditForm is a display-ready edit form for one record.
type EditForm struct {
	Collection    string
	ID            string
	Action        string
	Fields        []FormField
	MediaSrc      string
	HasMedia      bool
	MediaRequired bool
}

// GalleryEditForm builds the edit form for a gallery item.
func GalleryEditForm(item gallery.Item) EditForm {
	options := make([]FormOption, 0, len(gallery.ValidCategories))
	for _, c := range gallery.ValidCategories {
		options = append(options, FormOption{
			Value:    Escape(c),
			Label:    Escape(gallery.CategoryLabels[c]),
			Selected: c == item.Category,
		})
	}
	form := newForm(gallery.Collection, item.ID, item.Media)
	form.Fields = []FormField{
		{Name: "title", Label: "Title", Type: InputText, Value: Escape(item.Title), Required: true},
		{Name: "description", Label: "Description", Type: InputTextarea, Value: Escape(item.Description)},
		{Name: "category", Label: "Category", Type: InputSelect, Options: options},
	}
	return form
}

// StoryEditForm builds the edit form for a story.
func StoryEditForm(s story.Story) EditForm {
	form := newForm(story.Collection, s.ID, s.Media)
	date := ""
	if d := s.DisplayDate(); !d.IsZero() {
		date = d.Format("2006-01-02")
	}
	form.Fields = []FormField{
		{Name: "title", Label: "Title", Type: InputText, Value: Escape(s.Title), Required: true},
		{Name: "author", Label: "Author", Type: InputText, Value: Escape(s.Author), Required: true},
		{Name: "content", Label: "Story", Type: InputTextarea, Value: Escape(s.Content), Required: true},
		{Name: "date", Label: "Date", Type: InputDate, Value: Escape(date)},
	}
	return form
}

func newForm(collection, id string, ref media.Reference) EditForm {
	form := EditForm{
		Collection: collection,
		ID:         Escape(id),
		Action:     Escape("/admin/" + collection + "/" + url.PathEscape(id)),
	}
	if media.SafeSrc(ref.Src) {
		form.MediaSrc = Escape(ref.Src)
		form.HasMedia = true
	}
	return form
}
