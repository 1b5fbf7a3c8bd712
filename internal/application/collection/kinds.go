package collection

import (
	"time"

	"carevia/internal/domain/gallery"
	"carevia/internal/domain/media"
	"carevia/internal/domain/story"
)

// Gallery manages gallery items.
type Gallery = Controller[gallery.Item, gallery.Fields]

// Stories manages stories.
type Stories = Controller[story.Story, story.Fields]

// GalleryKind requires a title and an image; category defaults to events.
func GalleryKind() Kind[gallery.Item, gallery.Fields] {
	return Kind[gallery.Item, gallery.Fields]{
		Collection:    gallery.Collection,
		Normalize:     gallery.Fields.Normalize,
		Validate:      gallery.Fields.Validate,
		RequiresMedia: true,
		MissingMedia:  gallery.ErrMissingImage,
		New: func(id string, f gallery.Fields, ref media.Reference, now time.Time) gallery.Item {
			item := gallery.Item{ID: id, Media: ref, CreatedAt: now}
			item.Apply(f)
			return item
		},
		Apply: func(item gallery.Item, f gallery.Fields) gallery.Item {
			item.Apply(f)
			return item
		},
		Media: func(item gallery.Item) media.Reference { return item.Media },
		WithMedia: func(item gallery.Item, ref media.Reference) gallery.Item {
			item.Media = ref
			return item
		},
	}
}

// StoryKind requires title, author and content; the image is optional.
func StoryKind() Kind[story.Story, story.Fields] {
	return Kind[story.Story, story.Fields]{
		Collection: story.Collection,
		Normalize:  story.Fields.Normalize,
		Validate:   story.Fields.Validate,
		New: func(id string, f story.Fields, ref media.Reference, now time.Time) story.Story {
			s := story.Story{ID: id, Media: ref, Date: now, CreatedAt: now}
			s.Apply(f)
			return s
		},
		Apply: func(s story.Story, f story.Fields) story.Story {
			s.Apply(f)
			return s
		},
		Media: func(s story.Story) media.Reference { return s.Media },
		WithMedia: func(s story.Story, ref media.Reference) story.Story {
			s.Media = ref
			return s
		},
	}
}

// NewGallery creates the gallery controller.
func NewGallery(deps Deps[gallery.Item]) *Gallery {
	return New(GalleryKind(), deps)
}

// NewStories creates the stories controller.
func NewStories(deps Deps[story.Story]) *Stories {
	return New(StoryKind(), deps)
}
