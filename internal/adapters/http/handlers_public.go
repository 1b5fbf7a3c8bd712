package web

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"carevia/internal/application/collection"
	"carevia/internal/application/orchestrators"
	"carevia/internal/application/projections"
	"carevia/internal/domain/contact"
	"carevia/internal/domain/gallery"
	mediaDomain "carevia/internal/domain/media"
	"carevia/internal/domain/story"
)

type indexData struct {
	Gallery template.HTML
	Stories template.HTML
}

// handleIndex renders the gallery grid, the stories and the contact form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := s.newPage(r, "Carevia", nil)

	items, err := s.deps.Gallery.List(ctx)
	if err != nil {
		slog.Error("internal_error", "error", err.Error())
		p.Error = "The gallery could not be loaded right now."
	}
	stories, err := s.deps.Stories.List(ctx)
	if err != nil {
		slog.Error("internal_error", "error", err.Error())
		p.Error = "Stories could not be loaded right now."
	}

	p.Data = indexData{
		Gallery: projections.RenderCards(projections.GalleryCards(items)),
		Stories: projections.RenderCards(projections.StoryCards(stories)),
	}
	s.render(w, http.StatusOK, "index.html", p)
}

// handleContactSubmit stores a contact form submission.
func (s *Server) handleContactSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := r.ParseForm(); err != nil {
		redirectFlash(w, r, "/", "error", "Your message could not be read. Please try again.", "contact")
		return
	}

	deps := orchestrators.SubmitContactDeps{
		ContactStore: s.deps.Contacts,
		EmailSender:  s.deps.Email,
		NotifyTo:     s.deps.NotifyTo,
		GenerateID:   s.deps.GenerateID,
		Now:          s.deps.Now,
	}
	input := orchestrators.SubmitContactInput{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Phone:   r.PostFormValue("phone"),
		Subject: r.PostFormValue("subject"),
		Message: r.PostFormValue("message"),
	}

	if _, err := orchestrators.ExecuteSubmitContact(r.Context(), input, deps); err != nil {
		switch {
		case errors.Is(err, contact.ErrMissingFields),
			errors.Is(err, contact.ErrInvalidEmail),
			errors.Is(err, contact.ErrFieldTooLong):
			redirectFlash(w, r, "/", "error", sentence(errors.Unwrap(err).Error()), "contact")
		default:
			redirectFlash(w, r, "/", "error", "Sorry, your message could not be sent. Please try again later.", "contact")
		}
		return
	}
	redirectFlash(w, r, "/", "notice", "Thank you for your message! We will get back to you soon.", "contact")
}

type storyData struct {
	Title    string
	Author   string
	Date     string
	Body     template.HTML
	MediaSrc template.URL
	HasMedia bool
}

// handleStoryDetail renders one story in full. The content is escaped before
// markdown conversion so no stored markup reaches the page.
func (s *Server) handleStoryDetail(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Stories.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, err)
		return
	}

	var body bytes.Buffer
	if err := mdRenderer.Convert([]byte(projections.Escape(st.Content)), &body); err != nil {
		internalError(w, err)
		return
	}
	data := storyData{
		Title:  st.Title,
		Author: st.Author,
		Date:   st.DisplayDate().Format(projections.DateLayout),
		Body:   template.HTML(body.String()),
	}
	if !st.Media.IsZero() && mediaDomain.SafeSrc(st.Media.Src) {
		data.MediaSrc = template.URL(st.Media.Src)
		data.HasMedia = true
	}
	s.render(w, http.StatusOK, "story.html", s.newPage(r, st.Title, data))
}

// handleAPIGallery returns all gallery items newest first.
func (s *Server) handleAPIGallery(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Gallery.List(r.Context())
	if err != nil {
		writeJSONError(w, err)
		return
	}
	if items == nil {
		items = []gallery.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

// handleAPIGalleryItem returns one gallery item.
func (s *Server) handleAPIGalleryItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.deps.Gallery.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleAPIStories returns all stories newest first.
func (s *Server) handleAPIStories(w http.ResponseWriter, r *http.Request) {
	stories, err := s.deps.Stories.List(r.Context())
	if err != nil {
		writeJSONError(w, err)
		return
	}
	if stories == nil {
		stories = []story.Story{}
	}
	writeJSON(w, http.StatusOK, stories)
}

// handleAPIStory returns one story.
func (s *Server) handleAPIStory(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Stories.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
