package web

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"carevia/internal/adapters/http/middleware"
	"carevia/internal/adapters/storage/record"
	"carevia/internal/application/collection"
	"carevia/internal/application/listutil"
	"carevia/internal/application/orchestrators"
	"carevia/internal/application/projections"
	"carevia/internal/domain/contact"
	"carevia/internal/domain/gallery"
	"carevia/internal/domain/media"
	"carevia/internal/domain/story"
)

// ClearConfirmation must be typed into the clear form before a collection is emptied.
const ClearConfirmation = "DELETE ALL"

// multipartOverhead is allowed on top of the upload limit for the text fields.
const multipartOverhead = 1 << 20

type loginData struct {
	Username string
}

// handleLoginPage renders the sign-in form.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, "login.html", s.newPage(r, "Admin sign in", loginData{}))
}

// handleLogin verifies credentials and starts an 8h admin session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 16<<10)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")

	sc, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Username: username,
		Password: r.PostFormValue("password"),
	}, orchestrators.LoginDeps{Verifier: s.deps.Verifier, Now: s.deps.Now})
	if err != nil {
		p := s.newPage(r, "Admin sign in", loginData{Username: username})
		status := http.StatusUnauthorized
		switch {
		case errors.Is(err, orchestrators.ErrNotAdmin):
			p.Error = sentence(orchestrators.ErrNotAdmin.Error())
			status = http.StatusForbidden
		case errors.Is(err, orchestrators.ErrInvalidCredentials):
			p.Error = sentence(orchestrators.ErrInvalidCredentials.Error())
		default:
			p.Error = sentence(orchestrators.ErrLoginUnavailable.Error())
			status = http.StatusServiceUnavailable
		}
		s.render(w, status, "login.html", p)
		return
	}

	token, err := s.sessions.Create(sc)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token, s.deps.SecureCookies)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// handleLogout ends the session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		s.sessions.Delete(cookie.Value)
	}
	if sc, ok := middleware.GetSessionFromContext(r.Context()); ok {
		slog.Info("auth_event", "event", "logout", "username", sc.Username)
	}
	middleware.ClearSessionCookie(w, s.deps.SecureCookies)
	redirectFlash(w, r, "/", "notice", "You have been signed out.", "")
}

type categoryOption struct {
	Value string
	Label string
}

type adminData struct {
	GalleryCount      int
	StoryCount        int
	ContactCount      int
	Gallery           template.HTML
	Stories           template.HTML
	Categories        []categoryOption
	ExpiresAt         time.Time
	MaxUploadMB       int
	ClearConfirmation string
}

// handleAdmin renders the dashboard with both collections and the add forms.
func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := s.newPage(r, "Admin", nil)
	sc, _ := middleware.GetSessionFromContext(ctx)

	items, err := s.deps.Gallery.List(ctx)
	if err != nil {
		p.Error = flashMessage(err)
	}
	stories, err := s.deps.Stories.List(ctx)
	if err != nil {
		p.Error = flashMessage(err)
	}
	contacts, err := orchestrators.ExecuteListContacts(ctx, orchestrators.ListContactsDeps{ContactStore: s.deps.Contacts})
	if err != nil {
		slog.Error("internal_error", "error", err.Error())
	}

	categories := make([]categoryOption, 0, len(gallery.ValidCategories))
	for _, c := range gallery.ValidCategories {
		categories = append(categories, categoryOption{Value: c, Label: gallery.CategoryLabels[c]})
	}

	p.Data = adminData{
		GalleryCount:      len(items),
		StoryCount:        len(stories),
		ContactCount:      len(contacts),
		Gallery:           projections.RenderAdminCards(projections.GalleryCards(items), p.CSRFField),
		Stories:           projections.RenderAdminCards(projections.StoryCards(stories), p.CSRFField),
		Categories:        categories,
		ExpiresAt:         sc.ExpiresAt(),
		MaxUploadMB:       s.maxUploadBytes() >> 20,
		ClearConfirmation: ClearConfirmation,
	}
	s.render(w, http.StatusOK, "admin.html", p)
}

func (s *Server) maxUploadBytes() int {
	if s.deps.MaxUploadBytes > 0 {
		return s.deps.MaxUploadBytes
	}
	return media.DefaultMaxBytes
}

// collectionRoutes binds one collection controller to its admin form handling.
type collectionRoutes[T record.Record, F any] struct {
	s      *Server
	ctrl   *collection.Controller[T, F]
	noun   string // used in flash messages, e.g. "Gallery item"
	parse  func(r *http.Request) (F, error)
	form   func(T) projections.EditForm
	anchor string
}

func (s *Server) galleryRoutes() collectionRoutes[gallery.Item, gallery.Fields] {
	return collectionRoutes[gallery.Item, gallery.Fields]{
		s:      s,
		ctrl:   s.deps.Gallery,
		noun:   "Gallery item",
		parse:  parseGalleryFields,
		form:   projections.GalleryEditForm,
		anchor: "gallery",
	}
}

func (s *Server) storyRoutes() collectionRoutes[story.Story, story.Fields] {
	return collectionRoutes[story.Story, story.Fields]{
		s:      s,
		ctrl:   s.deps.Stories,
		noun:   "Story",
		parse:  parseStoryFields,
		form:   projections.StoryEditForm,
		anchor: "stories",
	}
}

func mountCollection[T record.Record, F any](r chi.Router, c collectionRoutes[T, F]) {
	r.Post("/", c.add)
	r.Post("/clear", c.clear)
	r.Get("/{id}/edit", c.edit)
	r.Post("/{id}", c.update)
	r.Post("/{id}/delete", c.delete)
}

func (c collectionRoutes[T, F]) fail(w http.ResponseWriter, r *http.Request, path, msg string) {
	redirectFlash(w, r, path, "error", msg, c.anchor)
}

func (c collectionRoutes[T, F]) add(w http.ResponseWriter, r *http.Request) {
	f, up, err := c.readForm(w, r)
	if err != nil {
		c.fail(w, r, "/admin", sentence(err.Error()))
		return
	}
	if _, err := c.ctrl.Add(r.Context(), f, up); err != nil {
		c.fail(w, r, "/admin", flashMessage(err))
		return
	}
	redirectFlash(w, r, "/admin", "notice", c.noun+" added successfully!", c.anchor)
}

type editData struct {
	Form   template.HTML
	Anchor string
}

func (c collectionRoutes[T, F]) edit(w http.ResponseWriter, r *http.Request) {
	item, err := c.ctrl.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			c.fail(w, r, "/admin", flashMessage(err))
			return
		}
		internalError(w, err)
		return
	}
	p := c.s.newPage(r, "Edit "+strings.ToLower(c.noun), nil)
	p.Data = editData{
		Form:   projections.RenderEditForm(c.form(item), p.CSRFField),
		Anchor: c.anchor,
	}
	c.s.render(w, http.StatusOK, "edit.html", p)
}

func (c collectionRoutes[T, F]) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	editPath := "/admin/" + c.ctrl.Collection() + "/" + url.PathEscape(id) + "/edit"

	f, up, err := c.readForm(w, r)
	if err != nil {
		redirectFlash(w, r, editPath, "error", sentence(err.Error()), "")
		return
	}
	if _, err := c.ctrl.Update(r.Context(), id, f, up); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			c.fail(w, r, "/admin", flashMessage(err))
			return
		}
		redirectFlash(w, r, editPath, "error", flashMessage(err), "")
		return
	}
	redirectFlash(w, r, "/admin", "notice", c.noun+" updated successfully!", c.anchor)
}

func (c collectionRoutes[T, F]) delete(w http.ResponseWriter, r *http.Request) {
	if err := c.ctrl.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		c.fail(w, r, "/admin", flashMessage(err))
		return
	}
	redirectFlash(w, r, "/admin", "notice", c.noun+" deleted.", c.anchor)
}

func (c collectionRoutes[T, F]) clear(w http.ResponseWriter, r *http.Request) {
	if strings.TrimSpace(r.PostFormValue("confirm")) != ClearConfirmation {
		c.fail(w, r, "/admin", fmt.Sprintf("Type %s to confirm clearing everything.", ClearConfirmation))
		return
	}
	if err := c.ctrl.Clear(r.Context()); err != nil {
		c.fail(w, r, "/admin", flashMessage(err))
		return
	}
	redirectFlash(w, r, "/admin", "notice", "All "+c.ctrl.Collection()+" entries were deleted.", c.anchor)
}

// readForm parses a multipart admin form into fields and an optional upload.
func (c collectionRoutes[T, F]) readForm(w http.ResponseWriter, r *http.Request) (F, *media.Upload, error) {
	var zero F
	limit := c.s.maxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, int64(limit+multipartOverhead))
	if err := r.ParseMultipartForm(int64(limit)); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return zero, nil, media.ErrTooLarge
		}
		return zero, nil, errors.New("the form could not be read, please try again")
	}
	f, err := c.parse(r)
	if err != nil {
		return zero, nil, err
	}
	up, err := readUpload(r, limit)
	if err != nil {
		return zero, nil, err
	}
	return f, up, nil
}

// readUpload returns the "image" file, or nil when none was chosen.
// POST: files over limit return media.ErrTooLarge
func readUpload(r *http.Request, limit int) (*media.Upload, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New("the image could not be read, please try again")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, int64(limit)+1))
	if err != nil {
		return nil, errors.New("the image could not be read, please try again")
	}
	if len(data) > limit {
		return nil, media.ErrTooLarge
	}
	return &media.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func parseGalleryFields(r *http.Request) (gallery.Fields, error) {
	return gallery.Fields{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
	}, nil
}

func parseStoryFields(r *http.Request) (story.Fields, error) {
	f := story.Fields{
		Title:   r.FormValue("title"),
		Author:  r.FormValue("author"),
		Content: r.FormValue("content"),
	}
	if raw := strings.TrimSpace(r.FormValue("date")); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return story.Fields{}, errors.New("please enter a valid date")
		}
		f.Date = d
	}
	return f, nil
}

type contactsData struct {
	Rows   []contact.Message
	Info   listutil.PageInfo
	Search string
	Prev   string
	Next   string
}

// handleContacts lists contact submissions newest first with search and paging.
func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	msgs, err := orchestrators.ExecuteListContacts(r.Context(), orchestrators.ListContactsDeps{ContactStore: s.deps.Contacts})
	if err != nil {
		internalError(w, err)
		return
	}

	params := listutil.ParseParams(r.URL.Query())
	msgs = listutil.Filter(msgs, params.Search, func(m contact.Message) []string {
		return []string{m.Name, m.Email, m.Subject, m.Message}
	})
	pageMsgs, info := listutil.Paginate(msgs, params)

	data := contactsData{Rows: pageMsgs, Info: info, Search: params.Search}
	if info.HasPrev() {
		data.Prev = contactsPageURL(params, info.Page-1)
	}
	if info.HasNext() {
		data.Next = contactsPageURL(params, info.Page+1)
	}
	s.render(w, http.StatusOK, "contacts.html", s.newPage(r, "Contact messages", data))
}

func contactsPageURL(p listutil.Params, page int) string {
	q := url.Values{"page": {fmt.Sprint(page)}, "per_page": {fmt.Sprint(p.PerPage)}}
	if p.Search != "" {
		q.Set("q", p.Search)
	}
	return "/admin/contacts?" + q.Encode()
}

// handleContactsExport downloads every contact submission as CSV.
func (s *Server) handleContactsExport(w http.ResponseWriter, r *http.Request) {
	msgs, err := orchestrators.ExecuteListContacts(r.Context(), orchestrators.ListContactsDeps{ContactStore: s.deps.Contacts})
	if err != nil {
		internalError(w, err)
		return
	}
	filename := "carevia-contacts-" + s.deps.Now().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := projections.WriteContactsCSV(w, msgs); err != nil {
		slog.Error("internal_error", "error", err.Error())
		return
	}
	slog.Info("contact_event", "event", "exported", "count", len(msgs))
}

// handleContactDelete removes one contact submission.
func (s *Server) handleContactDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.deps.Contacts.Delete(r.Context(), id); err != nil {
		if errors.Is(err, record.ErrNotFound) {
			redirectFlash(w, r, "/admin/contacts", "error", "That message no longer exists.", "")
			return
		}
		internalError(w, err)
		return
	}
	slog.Info("contact_event", "event", "deleted", "id", id)
	redirectFlash(w, r, "/admin/contacts", "notice", "Message deleted.", "")
}
