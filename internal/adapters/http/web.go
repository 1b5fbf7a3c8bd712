// Package web serves the public Carevia site and the admin panel.
package web

import (
	"bytes"
	"context"
	"crypto/rand"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"carevia/internal/adapters/email"
	"carevia/internal/adapters/http/middleware"
	"carevia/internal/adapters/identity"
	contactStore "carevia/internal/adapters/storage/contact"
	"carevia/internal/application/collection"
	mediaDomain "carevia/internal/domain/media"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// pages rendered inside layout.html
var pageNames = []string{"index.html", "story.html", "login.html", "admin.html", "edit.html", "contacts.html"}

// mdRenderer renders story bodies. Raw HTML is never emitted (WithUnsafe is not set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Deps holds the collaborators of the web server.
type Deps struct {
	Gallery  *collection.Gallery
	Stories  *collection.Stories
	Contacts contactStore.Store
	Verifier identity.Verifier
	Email    email.Sender // optional
	NotifyTo []string     // contact notification recipients

	// MediaDir is served under /media/ when non-empty.
	MediaDir       string
	MaxUploadBytes int

	// CSRFKey must be 32 bytes; a random key is generated when empty.
	CSRFKey            []byte
	SecureCookies      bool
	TrustedOrigins     []string
	SlowRequestMs      int
	RateLimitPerSecond int

	GenerateID func() string
	Now        func() time.Time
}

// Server holds the parsed templates, sessions and collaborators.
type Server struct {
	deps      Deps
	sessions  *middleware.SessionStore
	templates map[string]*template.Template
}

// New parses templates and prepares a server.
// PRE: deps.Gallery, deps.Stories, deps.Contacts and deps.Verifier are non-nil
func New(deps Deps) (*Server, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.RateLimitPerSecond <= 0 {
		deps.RateLimitPerSecond = 10
	}
	if len(deps.CSRFKey) == 0 {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate csrf key: %w", err)
		}
		slog.Warn("config_event", "event", "random_csrf_key", "detail", "forms break across restarts; set CAREVIA_CSRF_KEY")
		deps.CSRFKey = key
	}
	if len(deps.CSRFKey) != 32 {
		return nil, fmt.Errorf("csrf key must be 32 bytes, got %d", len(deps.CSRFKey))
	}

	tmpls, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Server{
		deps:      deps,
		sessions:  middleware.NewSessionStore(deps.Now),
		templates: tmpls,
	}, nil
}

// NewRouter builds a server and returns its full handler.
func NewRouter(ctx context.Context, deps Deps) (http.Handler, error) {
	s, err := New(deps)
	if err != nil {
		return nil, err
	}
	return s.Router(ctx), nil
}

// Sessions exposes the session store.
func (s *Server) Sessions() *middleware.SessionStore {
	return s.sessions
}

// Router wraps the routes in the hardening middleware. ctx bounds background goroutines.
func (s *Server) Router(ctx context.Context) http.Handler {
	limiter := middleware.NewRateLimiter(ctx, s.deps.RateLimitPerSecond, time.Second)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.Timing(s.deps.SlowRequestMs))
	r.Use(middleware.RateLimit(limiter))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.BodyLimit(s.bodyLimit, http.HandlerFunc(s.handleBodyTooLarge)))
	r.Use(middleware.CSRF(s.deps.CSRFKey, s.deps.SecureCookies, s.deps.TrustedOrigins))
	r.Mount("/", s.routes())
	return r
}

// formBodyLimit caps request bodies outside the upload routes.
const formBodyLimit = 64 << 10

// uploadAnchor returns the admin section of an upload route, or "" for other paths.
func uploadAnchor(path string) string {
	for _, name := range []string{"gallery", "stories"} {
		prefix := "/admin/" + name
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return name
		}
	}
	return ""
}

// bodyLimit sizes the body cap from the upload limit on collection routes.
func (s *Server) bodyLimit(r *http.Request) int64 {
	if uploadAnchor(r.URL.Path) != "" {
		return int64(s.maxUploadBytes() + multipartOverhead)
	}
	return formBodyLimit
}

func (s *Server) handleBodyTooLarge(w http.ResponseWriter, r *http.Request) {
	if anchor := uploadAnchor(r.URL.Path); anchor != "" {
		redirectFlash(w, r, "/admin", "error", sentence(mediaDomain.ErrTooLarge.Error()), anchor)
		return
	}
	http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
}

// routes registers every page, API and admin route behind session loading.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Auth(s.sessions))

	staticSub, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))
	if s.deps.MediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(s.deps.MediaDir))))
	}

	r.Get("/", s.handleIndex)
	r.Post("/contact", s.handleContactSubmit)
	r.Get("/stories/{id}", s.handleStoryDetail)

	r.Route("/api", func(r chi.Router) {
		r.Get("/gallery", s.handleAPIGallery)
		r.Get("/gallery/{id}", s.handleAPIGalleryItem)
		r.Get("/stories", s.handleAPIStories)
		r.Get("/stories/{id}", s.handleAPIStory)
	})

	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get("/", s.handleAdmin)
		r.Route("/gallery", func(r chi.Router) { mountCollection(r, s.galleryRoutes()) })
		r.Route("/stories", func(r chi.Router) { mountCollection(r, s.storyRoutes()) })
		r.Get("/contacts", s.handleContacts)
		r.Get("/contacts/export.csv", s.handleContactsExport)
		r.Post("/contacts/{id}/delete", s.handleContactDelete)
	})
	return r
}

func parseTemplates() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"formatDate": func(t time.Time) string { return t.Format("2 Jan 2006, 15:04") },
	}
	out := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

// page is the data passed to every template.
type page struct {
	Title     string
	LoggedIn  bool
	Username  string
	CSRFField template.HTML
	Notice    string
	Error     string
	Data      any
}

func (s *Server) newPage(r *http.Request, title string, data any) page {
	sc, ok := middleware.GetSessionFromContext(r.Context())
	q := r.URL.Query()
	return page{
		Title:     title,
		LoggedIn:  ok,
		Username:  sc.Username,
		CSRFField: csrf.TemplateField(r),
		Notice:    q.Get("notice"),
		Error:     q.Get("error"),
		Data:      data,
	}
}

func (s *Server) render(w http.ResponseWriter, status int, name string, p page) {
	t, ok := s.templates[name]
	if !ok {
		internalError(w, fmt.Errorf("unknown template %s", name))
		return
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, p); err != nil {
		internalError(w, fmt.Errorf("render %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// redirectFlash redirects to path with a notice or error query parameter.
// anchor, when non-empty, is appended as a fragment.
func redirectFlash(w http.ResponseWriter, r *http.Request, path, key, msg, anchor string) {
	target := path
	if msg != "" {
		target += "?" + url.Values{key: {msg}}.Encode()
	}
	if anchor != "" {
		target += "#" + anchor
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("internal_error", "error", err.Error())
	}
}

// writeJSONError maps a controller error class to an HTTP status.
func writeJSONError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"
	switch {
	case errors.Is(err, collection.ErrValidation):
		status, msg = http.StatusBadRequest, collection.Cause(err).Error()
	case errors.Is(err, collection.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, collection.ErrIngestion), errors.Is(err, collection.ErrPersistence):
		status, msg = http.StatusBadGateway, "storage unavailable"
	}
	if status >= 500 {
		slog.Error("internal_error", "error", err.Error())
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// flashMessage turns a controller error into a message safe to show the admin.
func flashMessage(err error) string {
	switch {
	case errors.Is(err, collection.ErrValidation), isUploadRejection(err):
		return sentence(collection.Cause(err).Error())
	case errors.Is(err, collection.ErrIngestion):
		slog.Error("internal_error", "error", err.Error())
		return "The image could not be uploaded. Please try again."
	case errors.Is(err, collection.ErrNotFound):
		return "That item no longer exists."
	default:
		slog.Error("internal_error", "error", err.Error())
		return "Saving failed because storage is unavailable. Please try again."
	}
}

func isUploadRejection(err error) bool {
	return errors.Is(err, mediaDomain.ErrEmptyFile) ||
		errors.Is(err, mediaDomain.ErrNotImage) ||
		errors.Is(err, mediaDomain.ErrTooLarge) ||
		errors.Is(err, mediaDomain.ErrMissingName)
}

// sentence capitalises the first letter and ensures a trailing full stop.
func sentence(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	if last := b[len(b)-1]; last != '.' && last != '!' && last != '?' {
		b = append(b, '.')
	}
	return string(b)
}
