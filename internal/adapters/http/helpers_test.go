package web

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"carevia/internal/adapters/email"
	"carevia/internal/adapters/identity"
	mediaAdapter "carevia/internal/adapters/media"
	"carevia/internal/adapters/storage"
	"carevia/internal/adapters/storage/blob"
	"carevia/internal/adapters/storage/record"
	"carevia/internal/application/collection"
	"carevia/internal/domain/contact"
	"carevia/internal/domain/gallery"
	"carevia/internal/domain/session"
	"carevia/internal/domain/story"
)

var fixedTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

const testPassword = "2024"

// testEnv is a server over in-memory SQLite with inline media.
type testEnv struct {
	server   *Server
	handler  http.Handler
	contacts *record.LocalStore[contact.Message]
	email    *email.NoopSender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := storage.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	blobs := blob.NewSQLiteStore(db)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	verifier, err := identity.NewFixedVerifier("admin", string(hash))
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}

	n := 0
	ids := func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	ingestor := mediaAdapter.NewInlineIngestor(0)
	contacts := record.NewLocalStore[contact.Message](blobs, contact.Collection)
	sender := email.NewNoopSender()

	s, err := New(Deps{
		Gallery: collection.NewGallery(collection.Deps[gallery.Item]{
			Store:      record.NewLocalStore[gallery.Item](blobs, gallery.Collection),
			Ingestor:   ingestor,
			GenerateID: ids,
			Now:        fixedNow,
		}),
		Stories: collection.NewStories(collection.Deps[story.Story]{
			Store:      record.NewLocalStore[story.Story](blobs, story.Collection),
			Ingestor:   ingestor,
			GenerateID: ids,
			Now:        fixedNow,
		}),
		Contacts:   contacts,
		Verifier:   verifier,
		Email:      sender,
		NotifyTo:   []string{"team@carevia.org"},
		CSRFKey:    []byte("0123456789abcdef0123456789abcdef"),
		GenerateID: ids,
		Now:        fixedNow,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &testEnv{server: s, handler: s.routes(), contacts: contacts, email: sender}
}

// adminCookie creates a session and returns its cookie.
func (e *testEnv) adminCookie(t *testing.T) *http.Cookie {
	t.Helper()
	var sc session.Context
	sc.Login("admin", fixedTime)
	token, err := e.server.sessions.Create(sc)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return &http.Cookie{Name: "carevia_session", Value: token}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return e.do(req)
}

func (e *testEnv) postForm(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return e.do(req)
}

// postMultipart submits fields and, when file is non-nil, an "image" part.
func (e *testEnv) postMultipart(t *testing.T, path string, fields map[string]string, filename string, file []byte, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		part.Write(file)
	}
	mw.Close()

	req := httptest.NewRequest("POST", path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return e.do(req)
}

// flash returns the decoded notice or error of a redirect.
func flash(t *testing.T, rr *httptest.ResponseRecorder, key string) string {
	t.Helper()
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303; body %q", rr.Code, rr.Body.String())
	}
	loc, err := url.Parse(rr.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	return loc.Query().Get(key)
}
