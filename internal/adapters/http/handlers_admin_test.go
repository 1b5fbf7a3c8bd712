package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"carevia/internal/domain/contact"
	"carevia/internal/domain/gallery"
	"carevia/internal/domain/session"
	"carevia/internal/domain/story"
)

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)

	rr := env.postForm("/login", url.Values{"username": {"admin"}, "password": {testPassword}}, nil)

	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/admin" {
		t.Fatalf("status = %d, location %q", rr.Code, rr.Header().Get("Location"))
	}
	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "carevia_session" {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatal("session cookie not set")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	admin := env.get("/admin/", cookie)
	if admin.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", admin.Code)
	}
	if !strings.Contains(admin.Body.String(), "DELETE ALL") {
		t.Error("dashboard missing clear confirmation hint")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)

	rr := env.postForm("/login", url.Values{"username": {"admin"}, "password": {"nope"}}, nil)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Invalid username or password.") {
		t.Error("error message missing")
	}
	if env.server.sessions.Len() != 0 {
		t.Error("no session should be created")
	}
}

func TestLoginPage_RedirectsWhenSignedIn(t *testing.T) {
	env := newTestEnv(t)

	rr := env.get("/login", env.adminCookie(t))

	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/admin" {
		t.Errorf("status = %d, location %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestAdmin_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/admin/", "/admin/contacts", "/admin/contacts/export.csv"} {
		rr := env.get(path, nil)
		if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
			t.Errorf("%s: status = %d, location %q", path, rr.Code, rr.Header().Get("Location"))
		}
	}

	rr := env.postForm("/admin/gallery/clear", url.Values{"confirm": {"DELETE ALL"}}, nil)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Errorf("clear without session: status = %d", rr.Code)
	}
}

func TestAdmin_ExpiredSessionRejected(t *testing.T) {
	env := newTestEnv(t)
	var sc session.Context
	sc.Login("admin", fixedTime.Add(-9*time.Hour))
	token, err := env.server.sessions.Create(sc)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	rr := env.get("/admin/", &http.Cookie{Name: "carevia_session", Value: token})

	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Errorf("status = %d, location %q", rr.Code, rr.Header().Get("Location"))
	}
	if env.server.sessions.Len() != 0 {
		t.Error("expired session should be dropped")
	}
}

func TestGalleryAdd_WithImage(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.adminCookie(t)

	rr := env.postMultipart(t, "/admin/gallery/", map[string]string{
		"title":    "Food drive",
		"category": gallery.CategoryCommunity,
	}, "drive.png", pngBytes, cookie)

	if notice := flash(t, rr, "notice"); notice != "Gallery item added successfully!" {
		t.Fatalf("notice = %q", notice)
	}
	items, _ := env.server.deps.Gallery.List(context.Background())
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].Category != gallery.CategoryCommunity || items[0].Media.ContentType != "image/png" {
		t.Errorf("item = %+v", items[0])
	}
}

func TestGalleryAdd_MissingImage(t *testing.T) {
	env := newTestEnv(t)

	rr := env.postMultipart(t, "/admin/gallery/", map[string]string{"title": "No photo"}, "", nil, env.adminCookie(t))

	if msg := flash(t, rr, "error"); msg != "Please choose an image file." {
		t.Errorf("error = %q", msg)
	}
	if items, _ := env.server.deps.Gallery.List(context.Background()); len(items) != 0 {
		t.Errorf("items = %d, want 0", len(items))
	}
}

func TestGalleryAdd_RejectsNonImage(t *testing.T) {
	env := newTestEnv(t)

	rr := env.postMultipart(t, "/admin/gallery/", map[string]string{"title": "Notes"}, "notes.png", []byte("just some text"), env.adminCookie(t))

	if msg := flash(t, rr, "error"); !strings.Contains(msg, "image") {
		t.Errorf("error = %q", msg)
	}
	if items, _ := env.server.deps.Gallery.List(context.Background()); len(items) != 0 {
		t.Errorf("items = %d, want 0", len(items))
	}
}

func TestGalleryAdd_RejectsFileOverUploadLimit(t *testing.T) {
	env := newTestEnv(t)
	env.server.deps.MaxUploadBytes = 1024
	big := append(append([]byte{}, pngBytes...), make([]byte, 4096)...)

	rr := env.postMultipart(t, "/admin/gallery/", map[string]string{"title": "Huge"}, "huge.png", big, env.adminCookie(t))

	if msg := flash(t, rr, "error"); msg != "File exceeds the upload size limit." {
		t.Errorf("error = %q", msg)
	}
	if items, _ := env.server.deps.Gallery.List(context.Background()); len(items) != 0 {
		t.Errorf("items = %d, want 0", len(items))
	}
}

func TestStoryAdd_WithoutImage(t *testing.T) {
	env := newTestEnv(t)

	rr := env.postForm("/admin/stories/", url.Values{
		"title":   {"Spring"},
		"author":  {"Cleo"},
		"content": {"A good season."},
		"date":    {"2024-03-21"},
	}, env.adminCookie(t))

	if notice := flash(t, rr, "notice"); notice != "Story added successfully!" {
		t.Fatalf("notice = %q", notice)
	}
	stories, _ := env.server.deps.Stories.List(context.Background())
	if len(stories) != 1 || !stories[0].Date.Equal(time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("stories = %+v", stories)
	}
}

func TestStoryAdd_InvalidDate(t *testing.T) {
	env := newTestEnv(t)

	rr := env.postForm("/admin/stories/", url.Values{
		"title":   {"Spring"},
		"author":  {"Cleo"},
		"content": {"A good season."},
		"date":    {"21/03/2024"},
	}, env.adminCookie(t))

	if msg := flash(t, rr, "error"); msg != "Please enter a valid date." {
		t.Errorf("error = %q", msg)
	}
}

func TestGalleryEdit_PrepopulatedAndEscaped(t *testing.T) {
	env := newTestEnv(t)
	item, err := env.server.deps.Gallery.Add(context.Background(), gallery.Fields{Title: `"Quoted" <b>`}, pngUpload())
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	rr := env.get("/admin/gallery/"+item.ID+"/edit", env.adminCookie(t))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `action="/admin/gallery/`+item.ID+`"`) {
		t.Error("form action missing")
	}
	if strings.Contains(body, `"Quoted" <b>`) {
		t.Error("title rendered unescaped")
	}
	if !strings.Contains(body, "&lt;b&gt;") {
		t.Error("escaped title missing")
	}
}

func TestGalleryEdit_Missing(t *testing.T) {
	env := newTestEnv(t)

	rr := env.get("/admin/gallery/missing/edit", env.adminCookie(t))

	if msg := flash(t, rr, "error"); msg != "That item no longer exists." {
		t.Errorf("error = %q", msg)
	}
}

func TestGalleryUpdate_KeepsMedia(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item, err := env.server.deps.Gallery.Add(ctx, gallery.Fields{Title: "Before"}, pngUpload())
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	rr := env.postMultipart(t, "/admin/gallery/"+item.ID, map[string]string{
		"title":    "After",
		"category": gallery.CategoryTeam,
	}, "", nil, env.adminCookie(t))

	if notice := flash(t, rr, "notice"); notice != "Gallery item updated successfully!" {
		t.Fatalf("notice = %q", notice)
	}
	got, err := env.server.deps.Gallery.Get(ctx, item.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "After" || got.Category != gallery.CategoryTeam {
		t.Errorf("fields not updated: %+v", got)
	}
	if got.Media != item.Media {
		t.Error("media should be kept when no new file is chosen")
	}
	if !got.CreatedAt.Equal(item.CreatedAt) {
		t.Error("created date should not change")
	}
}

func TestGalleryUpdate_ValidationReturnsToEditForm(t *testing.T) {
	env := newTestEnv(t)
	item, _ := env.server.deps.Gallery.Add(context.Background(), gallery.Fields{Title: "Before"}, pngUpload())

	rr := env.postMultipart(t, "/admin/gallery/"+item.ID, map[string]string{"title": "  "}, "", nil, env.adminCookie(t))

	if msg := flash(t, rr, "error"); msg != "Please enter an image title." {
		t.Errorf("error = %q", msg)
	}
	if loc := rr.Header().Get("Location"); !strings.HasPrefix(loc, "/admin/gallery/"+item.ID+"/edit?") {
		t.Errorf("location = %q, want the edit form", loc)
	}
}

func TestStoryDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	st, _ := env.server.deps.Stories.Add(ctx, story.Fields{Title: "T", Author: "A", Content: "C"}, nil)
	cookie := env.adminCookie(t)

	rr := env.postForm("/admin/stories/"+st.ID+"/delete", nil, cookie)
	if notice := flash(t, rr, "notice"); notice != "Story deleted." {
		t.Errorf("notice = %q", notice)
	}
	if stories, _ := env.server.deps.Stories.List(ctx); len(stories) != 0 {
		t.Errorf("stories = %d, want 0", len(stories))
	}

	rr = env.postForm("/admin/stories/"+st.ID+"/delete", nil, cookie)
	if msg := flash(t, rr, "error"); msg != "That item no longer exists." {
		t.Errorf("second delete error = %q", msg)
	}
}

func TestClear_RequiresConfirmation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.server.deps.Gallery.Add(ctx, gallery.Fields{Title: "One"}, pngUpload())
	env.server.deps.Gallery.Add(ctx, gallery.Fields{Title: "Two"}, pngUpload())
	cookie := env.adminCookie(t)

	rr := env.postForm("/admin/gallery/clear", url.Values{"confirm": {"delete all"}}, cookie)
	if msg := flash(t, rr, "error"); msg != "Type DELETE ALL to confirm clearing everything." {
		t.Errorf("error = %q", msg)
	}
	if items, _ := env.server.deps.Gallery.List(ctx); len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}

	rr = env.postForm("/admin/gallery/clear", url.Values{"confirm": {"DELETE ALL"}}, cookie)
	if notice := flash(t, rr, "notice"); notice != "All gallery entries were deleted." {
		t.Errorf("notice = %q", notice)
	}
	if items, _ := env.server.deps.Gallery.List(ctx); len(items) != 0 {
		t.Errorf("items = %d, want 0", len(items))
	}
}

func seedContacts(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	msgs := []contact.Message{
		{ID: "c1", Name: "Ana", Email: "ana@example.org", Phone: "1", Subject: "Volunteer", Message: "Hi", CreatedAt: fixedTime},
		{ID: "c2", Name: "Ben", Email: "ben@example.org", Phone: "2", Subject: "Donation, monthly", Message: `Say "hello"`, CreatedAt: fixedTime.Add(time.Hour)},
	}
	for _, m := range msgs {
		if _, err := env.contacts.Insert(ctx, m); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
}

func TestContacts_Search(t *testing.T) {
	env := newTestEnv(t)
	seedContacts(t, env)

	rr := env.get("/admin/contacts?q=donation", env.adminCookie(t))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "ben@example.org") {
		t.Error("matching message missing")
	}
	if strings.Contains(body, "ana@example.org") {
		t.Error("non-matching message shown")
	}
}

func TestContactsExport_CSV(t *testing.T) {
	env := newTestEnv(t)
	seedContacts(t, env)

	rr := env.get("/admin/contacts/export.csv", env.adminCookie(t))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="carevia-contacts-2024-06-01.csv"` {
		t.Errorf("disposition = %q", cd)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"Donation, monthly"`) || !strings.Contains(body, `"Say ""hello"""`) {
		t.Errorf("csv not quoted: %q", body)
	}
}

func TestContactDelete(t *testing.T) {
	env := newTestEnv(t)
	seedContacts(t, env)
	cookie := env.adminCookie(t)

	rr := env.postForm("/admin/contacts/c1/delete", nil, cookie)
	if notice := flash(t, rr, "notice"); notice != "Message deleted." {
		t.Errorf("notice = %q", notice)
	}
	msgs, _ := env.contacts.List(context.Background())
	if len(msgs) != 1 || msgs[0].ID != "c2" {
		t.Errorf("remaining = %+v", msgs)
	}

	rr = env.postForm("/admin/contacts/c1/delete", nil, cookie)
	if msg := flash(t, rr, "error"); msg != "That message no longer exists." {
		t.Errorf("error = %q", msg)
	}
}

func TestLogout_EndsSession(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.adminCookie(t)

	rr := env.postForm("/logout", nil, cookie)

	if notice := flash(t, rr, "notice"); notice != "You have been signed out." {
		t.Errorf("notice = %q", notice)
	}
	if env.server.sessions.Len() != 0 {
		t.Error("session not deleted")
	}
	if rr := env.get("/admin/", cookie); rr.Code != http.StatusSeeOther {
		t.Errorf("admin after logout: status = %d, want 303", rr.Code)
	}
}
