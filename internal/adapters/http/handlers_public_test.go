package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"carevia/internal/domain/gallery"
	"carevia/internal/domain/media"
	"carevia/internal/domain/story"
)

func pngUpload() *media.Upload {
	return &media.Upload{Filename: "photo.png", ContentType: "image/png", Data: pngBytes}
}

// TestIndex_RendersEscapedCards verifies record text is escaped on the public page.
func TestIndex_RendersEscapedCards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.server.deps.Gallery.Add(ctx, gallery.Fields{Title: "<script>alert(1)</script>"}, pngUpload()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := env.server.deps.Stories.Add(ctx, story.Fields{Title: "Hope", Author: "Ana", Content: "We did it"}, nil); err != nil {
		t.Fatalf("Add story: %v", err)
	}

	rr := env.get("/", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	if strings.Contains(body, "<script>alert(1)</script>") {
		t.Error("title rendered unescaped")
	}
	if !strings.Contains(body, "&lt;script&gt;alert(1)&lt;/script&gt;") {
		t.Error("escaped title missing")
	}
	if !strings.Contains(body, "By Ana") {
		t.Error("story card missing")
	}
	if !strings.Contains(body, `src="data:image/png;base64,`) {
		t.Error("inline image missing")
	}
}

// TestIndex_ShowsFlashEscaped verifies query-string notices cannot inject markup.
func TestIndex_ShowsFlashEscaped(t *testing.T) {
	env := newTestEnv(t)

	rr := env.get("/?error="+url.QueryEscape("<b>bad</b>"), nil)

	body := rr.Body.String()
	if strings.Contains(body, "<b>bad</b>") || !strings.Contains(body, "&lt;b&gt;bad&lt;/b&gt;") {
		t.Errorf("flash not escaped: %q", body)
	}
}

// TestContactSubmit_Stores verifies a complete submission is stored and notified.
func TestContactSubmit_Stores(t *testing.T) {
	env := newTestEnv(t)

	rr := env.postForm("/contact", url.Values{
		"name":    {"Ana"},
		"email":   {"ana@example.org"},
		"phone":   {"021 555 1234"},
		"subject": {"Volunteering"},
		"message": {"I would like to help."},
	}, nil)

	if notice := flash(t, rr, "notice"); !strings.Contains(notice, "Thank you") {
		t.Errorf("notice = %q", notice)
	}
	msgs, _ := env.contacts.List(context.Background())
	if len(msgs) != 1 || msgs[0].Name != "Ana" {
		t.Fatalf("stored = %+v, want one message from Ana", msgs)
	}
	if len(env.email.Sent()) != 1 {
		t.Errorf("notifications = %d, want 1", len(env.email.Sent()))
	}
}

// TestContactSubmit_MissingField verifies all five fields are required.
func TestContactSubmit_MissingField(t *testing.T) {
	env := newTestEnv(t)

	rr := env.postForm("/contact", url.Values{
		"name":    {"Ana"},
		"email":   {"ana@example.org"},
		"subject": {"Volunteering"},
		"message": {"I would like to help."},
	}, nil)

	if msg := flash(t, rr, "error"); msg != "Please fill in all required fields." {
		t.Errorf("error = %q", msg)
	}
	if msgs, _ := env.contacts.List(context.Background()); len(msgs) != 0 {
		t.Errorf("stored %d messages, want 0", len(msgs))
	}
}

// TestStoryDetail_RendersMarkdownOverEscapedContent verifies stored markup never reaches the page.
func TestStoryDetail_RendersMarkdownOverEscapedContent(t *testing.T) {
	env := newTestEnv(t)
	st, err := env.server.deps.Stories.Add(context.Background(), story.Fields{
		Title:   "Our year",
		Author:  "Ben",
		Content: "**bold** <b>x</b>",
	}, nil)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	rr := env.get("/stories/"+st.ID, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "<strong>bold</strong>") {
		t.Error("markdown not rendered")
	}
	if strings.Contains(body, "<b>x</b>") {
		t.Error("raw HTML reached the page")
	}
	if !strings.Contains(body, "By Ben") {
		t.Error("author missing")
	}
}

// TestStoryDetail_NotFound verifies unknown ids return 404.
func TestStoryDetail_NotFound(t *testing.T) {
	env := newTestEnv(t)
	if rr := env.get("/stories/missing", nil); rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

// TestAPIGallery_NewestFirst verifies the JSON list order and empty form.
func TestAPIGallery_NewestFirst(t *testing.T) {
	env := newTestEnv(t)

	rr := env.get("/api/gallery", nil)
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("empty body = %q, want []", rr.Body.String())
	}

	ctx := context.Background()
	env.server.deps.Gallery.Add(ctx, gallery.Fields{Title: "First"}, pngUpload())
	env.server.deps.Gallery.Add(ctx, gallery.Fields{Title: "Second", Category: gallery.CategoryTeam}, pngUpload())

	rr = env.get("/api/gallery", nil)
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("content type = %q", rr.Header().Get("Content-Type"))
	}
	var items []gallery.Item
	if err := json.Unmarshal(rr.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 || items[0].Title != "Second" || items[1].Title != "First" {
		t.Errorf("items = %+v, want Second then First", items)
	}
}

// TestAPIStory_NotFound verifies the JSON error mapping.
func TestAPIStory_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rr := env.get("/api/stories/missing", nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"error":"not found"`) {
		t.Errorf("body = %q", rr.Body.String())
	}
}

// TestStatic_ServesScript verifies embedded assets are served.
func TestStatic_ServesScript(t *testing.T) {
	env := newTestEnv(t)

	rr := env.get("/static/site.js", nil)

	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "data-confirm") {
		t.Errorf("status = %d, body %q", rr.Code, rr.Body.String())
	}
}
