package web

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/playwright-community/playwright-go"

	"carevia/internal/domain/gallery"
)

// browserApp is the full router on a local listener driven by headless Chromium.
type browserApp struct {
	BaseURL string
	env     *testEnv
	Browser playwright.Browser
}

func newBrowserApp(t *testing.T) *browserApp {
	t.Helper()
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv := httptest.NewUnstartedServer(nil)
	env.server.deps.TrustedOrigins = []string{srv.Listener.Addr().String()}
	env.server.deps.RateLimitPerSecond = 1000
	srv.Config.Handler = env.server.Router(ctx)
	srv.Start()
	t.Cleanup(srv.Close)

	pw, err := playwright.Run()
	if err != nil {
		t.Skipf("playwright unavailable: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		pw.Stop()
		t.Skipf("chromium unavailable: %v", err)
	}
	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
	})

	return &browserApp{BaseURL: srv.URL, env: env, Browser: browser}
}

func (a *browserApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login signs in through the form and waits for the admin page.
func (a *browserApp) login(t *testing.T, page playwright.Page) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("#username").Fill("admin"); err != nil {
		t.Fatalf("failed to fill username: %v", err)
	}
	if err := page.Locator("#password").Fill(testPassword); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator(".login button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click sign in: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+"/admin", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to admin: %v", err)
	}
}

// addGalleryItem fills the add form and double-clicks submit.
func (a *browserApp) addGalleryItem(t *testing.T, page playwright.Page, title string) {
	t.Helper()
	imagePath := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(imagePath, pngBytes, 0o600); err != nil {
		t.Fatalf("write image: %v", err)
	}
	if err := page.Locator("#gallery-title").Fill(title); err != nil {
		t.Fatalf("failed to fill title: %v", err)
	}
	if err := page.Locator("#gallery-image").SetInputFiles(imagePath); err != nil {
		t.Fatalf("failed to choose image: %v", err)
	}
	if err := page.Locator("#gallery form.edit-form button[type=submit]").Dblclick(); err != nil {
		t.Fatalf("failed to submit: %v", err)
	}
	if err := page.WaitForURL(regexp.MustCompile(`/admin\?notice=`), playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("add did not redirect with a notice: %v", err)
	}
	page.WaitForLoadState()
}

func (a *browserApp) galleryItems(t *testing.T) []gallery.Item {
	t.Helper()
	items, err := a.env.server.deps.Gallery.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	return items
}

func TestBrowser_DoubleSubmitAddsOneRecord(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newBrowserApp(t)
	page := app.newPage(t)
	app.login(t, page)

	app.addGalleryItem(t, page, "Food drive")
	// Give a second request time to land if one was sent.
	page.WaitForTimeout(500)

	if items := app.galleryItems(t); len(items) != 1 {
		t.Fatalf("items = %d, want 1 after a double click", len(items))
	}
	if err := page.Locator("#gallery .card >> text=Food drive").WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(3000),
	}); err != nil {
		t.Errorf("new item not shown on the admin page: %v", err)
	}
}

func TestBrowser_DismissedDeleteKeepsRecord(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newBrowserApp(t)
	page := app.newPage(t)
	app.login(t, page)
	app.addGalleryItem(t, page, "Keep me")

	prompts := make(chan string, 4)
	page.OnDialog(func(d playwright.Dialog) {
		prompts <- d.Message()
		d.Dismiss()
	})

	button := page.Locator("#gallery .card-actions button[type=submit]").First()
	if err := button.Click(); err != nil {
		t.Fatalf("failed to click delete: %v", err)
	}
	page.WaitForTimeout(500)

	var seen []string
	for len(prompts) > 0 {
		seen = append(seen, <-prompts)
	}
	if len(seen) != 1 || seen[0] != "Delete this item?" {
		t.Errorf("prompts = %q, want one delete confirmation", seen)
	}
	if items := app.galleryItems(t); len(items) != 1 {
		t.Errorf("items = %d, want 1 after dismissing the confirmation", len(items))
	}
	disabled, err := button.IsDisabled()
	if err != nil {
		t.Fatalf("IsDisabled: %v", err)
	}
	if disabled {
		t.Error("delete button stays disabled after a dismissed confirmation")
	}
}
