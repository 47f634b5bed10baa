package frontend

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/jo-hoe/gojournal/internal/backend/database"
	"github.com/jo-hoe/gojournal/internal/common"
	"github.com/jo-hoe/gojournal/internal/core"
	"github.com/labstack/echo/v4"
)

func newTestFrontend(t *testing.T) (*echo.Echo, *core.CoreService) {
	t.Helper()

	config := core.DefaultConfig()
	config.Timezone = "UTC"
	config.Database = core.Database{Type: database.TypeSQLite, ConnectionString: ":memory:"}

	coreService, err := core.NewCoreService(context.Background(), config)
	if err != nil {
		t.Fatalf("NewCoreService error: %v", err)
	}
	t.Cleanup(func() { _ = coreService.Close() })

	e := echo.New()
	e.Validator = &common.GenericEchoValidator{}
	NewFrontendService(config, coreService).SetRoutes(e)
	return e, coreService
}

func postEntry(e *echo.Echo, text string) *httptest.ResponseRecorder {
	form := url.Values{"text": {text}}
	req := httptest.NewRequest(http.MethodPost, "/htmx/entries", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRootRedirect(t *testing.T) {
	e, _ := newTestFrontend(t)
	rec := get(e, "/")
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("expected 301, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/"+MainPageName {
		t.Errorf("expected redirect to /%s, got %q", MainPageName, loc)
	}
}

func TestIndex_EmptyJournal(t *testing.T) {
	e, _ := newTestFrontend(t)
	rec := get(e, "/"+MainPageName)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"No journal entries yet.", `hx-post="/htmx/entries"`, `href="/api/export/json"`, `href="/api/export/docx"`, "sqlite"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected index to contain %q", want)
		}
	}
}

func TestSaveEntry_ReturnsResultAndNewestFirstList(t *testing.T) {
	e, coreService := newTestFrontend(t)

	for _, text := range []string{"a", "b", "c"} {
		rec := postEntry(e, text)
		if rec.Code != http.StatusOK {
			t.Fatalf("save %q: expected 200, got %d: %s", text, rec.Code, rec.Body.String())
		}
		body := rec.Body.String()
		if !strings.Contains(body, `id="save-result"`) || !strings.Contains(body, `hx-swap-oob="true"`) {
			t.Errorf("expected save result and out-of-band list, got %s", body)
		}
	}

	if got := len(coreService.Entries()); got != 3 {
		t.Fatalf("expected 3 entries, got %d", got)
	}

	body := get(e, "/htmx/entries").Body.String()
	ic, ib, ia := strings.Index(body, ">c<"), strings.Index(body, ">b<"), strings.Index(body, ">a<")
	if ic < 0 || ib < 0 || ia < 0 || !(ic < ib && ib < ia) {
		t.Errorf("expected entries rendered newest first, got %s", body)
	}
}

func TestSaveEntry_EscapesMarkup(t *testing.T) {
	e, _ := newTestFrontend(t)
	rec := postEntry(e, `<script>alert("x")</script>`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := get(e, "/"+MainPageName).Body.String()
	if strings.Contains(body, `<script>alert`) {
		t.Fatalf("entry text must be escaped, got %s", body)
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Errorf("expected escaped entry text in page")
	}
}

func TestSaveEntry_TooLong(t *testing.T) {
	e, coreService := newTestFrontend(t)
	rec := postEntry(e, strings.Repeat("x", core.MaxEntryLength+1))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "too long") {
		t.Errorf("expected length hint, got %q", rec.Body.String())
	}
	if len(coreService.Entries()) != 0 {
		t.Errorf("rejected entry must not be listed")
	}
}

func TestSaveEntry_RejectionMessages(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		message     string
	}{
		{
			name:        "malformed json",
			contentType: echo.MIMEApplicationJSON,
			body:        `{"text":`,
			message:     "could not be read",
		},
		{
			name:        "control character",
			contentType: echo.MIMEApplicationForm,
			body:        url.Values{"text": {"beep\x07"}}.Encode(),
			message:     "characters that cannot be saved",
		},
		{
			name:        "invalid utf-8",
			contentType: echo.MIMEApplicationForm,
			body:        "text=hi%FF",
			message:     "characters that cannot be saved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, coreService := newTestFrontend(t)

			req := httptest.NewRequest(http.MethodPost, "/htmx/entries", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, tt.contentType)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.message) {
				t.Errorf("expected %q in %q", tt.message, rec.Body.String())
			}
			if strings.Contains(rec.Body.String(), "too long") {
				t.Errorf("unexpected length hint for %s", tt.name)
			}
			if len(coreService.Entries()) != 0 {
				t.Errorf("rejected entry must not be listed")
			}
		})
	}
}

func TestSaveEntry_StorageFailureKeepsList(t *testing.T) {
	e, coreService := newTestFrontend(t)
	if rec := postEntry(e, "persisted"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// closing the store makes every following write fail
	_ = coreService.Close()

	rec := postEntry(e, "not persisted")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "try again") {
		t.Errorf("expected retry hint, got %q", rec.Body.String())
	}
	entries := coreService.Entries()
	if len(entries) != 1 || entries[0].Text != "persisted" {
		t.Errorf("expected only the persisted entry, got %+v", entries)
	}
}

func TestIconSVG(t *testing.T) {
	e, _ := newTestFrontend(t)
	rec := get(e, "/icon.svg")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != mimeSVG {
		t.Errorf("expected %s, got %s", mimeSVG, ct)
	}
}

func TestIconPNG(t *testing.T) {
	e, _ := newTestFrontend(t)

	tests := []struct {
		target string
		size   int
	}{
		{target: "/icon.png", size: defaultIconSize},
		{target: "/icon.png?size=32", size: 32},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(e, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
			if err != nil {
				t.Fatalf("response is not a PNG: %v", err)
			}
			if b := img.Bounds(); b.Dx() != tt.size || b.Dy() != tt.size {
				t.Errorf("expected %dx%d, got %dx%d", tt.size, tt.size, b.Dx(), b.Dy())
			}
		})
	}
}

func TestIconPNG_InvalidSize(t *testing.T) {
	e, _ := newTestFrontend(t)
	for _, target := range []string{"/icon.png?size=abc", "/icon.png?size=4", "/icon.png?size=4096"} {
		if rec := get(e, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestIconRenderer_Caches(t *testing.T) {
	svg, err := assetsFS.ReadFile("views/icon.svg")
	if err != nil {
		t.Fatalf("read icon: %v", err)
	}
	r := newIconRenderer(svg)

	first, err := r.PNG(16)
	if err != nil {
		t.Fatalf("PNG error: %v", err)
	}
	second, err := r.PNG(16)
	if err != nil {
		t.Fatalf("PNG error: %v", err)
	}
	if &first[0] != &second[0] {
		t.Errorf("expected cached bytes to be reused")
	}
}
