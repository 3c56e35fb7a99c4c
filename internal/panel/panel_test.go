package panel

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHandlerServesRoot(t *testing.T) {
	w := get(t, Handler(""), "/")

	if w.Code != http.StatusOK {
		t.Fatalf("GET /: got status %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<!DOCTYPE html>") || !strings.Contains(body, "app.js") {
		t.Error("GET /: console page not served")
	}
	if got := w.Header().Get("Cache-Control"); got != "no-cache, must-revalidate" {
		t.Errorf("Cache-Control = %q", got)
	}
}

func TestHandlerServesAssets(t *testing.T) {
	h := Handler("")

	for _, asset := range []string{"/app.js", "/style.css"} {
		w := get(t, h, asset)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s: got status %d, want 200", asset, w.Code)
		}
		if w.Body.Len() == 0 {
			t.Errorf("GET %s: empty response body", asset)
		}
	}

	// The script talks to the versioned API only.
	if body := get(t, h, "/app.js").Body.String(); !strings.Contains(body, `"/api/v1"`) {
		t.Error("app.js does not target /api/v1")
	}
}

func TestHandlerUnknownPathIsNotFound(t *testing.T) {
	h := Handler("")

	for _, target := range []string{"/nonexistent", "/some/deep/route", "/../../etc/passwd"} {
		if w := get(t, h, target); w.Code != http.StatusNotFound {
			t.Errorf("GET %s: got status %d, want 404", target, w.Code)
		}
	}
}

func TestHandlerRejectsWrites(t *testing.T) {
	w := httptest.NewRecorder()
	Handler("").ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /: got status %d, want 405", w.Code)
	}
}

func TestHandlerFilesystemMode(t *testing.T) {
	dir := t.TempDir()
	indexContent := `<!DOCTYPE html><html><body>filesystem console</body></html>`
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(indexContent), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "test.js"), []byte("console.log('test')"), 0644); err != nil {
		t.Fatal(err)
	}

	h := Handler(dir)

	w := get(t, h, "/")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "filesystem console") {
		t.Errorf("filesystem GET /: status %d body %q", w.Code, w.Body.String())
	}
	if w := get(t, h, "/test.js"); w.Code != http.StatusOK {
		t.Errorf("filesystem GET /test.js: got status %d, want 200", w.Code)
	}
	// Embedded assets are not mixed in.
	if w := get(t, h, "/app.js"); w.Code != http.StatusNotFound {
		t.Errorf("filesystem GET /app.js: got status %d, want 404", w.Code)
	}
}

func TestHandlerInvalidDirFallsBackToEmbed(t *testing.T) {
	w := get(t, Handler("/nonexistent/dir/that/does/not/exist"), "/")

	if w.Code != http.StatusOK {
		t.Errorf("invalid dir GET /: got status %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<!DOCTYPE html>") {
		t.Error("invalid dir: didn't fall back to embedded index.html")
	}
}
