package boundary

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePublic(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestAPIPathsRejected(t *testing.T) {
	dir := writePublic(t, map[string]string{"index.html": "<html></html>"})
	router := NewRouter(dir)

	for _, path := range []string{"/api/anything", "/api/models/install", "/api"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.JSONEq(t,
			`{"ok":false,"error":"No API routes are enabled in dictation-only mode."}`,
			rec.Body.String(), path)
	}
}

func TestStaticFileServed(t *testing.T) {
	dir := writePublic(t, map[string]string{
		"index.html": "<html>app</html>",
		"app.css":    "body{}",
		"app.js":     "console.log(1)",
	})
	router := NewRouter(dir)

	cases := []struct {
		path        string
		contentType string
		body        string
	}{
		{"/index.html", "text/html; charset=utf-8", "<html>app</html>"},
		{"/app.css", "text/css; charset=utf-8", "body{}"},
		{"/app.js", "application/javascript", "console.log(1)"},
		{"/", "text/html; charset=utf-8", "<html>app</html>"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, tc.path)
		assert.Equal(t, tc.contentType, rec.Header().Get("Content-Type"), tc.path)
		assert.Equal(t, tc.body, rec.Body.String(), tc.path)
	}
}

func TestSPAFallback(t *testing.T) {
	dir := writePublic(t, map[string]string{"index.html": "<html>app</html>"})
	router := NewRouter(dir)

	// HTML navigation to a client route falls back to the shell.
	req := httptest.NewRequest(http.MethodGet, "/settings/dictation", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>app</html>", rec.Body.String())

	// Extension-less path falls back even without the Accept header.
	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A missing asset with an extension stays a 404.
	req = httptest.NewRequest(http.MethodGet, "/missing.png", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTraversalRejected(t *testing.T) {
	dir := writePublic(t, map[string]string{"index.html": "<html>app</html>"})
	router := NewRouter(dir)

	for _, path := range []string{
		"/../etc/hosts",
		"/static/../../etc/hosts",
		"/%2e%2e/etc/hosts",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.URL.Path = path // bypass client-side normalization
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestSafePublicPathProperty(t *testing.T) {
	root := t.TempDir()

	inside := []string{"/", "/index.html", "/a/b/c.js", "/a//b.css", "/./x.png"}
	for _, p := range inside {
		resolved, ok := SafePublicPath(root, p)
		require.True(t, ok, p)
		rel, err := filepath.Rel(root, resolved)
		require.NoError(t, err, p)
		assert.False(t, filepath.IsAbs(rel), p)
		assert.NotContains(t, rel, "..", p)
	}

	outside := []string{"/../x", "/a/../../x", "/%2e%2e/x", "/a/%2e%2e/%2e%2e/x"}
	for _, p := range outside {
		_, ok := SafePublicPath(root, p)
		assert.False(t, ok, p)
	}
}
