// Package boundary is the static-file HTTP layer (B1): SPA fallback over a
// public root with strict traversal safety, and a fixed rejection for API
// paths in dictation-only mode.
package boundary

import (
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AustinKelsay/dicktaint/pkg/logger"
)

const apiRejectionBody = `{"ok":false,"error":"No API routes are enabled in dictation-only mode."}`

var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript",
	".json": "application/json",
	".svg":  "image/svg+xml",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// NewRouter builds the boundary handler over publicDir.
func NewRouter(publicDir string) http.Handler {
	r := chi.NewRouter()

	r.Handle("/api", http.HandlerFunc(rejectAPI))
	r.Handle("/api/*", http.HandlerFunc(rejectAPI))
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		serveStatic(w, req, publicDir)
	})

	return r
}

// NewServer returns an http.Server bound per Config.Host/Port with its
// error log routed through the engine logger.
func NewServer(addr, publicDir string) *http.Server {
	return &http.Server{
		Addr:     addr,
		Handler:  NewRouter(publicDir),
		ErrorLog: log.New(logger.GetStandardLogWriter(logger.LevelWarning, logger.CategoryHTTP), "", 0),
	}
}

func rejectAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(apiRejectionBody))
}

func serveStatic(w http.ResponseWriter, req *http.Request, publicDir string) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resolved, ok := SafePublicPath(publicDir, req.URL.Path)
	if !ok {
		logger.Warning(logger.CategoryHTTP, "rejected unsafe path %q", req.URL.Path)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if fileExists(resolved) {
		serveFile(w, req, resolved)
		return
	}

	// SPA fallback: HTML navigations and extension-less routes fall through
	// to the app shell; direct asset misses stay 404.
	if wantsHTML(req) || filepath.Ext(req.URL.Path) == "" {
		index := filepath.Join(publicDir, "index.html")
		if fileExists(index) {
			serveFile(w, req, index)
			return
		}
	}
	http.NotFound(w, req)
}

func serveFile(w http.ResponseWriter, req *http.Request, path string) {
	f, err := os.Open(path)
	if err != nil {
		http.NotFound(w, req)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		http.NotFound(w, req)
		return
	}
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(path))]; ok {
		w.Header().Set("Content-Type", ct)
	}
	// ServeContent, unlike ServeFile, does not redirect /index.html to ./.
	http.ServeContent(w, req, info.Name(), info.ModTime(), f)
}

// SafePublicPath URL-decodes and normalizes reqPath against root, returning
// ok=false when the resolved path would escape the root.
func SafePublicPath(root, reqPath string) (string, bool) {
	decoded, err := url.PathUnescape(reqPath)
	if err != nil {
		return "", false
	}
	// A NUL in the path is never legitimate and upsets the filesystem layer.
	if strings.ContainsRune(decoded, 0) {
		return "", false
	}
	// Any dot-dot segment is a traversal attempt, even one that a Clean
	// would swallow at the root boundary.
	for _, seg := range strings.Split(decoded, "/") {
		if seg == ".." {
			return "", false
		}
	}

	cleaned := filepath.Clean("/" + decoded)
	if cleaned == "/" {
		cleaned = "/index.html"
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	resolved := filepath.Join(absRoot, filepath.FromSlash(cleaned))

	rel, err := filepath.Rel(absRoot, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return resolved, true
}

func wantsHTML(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "text/html")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
