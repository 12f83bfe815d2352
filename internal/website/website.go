// Package website is the example Handler: two fixed pages plus static files
// from a public directory.
package website

import (
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"dqx0.com/go/webserver/minihttp"
)

const htmlType = "text/html; charset=utf-8"

// Handler serves GET / and GET /hello from memory and any other GET path
// from files under its public directory. Everything else is a 404.
// It keeps no mutable state and is safe for concurrent use.
type Handler struct {
	publicPath string
}

func New(publicPath string) *Handler {
	return &Handler{publicPath: publicPath}
}

func (h *Handler) HandleRequest(r *minihttp.Request) *minihttp.Response {
	if r.Method() != minihttp.GET {
		return minihttp.NewEmptyResponse(minihttp.StatusNotFound)
	}
	switch r.Path() {
	case "/":
		return page("<h1>Welcome!</h1>")
	case "/hello":
		return page("<h1>Hello</h1>")
	default:
		return h.serveFile(r.Path())
	}
}

// HandleBadRequest answers with the short reason for the parse failure.
func (h *Handler) HandleBadRequest(err minihttp.ParseError) *minihttp.Response {
	resp := minihttp.NewTextResponse(minihttp.StatusBadRequest, err.Message())
	resp.SetHeader("Content-Type", "text/plain; charset=utf-8")
	return resp
}

// serveFile reads target through an os.Root, so neither ".." nor a symlink
// can lead outside the public directory. Files that cannot be opened are
// reported as missing.
func (h *Handler) serveFile(target string) *minihttp.Response {
	name, ok := h.fileName(target)
	if !ok {
		return minihttp.NewEmptyResponse(minihttp.StatusNotFound)
	}
	root, err := os.OpenRoot(h.publicPath)
	if err != nil {
		return minihttp.NewEmptyResponse(minihttp.StatusNotFound)
	}
	defer root.Close()
	f, err := root.Open(name)
	if err != nil {
		return minihttp.NewEmptyResponse(minihttp.StatusNotFound)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return minihttp.NewEmptyResponse(minihttp.StatusInternalServerError)
	}
	if st.IsDir() {
		return minihttp.NewEmptyResponse(minihttp.StatusNotFound)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return minihttp.NewEmptyResponse(minihttp.StatusInternalServerError)
	}
	resp := minihttp.NewResponse(minihttp.StatusOK, data)
	resp.SetHeader("Content-Type", contentType(name))
	return resp
}

// fileName maps a request path to a name relative to the public directory.
// Paths with a ".." segment are refused outright.
func (h *Handler) fileName(target string) (string, bool) {
	if h.publicPath == "" || !strings.HasPrefix(target, "/") {
		return "", false
	}
	rel := strings.TrimLeft(target, "/")
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." {
			return "", false
		}
	}
	rel = path.Clean(rel)
	if rel == "." || rel == "" {
		return "", false
	}
	return filepath.FromSlash(rel), true
}

func page(body string) *minihttp.Response {
	resp := minihttp.NewTextResponse(minihttp.StatusOK, body)
	resp.SetHeader("Content-Type", htmlType)
	return resp
}

func contentType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
