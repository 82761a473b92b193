// Package site serves the embedded dashboard page and its assets.
package site

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFS embed.FS

// ErrGenerate is returned when the page template cannot be rendered.
var ErrGenerate = errors.New("dashboard page generation failed")

const defaultTitle = "SpaceX Launch Records Dashboard"

// Option applies a configuration option to the dashboard page.
type Option func(*page)

// WithTitle sets the page heading.
func WithTitle(title string) Option {
	return func(p *page) {
		if title != "" {
			p.Title = title
		}
	}
}

type page struct {
	Title string
}

// FS returns an http.FileSystem rooted at the embedded static directory.
func FS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return http.FS(staticFS)
	}
	return http.FS(sub)
}

// Register attaches the dashboard routes to mux: the page at / and its
// assets under /static/. Any other path not claimed by a more specific
// route is not found.
func Register(_ context.Context, mux *http.ServeMux, opts ...Option) error {
	if mux == nil {
		panic("mux is nil")
	}

	h, err := NewRootHandler(opts...)
	if err != nil {
		return err
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(FS())))
	mux.HandleFunc("/", h.HandleRoot)
	return nil
}

// RootHandler renders the dashboard page.
type RootHandler struct {
	body []byte
}

// NewRootHandler renders the page template once.
func NewRootHandler(opts ...Option) (*RootHandler, error) {
	p := page{Title: defaultTitle}
	for _, opt := range opts {
		opt(&p)
	}

	tmpl, err := template.ParseFS(staticFS, "static/index.html")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerate, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerate, err)
	}
	return &RootHandler{body: buf.Bytes()}, nil
}

// HandleRoot handles GET / requests.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(h.body)
}
