// Package site serves the embedded leaderboard viewer.
package site

import (
	"context"
	"net/http"
)

// Register attaches the viewer routes to mux:
//
//	GET /          -> index.html
//	GET /assets/   -> images referenced by catalog cards
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	root := NewRootHandler()
	mux.HandleFunc("GET /{$}", root.HandleRoot)
	mux.Handle("GET /assets/", http.FileServer(FS()))
}

// RootHandler serves the viewer page.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{files: http.FileServer(FS())}
}

// HandleRoot handles GET / with the embedded index page.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	h.files.ServeHTTP(w, r)
}
