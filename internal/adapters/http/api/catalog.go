package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/runboard/internal/domain/types"
)

// CatalogDependencies reads a session's game catalog.
type CatalogDependencies interface {
	Games(ctx context.Context, id string, more bool) (types.GamePage, error)
	Popular(ctx context.Context, id string) (types.Carousel, error)
	Carousel(ctx context.Context, id string, step int) (types.Carousel, error)
	Home(ctx context.Context, id string) (types.Home, error)
}

// CatalogHandler handles catalog requests.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandleGames handles GET /sessions/{id}/games?more=true.
func (h *CatalogHandler) HandleGames(w http.ResponseWriter, r *http.Request) {
	const op = "api.games"
	more := false
	if raw := r.URL.Query().Get("more"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeFailure(w, WrapKind(op, ErrBadRequest, err))
			return
		}
		more = v
	}
	page, err := h.deps.Games(r.Context(), r.PathValue("id"), more)
	respond(w, op, page, err)
}

// HandlePopular handles GET /sessions/{id}/popular.
func (h *CatalogHandler) HandlePopular(w http.ResponseWriter, r *http.Request) {
	const op = "api.popular"
	c, err := h.deps.Popular(r.Context(), r.PathValue("id"))
	respond(w, op, c, err)
}

// HandleCarouselNext handles POST /sessions/{id}/carousel/next.
func (h *CatalogHandler) HandleCarouselNext(w http.ResponseWriter, r *http.Request) {
	const op = "api.carousel_next"
	c, err := h.deps.Carousel(r.Context(), r.PathValue("id"), 1)
	respond(w, op, c, err)
}

// HandleCarouselPrev handles POST /sessions/{id}/carousel/prev.
func (h *CatalogHandler) HandleCarouselPrev(w http.ResponseWriter, r *http.Request) {
	const op = "api.carousel_prev"
	c, err := h.deps.Carousel(r.Context(), r.PathValue("id"), -1)
	respond(w, op, c, err)
}

// HandleHome handles GET /sessions/{id}/home.
func (h *CatalogHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	const op = "api.home"
	home, err := h.deps.Home(r.Context(), r.PathValue("id"))
	respond(w, op, home, err)
}
