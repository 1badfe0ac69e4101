package api

import (
	"context"
	"net/http"
)

// VideoDependencies opens and closes a session's video popup.
type VideoDependencies interface {
	OpenVideo(ctx context.Context, id, url string) (Snapshot, error)
	CloseVideo(ctx context.Context, id string) (Snapshot, error)
}

// VideoHandler handles video popup requests.
type VideoHandler struct {
	deps VideoDependencies
}

// NewVideoHandler creates a new video handler.
func NewVideoHandler(deps VideoDependencies) *VideoHandler {
	return &VideoHandler{deps: deps}
}

// HandleOpen handles POST /sessions/{id}/video with {"url": ...}.
func (h *VideoHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	const op = "api.open_video"
	var req linkRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	snap, err := h.deps.OpenVideo(r.Context(), r.PathValue("id"), req.URL)
	respond(w, op, snap, err)
}

// HandleClose handles DELETE /sessions/{id}/video.
func (h *VideoHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	const op = "api.close_video"
	snap, err := h.deps.CloseVideo(r.Context(), r.PathValue("id"))
	respond(w, op, snap, err)
}
