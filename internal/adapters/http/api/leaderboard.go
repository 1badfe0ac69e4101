package api

import (
	"context"
	"net/http"
)

// LeaderboardDependencies drives a session's leaderboard.
type LeaderboardDependencies interface {
	Snapshot(ctx context.Context, id string) (Snapshot, error)
	Load(ctx context.Context, id, link string) (Snapshot, error)
	LoadGame(ctx context.Context, id, gameID string) (Snapshot, error)
	SelectCategory(ctx context.Context, id, link string) (Snapshot, error)
	NextPage(ctx context.Context, id string) (Snapshot, error)
	PreviousPage(ctx context.Context, id string) (Snapshot, error)
}

type linkRequest struct {
	URL string `json:"url" validate:"required"`
}

type gameRequest struct {
	GameID string `json:"game_id" validate:"required"`
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleSnapshot handles GET /sessions/{id}.
func (h *LeaderboardHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	const op = "api.snapshot"
	snap, err := h.deps.Snapshot(r.Context(), r.PathValue("id"))
	respond(w, op, snap, err)
}

// HandleLoad handles POST /sessions/{id}/load with {"url": ...}. Links that
// are not leaderboard links leave the view unchanged.
func (h *LeaderboardHandler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	const op = "api.load"
	var req linkRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	snap, err := h.deps.Load(r.Context(), r.PathValue("id"), req.URL)
	respond(w, op, snap, err)
}

// HandleLoadGame handles POST /sessions/{id}/game with {"game_id": ...}.
func (h *LeaderboardHandler) HandleLoadGame(w http.ResponseWriter, r *http.Request) {
	const op = "api.load_game"
	var req gameRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	snap, err := h.deps.LoadGame(r.Context(), r.PathValue("id"), req.GameID)
	respond(w, op, snap, err)
}

// HandleSelectCategory handles POST /sessions/{id}/category with {"url": ...}.
func (h *LeaderboardHandler) HandleSelectCategory(w http.ResponseWriter, r *http.Request) {
	const op = "api.select_category"
	var req linkRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	snap, err := h.deps.SelectCategory(r.Context(), r.PathValue("id"), req.URL)
	respond(w, op, snap, err)
}

// HandleNextPage handles POST /sessions/{id}/next.
func (h *LeaderboardHandler) HandleNextPage(w http.ResponseWriter, r *http.Request) {
	const op = "api.next_page"
	snap, err := h.deps.NextPage(r.Context(), r.PathValue("id"))
	respond(w, op, snap, err)
}

// HandlePreviousPage handles POST /sessions/{id}/prev.
func (h *LeaderboardHandler) HandlePreviousPage(w http.ResponseWriter, r *http.Request) {
	const op = "api.previous_page"
	snap, err := h.deps.PreviousPage(r.Context(), r.PathValue("id"))
	respond(w, op, snap, err)
}

// respond writes v, or the failure when err is set.
func respond(w http.ResponseWriter, op string, v any, err error) {
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}
