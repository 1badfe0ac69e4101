package api

import (
	"context"
	"net/http"

	"github.com/okian/runboard/internal/domain/types"
)

// EventDependencies exposes a session's outbound events and search box.
type EventDependencies interface {
	Events(ctx context.Context, id string) ([]Event, error)
	Search(ctx context.Context, id, term string) (types.GamePage, error)
}

type searchRequest struct {
	Term string `json:"term" validate:"max=200"`
}

type eventsResponse struct {
	Events []Event `json:"events"`
}

// EventsHandler handles event polling and search input.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandleGetEvents handles GET /sessions/{id}/events. Returned events are
// removed from the session.
func (h *EventsHandler) HandleGetEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_events"
	events, err := h.deps.Events(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: events})
}

// HandleSearch handles POST /sessions/{id}/search with {"term": ...}. The
// term is debounced; the response is the listing as it stands now.
func (h *EventsHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.search"
	var req searchRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	page, err := h.deps.Search(r.Context(), r.PathValue("id"), req.Term)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, page)
}
