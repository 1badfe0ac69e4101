// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	service "github.com/okian/runboard/internal/app"
	"github.com/okian/runboard/internal/app/account"
	"github.com/okian/runboard/internal/app/catalog"
	"github.com/okian/runboard/internal/app/leaderboard"
	"github.com/okian/runboard/internal/domain/model"
	"github.com/okian/runboard/internal/domain/types"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
// *service.Service satisfies it.
type Dependencies interface {
	SessionDependencies
	LeaderboardDependencies
	VideoDependencies
	EventDependencies
	CatalogDependencies
	AccountDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	sessionsHandler    *SessionsHandler
	leaderboardHandler *LeaderboardHandler
	videoHandler       *VideoHandler
	eventsHandler      *EventsHandler
	catalogHandler     *CatalogHandler
	accountHandler     *AccountHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		sessionsHandler:    NewSessionsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		videoHandler:       NewVideoHandler(deps),
		eventsHandler:      NewEventsHandler(deps),
		catalogHandler:     NewCatalogHandler(deps),
		accountHandler:     NewAccountHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /sessions", MetricsMiddleware(s.sessionsHandler.HandleCreate, "sessions_create"))
	mux.HandleFunc("DELETE /sessions/{id}", MetricsMiddleware(s.sessionsHandler.HandleDelete, "sessions_delete"))

	mux.HandleFunc("GET /sessions/{id}", MetricsMiddleware(s.leaderboardHandler.HandleSnapshot, "snapshot"))
	mux.HandleFunc("POST /sessions/{id}/load", MetricsMiddleware(s.leaderboardHandler.HandleLoad, "load"))
	mux.HandleFunc("POST /sessions/{id}/game", MetricsMiddleware(s.leaderboardHandler.HandleLoadGame, "load_game"))
	mux.HandleFunc("POST /sessions/{id}/category", MetricsMiddleware(s.leaderboardHandler.HandleSelectCategory, "category"))
	mux.HandleFunc("POST /sessions/{id}/next", MetricsMiddleware(s.leaderboardHandler.HandleNextPage, "next_page"))
	mux.HandleFunc("POST /sessions/{id}/prev", MetricsMiddleware(s.leaderboardHandler.HandlePreviousPage, "previous_page"))

	mux.HandleFunc("POST /sessions/{id}/video", MetricsMiddleware(s.videoHandler.HandleOpen, "video_open"))
	mux.HandleFunc("DELETE /sessions/{id}/video", MetricsMiddleware(s.videoHandler.HandleClose, "video_close"))

	mux.HandleFunc("GET /sessions/{id}/events", MetricsMiddleware(s.eventsHandler.HandleGetEvents, "events"))
	mux.HandleFunc("POST /sessions/{id}/search", MetricsMiddleware(s.eventsHandler.HandleSearch, "search"))

	mux.HandleFunc("GET /sessions/{id}/games", MetricsMiddleware(s.catalogHandler.HandleGames, "games"))
	mux.HandleFunc("GET /sessions/{id}/popular", MetricsMiddleware(s.catalogHandler.HandlePopular, "popular"))
	mux.HandleFunc("POST /sessions/{id}/carousel/next", MetricsMiddleware(s.catalogHandler.HandleCarouselNext, "carousel_next"))
	mux.HandleFunc("POST /sessions/{id}/carousel/prev", MetricsMiddleware(s.catalogHandler.HandleCarouselPrev, "carousel_prev"))
	mux.HandleFunc("GET /sessions/{id}/home", MetricsMiddleware(s.catalogHandler.HandleHome, "home"))

	mux.HandleFunc("POST /login", MetricsMiddleware(s.accountHandler.HandleLogin, "login"))
	mux.HandleFunc("POST /register", MetricsMiddleware(s.accountHandler.HandleRegister, "register"))
}

// Snapshot mirrors the leaderboard view returned by session routes.
type Snapshot = types.Snapshot

// Event mirrors an outbound event as delivered to viewers.
type Event = model.Event

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

var validate = newValidator()

// newValidator reports JSON field names in validation errors.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// decode reads a JSON body into v and checks its validate tags. An empty
// body leaves v at its zero value before validation.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode body: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("field %s failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("validate body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	resp := errorResponse{Code: code, Message: msg}
	var verr *account.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	writeJSON(w, status, resp)
}

// writeFailure maps service errors to status codes.
func writeFailure(w http.ResponseWriter, err error) {
	var verr *account.ValidationError
	switch {
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "invalid_form", err)
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, leaderboard.ErrNoGame):
		writeError(w, http.StatusConflict, "no_game", err)
	case errors.Is(err, catalog.ErrBusy):
		writeError(w, http.StatusConflict, "busy", err)
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
