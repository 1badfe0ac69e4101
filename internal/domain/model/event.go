package model

import "time"

// EventKind names an outbound event.
type EventKind string

// Outbound events raised toward the hosting surface.
const (
	EventVideoRequested    EventKind = "video_requested"
	EventCategorySelected  EventKind = "category_selected"
	EventSearchTermChanged EventKind = "search_term_changed"
)

// Event is an outbound notification. Only the fields relevant to Kind are set.
type Event struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId,omitempty"`
	Kind      EventKind `json:"kind"`
	EmbedURL  *string   `json:"embedUrl"`       // video_requested; nil when the popup closes
	URL       string    `json:"url,omitempty"`  // category_selected leaderboard URL
	Term      string    `json:"term,omitempty"` // search_term_changed
	TS        time.Time `json:"ts"`
}
