// Package model contains domain models passed between layers.
package model

import (
	"bytes"
	"encoding/json"
)

// Category kinds reported by the API.
const (
	CategoryPerGame  = "per-game"
	CategoryPerLevel = "per-level"
)

// Link relation names used by the API.
const (
	RelLeaderboard = "leaderboard"
)

// GameRef identifies one leaderboard: a game and one of its categories.
type GameRef struct {
	GameID     string
	CategoryID string
}

// Link is a hypermedia link attached to API resources.
type Link struct {
	Rel string `json:"rel,omitempty"`
	URI string `json:"uri"`
}

// Category is a ranking category for a game.
type Category struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Weblink string `json:"weblink,omitempty"`
	Links   []Link `json:"links,omitempty"`
}

// PerGame reports whether the category ranks the whole game.
func (c Category) PerGame() bool { return c.Type == CategoryPerGame }

// LeaderboardURL returns the category's leaderboard link, or "".
func (c Category) LeaderboardURL() string {
	for _, l := range c.Links {
		if l.Rel == RelLeaderboard {
			return l.URI
		}
	}
	return ""
}

// PerGameCategories keeps per-game categories in upstream order.
func PerGameCategories(all []Category) []Category {
	out := make([]Category, 0, len(all))
	for _, c := range all {
		if c.PerGame() {
			out = append(out, c)
		}
	}
	return out
}

// Player is a run participant reference.
type Player struct {
	Rel  string `json:"rel,omitempty"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	URI  string `json:"uri,omitempty"`
}

// Times holds the run timings in seconds.
type Times struct {
	PrimaryT float64 `json:"primary_t"`
}

// Videos holds video evidence links.
type Videos struct {
	Links []Link `json:"links"`
}

// Run is a single submitted attempt.
type Run struct {
	ID       string    `json:"id"`
	Weblink  string    `json:"weblink,omitempty"`
	Game     GameEmbed `json:"game"`
	Category string    `json:"category,omitempty"`
	Date     string    `json:"date,omitempty"`
	Players  []Player  `json:"players,omitempty"`
	Times    *Times    `json:"times,omitempty"`
	Videos   *Videos   `json:"videos,omitempty"`
}

// PlayerID returns the first player's id, if any.
func (r Run) PlayerID() (string, bool) {
	if len(r.Players) == 0 || r.Players[0].ID == "" {
		return "", false
	}
	return r.Players[0].ID, true
}

// PrimaryTime returns the primary time in seconds, if present.
func (r Run) PrimaryTime() (float64, bool) {
	if r.Times == nil || r.Times.PrimaryT == 0 {
		return 0, false
	}
	return r.Times.PrimaryT, true
}

// VideoURI returns the first video link, if any.
func (r Run) VideoURI() (string, bool) {
	if r.Videos == nil || len(r.Videos.Links) == 0 || r.Videos.Links[0].URI == "" {
		return "", false
	}
	return r.Videos.Links[0].URI, true
}

// GameEmbed is a run's game field: a bare id, or {"data": Game} when the
// request asked for embed=game.
type GameEmbed struct {
	ID   string
	Data *Game
}

// UnmarshalJSON accepts both the id and the embedded form.
func (g *GameEmbed) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*g = GameEmbed{}
		return nil
	}
	if b[0] == '"' {
		var id string
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		*g = GameEmbed{ID: id}
		return nil
	}
	var wrapped struct {
		Data *Game `json:"data"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return err
	}
	*g = GameEmbed{Data: wrapped.Data}
	if wrapped.Data != nil {
		g.ID = wrapped.Data.ID
	}
	return nil
}

// MarshalJSON writes the id form, or the embedded form when data is present.
func (g GameEmbed) MarshalJSON() ([]byte, error) {
	if g.Data != nil {
		return json.Marshal(struct {
			Data *Game `json:"data"`
		}{g.Data})
	}
	return json.Marshal(g.ID)
}

// Names are the localized game names.
type Names struct {
	International string `json:"international,omitempty"`
	Japanese      string `json:"japanese,omitempty"`
	Twitch        string `json:"twitch,omitempty"`
}

// Asset is an image reference.
type Asset struct {
	URI string `json:"uri"`
}

// Game is a catalog entry.
type Game struct {
	ID           string            `json:"id"`
	Names        Names             `json:"names"`
	Abbreviation string            `json:"abbreviation,omitempty"`
	Weblink      string            `json:"weblink,omitempty"`
	Released     int               `json:"released,omitempty"`
	Assets       map[string]*Asset `json:"assets,omitempty"`
	Links        []Link            `json:"links,omitempty"`
}

// AssetURI returns the uri for an asset kind such as "cover-medium".
func (g Game) AssetURI(kind string) string {
	if a, ok := g.Assets[kind]; ok && a != nil {
		return a.URI
	}
	return ""
}
