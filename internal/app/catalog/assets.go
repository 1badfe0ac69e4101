package catalog

import (
	"strconv"
	"strings"

	"github.com/okian/runboard/internal/domain/model"
	"github.com/okian/runboard/internal/domain/types"
)

// Display fallbacks.
const (
	NoCover      = "assets/imgs/no-cover.png"
	UntitledGame = "Untitled"
)

func blankAsset(uri string) bool {
	return uri == "" || strings.Contains(uri, "no-cover") || strings.Contains(uri, "blankcover")
}

func forceHTTPS(uri string) string {
	if rest, ok := strings.CutPrefix(uri, "http://"); ok {
		return "https://" + rest
	}
	return uri
}

func firstAsset(g model.Game, kinds ...string) (string, bool) {
	for _, k := range kinds {
		if uri := g.AssetURI(k); !blankAsset(uri) {
			return forceHTTPS(uri), true
		}
	}
	return "", false
}

// Cover returns the best cover image, or NoCover.
func Cover(g model.Game) string {
	if uri, ok := firstAsset(g, "cover-medium", "cover-small", "cover-tiny"); ok {
		return uri
	}
	return NoCover
}

// Background returns the backdrop image, falling back to the large cover
// and then NoCover.
func Background(g model.Game) string {
	if uri, ok := firstAsset(g, "background", "cover-large"); ok {
		return uri
	}
	return NoCover
}

// Name returns the international name, then the twitch name.
func Name(g model.Game) string {
	switch {
	case g.Names.International != "":
		return g.Names.International
	case g.Names.Twitch != "":
		return g.Names.Twitch
	default:
		return UntitledGame
	}
}

// ReleaseYear returns the release year, or "" when unknown.
func ReleaseYear(g model.Game) string {
	if g.Released <= 0 {
		return ""
	}
	s := strconv.Itoa(g.Released)
	if len(s) > 4 {
		s = s[:4]
	}
	return s
}

// Card renders a game for display.
func Card(g model.Game) types.GameCard {
	return types.GameCard{
		ID:          g.ID,
		Name:        Name(g),
		Cover:       Cover(g),
		Background:  Background(g),
		ReleaseYear: ReleaseYear(g),
		Weblink:     g.Weblink,
	}
}
