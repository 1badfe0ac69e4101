// Package locator extracts leaderboard identifiers from resource URLs.
package locator

import (
	"regexp"
	"strings"

	"github.com/okian/runboard/internal/domain/model"
)

var leaderboardPattern = regexp.MustCompile(`leaderboards/([^/?#]+)/category/([^/?#]+)`)

// ParseLeaderboardURL finds leaderboards/{game}/category/{cat} anywhere in
// raw. The locator may be an API link, a site path or a bare fragment.
func ParseLeaderboardURL(raw string) (model.GameRef, bool) {
	m := leaderboardPattern.FindStringSubmatch(raw)
	if m == nil {
		return model.GameRef{}, false
	}
	return model.GameRef{GameID: m[1], CategoryID: m[2]}, true
}

// CategoryID returns the category segment of a leaderboard link. Links that
// do not match the full pattern fall back to their last path segment.
func CategoryID(raw string) (string, bool) {
	if ref, ok := ParseLeaderboardURL(raw); ok {
		return ref.CategoryID, true
	}
	trimmed := raw
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	trimmed = strings.TrimRight(trimmed, "/")
	if trimmed == "" {
		return "", false
	}
	seg := trimmed[strings.LastIndex(trimmed, "/")+1:]
	if seg == "" {
		return "", false
	}
	return seg, true
}
