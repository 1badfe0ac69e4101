// Package runs derives display values from leaderboard runs.
package runs

import (
	"fmt"
	"regexp"

	"github.com/okian/runboard/internal/domain/model"
)

// Display placeholders.
const (
	AnonymousPlayer = "Anonymous"
	MissingTime     = "—"
)

const trophyBase = "https://www.speedrun.com/images/"

var (
	trophies = [...]string{
		trophyBase + "1st.png",
		trophyBase + "2nd.png",
		trophyBase + "3rd.png",
	}

	youtubeID = regexp.MustCompile(`(?:v=|youtu\.be/)([^&\s]+)`)
)

// PlayerName returns the first player's id, or AnonymousPlayer.
func PlayerName(r model.Run) string {
	if id, ok := r.PlayerID(); ok {
		return id
	}
	return AnonymousPlayer
}

// FormatTime renders the primary time as HH:MM:SS. Fractions are truncated
// and hours keep counting past 23.
func FormatTime(r model.Run) string {
	secs, ok := r.PrimaryTime()
	if !ok {
		return MissingTime
	}
	return FormatSeconds(int64(secs))
}

// FormatSeconds renders whole seconds as HH:MM:SS.
func FormatSeconds(total int64) string {
	if total < 0 {
		total = 0
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Trophy returns the podium image for absolute ranks 0, 1 and 2.
func Trophy(rank int) (string, bool) {
	if rank < 0 || rank >= len(trophies) {
		return "", false
	}
	return trophies[rank], true
}

// EmbedURL turns a YouTube watch or short link into an autoplay embed link.
// Other URIs are returned unchanged.
func EmbedURL(uri string) string {
	m := youtubeID.FindStringSubmatch(uri)
	if m == nil {
		return uri
	}
	return "https://www.youtube.com/embed/" + m[1] + "?autoplay=1"
}
