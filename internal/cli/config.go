package cli

import "time"

// Config holds the CLI flags.
type Config struct {
	BaseURL string        // runboard server root
	Link    string        // leaderboard link to load
	GameID  string        // game to open when no link is given
	Pages   int           // leaderboard pages to print
	Games   bool          // print the newest games
	Popular bool          // print the popular games
	Timeout time.Duration // per-request timeout
	Verbose bool          // print dispatched events
}

// Defaults.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultPages   = 1
	DefaultTimeout = 30 * time.Second
)
