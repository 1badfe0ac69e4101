package leaderboard

import "errors"

// Sentinel errors for leaderboard loads.
var (
	// ErrSuperseded marks a load whose result was discarded because a newer
	// load or selection started after it.
	ErrSuperseded = errors.New("leaderboard: load superseded")
	// ErrNoGame is returned when a category is selected before any game.
	ErrNoGame = errors.New("leaderboard: no game loaded")
	// ErrNoCategories is returned by LoadGame when the game has no per-game
	// category to show.
	ErrNoCategories = errors.New("leaderboard: game has no categories")
)
