package service

import "errors"

// Sentinel errors returned by Service.
var (
	// ErrNotStarted is returned by session calls before Start or after Stop.
	ErrNotStarted = errors.New("service: not started")
	// ErrSessionNotFound is returned for unknown or evicted session ids.
	ErrSessionNotFound = errors.New("service: session not found")
)
