package repository

import "errors"

// Sentinel errors for session lookups.
var (
	ErrNotFound = errors.New("session not found")
	ErrEmptyID  = errors.New("session id must not be empty")
)
