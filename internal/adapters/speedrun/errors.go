package speedrun

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for upstream operations.
var (
	ErrRequest = errors.New("speedrun: request failed")
	ErrDecode  = errors.New("speedrun: decode failed")
	ErrLocator = errors.New("speedrun: not a leaderboard locator")
)

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Op      string // categories, leaderboard, games, runs
	Status  int
	Message string
	URL     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("speedrun %s: %d %s", e.Op, e.Status, e.Message)
}

// HTTPStatus exposes the status code without importing this package.
func (e *StatusError) HTTPStatus() int { return e.Status }

// IsStatus reports whether err carries the given upstream status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

// IsBadRequest reports an upstream 400.
func IsBadRequest(err error) bool { return IsStatus(err, http.StatusBadRequest) }
