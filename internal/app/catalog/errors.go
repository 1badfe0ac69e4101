package catalog

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when a page fetch is already in flight.
var ErrBusy = errors.New("catalog: fetch in progress")

// errorText renders a fetch failure as "Error {status}: {message}". The
// status is 0 when the failure never reached the server.
func errorText(err error) string {
	status := 0
	var se interface{ HTTPStatus() int }
	if errors.As(err, &se) {
		status = se.HTTPStatus()
	}
	return fmt.Sprintf("Error %d: %s", status, err.Error())
}
