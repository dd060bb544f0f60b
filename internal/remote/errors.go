package remote

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrRevisionUnavailable = errors.New("remote: not able to get revision from metadata")

// StatusError is returned for every non-2xx answer of the remote store.
type StatusError struct {
	Op         string
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf(
		"remote: %s '%s' failed with status %d %s",
		e.Op, e.Path, e.StatusCode, http.StatusText(e.StatusCode),
	)
}

// StatusCode returns the HTTP status carried by err, or 0 if there is none.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
