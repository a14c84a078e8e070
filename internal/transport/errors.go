package transport

import (
	"errors"
	"fmt"
)

// ErrDecodeResponse is returned when the response body is not valid JSON.
var ErrDecodeResponse = errors.New("response body is not valid JSON")

// StatusError is returned for responses outside the 2xx range. The body is
// not decoded even when it holds a JSON error document.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upload rejected with status %d", e.StatusCode)
	}
	return fmt.Sprintf("upload rejected with status %d: %s", e.StatusCode, e.Body)
}
