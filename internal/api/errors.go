package api

import (
	"fmt"
	"net/http"
	"time"
)

// RequestError is the single failure kind of the client: network failure,
// non-2xx status and undecodable bodies all surface as one.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error

	// RetryAfter is the server's requested pause, 0 when it sent none
	RetryAfter time.Duration
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s failed: %d %s: %s",
			e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Method, e.Path, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
