package appctx

import (
	"fmt"
	"net/http"
)

// HTTPError is an error carrying the status the exchange should fail with.
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Throw returns an *HTTPError for the given status. An empty message
// defaults to the status text. Handlers return it to abort the chain:
//
//	if c.Header("Authorization") == "" {
//		return c.Throw(http.StatusUnauthorized, "")
//	}
func (c *Context) Throw(status int, message string) error {
	return NewHTTPError(status, message, nil)
}

// NewHTTPError builds an *HTTPError, defaulting the message to the status
// text and invalid statuses to 500.
func NewHTTPError(status int, message string, err error) *HTTPError {
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &HTTPError{Status: status, Message: message, Err: err}
}
