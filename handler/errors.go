package handler

import (
	"errors"
	"net/http"
)

var (
	// ErrNilResponse indicates a handler returned nil instead of a Response
	ErrNilResponse = errors.New("handler returned nil response")
)

// HTTPError carries an explicit status code and a machine readable key.
type HTTPError struct {
	Code int
	Key  string
}

func (e HTTPError) Error() string {
	if e.Key != "" {
		return e.Key
	}
	return http.StatusText(e.Code)
}

// NewHTTPError returns an HTTPError for code. An empty key falls back to
// the lower-cased status text.
func NewHTTPError(code int, key string) HTTPError {
	if key == "" {
		key = statusKey(code)
	}
	return HTTPError{Code: code, Key: key}
}
