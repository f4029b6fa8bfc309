package httpserver

import "errors"

var (
	// ErrStart is returned by Run when the listener cannot be opened or
	// the server stops with an error other than http.ErrServerClosed.
	ErrStart = errors.New("failed to start HTTP server")
	// ErrShutdown is returned when in-flight requests outlive the shutdown timeout.
	ErrShutdown = errors.New("failed to shutdown HTTP server within the shutdown timeout")
)
