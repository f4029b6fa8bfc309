package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/boardnotify/pkg/binder"
	"github.com/dmitrymomot/boardnotify/pkg/logger"
	"github.com/dmitrymomot/boardnotify/pkg/requestid"
)

// StatusClientClosedRequest is reported when the client went away before
// the handler finished. Nothing reaches the client; the code only shows
// up in logs.
const StatusClientClosedRequest = 499

const genericServerMessage = "An error occurred processing your request"

// ErrorMapping assigns Status (and optionally Code) to every error that
// matches Target with errors.Is.
type ErrorMapping struct {
	Target error
	Status int
	Code   string
}

// ErrorInfo contains classified error information
type ErrorInfo struct {
	StatusCode int
	Code       string
	Message    string
	LogLevel   slog.Level
}

var bindingMappings = []ErrorMapping{
	{Target: binder.ErrUnsupportedMediaType, Status: http.StatusUnsupportedMediaType},
	{Target: binder.ErrMissingContentType, Status: http.StatusUnsupportedMediaType},
	{Target: binder.ErrInvalidJSON, Status: http.StatusBadRequest},
	{Target: binder.ErrInvalidQuery, Status: http.StatusBadRequest},
	{Target: binder.ErrInvalidPath, Status: http.StatusBadRequest},
}

func isClientError(statusCode int) bool {
	return statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError
}

func determineLogLevel(statusCode int) slog.Level {
	switch {
	case statusCode == StatusClientClosedRequest:
		return slog.LevelDebug
	case isClientError(statusCode):
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func statusKey(code int) string {
	if code == StatusClientClosedRequest {
		return "client_closed_request"
	}
	text := http.StatusText(code)
	if text == "" {
		return "error"
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}

// classifyError resolves err to a status: an HTTPError wins, then the
// mappings in order, then binder errors, then context cancellation.
// Server errors never expose err's text.
func classifyError(err error, mappings []ErrorMapping) ErrorInfo {
	info := ErrorInfo{StatusCode: http.StatusInternalServerError}

	var httpErr HTTPError
	matched := false
	if errors.As(err, &httpErr) {
		info.StatusCode = httpErr.Code
		info.Code = httpErr.Key
		matched = true
	}

	if !matched {
		for _, list := range [][]ErrorMapping{mappings, bindingMappings} {
			for _, m := range list {
				if m.Target != nil && errors.Is(err, m.Target) {
					info.StatusCode = m.Status
					info.Code = m.Code
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
	}

	if !matched && errors.Is(err, context.Canceled) {
		info.StatusCode = StatusClientClosedRequest
	}

	if info.Code == "" {
		info.Code = statusKey(info.StatusCode)
	}
	if isClientError(info.StatusCode) && err != nil {
		info.Message = err.Error()
	} else {
		info.Message = genericServerMessage
	}
	info.LogLevel = determineLogLevel(info.StatusCode)

	return info
}

// NewErrorHandler returns an ErrorHandler that logs the error with the
// request id and writes an ErrorResponse. mappings extend the built-in
// classification with domain errors.
//
//	errorHandler := handler.NewErrorHandler(log,
//		handler.ErrorMapping{Target: notifications.ErrNotFound, Status: http.StatusNotFound},
//	)
func NewErrorHandler(log *slog.Logger, mappings ...ErrorMapping) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		info := classifyError(err, mappings)
		requestID := requestid.FromContext(r.Context())

		log.LogAttrs(r.Context(), info.LogLevel, "request error",
			logger.RequestID(requestID),
			logger.Error(err),
			slog.Int("status_code", info.StatusCode),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		if info.StatusCode == StatusClientClosedRequest {
			return
		}

		body := ErrorResponse{Error: &ErrorDetail{
			Code:      info.Code,
			Message:   info.Message,
			RequestID: requestID,
		}}
		resp := JSON(body, WithJSONStatus(info.StatusCode))
		if renderErr := resp.Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.LogAttrs(r.Context(), slog.LevelError, "failed to render error response",
				logger.RequestID(requestID),
				logger.Error(renderErr),
				logger.Event("render_error_response"),
			)
		}
	}
}
