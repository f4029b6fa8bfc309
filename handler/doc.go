// Package handler provides typed HTTP handlers.
//
// A HandlerFunc receives a Context and a request struct filled by the
// binders from pkg/binder, and returns a Response:
//
//	type LongPollRequest struct {
//		UserID  int64         `path:"userID"`
//		Cursor  *int64        `query:"cursor"`
//		Timeout time.Duration `query:"timeout"`
//	}
//
//	func (h *Handlers) longPoll(ctx handler.Context, req LongPollRequest) handler.Response {
//		list, err := h.poller.Poll(ctx, req.UserID, req.Cursor, req.Timeout)
//		if err != nil {
//			return handler.Error(err)
//		}
//		return handler.JSON(list)
//	}
//
// Context embeds the request context, so a client disconnect cancels
// long-running work such as a long poll.
//
// # Errors
//
// Binding failures, Render failures and Error responses all reach the
// ErrorHandler configured with WithErrorHandler. NewErrorHandler
// classifies them (HTTPError first, then caller supplied ErrorMapping
// values, then binder errors), logs 4xx at WARN and 5xx at ERROR with the
// request id, and writes an ErrorResponse. Server error messages are
// replaced with a generic text. A cancelled request context is logged at
// DEBUG and nothing is written.
package handler
