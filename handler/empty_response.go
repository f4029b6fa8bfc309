package handler

import "net/http"

type emptyResponse struct {
	status int
}

func (e emptyResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// Empty creates an empty response with status 204 (No Content).
//
//	func markRead(ctx handler.Context, req MarkReadRequest) handler.Response {
//		if err := svc.MarkAsRead(ctx, req.NotificationID); err != nil {
//			return handler.JSONError(err)
//		}
//		return handler.Empty()
//	}
func Empty() Response {
	return emptyResponse{status: http.StatusNoContent}
}

// EmptyWithStatus creates an empty response with a custom status code.
func EmptyWithStatus(status int) Response {
	return emptyResponse{status: status}
}
