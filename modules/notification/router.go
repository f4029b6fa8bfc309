package notification

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures which parts of the module are mounted.
// Each part is optional.
type RouterOptions struct {
	Notifications Mountable
	// Internal exposes the create trigger at /internal/notifications.
	// Leave it nil on public listeners.
	Internal Mountable
	// Health is mounted at /health.
	Health http.Handler
}

// Router creates the notification module router.
//
//	h := notification.NewHandlers(service, poller, notification.WithLogger(log))
//	r := notification.Router(notification.RouterOptions{
//		Notifications: h,
//		Internal:      notification.Internal(h),
//	})
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	if opts.Notifications != nil {
		r.Mount("/notifications", opts.Notifications.Handle())
	}
	if opts.Internal != nil {
		r.Mount("/internal/notifications", opts.Internal.Handle())
	}
	if opts.Health != nil {
		r.Mount("/health", opts.Health)
	}

	return r
}

type internal struct{ h *Handlers }

func (i internal) Handle() http.Handler { return i.h.InternalHandle() }

// Internal adapts the internal routes of h to Mountable.
func Internal(h *Handlers) Mountable {
	return internal{h: h}
}
