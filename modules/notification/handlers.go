package notification

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/boardnotify/handler"
	"github.com/dmitrymomot/boardnotify/pkg/binder"
	"github.com/dmitrymomot/boardnotify/pkg/notifications"
)

// NotificationService is the subset of *notifications.Service the
// handlers use.
type NotificationService interface {
	NotifyUser(ctx context.Context, userID, boardID, nodeID int64, message string) (notifications.Notification, error)
	NotifyUsers(ctx context.Context, userIDs []int64, boardID, nodeID int64, message string) ([]notifications.Notification, error)
	ListForUser(ctx context.Context, userID int64) ([]notifications.Notification, error)
	ListUnreadForUser(ctx context.Context, userID int64) ([]notifications.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	MarkAsRead(ctx context.Context, id int64) error
	MarkAllAsRead(ctx context.Context, userID int64) (int, error)
	DeleteNotification(ctx context.Context, id int64) error
}

// Poller is the subset of *notifications.Poller the handlers use.
type Poller interface {
	Poll(ctx context.Context, userID int64, cursor *int64, maxWait time.Duration) ([]notifications.Notification, error)
}

// ErrorMappings maps the notifications error classes to HTTP statuses.
func ErrorMappings() []handler.ErrorMapping {
	return []handler.ErrorMapping{
		{Target: notifications.ErrNotFound, Status: http.StatusNotFound, Code: "not_found"},
		{Target: notifications.ErrInvalidArgument, Status: http.StatusBadRequest, Code: "invalid_argument"},
		{Target: notifications.ErrRegistryClosed, Status: http.StatusServiceUnavailable, Code: "shutting_down"},
	}
}

// Handlers serves the notification endpoints.
type Handlers struct {
	service      NotificationService
	poller       Poller
	errorHandler handler.ErrorHandler[handler.Context]
}

// Option configures Handlers.
type Option func(*Handlers)

// WithErrorHandler replaces the default error handler.
func WithErrorHandler(h handler.ErrorHandler[handler.Context]) Option {
	return func(hs *Handlers) {
		if h != nil {
			hs.errorHandler = h
		}
	}
}

// WithLogger sets the logger of the default error handler.
func WithLogger(l *slog.Logger) Option {
	return func(hs *Handlers) {
		if l != nil {
			hs.errorHandler = handler.NewErrorHandler(l, ErrorMappings()...)
		}
	}
}

// NewHandlers creates the notification handlers.
func NewHandlers(service NotificationService, poller Poller, opts ...Option) *Handlers {
	h := &Handlers{
		service:      service,
		poller:       poller,
		errorHandler: handler.NewErrorHandler(slog.Default(), ErrorMappings()...),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle returns the public routes, meant to be mounted at /notifications.
func (h *Handlers) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/longpoll/{userID}", wrap(h, h.longPoll, binder.Path(chi.URLParam), binder.Query()))
	r.Get("/user/{userID}/unread", wrap(h, h.listUnread, binder.Path(chi.URLParam)))
	r.Get("/user/{userID}/unread/count", wrap(h, h.countUnread, binder.Path(chi.URLParam)))
	r.Put("/user/{userID}/read-all", wrap(h, h.markAllRead, binder.Path(chi.URLParam)))
	r.Get("/{userID}", wrap(h, h.list, binder.Path(chi.URLParam)))
	r.Put("/{notificationID}/read", wrap(h, h.markRead, binder.Path(chi.URLParam)))
	r.Delete("/{notificationID}", wrap(h, h.delete, binder.Path(chi.URLParam)))

	return r
}

// InternalHandle returns the trigger used by the board-posting side,
// meant to be mounted at /internal/notifications on a private listener
// or behind the gateway.
func (h *Handlers) InternalHandle() http.Handler {
	r := chi.NewRouter()
	r.Post("/", wrap(h, h.create, binder.JSON()))
	return r
}

func wrap[R any](h *Handlers, fn handler.HandlerFunc[handler.Context, R], binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(fn,
		handler.WithBinders[handler.Context, R](binders...),
		handler.WithErrorHandler[handler.Context, R](h.errorHandler),
	)
}

func (h *Handlers) longPoll(ctx handler.Context, req LongPollRequest) handler.Response {
	list, err := h.poller.Poll(ctx, req.UserID, req.Cursor, req.Timeout)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(Records(list))
}

func (h *Handlers) list(ctx handler.Context, req UserRequest) handler.Response {
	list, err := h.service.ListForUser(ctx, req.UserID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(Items(list))
}

func (h *Handlers) listUnread(ctx handler.Context, req UserRequest) handler.Response {
	list, err := h.service.ListUnreadForUser(ctx, req.UserID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(Items(list))
}

func (h *Handlers) countUnread(ctx handler.Context, req UserRequest) handler.Response {
	n, err := h.service.CountUnread(ctx, req.UserID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(CountResponse{Count: n})
}

func (h *Handlers) markAllRead(ctx handler.Context, req UserRequest) handler.Response {
	n, err := h.service.MarkAllAsRead(ctx, req.UserID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(UpdatedResponse{Updated: n})
}

func (h *Handlers) markRead(ctx handler.Context, req NotificationRequest) handler.Response {
	if err := h.service.MarkAsRead(ctx, req.NotificationID); err != nil {
		return handler.Error(err)
	}
	return handler.Empty()
}

func (h *Handlers) delete(ctx handler.Context, req NotificationRequest) handler.Response {
	if err := h.service.DeleteNotification(ctx, req.NotificationID); err != nil {
		return handler.Error(err)
	}
	return handler.JSON(MessageResponse{Message: "notification deleted"})
}

func (h *Handlers) create(ctx handler.Context, req CreateRequest) handler.Response {
	if len(req.UserIDs) > 0 {
		created, err := h.service.NotifyUsers(ctx, req.UserIDs, req.BoardID, req.NodeID, req.Message)
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(Items(created), handler.WithJSONStatus(http.StatusCreated))
	}

	n, err := h.service.NotifyUser(ctx, req.UserID, req.BoardID, req.NodeID, req.Message)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(NewItem(n), handler.WithJSONStatus(http.StatusCreated))
}
