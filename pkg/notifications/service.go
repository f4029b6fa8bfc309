package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/boardnotify/pkg/logger"
)

// Service is the notification API used by transports: it persists new
// notifications, wakes pollers and exposes the read/list/delete lifecycle.
type Service struct {
	storage   Storage
	directory UserDirectory
	deliverer Deliverer
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger for the Service.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a notification service. A nil directory accepts every
// user; a nil deliverer disables real-time wake-ups.
func NewService(storage Storage, directory UserDirectory, deliverer Deliverer, opts ...ServiceOption) *Service {
	if deliverer == nil {
		deliverer = NoOpDeliverer{}
	}

	s := &Service{
		storage:   storage,
		directory: directory,
		deliverer: deliverer,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NotifyUser stores a notification for userID and wakes that user's pollers.
// The notification is stored before delivery; a delivery failure is only logged.
func (s *Service) NotifyUser(ctx context.Context, userID, boardID, nodeID int64, message string) (Notification, error) {
	if err := validateNew(userID, boardID, nodeID, message); err != nil {
		return Notification{}, err
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return Notification{}, err
	}

	n, err := s.storage.Create(ctx, userID, boardID, nodeID, message)
	if err != nil {
		return Notification{}, fmt.Errorf("failed to store notification: %w", storeFailure(err))
	}

	if err := s.deliverer.Deliver(ctx, n); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to deliver notification, but it was stored successfully",
			logger.NotificationID(n.ID),
			logger.UserID(n.UserID),
			logger.Error(err),
		)
	}

	return n, nil
}

// NotifyUsers stores the same notification for several users, then delivers
// them as one batch. Storing stops at the first failure; notifications
// already stored are still delivered.
func (s *Service) NotifyUsers(ctx context.Context, userIDs []int64, boardID, nodeID int64, message string) ([]Notification, error) {
	for _, id := range userIDs {
		if err := validateNew(id, boardID, nodeID, message); err != nil {
			return nil, err
		}
	}

	created := make([]Notification, 0, len(userIDs))
	var firstErr error
	for _, id := range userIDs {
		if err := s.ensureUser(ctx, id); err != nil {
			firstErr = fmt.Errorf("user %d: %w", id, err)
			break
		}
		n, err := s.storage.Create(ctx, id, boardID, nodeID, message)
		if err != nil {
			firstErr = fmt.Errorf("failed to store notification for user %d: %w", id, storeFailure(err))
			break
		}
		created = append(created, n)
	}

	if len(created) > 0 {
		if err := s.deliverer.DeliverBatch(ctx, created); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to deliver notification batch, but they were stored successfully",
				logger.Count(len(created)),
				logger.Error(err),
			)
		}
	}

	return created, firstErr
}

// ListForUser returns every visible notification of the user, oldest first.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]Notification, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}
	ns, err := s.storage.ListAll(ctx, userID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return ns, nil
}

// ListUnreadForUser returns the user's unread notifications, oldest first.
func (s *Service) ListUnreadForUser(ctx context.Context, userID int64) ([]Notification, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}
	ns, err := s.storage.ListUnread(ctx, userID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return ns, nil
}

// CountUnread returns the number of unread notifications of the user.
func (s *Service) CountUnread(ctx context.Context, userID int64) (int, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return 0, err
	}
	count, err := s.storage.CountUnread(ctx, userID)
	if err != nil {
		return 0, storeFailure(err)
	}
	return count, nil
}

// Get returns one notification by id. Soft-deleted ones are not found.
func (s *Service) Get(ctx context.Context, id int64) (Notification, error) {
	if id <= 0 {
		return Notification{}, fmt.Errorf("%w: notification id must be positive", ErrInvalidArgument)
	}
	n, err := s.storage.Get(ctx, id)
	if err != nil {
		return Notification{}, storeFailure(err)
	}
	return n, nil
}

// MarkAsRead marks a notification as read. Marking it again is not an error.
func (s *Service) MarkAsRead(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: notification id must be positive", ErrInvalidArgument)
	}
	return storeFailure(s.storage.MarkRead(ctx, id))
}

// MarkAllAsRead marks every unread notification of the user as read.
func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) (int, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return 0, err
	}
	updated, err := s.storage.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, storeFailure(err)
	}
	return updated, nil
}

// DeleteNotification soft-deletes a notification. Pollers that already
// received it are not affected.
func (s *Service) DeleteNotification(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: notification id must be positive", ErrInvalidArgument)
	}
	return storeFailure(s.storage.SoftDelete(ctx, id))
}

func (s *Service) checkUser(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("%w: user id must be positive", ErrInvalidArgument)
	}
	return s.ensureUser(ctx, userID)
}

func (s *Service) ensureUser(ctx context.Context, userID int64) error {
	if s.directory == nil {
		return nil
	}
	ok, err := s.directory.Exists(ctx, userID)
	if err != nil {
		return storeFailure(err)
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

func validateNew(userID, boardID, nodeID int64, message string) error {
	switch {
	case userID <= 0:
		return fmt.Errorf("%w: user id must be positive", ErrInvalidArgument)
	case boardID < 0 || nodeID < 0:
		return fmt.Errorf("%w: board and node ids must not be negative", ErrInvalidArgument)
	case strings.TrimSpace(message) == "":
		return fmt.Errorf("%w: message is required", ErrInvalidArgument)
	}
	return nil
}
